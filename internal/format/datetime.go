package format

import (
	"sync"
	"time"
)

// The legacy store writes naive local timestamps (Europe/Berlin wall clock).
// All responses expose UTC RFC3339 instead.

var (
	storageLocOnce sync.Once
	storageLoc     *time.Location
)

func storageLocation() *time.Location {
	storageLocOnce.Do(func() {
		loc, err := time.LoadLocation("Europe/Berlin")
		if err != nil {
			loc = time.UTC
		}
		storageLoc = loc
	})
	return storageLoc
}

// FromStorage reinterprets a naive storage timestamp as local wall time and
// converts it to UTC.
func FromStorage(t time.Time) time.Time {
	loc := storageLocation()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc).UTC()
}

// ToStorage converts an instant to the naive wall time the store expects.
func ToStorage(t time.Time) time.Time {
	local := t.In(storageLocation())
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}

// ISO renders a storage timestamp as UTC RFC3339 for responses.
func ISO(t time.Time) string {
	return FromStorage(t).Format(time.RFC3339)
}
