package domain

import "fmt"

// Instance is the language edition a row belongs to.
type Instance string

const (
	InstanceDe Instance = "de"
	InstanceEn Instance = "en"
	InstanceEs Instance = "es"
	InstanceFr Instance = "fr"
	InstanceHi Instance = "hi"
	InstanceTa Instance = "ta"
)

var Instances = []Instance{InstanceDe, InstanceEn, InstanceEs, InstanceFr, InstanceHi, InstanceTa}

func ParseInstance(raw string) (Instance, error) {
	in := Instance(raw)
	for _, known := range Instances {
		if in == known {
			return in, nil
		}
	}
	return "", fmt.Errorf("invalid instance %q", raw)
}
