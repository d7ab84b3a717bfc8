package testutil

import (
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/example/contentapi/internal/database"
	"github.com/example/contentapi/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg = logger.NewNop()
	})
	return logg
}

// DB opens a fresh in-memory sqlite database with the full schema. Each
// caller gets its own database; nothing leaks between tests.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test database: %v", err)
	}
	// Every sqlite in-memory connection is its own database; pin the pool
	// to one connection so concurrent reads see the same data.
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrateAll(db); err != nil {
		tb.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// Tx begins a transaction that is rolled back when the test finishes.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()

	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("failed to begin test transaction: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}
