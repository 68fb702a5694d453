// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yieldvest/internal/models"
)

var dbSeq atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with every model
// migrated. Databases are named per call so parallel tests never share one.
// A single connection serialises writers within a test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:yieldvest_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// TeardownTestDB closes db. The in-memory database vanishes with its last
// connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		t.Errorf("close test database: %v", err)
	}
}
