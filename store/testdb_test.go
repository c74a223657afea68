package store

import (
	"path/filepath"
	"testing"

	"tandril-backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a throwaway sqlite database migrated with the Tandril tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tandril_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.StateToken{},
		&models.WebhookLog{},
		&models.PlatformConnection{},
		&models.IdempotencyKey{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
