package services

import (
	"path/filepath"
	"testing"

	"github.com/crewdeck/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Customer{},
		&models.Project{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func countCustomers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Customer{}).Count(&n).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	return n
}
