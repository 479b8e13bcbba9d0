// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	migration "LeftoverLink/cmd/database/migrate"
	"LeftoverLink/entities"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
// A single connection serializes access the way row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migration.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, first, last string) *entities.User {
	t.Helper()

	u := &entities.User{
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s.%s@example.com", first, last, uuid.NewString()[:8]),
		Password:  "x",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateFood(t *testing.T, db *gorm.DB, donor *entities.User, status string) *entities.Food {
	t.Helper()

	f := &entities.Food{
		DonorID:  donor.ID,
		FoodType: "cooked",
		Quantity: 5,
		Expiry:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Location: "Gwalior",
		Status:   status,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("create food: %v", err)
	}
	return f
}

func CreateNGO(t *testing.T, db *gorm.DB, name, location string) *entities.NGO {
	t.Helper()

	n := &entities.NGO{
		Name:     name,
		Email:    fmt.Sprintf("%s@ngo.example.com", uuid.NewString()[:8]),
		Location: location,
		Lat:      26.2,
		Lng:      78.2,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("create ngo: %v", err)
	}
	return n
}
