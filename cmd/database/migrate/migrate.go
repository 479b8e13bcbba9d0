package migration

import (
	"LeftoverLink/entities"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	}

	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"ngo", &entities.NGO{}},
		{"food", &entities.Food{}},
		{"receive", &entities.Receive{}},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			log.Errorf("Error migrating %s database: %v", m.name, err)
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}

	log.Info("Database migration complete")
	return nil
}
