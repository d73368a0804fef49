package lib

import (
	"log"

	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// AutoMigrate runs all database migrations
func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.User{},
	)

	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database migration completed!")
}
