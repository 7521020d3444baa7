package db

import (
	"log"

	"memebot/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the Postgres connection and runs migrations. Fatal on failure:
// nothing in this service works without the store.
func Init(dsn string) {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
}

// Migrate creates or updates the two tables this service owns. Split out so
// tests can run the same migration against an in-memory store.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.TrendRecord{},
		&models.ContentCandidate{},
	)
}
