package database

import (
	"church-booking/database/seeders"

	"gorm.io/gorm"
)

// SeedLocations inserts the default bookable rooms.
func SeedLocations(db *gorm.DB) error {
	return seeders.Seed(db)
}
