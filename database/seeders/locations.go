package seeders

import (
	"church-booking/models/location"

	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

// DefaultLocations are the bookable rooms created on first boot. Admins can
// add more through the locations endpoints.
var DefaultLocations = []location.Location{
	{Name: "Main Sanctuary", Capacity: intPtr(400), Active: true},
	{Name: "Meeting Room", Capacity: intPtr(20), Active: true},
	{Name: "Fellowship Hall", Capacity: intPtr(120), Active: true},
	{Name: "Youth Room", Capacity: intPtr(40), Active: true},
	{Name: "Classroom 1", Capacity: intPtr(25), Active: true},
	{Name: "Classroom 2", Capacity: intPtr(25), Active: true},
	{Name: "Kitchen", Capacity: intPtr(10), Active: true},
	{Name: "Media Room", Capacity: intPtr(8), Active: true},
}

// Seed inserts any default location that does not exist yet.
func Seed(db *gorm.DB) error {
	for _, loc := range DefaultLocations {
		var count int64
		if err := db.Model(&location.Location{}).Where("name = ?", loc.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&loc).Error; err != nil {
			return err
		}
	}
	return nil
}
