package inventory

import (
	"time"
)

// ItemStatus is derived from remaining quantity except for MAINTENANCE,
// which is set manually and preserved across quantity changes.
type ItemStatus string

const (
	StatusAvailable   ItemStatus = "AVAILABLE"
	StatusUnavailable ItemStatus = "UNAVAILABLE"
	StatusMaintenance ItemStatus = "MAINTENANCE"
)

// quantity at or below which an item is flagged as low stock
const LowStockThreshold = 2

// Item is a bookable piece of equipment or supply.
type Item struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Category    string  `gorm:"type:varchar(100);not null;index" json:"category"`
	Location    *string `gorm:"type:varchar(255)" json:"location,omitempty"`
	ImageURL    *string `gorm:"type:varchar(2048)" json:"image_url,omitempty"`

	// Consumable items are decremented again at execution time; only
	// non-consumables are restored when a request finishes.
	Consumable bool `gorm:"type:bool;default:false" json:"consumable"`

	QuantityAvailable int `gorm:"type:int;not null" json:"quantity_available"`
	QuantityTotal     int `gorm:"type:int;not null" json:"quantity_total"`

	Status ItemStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`

	LastUsedDate *time.Time `json:"last_used_date,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Item model
func (Item) TableName() string {
	return "inventory"
}

// LowStock reports whether remaining quantity is at or below the alert
// threshold.
func (i Item) LowStock() bool {
	return i.QuantityAvailable <= LowStockThreshold
}

// RecomputeStatus derives the status from the remaining quantity.
// A manually set MAINTENANCE status is preserved.
func (i *Item) RecomputeStatus() {
	if i.Status == StatusMaintenance {
		return
	}
	if i.QuantityAvailable <= 0 {
		i.Status = StatusUnavailable
		return
	}
	i.Status = StatusAvailable
}
