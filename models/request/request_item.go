package request

import (
	"time"

	"church-booking/models/inventory"
)

// RequestItem is one inventory line item attached to a request.
type RequestItem struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	RequestID uint `gorm:"not null;index" json:"request_id"`

	InventoryID uint           `gorm:"not null;index" json:"inventory_id"`
	Inventory   inventory.Item `gorm:"foreignKey:InventoryID" json:"inventory"`

	Quantity int `gorm:"type:int;not null" json:"quantity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the RequestItem model
func (RequestItem) TableName() string {
	return "request_items"
}
