package inventory

import (
	"time"

	"church-booking/models/user"
)

// History actions
const (
	ActionCreated     = "CREATED"
	ActionUpdated     = "UPDATED"
	ActionDeleted     = "DELETED"
	ActionReservation = "RESERVATION"
	ActionConsumption = "CONSUMPTION"
	ActionReturn      = "RETURN"
	ActionStatus      = "STATUS_CHANGE"
)

// History is one audit row for an inventory mutation.
type History struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	InventoryID uint `gorm:"not null;index" json:"inventory_id"`
	Inventory   Item `gorm:"foreignKey:InventoryID" json:"inventory"`

	UserID uint      `gorm:"not null" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Action string `gorm:"type:varchar(30);not null" json:"action"`

	PreviousStatus   *ItemStatus `gorm:"type:varchar(20)" json:"previous_status,omitempty"`
	NewStatus        *ItemStatus `gorm:"type:varchar(20)" json:"new_status,omitempty"`
	PreviousQuantity *int        `gorm:"type:int" json:"previous_quantity,omitempty"`
	NewQuantity      *int        `gorm:"type:int" json:"new_quantity,omitempty"`

	Note *string `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the History model
func (History) TableName() string {
	return "inventory_histories"
}
