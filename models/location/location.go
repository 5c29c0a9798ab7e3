package location

import (
	"time"
)

// Location is a bookable room or space. Conflict checks match requests and
// events by location name.
type Location struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null;unique" json:"name"`
	Capacity    *int    `gorm:"type:int" json:"capacity,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Active      bool    `gorm:"type:bool;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
