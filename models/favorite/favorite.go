package favorite

import (
	"time"

	"church-booking/models/request"
	"church-booking/models/user"
)

// Favorite is a per-user bookmark on a booking request, optionally renamed
// by the owner. A user can favorite a request at most once.
type Favorite struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_request" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	RequestID uint            `gorm:"not null;uniqueIndex:idx_favorites_user_request" json:"request_id"`
	Request   request.Request `gorm:"foreignKey:RequestID" json:"request"`

	CustomName  string  `gorm:"type:varchar(255);not null" json:"custom_name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Favorite model
func (Favorite) TableName() string {
	return "favorites"
}
