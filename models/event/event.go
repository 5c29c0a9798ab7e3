package event

import (
	"time"

	"church-booking/models/user"
)

// Event is a confirmed calendar entry. Events always block their room:
// the conflict detector treats them as EVENT-sourced intervals.
type Event struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Location      string    `gorm:"type:varchar(255);not null;index" json:"location"`
	StartDatetime time.Time `gorm:"not null;index" json:"start_datetime"`
	EndDatetime   time.Time `gorm:"not null" json:"end_datetime"`
	Description   *string   `gorm:"type:text" json:"description,omitempty"`

	CreatedByID uint      `gorm:"not null" json:"created_by_id"`
	CreatedBy   user.User `gorm:"foreignKey:CreatedByID" json:"created_by"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
