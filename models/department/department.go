package department

import (
	"time"

	"church-booking/models/user"
)

// Department groups users for reporting and request attribution.
type Department struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null;unique" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	LeaderID *uint      `gorm:"index" json:"leader_id,omitempty"`
	Leader   *user.User `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
