package request

import (
	"time"
)

// RequestStatusEvent records one lifecycle transition of a request.
type RequestStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	RequestID uint    `gorm:"not null;index" json:"request_id"`
	Request   Request `gorm:"foreignKey:RequestID" json:"request"`

	Status    Status    `gorm:"type:varchar(20);not null" json:"status"`
	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the RequestStatusEvent model
func (RequestStatusEvent) TableName() string {
	return "request_status_events"
}
