package request

import (
	"time"

	"church-booking/models/department"
	"church-booking/models/event"
	"church-booking/models/user"
)

// Request is a booking request for a room/time window, optionally with
// inventory line items. Status transitions are the only lifecycle.
type Request struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	Location      string    `gorm:"type:varchar(255);not null;index" json:"location"`
	Date          time.Time `gorm:"type:date;not null;index" json:"date"`
	StartDatetime time.Time `gorm:"not null" json:"start_datetime"`
	EndDatetime   time.Time `gorm:"not null" json:"end_datetime"`

	ExpectedAudience *string `gorm:"type:varchar(100)" json:"expected_audience,omitempty"`
	Priority         *string `gorm:"type:varchar(20)" json:"priority,omitempty"`
	Supplier         *string `gorm:"type:varchar(255)" json:"supplier,omitempty"`

	Status Status `gorm:"type:varchar(20);not null;index" json:"status"`

	RequesterID uint      `gorm:"not null;index" json:"requester_id"`
	Requester   user.User `gorm:"foreignKey:RequesterID" json:"requester"`

	DepartmentID *uint                  `gorm:"index" json:"department_id,omitempty"`
	Department   *department.Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	EventID *uint        `gorm:"index" json:"event_id,omitempty"`
	Event   *event.Event `gorm:"foreignKey:EventID" json:"event,omitempty"`

	ApprovedByID *uint      `gorm:"index" json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ExecutedByID *uint      `gorm:"index" json:"executed_by_id,omitempty"`
	ExecutedAt   *time.Time `json:"executed_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`

	RejectionReason *string `gorm:"type:text" json:"rejection_reason,omitempty"`

	Items []RequestItem `gorm:"foreignKey:RequestID" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
