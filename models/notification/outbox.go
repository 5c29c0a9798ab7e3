package notification

import (
	"time"

	"gorm.io/datatypes"
)

// Outbox delivery states
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	// SENDING marks a row claimed by a dispatcher; it goes back to PENDING
	// when delivery fails with attempts left.
	OutboxSending OutboxStatus = "SENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// Domain event types written by the request lifecycle.
const (
	EventRequestCreated  = "request.created"
	EventRequestApproved = "request.approved"
	EventRequestRejected = "request.rejected"
	EventRequestExecuted = "request.executed"
	EventRequestFinished = "request.finished"
)

// Outbox is a pending notification. Rows are written in the same
// transaction as the lifecycle change; a dispatcher delivers them later so
// that mail-provider availability never blocks a status transition.
type Outbox struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	EventType string `gorm:"type:varchar(50);not null;index" json:"event_type"`

	// Either a direct recipient address or a role whose active users all
	// receive the message. Exactly one should be set.
	RecipientEmail *string `gorm:"type:varchar(255)" json:"recipient_email,omitempty"`
	RecipientRole  *string `gorm:"type:varchar(20)" json:"recipient_role,omitempty"`

	Subject string `gorm:"type:varchar(255);not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`

	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`

	Status   OutboxStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	Attempts int          `gorm:"type:int;not null;default:0" json:"attempts"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// TableName sets the table name for the Outbox model
func (Outbox) TableName() string {
	return "notification_outboxes"
}
