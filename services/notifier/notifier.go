package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"church-booking/logger"
	"church-booking/models/notification"
	"church-booking/models/user"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dispatchInterval = 5 * time.Second
	dispatchBatch    = 20
	maxAttempts      = 3
)

// EnqueueEmail writes a pending notification addressed to a single user.
// Called inside the lifecycle transaction so the row commits atomically
// with the status change.
func EnqueueEmail(tx *gorm.DB, eventType, email, subject, body string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := notification.Outbox{
		EventType:      eventType,
		RecipientEmail: &email,
		Subject:        subject,
		Body:           body,
		Payload:        datatypes.JSON(raw),
		Status:         notification.OutboxPending,
	}
	return tx.Create(&row).Error
}

// EnqueueRole writes a pending notification addressed to every active user
// holding the given role. Recipients are resolved at dispatch time.
func EnqueueRole(tx *gorm.DB, eventType, role, subject, body string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := notification.Outbox{
		EventType:     eventType,
		RecipientRole: &role,
		Subject:       subject,
		Body:          body,
		Payload:       datatypes.JSON(raw),
		Status:        notification.OutboxPending,
	}
	return tx.Create(&row).Error
}

// Mailer delivers a rendered message to recipient addresses.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// Publisher emits the domain event to the message broker.
type Publisher interface {
	Publish(eventType string, payload []byte) error
}

// Dispatcher drains pending outbox rows on a fixed interval. Mailer and
// publisher are optional; a nil one is skipped, the other still runs.
type Dispatcher struct {
	DB        *gorm.DB
	Mailer    Mailer
	Publisher Publisher
}

// Run blocks until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil {
				logger.Error("Notification dispatch failed", err)
			}
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	// Without a sink every row would be marked delivered for nothing.
	// Leave the backlog PENDING so it replays once SMTP/AMQP is set up.
	if d.Mailer == nil && d.Publisher == nil {
		return nil
	}

	rows, err := d.claimBatch(ctx)
	if err != nil {
		return err
	}

	for i := range rows {
		d.deliver(ctx, &rows[i])
	}
	return nil
}

// claimBatch flips a batch of PENDING rows to SENDING inside one
// transaction, so the row lock is held until the claim commits and a
// concurrent dispatcher cannot pick up the same rows.
func (d *Dispatcher) claimBatch(ctx context.Context) ([]notification.Outbox, error) {
	var rows []notification.Outbox
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", notification.OutboxPending).
			Order("id").
			Limit(dispatchBatch).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(rows))
		for i := range rows {
			rows[i].Status = notification.OutboxSending
			ids = append(ids, rows[i].ID)
		}
		return tx.Model(&notification.Outbox{}).
			Where("id IN ?", ids).
			Update("status", notification.OutboxSending).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *Dispatcher) deliver(ctx context.Context, row *notification.Outbox) {
	row.Attempts++

	var deliveryErr error
	if d.Mailer != nil {
		recipients, err := d.resolveRecipients(ctx, row)
		if err != nil {
			deliveryErr = err
		} else if len(recipients) > 0 {
			deliveryErr = d.Mailer.Send(recipients, row.Subject, row.Body)
		}
	}
	if deliveryErr == nil && d.Publisher != nil {
		deliveryErr = d.Publisher.Publish(row.EventType, row.Payload)
	}

	if deliveryErr != nil {
		logger.Warning(fmt.Sprintf("Notification %d attempt %d failed: %v", row.ID, row.Attempts, deliveryErr))
		if row.Attempts >= maxAttempts {
			row.Status = notification.OutboxFailed
		} else {
			row.Status = notification.OutboxPending
		}
	} else {
		now := time.Now().UTC()
		row.Status = notification.OutboxSent
		row.SentAt = &now
	}

	if err := d.DB.WithContext(ctx).Save(row).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to update notification %d", row.ID), err)
	}
}

func (d *Dispatcher) resolveRecipients(ctx context.Context, row *notification.Outbox) ([]string, error) {
	if row.RecipientEmail != nil {
		return []string{*row.RecipientEmail}, nil
	}
	if row.RecipientRole == nil {
		return nil, nil
	}

	var emails []string
	err := d.DB.WithContext(ctx).Model(&user.User{}).
		Where("role = ? AND active = ?", *row.RecipientRole, true).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}
