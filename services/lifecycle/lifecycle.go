package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"church-booking/constants"
	"church-booking/models/event"
	"church-booking/models/inventory"
	"church-booking/models/notification"
	"church-booking/models/request"
	"church-booking/models/user"
	"church-booking/scheduling"
	"church-booking/services/notifier"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRequestNotFound   = errors.New("request not found")
	ErrInvalidTransition = errors.New("request status does not allow this transition")
	ErrDirectConflict    = errors.New("requested time slot directly overlaps an existing booking")
	ErrInvalidWindow     = errors.New("start time must be before end time")
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrInsufficientStock = errors.New("insufficient inventory quantity")
)

// ItemLine is one requested inventory line item.
type ItemLine struct {
	InventoryID uint
	Quantity    int
}

// CreateInput carries a validated create payload into the service.
type CreateInput struct {
	Title            string
	Description      string
	Location         string
	Start            time.Time
	End              time.Time
	ExpectedAudience string
	Priority         string
	Supplier         string
	DepartmentID     *uint
	EventID          *uint
	RequesterID      uint
	Items            []ItemLine
}

// Service orchestrates the request lifecycle. Every mutation runs inside a
// transaction with row locks, so a conflict check and the write it guards
// cannot be interleaved by a concurrent caller.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*request.Request, *scheduling.Report, error)
	Approve(ctx context.Context, id, approverID uint) (*request.Request, *scheduling.Report, error)
	Reject(ctx context.Context, id, actorID uint, reason string) (*request.Request, error)
	Execute(ctx context.Context, id, executorID uint) (*request.Request, error)
	Finish(ctx context.Context, id, actorID uint) (*request.Request, error)
	CheckConflicts(ctx context.Context, location string, start, end time.Time) (*scheduling.Report, error)
}

type service struct {
	db  *gorm.DB
	cfg scheduling.Config
}

func NewService(db *gorm.DB, cfg scheduling.Config) Service {
	return &service{db: db, cfg: cfg}
}

// blocking request statuses: a booking in one of these states holds its
// room slot against newcomers.
var blockingStatuses = []request.Status{
	request.StatusApproved,
	request.StatusExecuted,
	request.StatusFinished,
}

// blockingIntervals loads every interval that occupies the candidate's
// room on the candidate's calendar day: confirmed events plus requests in a
// blocking status. Request rows are locked so a concurrent approval cannot
// slip between the check and the write.
func (s *service) blockingIntervals(tx *gorm.DB, location string, at time.Time, excludeRequestID uint, lock bool) ([]scheduling.Interval, error) {
	dayStart := now.With(at.UTC()).BeginningOfDay()
	dayEnd := dayStart.Add(24 * time.Hour)

	var intervals []scheduling.Interval

	var events []event.Event
	if err := tx.
		Where("location = ? AND start_datetime < ? AND end_datetime > ?", location, dayEnd, dayStart).
		Find(&events).Error; err != nil {
		return nil, err
	}
	for _, ev := range events {
		intervals = append(intervals, scheduling.Interval{
			Location: ev.Location,
			Start:    ev.StartDatetime.UTC(),
			End:      ev.EndDatetime.UTC(),
			Label:    ev.Name,
			Source:   scheduling.SourceEvent,
		})
	}

	q := tx.Where("location = ? AND date >= ? AND date < ? AND status IN ?",
		location, dayStart, dayEnd, blockingStatuses)
	if excludeRequestID != 0 {
		q = q.Where("id <> ?", excludeRequestID)
	}
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var requests []request.Request
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	for _, r := range requests {
		intervals = append(intervals, scheduling.Interval{
			Location: r.Location,
			Start:    r.StartDatetime.UTC(),
			End:      r.EndDatetime.UTC(),
			Label:    r.Title,
			Source:   scheduling.SourceRequest,
			Status:   r.Status.String(),
		})
	}

	return intervals, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*request.Request, *scheduling.Report, error) {
	if !in.Start.Before(in.End) {
		return nil, nil, ErrInvalidWindow
	}

	var created *request.Request
	var report scheduling.Report

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		intervals, err := s.blockingIntervals(tx, in.Location, in.Start, 0, true)
		if err != nil {
			return err
		}

		candidate := scheduling.Interval{
			Location: in.Location,
			Start:    in.Start.UTC(),
			End:      in.End.UTC(),
			Label:    in.Title,
			Source:   scheduling.SourceRequest,
		}
		report = scheduling.CheckConflicts(candidate, intervals, s.cfg)
		if report.HasDirectConflict {
			return ErrDirectConflict
		}

		// Validate stock before inserting anything, under lock. This
		// replaces the old insert-then-compensating-delete behavior.
		for _, line := range in.Items {
			var item inventory.Item
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, line.InventoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: id %d", ErrItemNotFound, line.InventoryID)
				}
				return err
			}
			if item.QuantityAvailable < line.Quantity {
				return fmt.Errorf("%w: %s has %d available, %d requested",
					ErrInsufficientStock, item.Name, item.QuantityAvailable, line.Quantity)
			}
		}

		status := request.StatusPending
		if report.HasGapConflict {
			status = request.StatusPendingConflict
		}

		req := &request.Request{
			Title:         in.Title,
			Location:      in.Location,
			Date:          now.With(in.Start.UTC()).BeginningOfDay(),
			StartDatetime: in.Start.UTC(),
			EndDatetime:   in.End.UTC(),
			Status:        status,
			RequesterID:   in.RequesterID,
			DepartmentID:  in.DepartmentID,
			EventID:       in.EventID,
		}
		if in.Description != "" {
			req.Description = &in.Description
		}
		if in.ExpectedAudience != "" {
			req.ExpectedAudience = &in.ExpectedAudience
		}
		if in.Priority != "" {
			req.Priority = &in.Priority
		}
		if in.Supplier != "" {
			req.Supplier = &in.Supplier
		}

		if err := tx.Create(req).Error; err != nil {
			return err
		}
		for _, line := range in.Items {
			item := request.RequestItem{
				RequestID:   req.ID,
				InventoryID: line.InventoryID,
				Quantity:    line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		if err := recordStatusEvent(tx, req.ID, status, in.RequesterID, nil); err != nil {
			return err
		}

		if err := notifier.EnqueueRole(tx, notification.EventRequestCreated, constants.RolePastor,
			"New booking request",
			fmt.Sprintf("Request #%d (%s) for %s is awaiting review.", req.ID, req.Title, req.Location),
			requestPayload(req)); err != nil {
			return err
		}

		created = req
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrDirectConflict) {
			return nil, &report, err
		}
		return nil, nil, err
	}
	return created, &report, nil
}

func (s *service) Approve(ctx context.Context, id, approverID uint) (*request.Request, *scheduling.Report, error) {
	var approved *request.Request
	var report scheduling.Report

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req request.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if !req.Status.CanBeApproved() {
			return fmt.Errorf("%w: status is %s", ErrInvalidTransition, req.Status)
		}

		intervals, err := s.blockingIntervals(tx, req.Location, req.StartDatetime, req.ID, true)
		if err != nil {
			return err
		}
		candidate := scheduling.Interval{
			Location: req.Location,
			Start:    req.StartDatetime.UTC(),
			End:      req.EndDatetime.UTC(),
			Label:    req.Title,
			Source:   scheduling.SourceRequest,
			Status:   req.Status.String(),
		}
		report = scheduling.CheckConflicts(candidate, intervals, s.cfg)

		if report.HasDirectConflict {
			// Approval refused, status untouched.
			return ErrDirectConflict
		}

		if report.HasGapConflict {
			// Soft conflict: flag for human review instead of approving.
			if req.Status != request.StatusPendingConflict {
				req.Status = request.StatusPendingConflict
				if err := tx.Save(&req).Error; err != nil {
					return err
				}
				if err := recordStatusEvent(tx, req.ID, req.Status, approverID, nil); err != nil {
					return err
				}
			}
			approved = &req
			return nil
		}

		nowTime := time.Now().UTC()
		req.Status = request.StatusApproved
		req.ApprovedByID = &approverID
		req.ApprovedAt = &nowTime
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		if err := recordStatusEvent(tx, req.ID, req.Status, approverID, nil); err != nil {
			return err
		}

		if err := s.reserveInventory(tx, &req, approverID); err != nil {
			return err
		}
		if err := s.cascadeRejectOverlapping(tx, &req, approverID); err != nil {
			return err
		}

		if err := s.notifyRequester(tx, &req, notification.EventRequestApproved,
			"Booking request approved",
			fmt.Sprintf("Your request #%d (%s) was approved.", req.ID, req.Title)); err != nil {
			return err
		}

		approved = &req
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrDirectConflict) {
			return nil, &report, err
		}
		return nil, nil, err
	}
	return approved, &report, nil
}

// reserveInventory decrements availability for every line item, clamped at
// zero, and recomputes the derived item status.
func (s *service) reserveInventory(tx *gorm.DB, req *request.Request, actorID uint) error {
	var lines []request.RequestItem
	if err := tx.Where("request_id = ?", req.ID).Find(&lines).Error; err != nil {
		return err
	}

	for _, line := range lines {
		var item inventory.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, line.InventoryID).Error; err != nil {
			return err
		}

		prevQty := item.QuantityAvailable
		prevStatus := item.Status
		item.QuantityAvailable = max(0, item.QuantityAvailable-line.Quantity)
		item.RecomputeStatus()
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		if err := recordInventoryHistory(tx, &item, actorID, inventory.ActionReservation,
			prevStatus, prevQty, fmt.Sprintf("reserved for request #%d", req.ID)); err != nil {
			return err
		}
	}
	return nil
}

// cascadeRejectOverlapping rejects every other pending request at the same
// room/date whose interval directly overlaps the newly approved one.
func (s *service) cascadeRejectOverlapping(tx *gorm.DB, approved *request.Request, actorID uint) error {
	dayStart := now.With(approved.StartDatetime.UTC()).BeginningOfDay()
	dayEnd := dayStart.Add(24 * time.Hour)

	var competitors []request.Request
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("location = ? AND date >= ? AND date < ? AND status IN ? AND id <> ?",
			approved.Location, dayStart, dayEnd,
			[]request.Status{request.StatusPending, request.StatusPendingConflict},
			approved.ID).
		Find(&competitors).Error; err != nil {
		return err
	}

	winner := scheduling.Interval{
		Location: approved.Location,
		Start:    approved.StartDatetime.UTC(),
		End:      approved.EndDatetime.UTC(),
	}

	for i := range competitors {
		comp := &competitors[i]
		loser := scheduling.Interval{
			Location: comp.Location,
			Start:    comp.StartDatetime.UTC(),
			End:      comp.EndDatetime.UTC(),
		}
		if !winner.Overlaps(loser) {
			continue
		}

		reason := fmt.Sprintf("time slot assigned to request #%d", approved.ID)
		comp.Status = request.StatusRejected
		comp.RejectionReason = &reason
		comp.ApprovedByID = &actorID
		if err := tx.Save(comp).Error; err != nil {
			return err
		}
		if err := recordStatusEvent(tx, comp.ID, comp.Status, actorID, &reason); err != nil {
			return err
		}
		if err := s.notifyRequester(tx, comp, notification.EventRequestRejected,
			"Booking request rejected",
			fmt.Sprintf("Your request #%d (%s) was rejected: %s.", comp.ID, comp.Title, reason)); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Reject(ctx context.Context, id, actorID uint, reason string) (*request.Request, error) {
	var rejected *request.Request

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req request.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if !req.Status.CanBeRejected() {
			return fmt.Errorf("%w: status is %s", ErrInvalidTransition, req.Status)
		}

		req.Status = request.StatusRejected
		req.RejectionReason = &reason
		req.ApprovedByID = &actorID
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		if err := recordStatusEvent(tx, req.ID, req.Status, actorID, &reason); err != nil {
			return err
		}
		if err := s.notifyRequester(tx, &req, notification.EventRequestRejected,
			"Booking request rejected",
			fmt.Sprintf("Your request #%d (%s) was rejected: %s.", req.ID, req.Title, reason)); err != nil {
			return err
		}

		rejected = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *service) Execute(ctx context.Context, id, executorID uint) (*request.Request, error) {
	var executed *request.Request

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req request.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if !req.Status.CanBeExecuted() {
			return fmt.Errorf("%w: status is %s", ErrInvalidTransition, req.Status)
		}

		nowTime := time.Now().UTC()
		req.Status = request.StatusExecuted
		req.ExecutedByID = &executorID
		req.ExecutedAt = &nowTime
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		if err := recordStatusEvent(tx, req.ID, req.Status, executorID, nil); err != nil {
			return err
		}

		// Consumables are used up at execution, on top of the reservation.
		var lines []request.RequestItem
		if err := tx.Where("request_id = ?", req.ID).Find(&lines).Error; err != nil {
			return err
		}
		for _, line := range lines {
			var item inventory.Item
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, line.InventoryID).Error; err != nil {
				return err
			}

			prevQty := item.QuantityAvailable
			prevStatus := item.Status
			if item.Consumable {
				item.QuantityAvailable = max(0, item.QuantityAvailable-line.Quantity)
			}
			item.LastUsedDate = &nowTime
			item.RecomputeStatus()
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			if item.Consumable {
				if err := recordInventoryHistory(tx, &item, executorID, inventory.ActionConsumption,
					prevStatus, prevQty, fmt.Sprintf("consumed by request #%d", req.ID)); err != nil {
					return err
				}
			}
		}

		if err := s.notifyRequester(tx, &req, notification.EventRequestExecuted,
			"Booking request executed",
			fmt.Sprintf("Your request #%d (%s) was executed.", req.ID, req.Title)); err != nil {
			return err
		}

		executed = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return executed, nil
}

func (s *service) Finish(ctx context.Context, id, actorID uint) (*request.Request, error) {
	var finished *request.Request

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req request.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if !req.Status.CanBeFinished() {
			return fmt.Errorf("%w: status is %s", ErrInvalidTransition, req.Status)
		}

		nowTime := time.Now().UTC()
		req.Status = request.StatusFinished
		req.FinishedAt = &nowTime
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		if err := recordStatusEvent(tx, req.ID, req.Status, actorID, nil); err != nil {
			return err
		}

		// Instruments come back; consumables stay consumed.
		var lines []request.RequestItem
		if err := tx.Where("request_id = ?", req.ID).Find(&lines).Error; err != nil {
			return err
		}
		for _, line := range lines {
			var item inventory.Item
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, line.InventoryID).Error; err != nil {
				return err
			}
			if item.Consumable {
				continue
			}

			prevQty := item.QuantityAvailable
			prevStatus := item.Status
			item.QuantityAvailable = min(item.QuantityTotal, item.QuantityAvailable+line.Quantity)
			item.RecomputeStatus()
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			if err := recordInventoryHistory(tx, &item, actorID, inventory.ActionReturn,
				prevStatus, prevQty, fmt.Sprintf("returned by request #%d", req.ID)); err != nil {
				return err
			}
		}

		if err := s.notifyRequester(tx, &req, notification.EventRequestFinished,
			"Booking request finished",
			fmt.Sprintf("Your request #%d (%s) is finished and instruments were returned.", req.ID, req.Title)); err != nil {
			return err
		}

		finished = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finished, nil
}

// CheckConflicts runs the detector without writing anything. Used by the
// standalone check endpoints.
func (s *service) CheckConflicts(ctx context.Context, location string, start, end time.Time) (*scheduling.Report, error) {
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}

	intervals, err := s.blockingIntervals(s.db.WithContext(ctx), location, start, 0, false)
	if err != nil {
		return nil, err
	}
	candidate := scheduling.Interval{
		Location: location,
		Start:    start.UTC(),
		End:      end.UTC(),
		Label:    "candidate",
		Source:   scheduling.SourceRequest,
	}
	report := scheduling.CheckConflicts(candidate, intervals, s.cfg)
	return &report, nil
}

func (s *service) notifyRequester(tx *gorm.DB, req *request.Request, eventType, subject, body string) error {
	var requester user.User
	if err := tx.First(&requester, req.RequesterID).Error; err != nil {
		return err
	}
	return notifier.EnqueueEmail(tx, eventType, requester.Email, subject, body, requestPayload(req))
}

func recordStatusEvent(tx *gorm.DB, requestID uint, status request.Status, actorID uint, note *string) error {
	ev := request.RequestStatusEvent{
		RequestID: requestID,
		Status:    status,
		Note:      note,
		CreatedBy: actorID,
	}
	return tx.Create(&ev).Error
}

func recordInventoryHistory(tx *gorm.DB, item *inventory.Item, actorID uint, action string,
	prevStatus inventory.ItemStatus, prevQty int, note string) error {
	newStatus := item.Status
	newQty := item.QuantityAvailable
	h := inventory.History{
		InventoryID:      item.ID,
		UserID:           actorID,
		Action:           action,
		PreviousStatus:   &prevStatus,
		NewStatus:        &newStatus,
		PreviousQuantity: &prevQty,
		NewQuantity:      &newQty,
		Note:             &note,
	}
	return tx.Create(&h).Error
}

func requestPayload(req *request.Request) map[string]interface{} {
	return map[string]interface{}{
		"request_id": req.ID,
		"title":      req.Title,
		"location":   req.Location,
		"start":      req.StartDatetime,
		"end":        req.EndDatetime,
		"status":     req.Status,
	}
}
