package requests

import (
	"errors"
	"fmt"

	"church-booking/constants"
	"church-booking/logger"
	"church-booking/middleware"
	requestModel "church-booking/models/request"
	"church-booking/scheduling"
	"church-booking/services/lifecycle"
	"church-booking/types"
	requestTypes "church-booking/types/request"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// RequestController handles booking-request HTTP requests. Lifecycle
// mutations go through the service so handlers stay free of transaction
// logic.
type RequestController struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Service lifecycle.Service
}

// NewRequestController creates a new request controller
func NewRequestController(db *gorm.DB, asyncLogger *logger.AsyncLogger, svc lifecycle.Service) *RequestController {
	return &RequestController{
		DB:      db,
		Logger:  asyncLogger,
		Service: svc,
	}
}

// Store creates a new booking request after running the conflict check.
func (rc *RequestController) Store(c *fiber.Ctx) error {
	var req requestTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed",
			Fields:  fields,
		})
	}

	start, err := scheduling.ParseTimestamp(req.StartDatetime)
	if err != nil {
		return badTimestamp(c, "start_datetime")
	}
	end, err := scheduling.ParseTimestamp(req.EndDatetime)
	if err != nil {
		return badTimestamp(c, "end_datetime")
	}

	callerID, err := middleware.CallerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	in := lifecycle.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		Start:            start,
		End:              end,
		ExpectedAudience: req.ExpectedAudience,
		Priority:         req.Priority,
		Supplier:         req.Supplier,
		DepartmentID:     req.DepartmentID,
		EventID:          req.EventID,
		RequesterID:      callerID,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, lifecycle.ItemLine{
			InventoryID: item.InventoryID,
			Quantity:    item.Quantity,
		})
	}

	created, report, err := rc.Service.Create(c.Context(), in)
	if err != nil {
		return rc.lifecycleError(c, err, report)
	}

	message := "Request created"
	if created.Status == requestModel.StatusPendingConflict {
		message = "Request created with a scheduling conflict pending review"
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:   fiber.StatusCreated,
		Message:  message,
		Conflict: created.Status == requestModel.StatusPendingConflict,
		Data: fiber.Map{
			"request":         created,
			"conflict_report": report,
		},
	})
}

// Index lists requests. Members only see their own; staff roles see all.
func (rc *RequestController) Index(c *fiber.Ctx) error {
	query := rc.DB.
		Preload("Requester").
		Preload("Department").
		Preload("Items").
		Preload("Items.Inventory").
		Order("start_datetime DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	if middleware.CallerRole(c) == constants.RoleMember {
		callerID, err := middleware.CallerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid user claims",
			})
		}
		query = query.Where("requester_id = ?", callerID)
	}

	var requests []requestModel.Request
	if err := query.Find(&requests).Error; err != nil {
		logger.Error("Failed to list requests", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Requests retrieved",
		Data:    requests,
	})
}

// CalendarApproved lists requests that occupy calendar slots.
func (rc *RequestController) CalendarApproved(c *fiber.Ctx) error {
	var requests []requestModel.Request
	err := rc.DB.
		Where("status IN ?", []requestModel.Status{
			requestModel.StatusApproved,
			requestModel.StatusExecuted,
			requestModel.StatusFinished,
		}).
		Order("start_datetime").
		Find(&requests).Error
	if err != nil {
		logger.Error("Failed to load approved calendar", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Approved requests retrieved",
		Data:    requests,
	})
}

// Show returns one request with its items and audit trail.
func (rc *RequestController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badID(c)
	}

	var req requestModel.Request
	err = rc.DB.
		Preload("Requester").
		Preload("Department").
		Preload("Event").
		Preload("Items").
		Preload("Items.Inventory").
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load request", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var history []requestModel.RequestStatusEvent
	if err := rc.DB.Where("request_id = ?", req.ID).Order("id").Find(&history).Error; err != nil {
		logger.Error("Failed to load request history", err)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request retrieved",
		Data: fiber.Map{
			"request": req,
			"history": history,
		},
	})
}

// Update edits a request that is still pending. Changing the window or room
// re-runs the conflict check through a delete-free path: the handler only
// updates fields, the next approval re-checks anyway.
func (rc *RequestController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badID(c)
	}

	var payload requestTypes.UpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if fields := utils.ValidateStruct(payload); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed",
			Fields:  fields,
		})
	}

	var req requestModel.Request
	if err := rc.DB.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load request", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if !rc.callerOwnsOrAdmin(c, &req) {
		return forbidden(c)
	}
	if req.Status != requestModel.StatusPending && req.Status != requestModel.StatusPendingConflict {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot edit a request in status %s", req.Status),
		})
	}

	if payload.Title != nil {
		req.Title = *payload.Title
	}
	if payload.Description != nil {
		req.Description = payload.Description
	}
	if payload.Location != nil {
		req.Location = *payload.Location
	}
	if payload.StartDatetime != nil {
		start, err := scheduling.ParseTimestamp(*payload.StartDatetime)
		if err != nil {
			return badTimestamp(c, "start_datetime")
		}
		req.StartDatetime = start
	}
	if payload.EndDatetime != nil {
		end, err := scheduling.ParseTimestamp(*payload.EndDatetime)
		if err != nil {
			return badTimestamp(c, "end_datetime")
		}
		req.EndDatetime = end
	}
	if payload.ExpectedAudience != nil {
		req.ExpectedAudience = payload.ExpectedAudience
	}
	if payload.Priority != nil {
		req.Priority = payload.Priority
	}

	if !req.StartDatetime.Before(req.EndDatetime) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "start_datetime must be before end_datetime",
		})
	}
	req.Date = now.With(req.StartDatetime.UTC()).BeginningOfDay()

	if err := rc.DB.Save(&req).Error; err != nil {
		logger.Error("Failed to update request", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update request",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request updated",
		Data:    req,
	})
}

// Delete removes a request that never reached approval.
func (rc *RequestController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badID(c)
	}

	var req requestModel.Request
	if err := rc.DB.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load request", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if !rc.callerOwnsOrAdmin(c, &req) {
		return forbidden(c)
	}
	if !req.Status.CanBeDeleted() {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot delete a request in status %s", req.Status),
		})
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", req.ID).Delete(&requestModel.RequestItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("request_id = ?", req.ID).Delete(&requestModel.RequestStatusEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&req).Error
	})
	if err != nil {
		logger.Error("Failed to delete request", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete request",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request deleted",
	})
}

// Approve transitions a pending request to APPROVED, or flags it for review
// when the slot has a gap conflict.
func (rc *RequestController) Approve(c *fiber.Ctx) error {
	id, callerID, errResp := rc.idAndCaller(c)
	if errResp != nil {
		return errResp(c)
	}

	req, report, err := rc.Service.Approve(c.Context(), id, callerID)
	if err != nil {
		return rc.lifecycleError(c, err, report)
	}

	if req.Status == requestModel.StatusPendingConflict {
		return c.JSON(types.ApiResponse{
			Status:   fiber.StatusOK,
			Message:  "Request flagged for review: insufficient gap to an adjacent booking",
			Conflict: true,
			Data: fiber.Map{
				"request":         req,
				"conflict_report": report,
			},
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request approved",
		Data:    req,
	})
}

// Reject transitions a pending request to REJECTED with a mandatory reason.
func (rc *RequestController) Reject(c *fiber.Ctx) error {
	id, callerID, errResp := rc.idAndCaller(c)
	if errResp != nil {
		return errResp(c)
	}

	var payload requestTypes.RejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if fields := utils.ValidateStruct(payload); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Rejection reason is required",
			Fields:  fields,
		})
	}

	req, err := rc.Service.Reject(c.Context(), id, callerID, payload.Reason)
	if err != nil {
		return rc.lifecycleError(c, err, nil)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request rejected",
		Data:    req,
	})
}

// Execute marks an approved request as carried out.
func (rc *RequestController) Execute(c *fiber.Ctx) error {
	id, callerID, errResp := rc.idAndCaller(c)
	if errResp != nil {
		return errResp(c)
	}

	req, err := rc.Service.Execute(c.Context(), id, callerID)
	if err != nil {
		return rc.lifecycleError(c, err, nil)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request executed",
		Data:    req,
	})
}

// Finish closes an executed request and returns non-consumable items to
// stock.
func (rc *RequestController) Finish(c *fiber.Ctx) error {
	id, callerID, errResp := rc.idAndCaller(c)
	if errResp != nil {
		return errResp(c)
	}

	req, err := rc.Service.Finish(c.Context(), id, callerID)
	if err != nil {
		return rc.lifecycleError(c, err, nil)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request finished, instruments returned",
		Data:    req,
	})
}

// ReturnInstruments is the explicit instrument-return endpoint. It shares
// the finish transition: stock comes back when the request closes.
func (rc *RequestController) ReturnInstruments(c *fiber.Ctx) error {
	return rc.Finish(c)
}

func (rc *RequestController) idAndCaller(c *fiber.Ctx) (uint, uint, fiber.Handler) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, 0, badID
	}
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return 0, 0, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid user claims",
			})
		}
	}
	return uint(id), callerID, nil
}

func (rc *RequestController) callerOwnsOrAdmin(c *fiber.Ctx, req *requestModel.Request) bool {
	if middleware.CallerRole(c) == constants.RoleAdmin {
		return true
	}
	callerID, err := middleware.CallerID(c)
	return err == nil && callerID == req.RequesterID
}

// lifecycleError maps service errors onto the failure taxonomy.
func (rc *RequestController) lifecycleError(c *fiber.Ctx, err error, report *scheduling.Report) error {
	switch {
	case errors.Is(err, lifecycle.ErrDirectConflict):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:   fiber.StatusBadRequest,
			Message:  "Time slot directly overlaps an existing booking",
			Conflict: true,
			Data:     report,
		})
	case errors.Is(err, lifecycle.ErrRequestNotFound):
		return notFound(c)
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrInvalidWindow),
		errors.Is(err, lifecycle.ErrItemNotFound),
		errors.Is(err, lifecycle.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		logger.Error("Request lifecycle operation failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid request id",
	})
}

func badTimestamp(c *fiber.Ctx, field string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid timestamp",
		Fields:  []string{field},
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: "Request not found",
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
		Status:  fiber.StatusForbidden,
		Message: "Insufficient permissions",
	})
}
