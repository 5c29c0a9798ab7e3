package events

import (
	"errors"

	"church-booking/logger"
	"church-booking/middleware"
	eventModel "church-booking/models/event"
	"church-booking/scheduling"
	"church-booking/types"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EventController handles confirmed calendar entries. Events block their
// room in every conflict check, so only staff roles may write them.
type EventController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewEventController creates a new event controller
func NewEventController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *EventController {
	return &EventController{
		DB:     db,
		Logger: asyncLogger,
	}
}

type createEventRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Location      string `json:"location" validate:"required,max=255"`
	StartDatetime string `json:"start_datetime" validate:"required"`
	EndDatetime   string `json:"end_datetime" validate:"required"`
	Description   string `json:"description"`
}

type updateEventRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=255"`
	Location      *string `json:"location" validate:"omitempty,max=255"`
	StartDatetime *string `json:"start_datetime"`
	EndDatetime   *string `json:"end_datetime"`
	Description   *string `json:"description"`
}

// Index lists events, optionally filtered by location.
func (ec *EventController) Index(c *fiber.Ctx) error {
	query := ec.DB.Preload("CreatedBy").Order("start_datetime")
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var events []eventModel.Event
	if err := query.Find(&events).Error; err != nil {
		logger.Error("Failed to list events", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Events retrieved",
		Data:    events,
	})
}

// Show returns one event.
func (ec *EventController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badEventID(c)
	}

	var ev eventModel.Event
	if err := ec.DB.Preload("CreatedBy").First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eventNotFound(c)
		}
		logger.Error("Failed to load event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Event retrieved",
		Data:    ev,
	})
}

// Store creates a confirmed event.
func (ec *EventController) Store(c *fiber.Ctx) error {
	var req createEventRequest
	if err := c.BodyParser(&req); err != nil {
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
		return badEventTimestamp(c, "start_datetime")
	}
	end, err := scheduling.ParseTimestamp(req.EndDatetime)
	if err != nil {
		return badEventTimestamp(c, "end_datetime")
	}
	if !start.Before(end) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "start_datetime must be before end_datetime",
		})
	}

	callerID, err := middleware.CallerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	ev := eventModel.Event{
		Name:          req.Name,
		Location:      req.Location,
		StartDatetime: start,
		EndDatetime:   end,
		CreatedByID:   callerID,
	}
	if req.Description != "" {
		ev.Description = &req.Description
	}

	if err := ec.DB.Create(&ev).Error; err != nil {
		logger.Error("Failed to create event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create event",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Event created",
		Data:    ev,
	})
}

// Update edits an event.
func (ec *EventController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badEventID(c)
	}

	var req updateEventRequest
	if err := c.BodyParser(&req); err != nil {
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

	var ev eventModel.Event
	if err := ec.DB.First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eventNotFound(c)
		}
		logger.Error("Failed to load event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if req.Name != nil {
		ev.Name = *req.Name
	}
	if req.Location != nil {
		ev.Location = *req.Location
	}
	if req.StartDatetime != nil {
		start, err := scheduling.ParseTimestamp(*req.StartDatetime)
		if err != nil {
			return badEventTimestamp(c, "start_datetime")
		}
		ev.StartDatetime = start
	}
	if req.EndDatetime != nil {
		end, err := scheduling.ParseTimestamp(*req.EndDatetime)
		if err != nil {
			return badEventTimestamp(c, "end_datetime")
		}
		ev.EndDatetime = end
	}
	if req.Description != nil {
		ev.Description = req.Description
	}
	if !ev.StartDatetime.Before(ev.EndDatetime) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "start_datetime must be before end_datetime",
		})
	}

	if err := ec.DB.Save(&ev).Error; err != nil {
		logger.Error("Failed to update event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update event",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Event updated",
		Data:    ev,
	})
}

// Delete removes an event.
func (ec *EventController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badEventID(c)
	}

	result := ec.DB.Delete(&eventModel.Event{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete event", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete event",
		})
	}
	if result.RowsAffected == 0 {
		return eventNotFound(c)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Event deleted",
	})
}

func badEventID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid event id",
	})
}

func badEventTimestamp(c *fiber.Ctx, field string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid timestamp",
		Fields:  []string{field},
	})
}

func eventNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: "Event not found",
	})
}
