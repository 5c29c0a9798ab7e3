package locations

import (
	"errors"

	"church-booking/logger"
	locationModel "church-booking/models/location"
	"church-booking/types"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LocationController handles bookable-room CRUD.
type LocationController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewLocationController creates a new location controller
func NewLocationController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *LocationController {
	return &LocationController{
		DB:     db,
		Logger: asyncLogger,
	}
}

type locationPayload struct {
	Name        string `json:"name" validate:"required,max=255"`
	Capacity    *int   `json:"capacity" validate:"omitempty,gt=0"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// Index lists rooms. Inactive rooms are hidden unless ?all=true.
func (lc *LocationController) Index(c *fiber.Ctx) error {
	query := lc.DB.Order("name")
	if c.Query("all") != "true" {
		query = query.Where("active = ?", true)
	}

	var locations []locationModel.Location
	if err := query.Find(&locations).Error; err != nil {
		logger.Error("Failed to list locations", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Locations retrieved",
		Data:    locations,
	})
}

// Store creates a room.
func (lc *LocationController) Store(c *fiber.Ctx) error {
	var req locationPayload
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

	loc := locationModel.Location{
		Name:     req.Name,
		Capacity: req.Capacity,
		Active:   true,
	}
	if req.Description != "" {
		loc.Description = &req.Description
	}
	if req.Active != nil {
		loc.Active = *req.Active
	}

	if err := lc.DB.Create(&loc).Error; err != nil {
		logger.Error("Failed to create location", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create location",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Location created",
		Data:    loc,
	})
}

// Update edits a room. Deactivating a room hides it from pickers but does
// not touch existing bookings.
func (lc *LocationController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid location id",
		})
	}

	var req locationPayload
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

	var loc locationModel.Location
	if err := lc.DB.First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Location not found",
			})
		}
		logger.Error("Failed to load location", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	loc.Name = req.Name
	loc.Capacity = req.Capacity
	if req.Description != "" {
		loc.Description = &req.Description
	} else {
		loc.Description = nil
	}
	if req.Active != nil {
		loc.Active = *req.Active
	}

	if err := lc.DB.Save(&loc).Error; err != nil {
		logger.Error("Failed to update location", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update location",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Location updated",
		Data:    loc,
	})
}

// Delete deactivates a room instead of removing it, keeping historical
// bookings resolvable.
func (lc *LocationController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid location id",
		})
	}

	result := lc.DB.Model(&locationModel.Location{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate location", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to deactivate location",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Location not found",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Location deactivated",
	})
}
