package favorites

import (
	"errors"

	"church-booking/logger"
	"church-booking/middleware"
	favoriteModel "church-booking/models/favorite"
	requestModel "church-booking/models/request"
	"church-booking/types"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FavoriteController handles per-user request bookmarks. All operations
// are scoped to the authenticated caller; there is no cross-user access.
type FavoriteController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewFavoriteController creates a new favorite controller
func NewFavoriteController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *FavoriteController {
	return &FavoriteController{
		DB:     db,
		Logger: asyncLogger,
	}
}

type addFavoriteRequest struct {
	RequestID   uint   `json:"request_id" validate:"required"`
	CustomName  string `json:"custom_name" validate:"omitempty,max=255"`
	Description string `json:"description"`
}

// Store bookmarks a request for the caller. The custom name falls back to
// the request title when omitted.
func (fc *FavoriteController) Store(c *fiber.Ctx) error {
	var req addFavoriteRequest
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

	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	var booking requestModel.Request
	if err := fc.DB.First(&booking, req.RequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Request not found",
			})
		}
		logger.Error("Failed to load request for favorite", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var existing favoriteModel.Favorite
	err = fc.DB.Where("user_id = ? AND request_id = ?", callerID, req.RequestID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Request is already in favorites",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing favorite", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	name := req.CustomName
	if name == "" {
		name = booking.Title
	}
	fav := favoriteModel.Favorite{
		UserID:     callerID,
		RequestID:  req.RequestID,
		CustomName: name,
	}
	if req.Description != "" {
		fav.Description = &req.Description
	}

	if err := fc.DB.Create(&fav).Error; err != nil {
		logger.Error("Failed to create favorite", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to add favorite",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Request added to favorites",
		Data:    fav,
	})
}

// Index lists the caller's favorites, newest first, with the bookmarked
// request and its requester preloaded.
func (fc *FavoriteController) Index(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	var favorites []favoriteModel.Favorite
	err = fc.DB.
		Preload("Request").
		Preload("Request.Requester").
		Where("user_id = ?", callerID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to list favorites", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Favorites retrieved",
		Data:    favorites,
	})
}

// Delete removes the caller's bookmark on a request. Removing a request
// that was never bookmarked is not an error.
func (fc *FavoriteController) Delete(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	requestID, err := c.ParamsInt("request_id")
	if err != nil || requestID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request id",
		})
	}

	err = fc.DB.
		Where("user_id = ? AND request_id = ?", callerID, requestID).
		Delete(&favoriteModel.Favorite{}).Error
	if err != nil {
		logger.Error("Failed to remove favorite", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to remove favorite",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Request removed from favorites",
	})
}

// Check reports whether the caller has bookmarked a request.
func (fc *FavoriteController) Check(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	requestID, err := c.ParamsInt("request_id")
	if err != nil || requestID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request id",
		})
	}

	var fav favoriteModel.Favorite
	err = fc.DB.Where("user_id = ? AND request_id = ?", callerID, requestID).First(&fav).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(types.ApiResponse{
				Status:  fiber.StatusOK,
				Message: "Favorite checked",
				Data: fiber.Map{
					"is_favorite": false,
					"favorite_id": nil,
					"custom_name": nil,
				},
			})
		}
		logger.Error("Failed to check favorite", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Favorite checked",
		Data: fiber.Map{
			"is_favorite": true,
			"favorite_id": fav.ID,
			"custom_name": fav.CustomName,
		},
	})
}

func invalidClaims(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: "Invalid user claims",
	})
}
