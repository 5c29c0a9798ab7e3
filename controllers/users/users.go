package users

import (
	"errors"

	"church-booking/constants"
	"church-booking/logger"
	"church-booking/middleware"
	userModel "church-booking/models/user"
	"church-booking/types"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController handles user administration. Listing and role changes are
// admin operations; members manage their own profile through /auth.
type UserController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewUserController creates a new user controller
func NewUserController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *UserController {
	return &UserController{
		DB:     db,
		Logger: asyncLogger,
	}
}

type updateUserRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,min=3,max=255"`
	Phone        *string `json:"phone" validate:"omitempty,min=8,max=20"`
	Role         *string `json:"role" validate:"omitempty,oneof=ADM PASTOR SEC AUDIOVISUAL MEMBER"`
	Active       *bool   `json:"active"`
	DepartmentID *uint   `json:"department_id"`
}

// Index lists accounts, optionally filtered by role or department.
func (uc *UserController) Index(c *fiber.Ctx) error {
	query := uc.DB.Order("full_name")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if dept := c.Query("department_id"); dept != "" {
		query = query.Where("department_id = ?", dept)
	}

	var users []userModel.User
	if err := query.Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Users retrieved",
		Data:    users,
	})
}

// Show returns one account.
func (uc *UserController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badUserID(c)
	}

	var account userModel.User
	if err := uc.DB.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userNotFound(c)
		}
		logger.Error("Failed to load user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User retrieved",
		Data:    account,
	})
}

// Update edits an account. Role and active changes are restricted to
// admins; a user may edit their own name and phone.
func (uc *UserController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badUserID(c)
	}

	var req updateUserRequest
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
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}
	isAdmin := middleware.CallerRole(c) == constants.RoleAdmin
	if !isAdmin && callerID != uint(id) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Insufficient permissions",
		})
	}
	if !isAdmin && (req.Role != nil || req.Active != nil) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Only admins can change role or active flag",
		})
	}

	var account userModel.User
	if err := uc.DB.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userNotFound(c)
		}
		logger.Error("Failed to load user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if req.FullName != nil {
		account.FullName = *req.FullName
	}
	if req.Phone != nil {
		account.Phone = req.Phone
	}
	if req.Role != nil {
		account.Role = *req.Role
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	if req.DepartmentID != nil {
		account.DepartmentID = req.DepartmentID
	}

	if err := uc.DB.Save(&account).Error; err != nil {
		logger.Error("Failed to update user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update user",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User updated",
		Data:    account,
	})
}

// Delete soft-deletes an account.
func (uc *UserController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badUserID(c)
	}

	result := uc.DB.Delete(&userModel.User{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete user", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete user",
		})
	}
	if result.RowsAffected == 0 {
		return userNotFound(c)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User deleted",
	})
}

func badUserID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid user id",
	})
}

func userNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: "User not found",
	})
}
