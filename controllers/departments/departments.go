package departments

import (
	"errors"

	"church-booking/logger"
	departmentModel "church-booking/models/department"
	"church-booking/types"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DepartmentController handles department CRUD.
type DepartmentController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewDepartmentController creates a new department controller
func NewDepartmentController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *DepartmentController {
	return &DepartmentController{
		DB:     db,
		Logger: asyncLogger,
	}
}

type departmentPayload struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	LeaderID    *uint  `json:"leader_id"`
}

// Index lists departments.
func (dc *DepartmentController) Index(c *fiber.Ctx) error {
	var departments []departmentModel.Department
	if err := dc.DB.Preload("Leader").Order("name").Find(&departments).Error; err != nil {
		logger.Error("Failed to list departments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Departments retrieved",
		Data:    departments,
	})
}

// Store creates a department.
func (dc *DepartmentController) Store(c *fiber.Ctx) error {
	var req departmentPayload
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

	dept := departmentModel.Department{
		Name:     req.Name,
		LeaderID: req.LeaderID,
	}
	if req.Description != "" {
		dept.Description = &req.Description
	}

	if err := dc.DB.Create(&dept).Error; err != nil {
		logger.Error("Failed to create department", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create department",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Department created",
		Data:    dept,
	})
}

// Update edits a department.
func (dc *DepartmentController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid department id",
		})
	}

	var req departmentPayload
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

	var dept departmentModel.Department
	if err := dc.DB.First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Department not found",
			})
		}
		logger.Error("Failed to load department", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	dept.Name = req.Name
	dept.LeaderID = req.LeaderID
	if req.Description != "" {
		dept.Description = &req.Description
	} else {
		dept.Description = nil
	}

	if err := dc.DB.Save(&dept).Error; err != nil {
		logger.Error("Failed to update department", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update department",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Department updated",
		Data:    dept,
	})
}

// Delete removes a department.
func (dc *DepartmentController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid department id",
		})
	}

	result := dc.DB.Delete(&departmentModel.Department{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete department", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete department",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Department not found",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Department deleted",
	})
}
