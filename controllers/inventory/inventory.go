package inventory

import (
	"errors"
	"fmt"

	"church-booking/logger"
	"church-booking/middleware"
	inventoryModel "church-booking/models/inventory"
	"church-booking/scheduling"
	"church-booking/types"
	inventoryTypes "church-booking/types/inventory"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryController handles inventory HTTP requests. Every quantity or
// status mutation leaves a history row behind.
type InventoryController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewInventoryController creates a new inventory controller
func NewInventoryController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *InventoryController {
	return &InventoryController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Index lists items, optionally filtered by category, status or low stock.
func (ic *InventoryController) Index(c *fiber.Ctx) error {
	query := ic.DB.Order("name")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("low_stock") == "true" {
		query = query.Where("quantity_available <= ?", inventoryModel.LowStockThreshold)
	}

	var items []inventoryModel.Item
	if err := query.Find(&items).Error; err != nil {
		logger.Error("Failed to list inventory", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Inventory retrieved",
		Data:    items,
	})
}

// Show returns one item.
func (ic *InventoryController) Show(c *fiber.Ctx) error {
	item, errResp := ic.findItem(c)
	if item == nil {
		return errResp
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Item retrieved",
		Data:    item,
	})
}

// Store creates an inventory item with a CREATED history row.
func (ic *InventoryController) Store(c *fiber.Ctx) error {
	var req inventoryTypes.CreateItemRequest
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
	if *req.QuantityAvailable > *req.QuantityTotal {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "quantity_available cannot exceed quantity_total",
		})
	}

	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	item := inventoryModel.Item{
		Name:              req.Name,
		Category:          req.Category,
		Consumable:        req.Consumable,
		QuantityAvailable: *req.QuantityAvailable,
		QuantityTotal:     *req.QuantityTotal,
	}
	if req.Description != "" {
		item.Description = &req.Description
	}
	if req.Location != "" {
		item.Location = &req.Location
	}
	if req.ImageURL != "" {
		item.ImageURL = &req.ImageURL
	}
	if req.LastUsedDate != nil && *req.LastUsedDate != "" {
		t, err := scheduling.ParseTimestamp(*req.LastUsedDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid timestamp",
				Fields:  []string{"last_used_date"},
			})
		}
		item.LastUsedDate = &t
	}
	item.RecomputeStatus()

	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return ic.recordHistory(tx, &item, callerID, inventoryModel.ActionCreated, nil, nil, "item created")
	})
	if err != nil {
		logger.Error("Failed to create inventory item", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create item",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Item created",
		Data:    item,
	})
}

// Update edits item fields; quantity changes are audited.
func (ic *InventoryController) Update(c *fiber.Ctx) error {
	var req inventoryTypes.UpdateItemRequest
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

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badItemID(c)
	}

	var updated inventoryModel.Item
	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		var item inventoryModel.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
			return err
		}

		prevQty := item.QuantityAvailable
		prevStatus := item.Status

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Description != nil {
			item.Description = req.Description
		}
		if req.Category != nil {
			item.Category = *req.Category
		}
		if req.Location != nil {
			item.Location = req.Location
		}
		if req.ImageURL != nil {
			item.ImageURL = req.ImageURL
		}
		if req.Consumable != nil {
			item.Consumable = *req.Consumable
		}
		if req.QuantityAvailable != nil {
			item.QuantityAvailable = *req.QuantityAvailable
		}
		if req.QuantityTotal != nil {
			item.QuantityTotal = *req.QuantityTotal
		}
		if item.QuantityAvailable > item.QuantityTotal {
			return fmt.Errorf("quantity_available cannot exceed quantity_total")
		}
		item.RecomputeStatus()

		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		if err := ic.recordHistory(tx, &item, callerID, inventoryModel.ActionUpdated,
			&prevStatus, &prevQty, "item updated"); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return itemNotFound(c)
		}
		logger.Error("Failed to update inventory item", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Item updated",
		Data:    updated,
	})
}

// SetStatus manually overrides item status, e.g. MAINTENANCE.
func (ic *InventoryController) SetStatus(c *fiber.Ctx) error {
	var payload struct {
		Status inventoryModel.ItemStatus `json:"status" validate:"required,oneof=AVAILABLE UNAVAILABLE MAINTENANCE"`
	}
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

	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badItemID(c)
	}

	var updated inventoryModel.Item
	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		var item inventoryModel.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
			return err
		}

		prevQty := item.QuantityAvailable
		prevStatus := item.Status
		item.Status = payload.Status
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		if err := ic.recordHistory(tx, &item, callerID, inventoryModel.ActionStatus,
			&prevStatus, &prevQty, "status changed manually"); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return itemNotFound(c)
		}
		logger.Error("Failed to change item status", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to change item status",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Item status updated",
		Data:    updated,
	})
}

// Delete removes an item. Items referenced by open requests are kept.
func (ic *InventoryController) Delete(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return invalidClaims(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badItemID(c)
	}

	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		var item inventoryModel.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
			return err
		}

		var openRefs int64
		err := tx.Table("request_items").
			Joins("JOIN requests ON requests.id = request_items.request_id").
			Where("request_items.inventory_id = ? AND requests.status IN ?",
				item.ID, []string{"PENDING", "PENDING_CONFLICT", "APPROVED", "EXECUTED"}).
			Count(&openRefs).Error
		if err != nil {
			return err
		}
		if openRefs > 0 {
			return fmt.Errorf("item is referenced by %d open request(s)", openRefs)
		}

		prevQty := item.QuantityAvailable
		prevStatus := item.Status
		if err := ic.recordHistory(tx, &item, callerID, inventoryModel.ActionDeleted,
			&prevStatus, &prevQty, "item deleted"); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return itemNotFound(c)
		}
		logger.Error("Failed to delete inventory item", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Item deleted",
	})
}

// History returns the audit trail for one item.
func (ic *InventoryController) History(c *fiber.Ctx) error {
	item, errResp := ic.findItem(c)
	if item == nil {
		return errResp
	}

	var history []inventoryModel.History
	err := ic.DB.
		Preload("User").
		Where("inventory_id = ?", item.ID).
		Order("id DESC").
		Find(&history).Error
	if err != nil {
		logger.Error("Failed to load inventory history", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "History retrieved",
		Data:    history,
	})
}

func (ic *InventoryController) findItem(c *fiber.Ctx) (*inventoryModel.Item, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, badItemID(c)
	}

	var item inventoryModel.Item
	if err := ic.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, itemNotFound(c)
		}
		logger.Error("Failed to load inventory item", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}
	return &item, nil
}

func (ic *InventoryController) recordHistory(tx *gorm.DB, item *inventoryModel.Item, actorID uint,
	action string, prevStatus *inventoryModel.ItemStatus, prevQty *int, note string) error {
	newStatus := item.Status
	newQty := item.QuantityAvailable
	h := inventoryModel.History{
		InventoryID:      item.ID,
		UserID:           actorID,
		Action:           action,
		PreviousStatus:   prevStatus,
		NewStatus:        &newStatus,
		PreviousQuantity: prevQty,
		NewQuantity:      &newQty,
		Note:             &note,
	}
	return tx.Create(&h).Error
}

func invalidClaims(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: "Invalid user claims",
	})
}

func badItemID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid item id",
	})
}

func itemNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: "Item not found",
	})
}
