package routes

import (
	"church-booking/constants"
	"church-booking/controllers/auth"
	"church-booking/controllers/departments"
	"church-booking/controllers/events"
	"church-booking/controllers/favorites"
	"church-booking/controllers/inventory"
	"church-booking/controllers/locations"
	"church-booking/controllers/requests"
	"church-booking/controllers/users"
	"church-booking/logger"
	"church-booking/middleware"
	"church-booking/scheduling"
	"church-booking/services/lifecycle"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	lifecycleService := lifecycle.NewService(db, scheduling.LoadConfig())

	authController := auth.NewAuthController(db, asyncLogger)
	requestController := requests.NewRequestController(db, asyncLogger, lifecycleService)
	inventoryController := inventory.NewInventoryController(db, asyncLogger)
	eventController := events.NewEventController(db, asyncLogger)
	favoriteController := favorites.NewFavoriteController(db, asyncLogger)
	userController := users.NewUserController(db, asyncLogger)
	departmentController := departments.NewDepartmentController(db, asyncLogger)
	locationController := locations.NewLocationController(db, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "church-booking", "status": "ok"})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	// Every API call leaves a sanitized log row behind, written off the
	// request path by the async logger.
	api := app.Group("/api", func(c *fiber.Ctx) error {
		err := c.Next()
		asyncLogger.Log(utils.CreateSanitizedLogEntry(c))
		return err
	})
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)

	/*=============================================================================
	| Session Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireAuthentication())
	authGroup.Get("/profile", authController.Profile)
	authGroup.Post("/logout", authController.Logout)

	/*=============================================================================
	| Booking Request Routes
	===============================================================================*/
	requestGroup := api.Group("/requests").Use(middleware.RequireAuthentication())

	requestGroup.Post("/", requestController.Store)
	requestGroup.Get("/", requestController.Index)
	requestGroup.Get("/calendar/approved", requestController.CalendarApproved)
	requestGroup.Post("/check-conflicts", requestController.CheckConflicts)
	requestGroup.Post("/check-realtime-conflicts", requestController.CheckRealtimeConflicts)
	requestGroup.Get("/:id", requestController.Show)
	requestGroup.Patch("/:id", requestController.Update)
	requestGroup.Delete("/:id", requestController.Delete)

	requestGroup.Patch("/:id/approve", middleware.RequireRoles(
		constants.ApproverRoles...,
	), requestController.Approve)

	requestGroup.Patch("/:id/reject", middleware.RequireRoles(
		constants.ApproverRoles...,
	), requestController.Reject)

	requestGroup.Patch("/:id/execute", middleware.RequireRoles(
		constants.ExecutorRoles...,
	), requestController.Execute)

	requestGroup.Patch("/:id/finish", middleware.RequireRoles(
		constants.ExecutorRoles...,
	), requestController.Finish)

	requestGroup.Patch("/:id/return-instruments", middleware.RequireRoles(
		constants.ExecutorRoles...,
	), requestController.ReturnInstruments)

	/*=============================================================================
	| Favorite Routes
	===============================================================================*/
	favoriteGroup := api.Group("/favorites").Use(middleware.RequireAuthentication())

	favoriteGroup.Post("/", favoriteController.Store)
	favoriteGroup.Get("/", favoriteController.Index)
	favoriteGroup.Get("/check/:request_id", favoriteController.Check)
	favoriteGroup.Delete("/:request_id", favoriteController.Delete)

	/*=============================================================================
	| Inventory Routes
	===============================================================================*/
	inventoryGroup := api.Group("/inventory").Use(middleware.RequireAuthentication())

	inventoryGroup.Get("/", inventoryController.Index)
	inventoryGroup.Get("/:id", inventoryController.Show)
	inventoryGroup.Get("/:id/history", inventoryController.History)

	inventoryGroup.Post("/", middleware.RequireRoles(
		constants.InventoryManagerRoles...,
	), inventoryController.Store)

	inventoryGroup.Patch("/:id", middleware.RequireRoles(
		constants.InventoryManagerRoles...,
	), inventoryController.Update)

	inventoryGroup.Patch("/:id/status", middleware.RequireRoles(
		constants.InventoryManagerRoles...,
	), inventoryController.SetStatus)

	inventoryGroup.Delete("/:id", middleware.RequireRoles(
		constants.RoleAdmin,
	), inventoryController.Delete)

	/*=============================================================================
	| Event Routes
	===============================================================================*/
	eventGroup := api.Group("/events").Use(middleware.RequireAuthentication())

	eventGroup.Get("/", eventController.Index)
	eventGroup.Get("/:id", eventController.Show)

	eventGroup.Post("/", middleware.RequireRoles(
		constants.ApproverRoles...,
	), eventController.Store)

	eventGroup.Patch("/:id", middleware.RequireRoles(
		constants.ApproverRoles...,
	), eventController.Update)

	eventGroup.Delete("/:id", middleware.RequireRoles(
		constants.ApproverRoles...,
	), eventController.Delete)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	userGroup := api.Group("/users").Use(middleware.RequireAuthentication())
	userGroup.Get("/", middleware.RequireRoles(constants.RoleAdmin), userController.Index)
	userGroup.Get("/:id", middleware.RequireRoles(constants.RoleAdmin), userController.Show)
	userGroup.Patch("/:id", userController.Update)
	userGroup.Delete("/:id", middleware.RequireRoles(constants.RoleAdmin), userController.Delete)

	departmentGroup := api.Group("/departments").Use(middleware.RequireAuthentication())
	departmentGroup.Get("/", departmentController.Index)
	departmentGroup.Post("/", middleware.RequireRoles(constants.RoleAdmin), departmentController.Store)
	departmentGroup.Patch("/:id", middleware.RequireRoles(constants.RoleAdmin), departmentController.Update)
	departmentGroup.Delete("/:id", middleware.RequireRoles(constants.RoleAdmin), departmentController.Delete)

	locationGroup := api.Group("/locations").Use(middleware.RequireAuthentication())
	locationGroup.Get("/", locationController.Index)
	locationGroup.Post("/", middleware.RequireRoles(constants.RoleAdmin), locationController.Store)
	locationGroup.Patch("/:id", middleware.RequireRoles(constants.RoleAdmin), locationController.Update)
	locationGroup.Delete("/:id", middleware.RequireRoles(constants.RoleAdmin), locationController.Delete)
}
