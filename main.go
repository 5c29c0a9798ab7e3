package main

import (
	"context"
	"os"
	"time"

	"church-booking/database"
	"church-booking/logger"
	"church-booking/routes"
	"church-booking/services/notifier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       10 * 1024 * 1024, // 10MB body limit
	})
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	db, err := database.InitDB()
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, db)

	// Notification delivery is best-effort and decoupled: the dispatcher
	// drains outbox rows written by the request lifecycle.
	publisher, err := notifier.NewAMQPPublisherFromEnv()
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, events will not be published", err)
	}
	dispatcher := &notifier.Dispatcher{DB: db}
	if mailer := notifier.NewSMTPMailerFromEnv(); mailer != nil {
		dispatcher.Mailer = mailer
	}
	if publisher != nil {
		defer publisher.Close()
		dispatcher.Publisher = publisher
	}
	go dispatcher.Run(context.Background())

	appHost := os.Getenv("APP_HOST")
	appPort := os.Getenv("APP_PORT")
	logger.Success("Server is running on " + appHost + ":" + appPort)
	if err := app.Listen(appHost + ":" + appPort); err != nil {
		logger.Error("Server stopped", err)
	}
}
