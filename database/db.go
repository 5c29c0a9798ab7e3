package database

import (
	"fmt"
	"os"

	"church-booking/logger"
	"church-booking/models/department"
	"church-booking/models/event"
	"church-booking/models/favorite"
	"church-booking/models/inventory"
	"church-booking/models/location"
	"church-booking/models/log"
	"church-booking/models/notification"
	"church-booking/models/request"
	"church-booking/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	dbUser := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, dbUser, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	if err := SeedLocations(DB); err != nil {
		logger.Error("Failed to seed locations", err)
		return nil, err
	}

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order.
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&user.User{},
		&department.Department{},
		&location.Location{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&event.Event{},
		&inventory.Item{},
		&request.Request{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Remaining models
	remainingModels := []interface{}{
		&request.RequestItem{},
		&request.RequestStatusEvent{},
		&favorite.Favorite{},
		&inventory.History{},
		&notification.Outbox{},
		&log.Log{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// User indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid)").Error; err != nil {
		return fmt.Errorf("failed to create user uuid index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)").Error; err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)").Error; err != nil {
		return fmt.Errorf("failed to create user role index: %w", err)
	}

	// Request indexes; location+date is the conflict-check access path
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_requests_location_date ON requests(location, date)").Error; err != nil {
		return fmt.Errorf("failed to create request location/date index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status)").Error; err != nil {
		return fmt.Errorf("failed to create request status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_requests_requester_id ON requests(requester_id)").Error; err != nil {
		return fmt.Errorf("failed to create request requester index: %w", err)
	}

	// Event indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_events_location_start ON events(location, start_datetime)").Error; err != nil {
		return fmt.Errorf("failed to create event location/start index: %w", err)
	}

	// Outbox dispatcher poll path
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_notification_outboxes_status ON notification_outboxes(status)").Error; err != nil {
		return fmt.Errorf("failed to create outbox status index: %w", err)
	}

	// Log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
