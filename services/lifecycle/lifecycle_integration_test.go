//go:build integration

package lifecycle

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"church-booking/models/event"
	"church-booking/models/inventory"
	"church-booking/models/notification"
	"church-booking/models/request"
	"church-booking/models/user"
	"church-booking/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "church_booking_test"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	dropTables()
	if err := testDB.AutoMigrate(
		&user.User{},
		&event.Event{},
		&inventory.Item{},
		&inventory.History{},
		&request.Request{},
		&request.RequestStatusEvent{},
		&request.RequestItem{},
		&notification.Outbox{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	code := m.Run()

	dropTables()
	os.Exit(code)
}

func dropTables() {
	for _, table := range []string{
		"request_items", "request_status_events", "requests",
		"inventory_histories", "inventory",
		"notification_outboxes", "events", "users",
	} {
		testDB.Exec("DROP TABLE IF EXISTS " + table)
	}
}

func cleanTables() {
	for _, table := range []string{
		"request_items", "request_status_events", "requests",
		"inventory_histories", "inventory",
		"notification_outboxes", "events", "users",
	} {
		testDB.Exec("DELETE FROM " + table)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedUser(t *testing.T, role string) *user.User {
	t.Helper()
	u := &user.User{
		Uuid:         fmt.Sprintf("uuid-%s-%d", role, time.Now().UnixNano()),
		FullName:     "Test " + role,
		Email:        fmt.Sprintf("%s-%d@test.local", role, time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, testDB.Create(u).Error)
	return u
}

func newTestService() Service {
	return NewService(testDB, scheduling.DefaultConfig())
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 9, 10, hour, minute, 0, 0, time.UTC)
}

func TestCreate_CleanSlotIsPending(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	svc := newTestService()

	req, report, err := svc.Create(context.Background(), CreateInput{
		Title:       "Choir rehearsal",
		Location:    "Main Sanctuary",
		Start:       at(14, 0),
		End:         at(16, 0),
		RequesterID: requester.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, req.Status)
	assert.False(t, report.HasConflict)

	var events []request.RequestStatusEvent
	require.NoError(t, testDB.Where("request_id = ?", req.ID).Find(&events).Error)
	assert.Len(t, events, 1)
	assert.Equal(t, request.StatusPending, events[0].Status)

	var outboxCount int64
	testDB.Model(&notification.Outbox{}).Count(&outboxCount)
	assert.Equal(t, int64(1), outboxCount)
}

func TestCreate_DirectOverlapWithEventRejected(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	staff := seedUser(t, "PASTOR")
	svc := newTestService()

	require.NoError(t, testDB.Create(&event.Event{
		Name:          "Sunday service",
		Location:      "Main Sanctuary",
		StartDatetime: at(14, 0),
		EndDatetime:   at(16, 0),
		CreatedByID:   staff.ID,
	}).Error)

	_, report, err := svc.Create(context.Background(), CreateInput{
		Title:       "Overlapping booking",
		Location:    "Main Sanctuary",
		Start:       at(15, 0),
		End:         at(17, 0),
		RequesterID: requester.ID,
	})
	require.ErrorIs(t, err, ErrDirectConflict)
	require.NotNil(t, report)
	assert.True(t, report.HasDirectConflict)
	assert.NotEmpty(t, report.Suggestions)

	var count int64
	testDB.Model(&request.Request{}).Count(&count)
	assert.Equal(t, int64(0), count, "no row should be written on a direct conflict")
}

func TestCreate_GapConflictIsPendingConflict(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	approver := seedUser(t, "PASTOR")
	svc := newTestService()

	first, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Morning booking",
		Location:    "Meeting Room",
		Start:       at(10, 0),
		End:         at(12, 0),
		RequesterID: requester.ID,
	})
	require.NoError(t, err)
	_, _, err = svc.Approve(context.Background(), first.ID, approver.ID)
	require.NoError(t, err)

	// 5 minutes after the approved booking ends.
	second, report, err := svc.Create(context.Background(), CreateInput{
		Title:       "Back-to-back booking",
		Location:    "Meeting Room",
		Start:       at(12, 5),
		End:         at(13, 0),
		RequesterID: requester.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, request.StatusPendingConflict, second.Status)
	assert.True(t, report.HasGapConflict)
	assert.False(t, report.HasDirectConflict)
}

func TestApprove_ReservesInventoryAndCascades(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	rival := seedUser(t, "MEMBER")
	approver := seedUser(t, "ADM")
	svc := newTestService()

	mics := inventory.Item{
		Name:              "Wireless microphone",
		Category:          "audio",
		QuantityAvailable: 4,
		QuantityTotal:     4,
		Status:            inventory.StatusAvailable,
	}
	require.NoError(t, testDB.Create(&mics).Error)

	winner, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Worship night",
		Location:    "Main Sanctuary",
		Start:       at(18, 0),
		End:         at(20, 0),
		RequesterID: requester.ID,
		Items:       []ItemLine{{InventoryID: mics.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	loser, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Competing booking",
		Location:    "Main Sanctuary",
		Start:       at(19, 0),
		End:         at(21, 0),
		RequesterID: rival.ID,
	})
	require.NoError(t, err)

	approved, report, err := svc.Approve(context.Background(), winner.ID, approver.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, approved.Status)
	assert.False(t, report.HasConflict, "pending rivals do not block approval")

	var item inventory.Item
	require.NoError(t, testDB.First(&item, mics.ID).Error)
	assert.Equal(t, 1, item.QuantityAvailable)
	assert.Equal(t, inventory.StatusAvailable, item.Status)

	var rejected request.Request
	require.NoError(t, testDB.First(&rejected, loser.ID).Error)
	assert.Equal(t, request.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Contains(t, *rejected.RejectionReason, fmt.Sprintf("#%d", winner.ID))

	var histories []inventory.History
	require.NoError(t, testDB.Where("inventory_id = ?", mics.ID).Find(&histories).Error)
	require.Len(t, histories, 1)
	assert.Equal(t, inventory.ActionReservation, histories[0].Action)
}

func TestApprove_TwiceFailsTransition(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	approver := seedUser(t, "PASTOR")
	svc := newTestService()

	req, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Bible study",
		Location:    "Classroom 1",
		Start:       at(9, 0),
		End:         at(10, 0),
		RequesterID: requester.ID,
	})
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), req.ID, approver.ID)
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), req.ID, approver.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFullLifecycle_ConsumablesAndReturns(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	approver := seedUser(t, "PASTOR")
	executor := seedUser(t, "SEC")
	svc := newTestService()

	cables := inventory.Item{
		Name:              "XLR cable",
		Category:          "audio",
		Consumable:        false,
		QuantityAvailable: 10,
		QuantityTotal:     10,
		Status:            inventory.StatusAvailable,
	}
	candles := inventory.Item{
		Name:              "Candles",
		Category:          "supplies",
		Consumable:        true,
		QuantityAvailable: 20,
		QuantityTotal:     20,
		Status:            inventory.StatusAvailable,
	}
	require.NoError(t, testDB.Create(&cables).Error)
	require.NoError(t, testDB.Create(&candles).Error)

	req, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Vigil",
		Location:    "Main Sanctuary",
		Start:       at(19, 0),
		End:         at(21, 0),
		RequesterID: requester.ID,
		Items: []ItemLine{
			{InventoryID: cables.ID, Quantity: 4},
			{InventoryID: candles.ID, Quantity: 12},
		},
	})
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), req.ID, approver.ID)
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), req.ID, executor.ID)
	require.NoError(t, err)

	var item inventory.Item
	require.NoError(t, testDB.First(&item, candles.ID).Error)
	// 20 - 12 reserved - 12 consumed, clamped at zero.
	assert.Equal(t, 0, item.QuantityAvailable)
	assert.Equal(t, inventory.StatusUnavailable, item.Status)

	finished, err := svc.Finish(context.Background(), req.ID, executor.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusFinished, finished.Status)
	require.NotNil(t, finished.FinishedAt)

	require.NoError(t, testDB.First(&item, cables.ID).Error)
	assert.Equal(t, 10, item.QuantityAvailable, "non-consumables come back on finish")

	require.NoError(t, testDB.First(&item, candles.ID).Error)
	assert.Equal(t, 0, item.QuantityAvailable, "consumables stay consumed")
}

func TestCreate_InsufficientStockFails(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	svc := newTestService()

	item := inventory.Item{
		Name:              "Projector",
		Category:          "video",
		QuantityAvailable: 1,
		QuantityTotal:     1,
		Status:            inventory.StatusAvailable,
	}
	require.NoError(t, testDB.Create(&item).Error)

	_, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Double projector booking",
		Location:    "Media Room",
		Start:       at(14, 0),
		End:         at(15, 0),
		RequesterID: requester.ID,
		Items:       []ItemLine{{InventoryID: item.ID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var count int64
	testDB.Model(&request.Request{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestReject_SetsReasonAndBlocksFurtherTransitions(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	approver := seedUser(t, "PASTOR")
	svc := newTestService()

	req, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Late-night booking",
		Location:    "Youth Room",
		Start:       at(20, 0),
		End:         at(21, 30),
		RequesterID: requester.ID,
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), req.ID, approver.ID, "room closed for repairs")
	require.NoError(t, err)
	assert.Equal(t, request.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "room closed for repairs", *rejected.RejectionReason)

	_, _, err = svc.Approve(context.Background(), req.ID, approver.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCheckConflicts_IgnoresOtherDatesAndRooms(t *testing.T) {
	cleanTables()
	requester := seedUser(t, "MEMBER")
	approver := seedUser(t, "PASTOR")
	svc := newTestService()

	booked, _, err := svc.Create(context.Background(), CreateInput{
		Title:       "Rehearsal",
		Location:    "Main Sanctuary",
		Start:       at(14, 0),
		End:         at(16, 0),
		RequesterID: requester.ID,
	})
	require.NoError(t, err)
	_, _, err = svc.Approve(context.Background(), booked.ID, approver.ID)
	require.NoError(t, err)

	// Same slot, same room, next day: no conflict.
	report, err := svc.CheckConflicts(context.Background(), "Main Sanctuary",
		at(14, 0).Add(24*time.Hour), at(16, 0).Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, report.HasConflict)

	// Same slot, same day, different room: no conflict.
	report, err = svc.CheckConflicts(context.Background(), "Kitchen", at(14, 0), at(16, 0))
	require.NoError(t, err)
	assert.False(t, report.HasConflict)

	// Same slot, same room, same day: direct conflict.
	report, err = svc.CheckConflicts(context.Background(), "Main Sanctuary", at(15, 0), at(17, 0))
	require.NoError(t, err)
	assert.True(t, report.HasDirectConflict)
}
