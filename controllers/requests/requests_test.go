package requests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"church-booking/constants"
	requestModel "church-booking/models/request"
	"church-booking/scheduling"
	"church-booking/services/lifecycle"
	"church-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock lifecycle service ---

type mockLifecycleService struct {
	createFn  func(ctx context.Context, in lifecycle.CreateInput) (*requestModel.Request, *scheduling.Report, error)
	approveFn func(ctx context.Context, id, approverID uint) (*requestModel.Request, *scheduling.Report, error)
	rejectFn  func(ctx context.Context, id, actorID uint, reason string) (*requestModel.Request, error)
	executeFn func(ctx context.Context, id, executorID uint) (*requestModel.Request, error)
	finishFn  func(ctx context.Context, id, actorID uint) (*requestModel.Request, error)
	checkFn   func(ctx context.Context, location string, start, end time.Time) (*scheduling.Report, error)
}

func (m *mockLifecycleService) Create(ctx context.Context, in lifecycle.CreateInput) (*requestModel.Request, *scheduling.Report, error) {
	return m.createFn(ctx, in)
}
func (m *mockLifecycleService) Approve(ctx context.Context, id, approverID uint) (*requestModel.Request, *scheduling.Report, error) {
	return m.approveFn(ctx, id, approverID)
}
func (m *mockLifecycleService) Reject(ctx context.Context, id, actorID uint, reason string) (*requestModel.Request, error) {
	return m.rejectFn(ctx, id, actorID, reason)
}
func (m *mockLifecycleService) Execute(ctx context.Context, id, executorID uint) (*requestModel.Request, error) {
	return m.executeFn(ctx, id, executorID)
}
func (m *mockLifecycleService) Finish(ctx context.Context, id, actorID uint) (*requestModel.Request, error) {
	return m.finishFn(ctx, id, actorID)
}
func (m *mockLifecycleService) CheckConflicts(ctx context.Context, location string, start, end time.Time) (*scheduling.Report, error) {
	return m.checkFn(ctx, location, start, end)
}

// --- Test app wiring ---

func withClaims(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", jwt.MapClaims{
			"user_id": float64(7),
			"uuid":    "test-uuid",
			"role":    role,
		})
		return c.Next()
	}
}

func newTestApp(svc lifecycle.Service, role string) *fiber.App {
	app := fiber.New()
	rc := NewRequestController(nil, nil, svc)

	group := app.Group("/api/requests", withClaims(role))
	group.Post("/", rc.Store)
	group.Post("/check-conflicts", rc.CheckConflicts)
	group.Post("/check-realtime-conflicts", rc.CheckRealtimeConflicts)
	group.Patch("/:id/approve", rc.Approve)
	group.Patch("/:id/reject", rc.Reject)
	group.Patch("/:id/execute", rc.Execute)
	group.Patch("/:id/finish", rc.Finish)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url, body string) (*http.Response, types.ApiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope types.ApiResponse
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp, envelope
}

const validCreateBody = `{
	"title": "Youth meeting",
	"location": "Youth Room",
	"start_datetime": "2026-09-10T14:00:00",
	"end_datetime": "2026-09-10T16:00:00"
}`

// --- Tests ---

func TestStoreRequest_Created(t *testing.T) {
	svc := &mockLifecycleService{
		createFn: func(ctx context.Context, in lifecycle.CreateInput) (*requestModel.Request, *scheduling.Report, error) {
			assert.Equal(t, "Youth meeting", in.Title)
			assert.Equal(t, "Youth Room", in.Location)
			assert.Equal(t, uint(7), in.RequesterID)
			assert.True(t, in.Start.Equal(time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)))
			return &requestModel.Request{ID: 1, Title: in.Title, Status: requestModel.StatusPending},
				&scheduling.Report{}, nil
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/", validCreateBody)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.False(t, envelope.Conflict)
	assert.Equal(t, "Request created", envelope.Message)
}

func TestStoreRequest_SoftConflict(t *testing.T) {
	svc := &mockLifecycleService{
		createFn: func(ctx context.Context, in lifecycle.CreateInput) (*requestModel.Request, *scheduling.Report, error) {
			return &requestModel.Request{ID: 2, Status: requestModel.StatusPendingConflict},
				&scheduling.Report{HasConflict: true, HasGapConflict: true}, nil
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/", validCreateBody)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, envelope.Conflict)
}

func TestStoreRequest_DirectConflict(t *testing.T) {
	svc := &mockLifecycleService{
		createFn: func(ctx context.Context, in lifecycle.CreateInput) (*requestModel.Request, *scheduling.Report, error) {
			return nil, &scheduling.Report{HasConflict: true, HasDirectConflict: true},
				lifecycle.ErrDirectConflict
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/", validCreateBody)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, envelope.Conflict)
	assert.NotNil(t, envelope.Data)
}

func TestStoreRequest_MissingFields(t *testing.T) {
	svc := &mockLifecycleService{}

	resp, _ := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/", `{"title": "No window"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStoreRequest_BadTimestamp(t *testing.T) {
	svc := &mockLifecycleService{}

	body := `{
		"title": "Bad time",
		"location": "Kitchen",
		"start_datetime": "next tuesday",
		"end_datetime": "2026-09-10T16:00:00"
	}`
	resp, _ := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApproveRequest_Success(t *testing.T) {
	svc := &mockLifecycleService{
		approveFn: func(ctx context.Context, id, approverID uint) (*requestModel.Request, *scheduling.Report, error) {
			assert.Equal(t, uint(5), id)
			assert.Equal(t, uint(7), approverID)
			return &requestModel.Request{ID: id, Status: requestModel.StatusApproved},
				&scheduling.Report{}, nil
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RolePastor),
		http.MethodPatch, "/api/requests/5/approve", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, envelope.Conflict)
	assert.Equal(t, "Request approved", envelope.Message)
}

func TestApproveRequest_GapFlagsForReview(t *testing.T) {
	svc := &mockLifecycleService{
		approveFn: func(ctx context.Context, id, approverID uint) (*requestModel.Request, *scheduling.Report, error) {
			return &requestModel.Request{ID: id, Status: requestModel.StatusPendingConflict},
				&scheduling.Report{HasConflict: true, HasGapConflict: true}, nil
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RolePastor),
		http.MethodPatch, "/api/requests/5/approve", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Conflict)
}

func TestApproveRequest_DirectConflict(t *testing.T) {
	svc := &mockLifecycleService{
		approveFn: func(ctx context.Context, id, approverID uint) (*requestModel.Request, *scheduling.Report, error) {
			return nil, &scheduling.Report{HasConflict: true, HasDirectConflict: true},
				lifecycle.ErrDirectConflict
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RolePastor),
		http.MethodPatch, "/api/requests/5/approve", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, envelope.Conflict)
}

func TestApproveRequest_NotFound(t *testing.T) {
	svc := &mockLifecycleService{
		approveFn: func(ctx context.Context, id, approverID uint) (*requestModel.Request, *scheduling.Report, error) {
			return nil, nil, lifecycle.ErrRequestNotFound
		},
	}

	resp, _ := doJSON(t, newTestApp(svc, constants.RolePastor),
		http.MethodPatch, "/api/requests/99/approve", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRejectRequest_RequiresReason(t *testing.T) {
	svc := &mockLifecycleService{}

	resp, _ := doJSON(t, newTestApp(svc, constants.RolePastor),
		http.MethodPatch, "/api/requests/5/reject", `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRejectRequest_Success(t *testing.T) {
	svc := &mockLifecycleService{
		rejectFn: func(ctx context.Context, id, actorID uint, reason string) (*requestModel.Request, error) {
			assert.Equal(t, "room unavailable that day", reason)
			return &requestModel.Request{ID: id, Status: requestModel.StatusRejected, RejectionReason: &reason}, nil
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RolePastor),
		http.MethodPatch, "/api/requests/5/reject", `{"rejection_reason": "room unavailable that day"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Request rejected", envelope.Message)
}

func TestExecuteRequest_InvalidTransition(t *testing.T) {
	svc := &mockLifecycleService{
		executeFn: func(ctx context.Context, id, executorID uint) (*requestModel.Request, error) {
			return nil, lifecycle.ErrInvalidTransition
		},
	}

	resp, _ := doJSON(t, newTestApp(svc, constants.RoleSecretary),
		http.MethodPatch, "/api/requests/5/execute", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFinishRequest_Success(t *testing.T) {
	svc := &mockLifecycleService{
		finishFn: func(ctx context.Context, id, actorID uint) (*requestModel.Request, error) {
			return &requestModel.Request{ID: id, Status: requestModel.StatusFinished}, nil
		},
	}

	resp, envelope := doJSON(t, newTestApp(svc, constants.RoleSecretary),
		http.MethodPatch, "/api/requests/5/finish", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Request finished, instruments returned", envelope.Message)
}

func TestCheckConflicts_Clean(t *testing.T) {
	svc := &mockLifecycleService{
		checkFn: func(ctx context.Context, location string, start, end time.Time) (*scheduling.Report, error) {
			assert.Equal(t, "Main Sanctuary", location)
			return &scheduling.Report{}, nil
		},
	}

	body := `{
		"location": "Main Sanctuary",
		"start_datetime": "2026-09-10T14:00:00",
		"end_datetime": "2026-09-10T16:00:00"
	}`
	resp, envelope := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/check-conflicts", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, envelope.Conflict)
	assert.Equal(t, "No conflicts", envelope.Message)
}

func TestCheckConflicts_ReportsConflict(t *testing.T) {
	svc := &mockLifecycleService{
		checkFn: func(ctx context.Context, location string, start, end time.Time) (*scheduling.Report, error) {
			return &scheduling.Report{HasConflict: true, HasDirectConflict: true}, nil
		},
	}

	body := `{
		"location": "Main Sanctuary",
		"start_datetime": "2026-09-10T14:00:00",
		"end_datetime": "2026-09-10T16:00:00"
	}`
	resp, envelope := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/check-conflicts", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Conflict)
	assert.Equal(t, "Conflicts detected", envelope.Message)
}

func TestCheckConflicts_RejectsInvertedWindow(t *testing.T) {
	svc := &mockLifecycleService{}

	body := `{
		"location": "Main Sanctuary",
		"start_datetime": "2026-09-10T16:00:00",
		"end_datetime": "2026-09-10T14:00:00"
	}`
	resp, _ := doJSON(t, newTestApp(svc, constants.RoleMember),
		http.MethodPost, "/api/requests/check-conflicts", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
