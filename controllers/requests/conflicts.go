package requests

import (
	"church-booking/scheduling"
	"church-booking/types"
	requestTypes "church-booking/types/request"
	"church-booking/utils"

	"github.com/gofiber/fiber/v2"
)

// CheckConflicts runs the detector for a prospective slot without creating
// anything.
func (rc *RequestController) CheckConflicts(c *fiber.Ctx) error {
	report, resp := rc.runCheck(c)
	if report == nil {
		return resp
	}

	message := "No conflicts"
	if report.HasConflict {
		message = "Conflicts detected"
	}
	return c.JSON(types.ApiResponse{
		Status:   fiber.StatusOK,
		Message:  message,
		Conflict: report.HasConflict,
		Data:     report,
	})
}

// CheckRealtimeConflicts backs the form-side live check. Same detector,
// reduced payload so the client can re-poll cheaply while the user types.
func (rc *RequestController) CheckRealtimeConflicts(c *fiber.Ctx) error {
	report, resp := rc.runCheck(c)
	if report == nil {
		return resp
	}

	return c.JSON(types.ApiResponse{
		Status:   fiber.StatusOK,
		Message:  "Conflict check completed",
		Conflict: report.HasConflict,
		Data: fiber.Map{
			"has_conflict":        report.HasConflict,
			"has_direct_conflict": report.HasDirectConflict,
			"has_gap_conflict":    report.HasGapConflict,
			"conflicts":           report.Conflicts,
			"suggestions":         report.Suggestions,
		},
	})
}

func (rc *RequestController) runCheck(c *fiber.Ctx) (*scheduling.Report, error) {
	var payload requestTypes.CheckConflictsRequest
	if err := c.BodyParser(&payload); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if fields := utils.ValidateStruct(payload); fields != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed",
			Fields:  fields,
		})
	}

	start, err := scheduling.ParseTimestamp(payload.StartDatetime)
	if err != nil {
		return nil, badTimestamp(c, "start_datetime")
	}
	end, err := scheduling.ParseTimestamp(payload.EndDatetime)
	if err != nil {
		return nil, badTimestamp(c, "end_datetime")
	}
	if !start.Before(end) {
		return nil, c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "start_datetime must be before end_datetime",
		})
	}

	report, err := rc.Service.CheckConflicts(c.Context(), payload.Location, start, end)
	if err != nil {
		return nil, rc.lifecycleError(c, err, nil)
	}
	return report, nil
}
