package request

// ItemInput is one inventory line item on a create payload.
type ItemInput struct {
	InventoryID uint `json:"inventory_id" validate:"required"`
	Quantity    int  `json:"quantity" validate:"required,gt=0"`
}

// CreateRequest is the booking-request create payload. Datetimes are
// strings so that values without a timezone suffix can be normalized to
// UTC by the scheduling package.
type CreateRequest struct {
	Title            string      `json:"title" validate:"required,max=255"`
	Description      string      `json:"description"`
	Location         string      `json:"location" validate:"required,max=255"`
	StartDatetime    string      `json:"start_datetime" validate:"required"`
	EndDatetime      string      `json:"end_datetime" validate:"required"`
	ExpectedAudience string      `json:"expected_audience"`
	Priority         string      `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Supplier         string      `json:"supplier"`
	DepartmentID     *uint       `json:"department_id"`
	EventID          *uint       `json:"event_id"`
	Items            []ItemInput `json:"items" validate:"omitempty,dive"`
}

// UpdateRequest is the partial-update payload; only pending requests may
// be edited.
type UpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,max=255"`
	Description      *string `json:"description"`
	Location         *string `json:"location" validate:"omitempty,max=255"`
	StartDatetime    *string `json:"start_datetime"`
	EndDatetime      *string `json:"end_datetime"`
	ExpectedAudience *string `json:"expected_audience"`
	Priority         *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// CheckConflictsRequest is the standalone conflict-check payload.
type CheckConflictsRequest struct {
	Location      string `json:"location" validate:"required"`
	StartDatetime string `json:"start_datetime" validate:"required"`
	EndDatetime   string `json:"end_datetime" validate:"required"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"rejection_reason" validate:"required"`
}
