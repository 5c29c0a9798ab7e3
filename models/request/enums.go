package request

// Status is the request lifecycle state.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusPendingConflict Status = "PENDING_CONFLICT"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusExecuted        Status = "EXECUTED"
	StatusFinished        Status = "FINISHED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingConflict, StatusApproved, StatusRejected, StatusExecuted, StatusFinished:
		return true
	default:
		return false
	}
}

// CanBeApproved reports whether a request in this state may transition to
// APPROVED. Only pending states qualify.
func (s Status) CanBeApproved() bool {
	return s == StatusPending || s == StatusPendingConflict
}

// CanBeRejected mirrors CanBeApproved: rejection is only meaningful while
// the request is still pending.
func (s Status) CanBeRejected() bool {
	return s == StatusPending || s == StatusPendingConflict
}

// CanBeExecuted reports whether the request may transition to EXECUTED.
func (s Status) CanBeExecuted() bool {
	return s == StatusApproved
}

// CanBeFinished reports whether the request may transition to FINISHED.
func (s Status) CanBeFinished() bool {
	return s == StatusExecuted
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusFinished
}

// CanBeDeleted limits owner/admin deletion to requests outside the
// approved flow.
func (s Status) CanBeDeleted() bool {
	return s == StatusPending || s == StatusPendingConflict || s == StatusRejected
}

// AllStatuses returns every valid request status.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusPendingConflict,
		StatusApproved,
		StatusRejected,
		StatusExecuted,
		StatusFinished,
	}
}
