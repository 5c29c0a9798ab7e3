package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid(), "status %s should be valid", s)
	}
	assert.False(t, Status("BOOKED").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatusApprovalTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanBeApproved())
	assert.True(t, StatusPendingConflict.CanBeApproved())

	assert.False(t, StatusApproved.CanBeApproved())
	assert.False(t, StatusRejected.CanBeApproved())
	assert.False(t, StatusExecuted.CanBeApproved())
	assert.False(t, StatusFinished.CanBeApproved())
}

func TestStatusRejectionTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanBeRejected())
	assert.True(t, StatusPendingConflict.CanBeRejected())

	assert.False(t, StatusApproved.CanBeRejected())
	assert.False(t, StatusExecuted.CanBeRejected())
}

func TestStatusExecutionChain(t *testing.T) {
	// Only APPROVED may execute, only EXECUTED may finish.
	for _, s := range AllStatuses() {
		assert.Equal(t, s == StatusApproved, s.CanBeExecuted(), "execute from %s", s)
		assert.Equal(t, s == StatusExecuted, s.CanBeFinished(), "finish from %s", s)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusFinished.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
}

func TestStatusDeletable(t *testing.T) {
	assert.True(t, StatusPending.CanBeDeleted())
	assert.True(t, StatusPendingConflict.CanBeDeleted())
	assert.True(t, StatusRejected.CanBeDeleted())
	assert.False(t, StatusApproved.CanBeDeleted())
	assert.False(t, StatusExecuted.CanBeDeleted())
	assert.False(t, StatusFinished.CanBeDeleted())
}
