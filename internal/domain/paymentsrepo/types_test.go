package paymentsrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusPending, StatusCompleted}:         true,
		{StatusPending, StatusFailed}:            true,
		{StatusCompleted, StatusRefundRequested}: true,
		{StatusRefundRequested, StatusRefunded}:  true,
	}

	statuses := []string{StatusPending, StatusCompleted, StatusFailed, StatusRefundRequested, StatusRefunded}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equalf(t, allowed[[2]string{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestRefundedIsTerminal(t *testing.T) {
	for _, to := range []string{StatusPending, StatusCompleted, StatusFailed, StatusRefundRequested} {
		assert.False(t, CanTransition(StatusRefunded, to))
	}
}

func TestRefundRequiresRequestFirst(t *testing.T) {
	assert.False(t, CanTransition(StatusCompleted, StatusRefunded))
	assert.True(t, CanTransition(StatusCompleted, StatusRefundRequested))
	assert.True(t, CanTransition(StatusRefundRequested, StatusRefunded))
}
