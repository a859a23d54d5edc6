package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to domain.RideStatus }{
		{domain.RideStatusPending, domain.RideStatusAccepted},
		{domain.RideStatusPending, domain.RideStatusCancelled},
		{domain.RideStatusAccepted, domain.RideStatusArrived},
		{domain.RideStatusAccepted, domain.RideStatusCancelled},
		{domain.RideStatusArrived, domain.RideStatusInProgress},
		{domain.RideStatusArrived, domain.RideStatusCompleted},
		{domain.RideStatusArrived, domain.RideStatusCancelled},
		{domain.RideStatusInProgress, domain.RideStatusCompleted},
		{domain.RideStatusInProgress, domain.RideStatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	forbidden := []struct{ from, to domain.RideStatus }{
		{domain.RideStatusPending, domain.RideStatusInProgress},
		{domain.RideStatusPending, domain.RideStatusCompleted},
		{domain.RideStatusAccepted, domain.RideStatusCompleted},
		{domain.RideStatusCompleted, domain.RideStatusCancelled},
		{domain.RideStatusCancelled, domain.RideStatusAccepted},
		{domain.RideStatusCompleted, domain.RideStatusPending},
	}
	for _, tc := range forbidden {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckTransitionNamesBothStates(t *testing.T) {
	err := CheckTransition(domain.RideStatusPending, domain.RideStatusInProgress)

	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.RideStatusPending, transitionErr.From)
	assert.Equal(t, domain.RideStatusInProgress, transitionErr.To)
	assert.Contains(t, err.Error(), "PENDING")
	assert.Contains(t, err.Error(), "IN_PROGRESS")
}
