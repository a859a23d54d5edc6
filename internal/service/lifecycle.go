package service

import (
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// transitions is the whitelist of legal ride status moves. Anything
// not listed is rejected with InvalidTransitionError.
var transitions = map[domain.RideStatus][]domain.RideStatus{
	domain.RideStatusPending:    {domain.RideStatusAccepted, domain.RideStatusCancelled},
	domain.RideStatusAccepted:   {domain.RideStatusArrived, domain.RideStatusCancelled},
	domain.RideStatusArrived:    {domain.RideStatusInProgress, domain.RideStatusCompleted, domain.RideStatusCancelled},
	domain.RideStatusInProgress: {domain.RideStatusCompleted, domain.RideStatusCancelled},
}

// CanTransition reports whether a ride may move from one status to
// another.
func CanTransition(from, to domain.RideStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransitionError naming both
// statuses when the move is not allowed.
func CheckTransition(from, to domain.RideStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
