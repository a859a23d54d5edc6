package repository

import "context"

// Repos bundles the repositories a dispatch transaction touches, scoped to
// one transaction when obtained through a TxRunner.
type Repos struct {
	Rides    RideRepository
	Drivers  DriverRepository
	Sessions SessionRepository
}

// TxRunner runs fn inside a transaction, handing it transaction-scoped
// repositories. fn returning an error rolls the transaction back; the
// attempted transition leaves no trace.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r Repos) error) error
}
