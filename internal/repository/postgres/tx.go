package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// TxRunner implements repository.TxRunner over database/sql transactions.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx begins a transaction, hands fn transaction-scoped repositories,
// and commits iff fn returns nil.
func (t *TxRunner) RunInTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := repository.Repos{
		Rides:    NewRideRepositoryWithTx(tx),
		Drivers:  NewDriverRepositoryWithTx(tx),
		Sessions: NewSessionRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ repository.TxRunner = (*TxRunner)(nil)
