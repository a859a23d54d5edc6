package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

// SessionSweeper periodically force-closes driver sessions that have
// been open longer than the configured maximum.
type SessionSweeper struct {
	availability *service.AvailabilityService
	interval     time.Duration
	maxAge       time.Duration
	logger       *zap.Logger
}

func NewSessionSweeper(
	availability *service.AvailabilityService,
	interval, maxAge time.Duration,
	logger *zap.Logger,
) *SessionSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &SessionSweeper{
		availability: availability,
		interval:     interval,
		maxAge:       maxAge,
		logger:       logger,
	}
}

// Run sweeps until the context is cancelled.
func (w *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := w.availability.CloseStaleSessions(ctx, w.maxAge)
			if err != nil {
				w.logger.Error("session sweep failed", zap.Error(err))
				continue
			}
			if closed > 0 {
				w.logger.Info("session sweep closed stale sessions", zap.Int("count", closed))
			}
		}
	}
}
