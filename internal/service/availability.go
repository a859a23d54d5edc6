package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/observability"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// maxSessionSeconds caps the duration stamped on a force-closed
// session. Sessions older than this are assumed abandoned.
const maxSessionSeconds = 3600

// AvailabilityService tracks driver online/offline state and the
// active-duration sessions derived from it. A driver has at most one
// open session; transitions repair any strays left by crashes.
type AvailabilityService struct {
	drivers  repository.DriverRepository
	sessions repository.SessionRepository
	tx       repository.TxRunner
	logger   *zap.Logger
	now      func() time.Time
}

func NewAvailabilityService(
	drivers repository.DriverRepository,
	sessions repository.SessionRepository,
	tx repository.TxRunner,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		drivers:  drivers,
		sessions: sessions,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// GoOnline marks the driver available and opens a fresh session. A
// stray open session from a previous run is closed first; the call
// only fails with ErrAlreadyOnline when the driver is online and the
// session state needed no repair.
func (s *AvailabilityService) GoOnline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	now := s.now()

	return s.tx.RunInTx(ctx, func(r repository.Repos) error {
		closed, err := r.Sessions.CloseAllOpenForDriver(ctx, driverID, now)
		if err != nil {
			return err
		}
		if closed > 0 {
			s.logger.Warn("closed stray driver sessions on go-online",
				zap.String("driver_id", driverID), zap.Int("count", closed))
		}

		if driver.Available && closed == 0 {
			return ErrAlreadyOnline
		}

		if err := r.Drivers.SetAvailability(ctx, driverID, true, now); err != nil {
			return err
		}
		return r.Sessions.Open(ctx, &domain.ActiveDuration{
			ID:       uuid.New().String(),
			DriverID: driverID,
			ActiveAt: now,
		})
	})
}

// GoOffline marks the driver unavailable and stamps the open session
// with its elapsed duration.
func (s *AvailabilityService) GoOffline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if !driver.Available {
		return ErrAlreadyOffline
	}
	now := s.now()

	return s.tx.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Drivers.SetAvailability(ctx, driverID, false, now); err != nil {
			return err
		}
		return s.closeOpenSession(ctx, r.Sessions, driverID, now)
	})
}

// ForceOffline takes a driver offline inside an existing transaction.
// Used when a lifecycle operation must retire the driver atomically.
func (s *AvailabilityService) ForceOffline(ctx context.Context, r repository.Repos, driverID string, now time.Time) error {
	if err := r.Drivers.SetAvailability(ctx, driverID, false, now); err != nil {
		return err
	}
	return s.closeOpenSession(ctx, r.Sessions, driverID, now)
}

func (s *AvailabilityService) closeOpenSession(ctx context.Context, sessions repository.SessionRepository, driverID string, now time.Time) error {
	open, err := sessions.GetOpenByDriver(ctx, driverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return err
	}
	elapsed := int64(now.Sub(open.ActiveAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	return sessions.Close(ctx, open.ID, now, elapsed)
}

// CloseStaleSessions force-closes sessions open for longer than
// maxAge. The stamped duration is capped at maxSessionSeconds; the
// real elapsed time is logged so the cap stays visible.
func (s *AvailabilityService) CloseStaleSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	now := s.now()
	stale, err := s.sessions.FindOpenOlderThan(ctx, now.Add(-maxAge))
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, session := range stale {
		err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
			if err := r.Drivers.SetAvailability(ctx, session.DriverID, false, now); err != nil {
				return err
			}
			return r.Sessions.Close(ctx, session.ID, now, maxSessionSeconds)
		})
		if err != nil {
			s.logger.Error("failed to close stale session",
				zap.String("session_id", session.ID),
				zap.String("driver_id", session.DriverID),
				zap.Error(err))
			continue
		}
		closed++
		observability.StaleSessionsClosed.Inc()
		s.logger.Warn("force-closed stale driver session",
			zap.String("session_id", session.ID),
			zap.String("driver_id", session.DriverID),
			zap.Duration("real_elapsed", now.Sub(session.ActiveAt)))
	}
	return closed, nil
}
