package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

type availabilityFixture struct {
	svc      *service.AvailabilityService
	drivers  *MockDriverRepository
	sessions *MockSessionRepository
}

func newAvailabilityFixture(t *testing.T) *availabilityFixture {
	t.Helper()
	drivers := NewMockDriverRepository()
	sessions := NewMockSessionRepository()
	tx := &MockTxRunner{Rides: NewMockRideRepository(), Drivers: drivers, Sessions: sessions}
	return &availabilityFixture{
		svc:      service.NewAvailabilityService(drivers, sessions, tx, zap.NewNop()),
		drivers:  drivers,
		sessions: sessions,
	}
}

func TestGoOnlineOpensSession(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1"})

	err := f.svc.GoOnline(context.Background(), "d1")

	require.NoError(t, err)
	assert.True(t, f.drivers.GetDriver("d1").Available)
	assert.Equal(t, 1, f.sessions.OpenSessionCount("d1"))
}

func TestGoOnlineTwiceRepairsStraySession(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1"})

	ctx := context.Background()
	require.NoError(t, f.svc.GoOnline(ctx, "d1"))

	// Simulate a crashed client: flag reset but session left open.
	f.drivers.GetDriver("d1").Available = false

	require.NoError(t, f.svc.GoOnline(ctx, "d1"))

	// Exactly one open session remains after the repair.
	assert.Equal(t, 1, f.sessions.OpenSessionCount("d1"))
	assert.True(t, f.drivers.GetDriver("d1").Available)
}

func TestGoOnlineWhenCleanlyOnline(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Available: true})

	err := f.svc.GoOnline(context.Background(), "d1")

	assert.ErrorIs(t, err, service.ErrAlreadyOnline)
}

func TestGoOfflineStampsDuration(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Available: true})
	f.sessions.AddSession(&domain.ActiveDuration{
		ID:       "s1",
		DriverID: "d1",
		ActiveAt: time.Now().Add(-10 * time.Minute),
	})

	err := f.svc.GoOffline(context.Background(), "d1")

	require.NoError(t, err)
	assert.False(t, f.drivers.GetDriver("d1").Available)

	session := f.sessions.GetSession("s1")
	require.NotNil(t, session.InactiveAt)
	assert.InDelta(t, 600, session.DurationSeconds, 2)
}

func TestGoOfflineWhenAlreadyOffline(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1"})

	err := f.svc.GoOffline(context.Background(), "d1")

	assert.ErrorIs(t, err, service.ErrAlreadyOffline)
}

func TestCloseStaleSessionsCapsDuration(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Available: true})
	f.drivers.AddDriver(&domain.Driver{ID: "d2", Available: true})
	f.sessions.AddSession(&domain.ActiveDuration{
		ID:       "stale",
		DriverID: "d1",
		ActiveAt: time.Now().Add(-3 * time.Hour),
	})
	f.sessions.AddSession(&domain.ActiveDuration{
		ID:       "fresh",
		DriverID: "d2",
		ActiveAt: time.Now().Add(-10 * time.Minute),
	})

	closed, err := f.svc.CloseStaleSessions(context.Background(), time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	// Stamped at the cap, not the real three hours.
	stale := f.sessions.GetSession("stale")
	require.NotNil(t, stale.InactiveAt)
	assert.Equal(t, int64(3600), stale.DurationSeconds)
	assert.False(t, f.drivers.GetDriver("d1").Available)

	// Fresh session untouched.
	assert.Nil(t, f.sessions.GetSession("fresh").InactiveAt)
	assert.True(t, f.drivers.GetDriver("d2").Available)
}
