package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/broadcast"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/geo"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/routing"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

// dispatchFixture bundles the engine with its mocks.
type dispatchFixture struct {
	engine       *service.DispatchEngine
	availability *service.AvailabilityService
	rides        *MockRideRepository
	drivers      *MockDriverRepository
	sessions     *MockSessionRepository
	declines     *MockDeclineRepository
	blocks       *MockBlockRepository
	geoIndex     *MockGeoIndex
	locks        *MockLockStore
	publisher    *MockPublisher
	notifRepo    *MockNotificationRepository
	routes       *MockRouteService
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	f := &dispatchFixture{
		rides:     NewMockRideRepository(),
		drivers:   NewMockDriverRepository(),
		sessions:  NewMockSessionRepository(),
		declines:  NewMockDeclineRepository(),
		blocks:    NewMockBlockRepository(),
		geoIndex:  NewMockGeoIndex(),
		locks:     NewMockLockStore(),
		publisher: NewMockPublisher(),
		notifRepo: NewMockNotificationRepository(),
		routes:    &MockRouteService{},
	}

	logger := zap.NewNop()
	tx := &MockTxRunner{Rides: f.rides, Drivers: f.drivers, Sessions: f.sessions}
	notifier := service.NewNotificationService(logger, service.NewDatabaseChannel(f.notifRepo))
	fares := service.NewFareCalculator(service.FareSettings{
		BaseFare:  5,
		PerKm:     1.5,
		PerMinute: 0.5,
	}, logger)
	f.availability = service.NewAvailabilityService(f.drivers, f.sessions, tx, logger)

	f.engine = service.NewDispatchEngine(
		f.rides, f.drivers, NewMockPassengerRepository(), f.declines, f.blocks,
		tx, f.locks, f.geoIndex, f.routes, &MockGeocoder{Address: "Hamra Street, Beirut"},
		fares, f.availability, nil, notifier, f.publisher,
		service.DispatchSettings{
			DefaultScanRadiusKm:  10,
			MaxAcceptanceRangeKm: 15,
			CandidateLimit:       20,
			LockTTL:              2 * time.Second,
		},
		logger,
	)
	return f
}

func (f *dispatchFixture) addOnlineDriver(id string, loc domain.LatLng) {
	f.drivers.AddDriver(&domain.Driver{
		ID:        id,
		Name:      "Driver " + id,
		Phone:     "+961" + id,
		Location:  &loc,
		Available: true,
	})
}

func (f *dispatchFixture) addPendingRide(id string, origin domain.LatLng) *domain.Ride {
	ride := &domain.Ride{
		ID:          id,
		PassengerID: "passenger-" + id,
		Origin:      origin,
		Destination: domain.LatLng{Lat: origin.Lat + 0.1, Lng: origin.Lng + 0.1},
		Status:      domain.RideStatusPending,
		CreatedAt:   time.Now().Add(-time.Minute),
	}
	f.rides.AddRide(ride)
	_ = f.geoIndex.Add(context.Background(), id, origin)
	return ride
}

var (
	beirut  = domain.LatLng{Lat: 33.8938, Lng: 35.5018}
	jounieh = domain.LatLng{Lat: 33.9808, Lng: 35.6178} // ~14.5km from Beirut
)

// pointAtKm returns a point approximately km kilometers east of base.
func pointAtKm(base domain.LatLng, km float64) domain.LatLng {
	return domain.LatLng{Lat: base.Lat, Lng: base.Lng + km/92.6} // 1 deg lng ~ 92.6km at 33.9N
}

func TestRequestRideCreatesPendingRide(t *testing.T) {
	f := newDispatchFixture(t)
	f.routes.Route = &routing.RouteInfo{DistanceKm: 10, DurationMin: 20, Polyline: "abc"}

	ride, err := f.engine.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID: "p1",
		Origin:      beirut,
		Destination: jounieh,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusPending, ride.Status)
	assert.Equal(t, 30.0, ride.EstimatedFare)
	assert.Equal(t, "abc", ride.Polyline)
	assert.True(t, f.geoIndex.Contains(ride.ID))
	assert.Equal(t, 1, f.publisher.EventCount(broadcast.TopicDrivers))
}

func TestRequestRideRejectsSecondActiveRide(t *testing.T) {
	f := newDispatchFixture(t)
	f.addPendingRide("r1", beirut)

	_, err := f.engine.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID: "passenger-r1",
		Origin:      beirut,
		Destination: jounieh,
	})

	assert.ErrorIs(t, err, service.ErrPassengerHasActiveRide)
}

func TestRequestRideFallsBackWhenRoutingDown(t *testing.T) {
	f := newDispatchFixture(t)
	f.routes.Err = errors.New("osrm unreachable")

	ride, err := f.engine.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID: "p1",
		Origin:      beirut,
		Destination: jounieh,
	})

	// A routing outage degrades to a straight-line estimate instead of
	// blocking the request.
	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusPending, ride.Status)
	assert.InDelta(t, geo.HaversineKm(beirut, jounieh), ride.DistanceKm, 0.01)
	assert.Empty(t, ride.Polyline)
	assert.Greater(t, ride.EstimatedFare, 0.0)
	assert.True(t, f.geoIndex.Contains(ride.ID))
}

func TestListAvailableRidesByDistance(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	near := f.addPendingRide("near", pointAtKm(beirut, 8))
	f.addPendingRide("far", pointAtKm(beirut, 12)) // outside the 10km default scan

	candidates, err := f.engine.ListAvailableRides(context.Background(), "d1")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, near.ID, candidates[0].Ride.ID)
	assert.InDelta(t, 8, candidates[0].DistanceKm, 0.3)
	assert.Equal(t, "Hamra Street, Beirut", candidates[0].OriginAddress)
}

func TestListAvailableRidesRespectsScanningRange(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	f.drivers.GetDriver("d1").ScanningRangeKm = 14
	f.addPendingRide("r1", pointAtKm(beirut, 12))

	candidates, err := f.engine.ListAvailableRides(context.Background(), "d1")

	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestListAvailableRidesRejectsOfflineDriver(t *testing.T) {
	f := newDispatchFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Location: &beirut, Available: false})

	_, err := f.engine.ListAvailableRides(context.Background(), "d1")

	assert.ErrorIs(t, err, service.ErrDriverOffline)
}

func TestListAvailableRidesRejectsDriverWithoutLocation(t *testing.T) {
	f := newDispatchFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Available: true})

	_, err := f.engine.ListAvailableRides(context.Background(), "d1")

	assert.ErrorIs(t, err, service.ErrDriverNoLocation)
}

func TestListAvailableRidesRejectsBusyDriver(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	f.rides.AddRide(&domain.Ride{
		ID:          "active",
		PassengerID: "p9",
		DriverID:    "d1",
		Status:      domain.RideStatusInProgress,
	})

	_, err := f.engine.ListAvailableRides(context.Background(), "d1")

	assert.ErrorIs(t, err, service.ErrDriverHasActiveRide)
}

func TestListAvailableRidesFiltersDeclinedAndBlocked(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	declined := f.addPendingRide("declined", pointAtKm(beirut, 2))
	blocked := f.addPendingRide("blocked", pointAtKm(beirut, 3))
	visible := f.addPendingRide("visible", pointAtKm(beirut, 4))

	require.NoError(t, f.engine.DeclineRide(context.Background(), declined.ID, "d1"))
	require.NoError(t, f.engine.BlockPassenger(context.Background(), "d1", blocked.PassengerID, "rude"))

	candidates, err := f.engine.ListAvailableRides(context.Background(), "d1")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, visible.ID, candidates[0].Ride.ID)
}

func TestListAvailableRidesDropsStaleIndexEntries(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", pointAtKm(beirut, 2))
	// Ride got accepted elsewhere but the index entry lingers.
	f.rides.GetRide(ride.ID).Status = domain.RideStatusAccepted

	candidates, err := f.engine.ListAvailableRides(context.Background(), "d1")

	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.False(t, f.geoIndex.Contains(ride.ID))
}

func TestAcceptRideAssignsDriver(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", pointAtKm(beirut, 5))

	accepted, err := f.engine.AcceptRide(context.Background(), ride.ID, "d1")

	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusAccepted, accepted.Status)
	assert.Equal(t, "d1", accepted.DriverID)
	assert.False(t, accepted.AcceptedAt.IsZero())
	assert.False(t, f.geoIndex.Contains(ride.ID))

	// Passenger was notified through the database channel.
	notifications := f.notifRepo.ForRecipient(ride.PassengerID)
	require.Len(t, notifications, 1)
	assert.Equal(t, string(service.NotifyRideAccepted), notifications[0].Kind)
}

func TestAcceptRideOutOfRange(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", pointAtKm(beirut, 20))

	_, err := f.engine.AcceptRide(context.Background(), ride.ID, "d1")

	assert.ErrorIs(t, err, service.ErrOutOfRange)
	assert.Equal(t, domain.RideStatusPending, f.rides.GetRide(ride.ID).Status)
}

func TestAcceptRideConcurrentExactlyOneWinner(t *testing.T) {
	f := newDispatchFixture(t)
	ride := f.addPendingRide("contested", beirut)

	const drivers = 8
	for i := 0; i < drivers; i++ {
		f.addOnlineDriver(driverID(i), pointAtKm(beirut, float64(i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.AcceptRide(context.Background(), ride.ID, driverID(i))
		}(i)
	}
	wg.Wait()

	winners := 0
	conflicts := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrRideConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, winners)
	assert.Equal(t, drivers-1, conflicts)
	assert.Equal(t, domain.RideStatusAccepted, f.rides.GetRide(ride.ID).Status)
}

func driverID(i int) string {
	return string(rune('a'+i)) + "-driver"
}

func TestAcceptRideAlreadyAccepted(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	f.addOnlineDriver("d2", beirut)
	ride := f.addPendingRide("r1", beirut)

	_, err := f.engine.AcceptRide(context.Background(), ride.ID, "d1")
	require.NoError(t, err)

	_, err = f.engine.AcceptRide(context.Background(), ride.ID, "d2")
	assert.ErrorIs(t, err, service.ErrRideConflict)
}

func TestAcceptRideTakesDriverOffline(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Name: "Driver d1", Location: &beirut})
	require.NoError(t, f.availability.GoOnline(ctx, "d1"))
	ride := f.addPendingRide("r1", beirut)

	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	// An assigned driver is unavailable with no open session until the
	// next go-online.
	assert.False(t, f.drivers.GetDriver("d1").Available)
	assert.Equal(t, 0, f.sessions.OpenSessionCount("d1"))

	require.NoError(t, f.availability.GoOnline(ctx, "d1"))
	assert.True(t, f.drivers.GetDriver("d1").Available)
	assert.Equal(t, 1, f.sessions.OpenSessionCount("d1"))
}

func TestCompleteRideTakesDriverOffline(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	require.NoError(t, f.availability.GoOnline(ctx, "d1"))
	_, err = f.engine.ArriveRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	_, err = f.engine.StartRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	_, err = f.engine.CompleteRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	assert.False(t, f.drivers.GetDriver("d1").Available)
	assert.Equal(t, 0, f.sessions.OpenSessionCount("d1"))
}

func TestDriverCancelTakesDriverOffline(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	require.NoError(t, f.availability.GoOnline(ctx, "d1"))

	cancelled, err := f.engine.CancelRide(ctx, service.CancelRideInput{
		RideID:  ride.ID,
		ActorID: "d1",
		Actor:   domain.CancelActorDriver,
		Reason:  "vehicle breakdown",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusCancelled, cancelled.Status)
	assert.False(t, f.drivers.GetDriver("d1").Available)
	assert.Equal(t, 0, f.sessions.OpenSessionCount("d1"))
}

func TestDeclineRideIsIdempotent(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	f.addOnlineDriver("d2", beirut)
	ride := f.addPendingRide("r1", beirut)

	require.NoError(t, f.engine.DeclineRide(context.Background(), ride.ID, "d1"))
	require.NoError(t, f.engine.DeclineRide(context.Background(), ride.ID, "d1"))

	// Declining never blocks another driver from accepting.
	_, err := f.engine.AcceptRide(context.Background(), ride.ID, "d2")
	assert.NoError(t, err)
}

func TestDeclineRideRequiresOnlineDriver(t *testing.T) {
	f := newDispatchFixture(t)
	f.drivers.AddDriver(&domain.Driver{ID: "d1", Location: &beirut, Available: false})
	ride := f.addPendingRide("r1", beirut)

	err := f.engine.DeclineRide(context.Background(), ride.ID, "d1")

	assert.ErrorIs(t, err, service.ErrDriverOffline)
}

func TestDeclineRideRejectsAssignedRide(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	f.addOnlineDriver("d2", beirut)
	ride := f.addPendingRide("r1", beirut)

	_, err := f.engine.AcceptRide(context.Background(), ride.ID, "d1")
	require.NoError(t, err)

	err = f.engine.DeclineRide(context.Background(), ride.ID, "d2")
	assert.ErrorIs(t, err, service.ErrRideConflict)
}

func TestFullLifecycleTimestamps(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	ctx := context.Background()
	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	arrived, err := f.engine.ArriveRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	assert.False(t, arrived.ArrivedAt.IsZero())
	// Pickup duration is anchored at ride creation.
	assert.GreaterOrEqual(t, arrived.PickupDurationSec, int64(60))

	started, err := f.engine.StartRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusInProgress, started.Status)

	completed, err := f.engine.CompleteRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusCompleted, completed.Status)
	assert.False(t, completed.CompletedAt.IsZero())
}

func TestCompleteRideFromArrived(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	ctx := context.Background()
	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)
	_, err = f.engine.ArriveRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	// A ride abandoned at the pickup point can be settled without a
	// start; completion is legal straight from arrival.
	completed, err := f.engine.CompleteRide(ctx, ride.ID, "d1")

	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusCompleted, completed.Status)
	assert.True(t, completed.StartedAt.IsZero())
}

func TestStartBeforeArriveRejected(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	ctx := context.Background()
	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	_, err = f.engine.StartRide(ctx, ride.ID, "d1")

	var transitionErr *service.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.RideStatusAccepted, transitionErr.From)
	assert.Equal(t, domain.RideStatusInProgress, transitionErr.To)
}

func TestLifecycleRejectsWrongDriver(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	f.addOnlineDriver("d2", beirut)
	ride := f.addPendingRide("r1", beirut)

	ctx := context.Background()
	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	_, err = f.engine.ArriveRide(ctx, ride.ID, "d2")
	assert.ErrorIs(t, err, service.ErrNotAssignedDriver)
}

func TestPassengerCancelAfterAcceptChargesFee(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	ctx := context.Background()
	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	fixture := newDispatchFixtureWithFee(t, f)
	cancelled, err := fixture.CancelRide(ctx, service.CancelRideInput{
		RideID:  ride.ID,
		ActorID: ride.PassengerID,
		Actor:   domain.CancelActorPassenger,
		Reason:  "changed plans",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.CancelActorPassenger, cancelled.CancelledBy)
	assert.Equal(t, 2.0, cancelled.FinalFare)
}

// newDispatchFixtureWithFee rebuilds the engine over the same stores so
// cancellation tests can share seeded state.
func newDispatchFixtureWithFee(t *testing.T, f *dispatchFixture) *service.DispatchEngine {
	t.Helper()
	logger := zap.NewNop()
	tx := &MockTxRunner{Rides: f.rides, Drivers: f.drivers, Sessions: f.sessions}
	notifier := service.NewNotificationService(logger, service.NewDatabaseChannel(f.notifRepo))
	fares := service.NewFareCalculator(service.FareSettings{
		BaseFare: 5, PerKm: 1.5, PerMinute: 0.5, CancellationFee: 2,
	}, logger)
	availability := service.NewAvailabilityService(f.drivers, f.sessions, tx, logger)
	return service.NewDispatchEngine(
		f.rides, f.drivers, NewMockPassengerRepository(), f.declines, f.blocks,
		tx, f.locks, f.geoIndex, f.routes, &MockGeocoder{Address: "x"},
		fares, availability, nil, notifier, f.publisher,
		service.DispatchSettings{LockTTL: 2 * time.Second}, logger,
	)
}

func TestCancelCompletedRideRejected(t *testing.T) {
	f := newDispatchFixture(t)
	f.rides.AddRide(&domain.Ride{
		ID:          "done",
		PassengerID: "p1",
		DriverID:    "d1",
		Status:      domain.RideStatusCompleted,
	})

	_, err := f.engine.CancelRide(context.Background(), service.CancelRideInput{
		RideID:  "done",
		ActorID: "p1",
		Actor:   domain.CancelActorPassenger,
	})

	var transitionErr *service.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestDriverCancelRequiresAssignment(t *testing.T) {
	f := newDispatchFixture(t)
	ride := f.addPendingRide("r1", beirut)

	_, err := f.engine.CancelRide(context.Background(), service.CancelRideInput{
		RideID:  ride.ID,
		ActorID: "d1",
		Actor:   domain.CancelActorDriver,
	})

	assert.ErrorIs(t, err, service.ErrNotAssignedDriver)
}

func TestFlagSOS(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOnlineDriver("d1", beirut)
	ride := f.addPendingRide("r1", beirut)

	ctx := context.Background()
	_, err := f.engine.AcceptRide(ctx, ride.ID, "d1")
	require.NoError(t, err)

	require.NoError(t, f.engine.FlagSOS(ctx, ride.ID, ride.PassengerID, true))
	assert.True(t, f.rides.GetRide(ride.ID).SOS)

	// Counterparty got the alert.
	notifications := f.notifRepo.ForRecipient("d1")
	require.NotEmpty(t, notifications)
	assert.Equal(t, string(service.NotifySOSRaised), notifications[0].Kind)

	err = f.engine.FlagSOS(ctx, ride.ID, "stranger", true)
	assert.ErrorIs(t, err, service.ErrNotRideParticipant)
}
