package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/broadcast"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/geo"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/observability"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
	internalRedis "github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/redis"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/routing"
)

// DispatchSettings tunes candidate discovery and arbitration.
type DispatchSettings struct {
	// DefaultScanRadiusKm is used when a driver never set a scanning range.
	DefaultScanRadiusKm float64
	// MaxAcceptanceRangeKm bounds how far from a ride's origin a driver
	// may be and still accept it.
	MaxAcceptanceRangeKm float64
	// CandidateLimit caps the pending rides returned per scan.
	CandidateLimit int
	// LockTTL bounds how long a ride's dispatch lock may be held.
	LockTTL time.Duration
}

// DispatchEngine owns the ride lifecycle: request, candidate discovery,
// the accept race, and every transition through to completion or
// cancellation.
//
// Each mutating operation follows the same shape: acquire the ride's
// Redis lock, run a transaction that re-reads current state and applies
// a conditional update, release the lock, then fan out notifications
// and broadcasts outside the critical section.
type DispatchEngine struct {
	rides      repository.RideRepository
	drivers    repository.DriverRepository
	passengers repository.PassengerRepository
	declines   repository.DeclineRepository
	blocks     repository.BlockRepository
	tx         repository.TxRunner

	locks    internalRedis.LockStoreInterface
	geoIndex internalRedis.PendingRideIndexInterface

	routes   routing.RouteService
	geocoder routing.Geocoder

	fares        *FareCalculator
	availability *AvailabilityService
	payments     *PaymentService
	notifier     *NotificationService
	publisher    broadcast.Publisher

	settings DispatchSettings
	logger   *zap.Logger
	now      func() time.Time
}

func NewDispatchEngine(
	rides repository.RideRepository,
	drivers repository.DriverRepository,
	passengers repository.PassengerRepository,
	declines repository.DeclineRepository,
	blocks repository.BlockRepository,
	tx repository.TxRunner,
	locks internalRedis.LockStoreInterface,
	geoIndex internalRedis.PendingRideIndexInterface,
	routes routing.RouteService,
	geocoder routing.Geocoder,
	fares *FareCalculator,
	availability *AvailabilityService,
	payments *PaymentService,
	notifier *NotificationService,
	publisher broadcast.Publisher,
	settings DispatchSettings,
	logger *zap.Logger,
) *DispatchEngine {
	if settings.DefaultScanRadiusKm <= 0 {
		settings.DefaultScanRadiusKm = 10
	}
	if settings.MaxAcceptanceRangeKm <= 0 {
		settings.MaxAcceptanceRangeKm = 15
	}
	if settings.CandidateLimit <= 0 {
		settings.CandidateLimit = 20
	}
	if settings.LockTTL <= 0 {
		settings.LockTTL = 10 * time.Second
	}
	return &DispatchEngine{
		rides:        rides,
		drivers:      drivers,
		passengers:   passengers,
		declines:     declines,
		blocks:       blocks,
		tx:           tx,
		locks:        locks,
		geoIndex:     geoIndex,
		routes:       routes,
		geocoder:     geocoder,
		fares:        fares,
		availability: availability,
		payments:     payments,
		notifier:     notifier,
		publisher:    publisher,
		settings:     settings,
		logger:       logger,
		now:          time.Now,
	}
}

// RequestRideInput carries the passenger's ride request.
type RequestRideInput struct {
	PassengerID string
	Origin      domain.LatLng
	Destination domain.LatLng
	// ClientFare is the fare the client app displayed, reconciled
	// against the server estimate. Zero means none supplied.
	ClientFare    float64
	PromoDiscount float64
}

// RequestRide creates a pending ride, prices it, and makes it
// discoverable to nearby drivers.
func (e *DispatchEngine) RequestRide(ctx context.Context, in RequestRideInput) (*domain.Ride, error) {
	if in.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if !geo.ValidPoint(in.Origin) {
		return nil, ErrInvalidOrigin
	}
	if !geo.ValidPoint(in.Destination) {
		return nil, ErrInvalidDestination
	}

	if _, err := e.rides.GetActiveByPassenger(ctx, in.PassengerID); err == nil {
		return nil, ErrPassengerHasActiveRide
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	route, err := e.routes.GetRouteInfo(ctx, in.Origin, in.Destination)
	if err != nil {
		// Routing outages must not block dispatch; price off the
		// straight-line distance instead.
		e.logger.Warn("route service unavailable, falling back to straight-line estimate",
			zap.String("passenger_id", in.PassengerID), zap.Error(err))
		route = fallbackRoute(in.Origin, in.Destination)
	}

	estimate, ok := e.fares.Estimate(route.DistanceKm, route.DurationMin)
	if !ok {
		route = fallbackRoute(in.Origin, in.Destination)
		estimate, _ = e.fares.Estimate(route.DistanceKm, route.DurationMin)
	}
	if in.ClientFare > 0 {
		estimate = e.fares.ReconcileClientFare("", in.ClientFare, estimate)
	}

	now := e.now()
	ride := &domain.Ride{
		ID:            uuid.New().String(),
		PassengerID:   in.PassengerID,
		Origin:        in.Origin,
		Destination:   in.Destination,
		Status:        domain.RideStatusPending,
		EstimatedFare: estimate,
		PromoDiscount: in.PromoDiscount,
		DistanceKm:    route.DistanceKm,
		DurationMin:   route.DurationMin,
		Polyline:      route.Polyline,
		CreatedAt:     now,
	}

	if err := e.rides.Create(ctx, ride); err != nil {
		return nil, err
	}

	if err := e.geoIndex.Add(ctx, ride.ID, ride.Origin); err != nil {
		// Discovery degrades but the ride exists; drivers polling the
		// index will miss it until a retry re-adds it.
		e.logger.Error("failed to index pending ride", zap.String("ride_id", ride.ID), zap.Error(err))
	}

	observability.RidesRequested.Inc()
	e.broadcastRide(ctx, broadcast.TopicDrivers, broadcast.EventRideRequested, ride)
	return ride, nil
}

// fallbackSpeedKmh is the assumed average speed when the duration of a
// trip has to be derived from straight-line distance.
const fallbackSpeedKmh = 30.0

// fallbackRoute approximates a route from the haversine distance. The
// polyline stays empty so clients know no road geometry exists.
func fallbackRoute(origin, dest domain.LatLng) *routing.RouteInfo {
	distance := geo.HaversineKm(origin, dest)
	return &routing.RouteInfo{
		DistanceKm:  distance,
		DurationMin: distance / fallbackSpeedKmh * 60,
	}
}

// RideCandidate is one pending ride visible to a scanning driver.
type RideCandidate struct {
	Ride               *domain.Ride
	DistanceKm         float64
	OriginAddress      string
	DestinationAddress string
}

// ListAvailableRides returns pending rides within the driver's scanning
// range, nearest first. Rides the driver declined and rides from
// passengers the driver blocked are filtered out.
func (e *DispatchEngine) ListAvailableRides(ctx context.Context, driverID string) ([]RideCandidate, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := e.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.Available {
		return nil, ErrDriverOffline
	}
	if driver.Location == nil {
		return nil, ErrDriverNoLocation
	}
	if _, err := e.rides.GetActiveByDriver(ctx, driverID); err == nil {
		return nil, ErrDriverHasActiveRide
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	radius := driver.ScanningRangeKm
	if radius <= 0 {
		radius = e.settings.DefaultScanRadiusKm
	}

	entries, err := e.geoIndex.Nearby(ctx, *driver.Location, radius, e.settings.CandidateLimit)
	if err != nil {
		return nil, err
	}

	declined, err := e.declines.DeclinedRideIDs(ctx, driverID)
	if err != nil {
		return nil, err
	}
	blocked, err := e.blocks.BlockedPassengerIDs(ctx, driverID)
	if err != nil {
		return nil, err
	}

	candidates := make([]RideCandidate, 0, len(entries))
	for _, entry := range entries {
		if declined[entry.RideID] {
			continue
		}

		// The index can lag the store; only rides still pending count.
		ride, err := e.rides.GetByID(ctx, entry.RideID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				_ = e.geoIndex.Remove(ctx, entry.RideID)
				continue
			}
			return nil, err
		}
		if ride.Status != domain.RideStatusPending {
			_ = e.geoIndex.Remove(ctx, entry.RideID)
			continue
		}
		if blocked[ride.PassengerID] {
			continue
		}

		candidates = append(candidates, RideCandidate{
			Ride:               ride,
			DistanceKm:         entry.DistanceKm,
			OriginAddress:      e.lookupAddress(ctx, ride.Origin),
			DestinationAddress: e.lookupAddress(ctx, ride.Destination),
		})
	}

	observability.DispatchCandidates.Observe(float64(len(candidates)))
	return candidates, nil
}

func (e *DispatchEngine) lookupAddress(ctx context.Context, point domain.LatLng) string {
	if e.geocoder == nil {
		return "Address unavailable"
	}
	addr, err := e.geocoder.ReverseGeocode(ctx, point)
	if err != nil || addr == "" {
		return "Address unavailable"
	}
	return addr
}

// AcceptRide lets a driver claim a pending ride. At most one driver
// ever wins; every other concurrent attempt gets ErrRideConflict. The
// winner is taken off the availability pool and stays off until they
// go online again.
func (e *DispatchEngine) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := e.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.Available {
		return nil, ErrDriverOffline
	}
	if driver.Location == nil {
		return nil, ErrDriverNoLocation
	}
	if _, err := e.rides.GetActiveByDriver(ctx, driverID); err == nil {
		return nil, ErrDriverHasActiveRide
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	unlock, err := e.lock(ctx, rideID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var ride *domain.Ride
	err = e.tx.RunInTx(ctx, func(r repository.Repos) error {
		current, err := r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if current.Status != domain.RideStatusPending {
			return ErrRideConflict
		}
		if geo.HaversineKm(*driver.Location, current.Origin) > e.settings.MaxAcceptanceRangeKm {
			return ErrOutOfRange
		}
		if err := r.Rides.MarkAccepted(ctx, rideID, driverID, now); err != nil {
			return err
		}
		// An assigned driver stops being dispatchable; only GoOnline
		// brings them back.
		if err := e.availability.ForceOffline(ctx, r, driverID, now); err != nil {
			return err
		}

		current.Status = domain.RideStatusAccepted
		current.DriverID = driverID
		current.AcceptedAt = now
		ride = current
		return nil
	})
	unlock()
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			err = ErrRideConflict
		}
		if errors.Is(err, ErrRideConflict) {
			observability.AcceptConflicts.Inc()
		}
		return nil, err
	}

	if err := e.geoIndex.Remove(ctx, rideID); err != nil {
		e.logger.Warn("failed to remove accepted ride from index",
			zap.String("ride_id", rideID), zap.Error(err))
	}

	observability.RidesAccepted.Inc()
	e.notifier.Notify(ctx, ride.PassengerID, NotifyRideAccepted, map[string]any{
		"ride_id":     ride.ID,
		"driver_name": driver.Name,
		"driver_id":   driver.ID,
	})
	e.broadcastRide(ctx, broadcast.TopicDrivers, broadcast.EventRideRemoved, ride)
	e.broadcastRide(ctx, broadcast.RideTopic(ride.ID), broadcast.EventRideAccepted, ride)
	e.broadcastRide(ctx, broadcast.UserTopic(ride.PassengerID), broadcast.EventRideAccepted, ride)
	return ride, nil
}

// DeclineRide hides a pending ride from one driver's scans. Only an
// online driver may decline, and only while the ride is still pending
// and unassigned. Declining the same ride twice is a no-op, and
// declining never blocks other drivers from accepting.
func (e *DispatchEngine) DeclineRide(ctx context.Context, rideID, driverID string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := e.drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if !driver.Available {
		return ErrDriverOffline
	}

	ride, err := e.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.Status != domain.RideStatusPending || ride.DriverID != "" {
		return ErrRideConflict
	}

	return e.declines.Record(ctx, &domain.RideDecline{
		RideID:    rideID,
		DriverID:  driverID,
		CreatedAt: e.now(),
	})
}

// ArriveRide marks the assigned driver as arrived at the pickup point
// and fixes the pickup duration measured from ride creation.
func (e *DispatchEngine) ArriveRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	return e.transitionByDriver(ctx, rideID, driverID, domain.RideStatusArrived,
		func(r repository.Repos, ride *domain.Ride, now time.Time) error {
			pickupSec := int64(now.Sub(ride.CreatedAt).Seconds())
			if err := r.Rides.MarkArrived(ctx, rideID, now, pickupSec); err != nil {
				return err
			}
			ride.Status = domain.RideStatusArrived
			ride.ArrivedAt = now
			ride.PickupDurationSec = pickupSec
			return nil
		},
		func(ctx context.Context, ride *domain.Ride) {
			e.notifier.Notify(ctx, ride.PassengerID, NotifyDriverArrived, map[string]any{
				"ride_id": ride.ID,
			})
			e.broadcastRide(ctx, broadcast.RideTopic(ride.ID), broadcast.EventDriverArrived, ride)
		})
}

// StartRide begins the trip.
func (e *DispatchEngine) StartRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	return e.transitionByDriver(ctx, rideID, driverID, domain.RideStatusInProgress,
		func(r repository.Repos, ride *domain.Ride, now time.Time) error {
			if err := r.Rides.MarkStarted(ctx, rideID, now); err != nil {
				return err
			}
			ride.Status = domain.RideStatusInProgress
			ride.StartedAt = now
			return nil
		},
		func(ctx context.Context, ride *domain.Ride) {
			e.notifier.Notify(ctx, ride.PassengerID, NotifyRideStarted, map[string]any{
				"ride_id": ride.ID,
			})
			e.broadcastRide(ctx, broadcast.RideTopic(ride.ID), broadcast.EventRideStarted, ride)
		})
}

// CompleteRide finishes the trip, recomputes the authoritative fare,
// and triggers payment capture. Capture failure never rolls back the
// completion; it is recorded and retried out of band.
func (e *DispatchEngine) CompleteRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := e.transitionByDriver(ctx, rideID, driverID, domain.RideStatusCompleted,
		func(r repository.Repos, ride *domain.Ride, now time.Time) error {
			finalFare := e.finalFare(ride)
			if err := r.Rides.MarkCompleted(ctx, rideID, now, finalFare); err != nil {
				return err
			}
			if err := e.availability.ForceOffline(ctx, r, driverID, now); err != nil {
				return err
			}
			ride.Status = domain.RideStatusCompleted
			ride.CompletedAt = now
			ride.FinalFare = finalFare
			return nil
		},
		func(ctx context.Context, ride *domain.Ride) {
			e.notifier.Notify(ctx, ride.PassengerID, NotifyRideCompleted, map[string]any{
				"ride_id": ride.ID,
				"fare":    ride.FinalFare,
			})
			e.broadcastRide(ctx, broadcast.RideTopic(ride.ID), broadcast.EventRideCompleted, ride)
			e.broadcastRide(ctx, broadcast.UserTopic(ride.PassengerID), broadcast.EventRideCompleted, ride)
		})
	if err != nil {
		return nil, err
	}

	observability.RidesCompleted.Inc()
	if e.payments != nil {
		if err := e.payments.CaptureRideFare(ctx, ride); err != nil && !errors.Is(err, ErrPaymentAlreadyCaptured) {
			e.logger.Error("payment capture failed after completion",
				zap.String("ride_id", ride.ID), zap.Error(err))
		}
	}
	return ride, nil
}

// finalFare reprices the ride from its recorded route, honoring the
// promo discount. A final fare drifting more than 10% from the estimate
// is logged for review.
func (e *DispatchEngine) finalFare(ride *domain.Ride) float64 {
	fare, ok := e.fares.Estimate(ride.DistanceKm, ride.DurationMin)
	if !ok {
		fare = ride.EstimatedFare
	}
	fare -= ride.PromoDiscount
	if fare < 0 {
		fare = 0
	}
	fare = roundFare(fare)

	if ride.EstimatedFare > 0 {
		drift := (fare - ride.EstimatedFare) / ride.EstimatedFare
		if drift > 0.10 || drift < -0.10 {
			e.logger.Warn("final fare drifted from estimate",
				zap.String("ride_id", ride.ID),
				zap.Float64("estimated", ride.EstimatedFare),
				zap.Float64("final", fare))
		}
	}
	return fare
}

// CancelRideInput identifies who is cancelling and why.
type CancelRideInput struct {
	RideID  string
	ActorID string
	Actor   domain.CancelActor
	Reason  string
	Note    string
}

// CancelRide cancels a non-terminal ride. A passenger cancelling after
// a driver accepted owes the cancellation fee; a driver cancelling is
// taken offline with the ride.
func (e *DispatchEngine) CancelRide(ctx context.Context, in CancelRideInput) (*domain.Ride, error) {
	if in.RideID == "" {
		return nil, ErrInvalidRideID
	}

	unlock, err := e.lock(ctx, in.RideID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var ride *domain.Ride
	err = e.tx.RunInTx(ctx, func(r repository.Repos) error {
		current, err := r.Rides.GetByIDForUpdate(ctx, in.RideID)
		if err != nil {
			return err
		}
		if err := e.authorizeCancel(current, in); err != nil {
			return err
		}
		if err := CheckTransition(current.Status, domain.RideStatusCancelled); err != nil {
			return err
		}

		fee := -1.0
		if in.Actor == domain.CancelActorPassenger && current.DriverID != "" {
			fee = e.fares.CancellationFee()
		}
		if err := r.Rides.MarkCancelled(ctx, in.RideID, in.Actor, in.Reason, in.Note, now, fee); err != nil {
			return err
		}
		if in.Actor == domain.CancelActorDriver {
			if err := e.availability.ForceOffline(ctx, r, current.DriverID, now); err != nil {
				return err
			}
		}

		current.Status = domain.RideStatusCancelled
		current.CancelledBy = in.Actor
		current.CancelReason = in.Reason
		current.CancelNote = in.Note
		current.CancelledAt = now
		if fee >= 0 {
			current.FinalFare = fee
		}
		ride = current
		return nil
	})
	unlock()
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRideConflict
		}
		return nil, err
	}

	if err := e.geoIndex.Remove(ctx, ride.ID); err != nil {
		e.logger.Warn("failed to remove cancelled ride from index",
			zap.String("ride_id", ride.ID), zap.Error(err))
	}

	observability.RidesCancelled.WithLabelValues(string(in.Actor)).Inc()
	counterparty := ride.PassengerID
	if in.Actor == domain.CancelActorPassenger {
		counterparty = ride.DriverID
	}
	e.notifier.Notify(ctx, counterparty, NotifyRideCancelled, map[string]any{
		"ride_id":      ride.ID,
		"cancelled_by": string(in.Actor),
		"reason":       in.Reason,
	})
	e.broadcastRide(ctx, broadcast.TopicDrivers, broadcast.EventRideRemoved, ride)
	e.broadcastRide(ctx, broadcast.RideTopic(ride.ID), broadcast.EventRideCancelled, ride)
	return ride, nil
}

func (e *DispatchEngine) authorizeCancel(ride *domain.Ride, in CancelRideInput) error {
	switch in.Actor {
	case domain.CancelActorPassenger:
		if ride.PassengerID != in.ActorID {
			return ErrNotRideParticipant
		}
	case domain.CancelActorDriver:
		if ride.DriverID == "" || ride.DriverID != in.ActorID {
			return ErrNotAssignedDriver
		}
	default:
		return ErrNotRideParticipant
	}
	return nil
}

// FlagSOS raises or clears the SOS flag on a ride. Allowed for either
// participant in any status, terminal included.
func (e *DispatchEngine) FlagSOS(ctx context.Context, rideID, actorID string, on bool) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	ride, err := e.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if actorID != ride.PassengerID && actorID != ride.DriverID {
		return ErrNotRideParticipant
	}

	if err := e.rides.SetSOS(ctx, rideID, on); err != nil {
		return err
	}
	if on {
		counterparty := ride.DriverID
		if actorID == ride.DriverID {
			counterparty = ride.PassengerID
		}
		e.notifier.Notify(ctx, counterparty, NotifySOSRaised, map[string]any{
			"ride_id": rideID,
		})
		ride.SOS = true
		e.broadcastRide(ctx, broadcast.RideTopic(rideID), broadcast.EventSOSRaised, ride)
	}
	return nil
}

// BlockPassenger prevents a passenger's future rides from appearing in
// the driver's scans.
func (e *DispatchEngine) BlockPassenger(ctx context.Context, driverID, passengerID, reason string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if passengerID == "" {
		return ErrInvalidPassengerID
	}
	return e.blocks.Create(ctx, &domain.BlockedPassenger{
		DriverID:    driverID,
		PassengerID: passengerID,
		Reason:      reason,
		CreatedAt:   e.now(),
	})
}

// UpdatePassengerLocation broadcasts a passenger's live position while
// a ride is active.
func (e *DispatchEngine) UpdatePassengerLocation(ctx context.Context, passengerID string, loc domain.LatLng) error {
	if passengerID == "" {
		return ErrInvalidPassengerID
	}
	if !geo.ValidPoint(loc) {
		return ErrInvalidLocation
	}

	ev := broadcast.LocationEvent{
		Type:      broadcast.EventPassengerLocationUpdated,
		UserID:    passengerID,
		Lat:       loc.Lat,
		Lng:       loc.Lng,
		Timestamp: e.now(),
	}
	if ride, err := e.rides.GetActiveByPassenger(ctx, passengerID); err == nil {
		ev.RideID = ride.ID
		e.publish(ctx, broadcast.RideTopic(ride.ID), ev)
	}
	e.publish(ctx, broadcast.TopicPassengersLocation, ev)
	return nil
}

// GetRide returns a ride to one of its participants.
func (e *DispatchEngine) GetRide(ctx context.Context, rideID, actorID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	ride, err := e.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if actorID != "" && actorID != ride.PassengerID && actorID != ride.DriverID {
		return nil, ErrNotRideParticipant
	}
	return ride, nil
}

// transitionByDriver runs a driver-authorized lifecycle step under the
// ride lock. apply performs the conditional update and mutates the
// in-memory ride; after performs fan-out once the transaction commits.
func (e *DispatchEngine) transitionByDriver(
	ctx context.Context,
	rideID, driverID string,
	to domain.RideStatus,
	apply func(r repository.Repos, ride *domain.Ride, now time.Time) error,
	after func(ctx context.Context, ride *domain.Ride),
) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	unlock, err := e.lock(ctx, rideID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var ride *domain.Ride
	err = e.tx.RunInTx(ctx, func(r repository.Repos) error {
		current, err := r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if current.DriverID != driverID {
			return ErrNotAssignedDriver
		}
		if err := CheckTransition(current.Status, to); err != nil {
			return err
		}
		if err := apply(r, current, now); err != nil {
			return err
		}
		ride = current
		return nil
	})
	unlock()
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRideConflict
		}
		return nil, err
	}

	after(ctx, ride)
	return ride, nil
}

// lock acquires the ride's dispatch lock, spinning briefly so two
// near-simultaneous callers serialize instead of one failing outright.
func (e *DispatchEngine) lock(ctx context.Context, rideID string) (func(), error) {
	deadline := e.now().Add(e.settings.LockTTL)
	for {
		ok, err := e.locks.AcquireRideLock(ctx, rideID, e.settings.LockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				if err := e.locks.ReleaseRideLock(context.WithoutCancel(ctx), rideID); err != nil {
					e.logger.Warn("failed to release ride lock",
						zap.String("ride_id", rideID), zap.Error(err))
				}
			}, nil
		}
		if e.now().After(deadline) {
			return nil, ErrRideConflict
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}

func (e *DispatchEngine) broadcastRide(ctx context.Context, topic, eventType string, ride *domain.Ride) {
	e.publish(ctx, topic, broadcast.NewRideEvent(eventType, ride, e.now()))
}

func (e *DispatchEngine) publish(ctx context.Context, topic string, payload any) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, topic, payload); err != nil {
		e.logger.Debug("broadcast publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
