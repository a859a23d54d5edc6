package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/broadcast"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/geo"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// DriverService handles driver registration, location reporting and
// scanning-range preferences.
type DriverService struct {
	drivers   repository.DriverRepository
	rides     repository.RideRepository
	publisher broadcast.Publisher
	now       func() time.Time
}

func NewDriverService(
	drivers repository.DriverRepository,
	rides repository.RideRepository,
	publisher broadcast.Publisher,
) *DriverService {
	return &DriverService{
		drivers:   drivers,
		rides:     rides,
		publisher: publisher,
		now:       time.Now,
	}
}

// RegisterDriverInput contains the new driver's profile.
type RegisterDriverInput struct {
	UserID string
	Name   string
	Phone  string
}

// RegisterDriver creates a driver profile. New drivers start offline
// with no known location.
func (s *DriverService) RegisterDriver(ctx context.Context, in RegisterDriverInput) (*domain.Driver, error) {
	if in.Name == "" || in.Phone == "" {
		return nil, ErrInvalidDriverID
	}

	driver := &domain.Driver{
		ID:     uuid.New().String(),
		UserID: in.UserID,
		Name:   in.Name,
		Phone:  in.Phone,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// UpdateLocation stores the driver's position and broadcasts it on the
// live location topic, plus the active ride's topic when one exists.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, loc domain.LatLng) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !geo.ValidPoint(loc) {
		return ErrInvalidLocation
	}

	if err := s.drivers.UpdateLocation(ctx, driverID, loc); err != nil {
		return err
	}

	ev := broadcast.LocationEvent{
		Type:      broadcast.EventDriverLocationUpdated,
		UserID:    driverID,
		Lat:       loc.Lat,
		Lng:       loc.Lng,
		Timestamp: s.now(),
	}
	if ride, err := s.rides.GetActiveByDriver(ctx, driverID); err == nil {
		ev.RideID = ride.ID
		s.publish(ctx, broadcast.RideTopic(ride.ID), ev)
	}
	s.publish(ctx, broadcast.TopicDriversLocation, ev)
	return nil
}

// SetScanningRange updates how far the driver's availability scans
// reach.
func (s *DriverService) SetScanningRange(ctx context.Context, driverID string, radiusKm float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if radiusKm <= 0 {
		return ErrInvalidScanningRange
	}
	return s.drivers.SetScanningRange(ctx, driverID, radiusKm)
}

// GetDriver returns a driver profile.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.drivers.GetByID(ctx, driverID)
}

func (s *DriverService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, topic, payload)
}
