package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

const pendingRidesKey = "rides:pending"

// RideDistance is a pending ride's geo entry with its distance from the
// query point.
type RideDistance struct {
	RideID     string
	Origin     domain.LatLng
	DistanceKm float64
}

// PendingRideIndex maintains the geo index of pending ride origins using
// Redis GEOADD/GEORADIUS.
type PendingRideIndex struct {
	client *redis.Client
}

// NewPendingRideIndex creates a new PendingRideIndex.
func NewPendingRideIndex(client *redis.Client) *PendingRideIndex {
	return &PendingRideIndex{client: client}
}

// Add indexes a pending ride's origin.
func (s *PendingRideIndex) Add(ctx context.Context, rideID string, origin domain.LatLng) error {
	return s.client.GeoAdd(ctx, pendingRidesKey, &redis.GeoLocation{
		Name:      rideID,
		Longitude: origin.Lng,
		Latitude:  origin.Lat,
	}).Err()
}

// Remove drops a ride from the index. Called when a ride leaves pending.
func (s *PendingRideIndex) Remove(ctx context.Context, rideID string) error {
	return s.client.ZRem(ctx, pendingRidesKey, rideID).Err()
}

// Nearby returns ride IDs within radiusKm of the point, nearest first,
// capped at limit. Entries can be stale; callers must re-verify each ride
// against the durable store.
func (s *PendingRideIndex) Nearby(ctx context.Context, point domain.LatLng, radiusKm float64, limit int) ([]RideDistance, error) {
	results, err := s.client.GeoRadius(ctx, pendingRidesKey, point.Lng, point.Lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
		Count:     limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	rides := make([]RideDistance, 0, len(results))
	for _, r := range results {
		rides = append(rides, RideDistance{
			RideID:     r.Name,
			Origin:     domain.LatLng{Lat: r.Latitude, Lng: r.Longitude},
			DistanceKm: r.Dist,
		})
	}

	return rides, nil
}
