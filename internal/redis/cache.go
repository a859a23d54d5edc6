package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/geo"
)

// CacheStore caches external lookup results in Redis. Staleness here only
// affects display and ETA, never state transitions.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	RouteCacheTTL   = 1 * time.Hour  // Road geometry changes rarely
	AddressCacheTTL = 24 * time.Hour // Street addresses effectively never
)

// Key prefixes
const (
	routeCachePrefix   = "cache:route:"
	addressCachePrefix = "cache:addr:"
)

// CachedRoute represents a cached route lookup.
type CachedRoute struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	Polyline    string  `json:"polyline,omitempty"`
}

// GetRoute retrieves a cached route between two points.
// Returns nil on cache miss.
func (s *CacheStore) GetRoute(ctx context.Context, origin, dest domain.LatLng) (*CachedRoute, error) {
	data, err := s.client.Get(ctx, routeKey(origin, dest)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var route CachedRoute
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// SetRoute caches a route lookup.
func (s *CacheStore) SetRoute(ctx context.Context, origin, dest domain.LatLng, route *CachedRoute) error {
	data, err := json.Marshal(route)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, routeKey(origin, dest), data, RouteCacheTTL).Err()
}

// GetAddress retrieves a cached reverse-geocoded address.
// Returns "", nil on cache miss.
func (s *CacheStore) GetAddress(ctx context.Context, point domain.LatLng) (string, error) {
	addr, err := s.client.Get(ctx, addressKey(point)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return addr, nil
}

// SetAddress caches a reverse-geocoded address.
func (s *CacheStore) SetAddress(ctx context.Context, point domain.LatLng, address string) error {
	return s.client.Set(ctx, addressKey(point), address, AddressCacheTTL).Err()
}

// Keys are built from coordinates rounded to ~11m so nearby lookups share
// cache entries.
func routeKey(origin, dest domain.LatLng) string {
	return fmt.Sprintf("%s%.4f,%.4f:%.4f,%.4f", routeCachePrefix,
		geo.RoundCoord(origin.Lat), geo.RoundCoord(origin.Lng),
		geo.RoundCoord(dest.Lat), geo.RoundCoord(dest.Lng))
}

func addressKey(point domain.LatLng) string {
	return fmt.Sprintf("%s%.4f,%.4f", addressCachePrefix,
		geo.RoundCoord(point.Lat), geo.RoundCoord(point.Lng))
}
