package routing

import (
	"context"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	internalRedis "github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/redis"
)

// CachedRouteService wraps a RouteService with the Redis route cache.
type CachedRouteService struct {
	inner RouteService
	cache *internalRedis.CacheStore
}

// NewCachedRouteService creates a caching route service. cache may be nil,
// in which case every call goes straight through.
func NewCachedRouteService(inner RouteService, cache *internalRedis.CacheStore) *CachedRouteService {
	return &CachedRouteService{inner: inner, cache: cache}
}

// GetRouteInfo serves from cache when possible.
func (c *CachedRouteService) GetRouteInfo(ctx context.Context, origin, dest domain.LatLng) (*RouteInfo, error) {
	if c.cache != nil {
		if cached, err := c.cache.GetRoute(ctx, origin, dest); err == nil && cached != nil {
			return &RouteInfo{
				DistanceKm:  cached.DistanceKm,
				DurationMin: cached.DurationMin,
				Polyline:    cached.Polyline,
			}, nil
		}
	}

	info, err := c.inner.GetRouteInfo(ctx, origin, dest)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.SetRoute(ctx, origin, dest, &internalRedis.CachedRoute{
			DistanceKm:  info.DistanceKm,
			DurationMin: info.DurationMin,
			Polyline:    info.Polyline,
		})
	}
	return info, nil
}

// CachedGeocoder wraps a Geocoder with the Redis address cache.
type CachedGeocoder struct {
	inner Geocoder
	cache *internalRedis.CacheStore
}

// NewCachedGeocoder creates a caching geocoder. cache may be nil.
func NewCachedGeocoder(inner Geocoder, cache *internalRedis.CacheStore) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache}
}

// ReverseGeocode serves from cache when possible.
func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, point domain.LatLng) (string, error) {
	if c.cache != nil {
		if addr, err := c.cache.GetAddress(ctx, point); err == nil && addr != "" {
			return addr, nil
		}
	}

	addr, err := c.inner.ReverseGeocode(ctx, point)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		_ = c.cache.SetAddress(ctx, point, addr)
	}
	return addr, nil
}

var (
	_ RouteService = (*CachedRouteService)(nil)
	_ Geocoder     = (*CachedGeocoder)(nil)
)
