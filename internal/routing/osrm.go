package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/observability"
)

// RouteInfo is the result of a route lookup between two points.
type RouteInfo struct {
	DistanceKm  float64
	DurationMin float64
	Polyline    string
}

// RouteService answers "how far and how long by road" queries. A nil
// result with a nil error never occurs; unavailability is an error the
// caller degrades from.
type RouteService interface {
	GetRouteInfo(ctx context.Context, origin, dest domain.LatLng) (*RouteInfo, error)
}

const (
	requestTimeout = 10 * time.Second
	maxRetries     = 2
	retryBackoff   = 1 * time.Second
)

// OSRMClient performs route lookups against an OSRM HTTP server.
type OSRMClient struct {
	Endpoint string
	Client   *http.Client
}

// NewOSRMClient creates a route client for the given OSRM endpoint.
func NewOSRMClient(endpoint string) *OSRMClient {
	return &OSRMClient{Endpoint: endpoint, Client: &http.Client{Timeout: requestTimeout}}
}

// GetRouteInfo queries OSRM /route between the points. Transient failures
// are retried twice with a short fixed backoff before giving up.
func (o *OSRMClient) GetRouteInfo(ctx context.Context, origin, dest domain.LatLng) (*RouteInfo, error) {
	start := time.Now()
	defer func() {
		observability.RouteLookupDuration.Observe(time.Since(start).Seconds())
	}()

	// OSRM route query: /route/v1/driving/{lon1},{lat1};{lon2},{lat2}
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full",
		o.Endpoint, origin.Lng, origin.Lat, dest.Lng, dest.Lat)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		info, err := o.fetch(ctx, url)
		if err == nil {
			return info, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (o *OSRMClient) fetch(ctx context.Context, url string) (*RouteInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm status %d", resp.StatusCode)
	}

	var out struct {
		Routes []struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
			Geometry string  `json:"geometry"`
		} `json:"routes"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return nil, fmt.Errorf("osrm no route: %v", out.Code)
	}

	return &RouteInfo{
		DistanceKm:  out.Routes[0].Distance / 1000,
		DurationMin: out.Routes[0].Duration / 60,
		Polyline:    out.Routes[0].Geometry,
	}, nil
}

var _ RouteService = (*OSRMClient)(nil)
