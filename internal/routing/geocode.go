package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// Geocoder answers reverse-geocoding queries. Addresses are display-only;
// callers substitute a placeholder on failure and carry on.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, point domain.LatLng) (string, error)
}

// NominatimClient reverse-geocodes against a Nominatim-compatible server.
type NominatimClient struct {
	Endpoint  string
	UserAgent string
	Client    *http.Client
}

// NewNominatimClient creates a reverse-geocoding client.
func NewNominatimClient(endpoint, userAgent string) *NominatimClient {
	return &NominatimClient{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: requestTimeout},
	}
}

// ReverseGeocode returns a display address for the point.
func (n *NominatimClient) ReverseGeocode(ctx context.Context, point domain.LatLng) (string, error) {
	url := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.6f&lon=%.6f", n.Endpoint, point.Lat, point.Lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode status %d", resp.StatusCode)
	}

	var out struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.DisplayName == "" {
		return "", fmt.Errorf("geocode: empty result")
	}
	return out.DisplayName, nil
}

var _ Geocoder = (*NominatimClient)(nil)
