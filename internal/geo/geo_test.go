package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

func TestHaversineKm_OneDegreeLongitudeAtEquator(t *testing.T) {
	d := HaversineKm(domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 0, Lng: 1})
	assert.InDelta(t, 111.19, d, 0.5)
}

func TestHaversineKm_ZeroDistance(t *testing.T) {
	p := domain.LatLng{Lat: 33.8938, Lng: 35.5018}
	assert.Zero(t, HaversineKm(p, p))
}

func TestHaversineKm_Symmetric(t *testing.T) {
	a := domain.LatLng{Lat: 33.8938, Lng: 35.5018} // Beirut
	b := domain.LatLng{Lat: 34.4367, Lng: 35.8497} // Tripoli
	assert.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9)
	assert.InDelta(t, 67.7, HaversineKm(a, b), 2.0)
}

func TestValidPoint(t *testing.T) {
	assert.True(t, ValidPoint(domain.LatLng{Lat: -90, Lng: 180}))
	assert.False(t, ValidPoint(domain.LatLng{Lat: 90.1, Lng: 0}))
	assert.False(t, ValidPoint(domain.LatLng{Lat: 0, Lng: -180.5}))
}

func TestRoundCoord(t *testing.T) {
	assert.Equal(t, 33.8938, RoundCoord(33.89382))
	assert.Equal(t, 33.8939, RoundCoord(33.89386))
	assert.Equal(t, -35.5018, RoundCoord(-35.50181))
}
