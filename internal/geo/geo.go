package geo

import (
	"math"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b domain.LatLng) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// ValidLatitude reports whether lat is a legal latitude.
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is a legal longitude.
func ValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// ValidPoint reports whether p is a legal coordinate pair.
func ValidPoint(p domain.LatLng) bool {
	return ValidLatitude(p.Lat) && ValidLongitude(p.Lng)
}

// RoundCoord rounds a coordinate to 4 decimal places (~11m), used for
// cache keys so nearby lookups share entries.
func RoundCoord(v float64) float64 {
	return math.Round(v*10000) / 10000
}
