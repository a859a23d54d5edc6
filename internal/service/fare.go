package service

import (
	"math"

	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/observability"
)

// FareSettings holds the pricing parameters applied to every estimate.
type FareSettings struct {
	BaseFare       float64
	PerKm          float64
	PerMinute      float64
	MinimumFare    float64
	PeakMultiplier float64
	// CancellationFee is charged when a passenger cancels after a
	// driver accepted.
	CancellationFee float64
	// TolerancePct bounds how far a client-supplied fare may deviate
	// from the server estimate, as a fraction of the larger value.
	TolerancePct float64
}

// FareCalculator prices rides from route distance and duration.
type FareCalculator struct {
	settings FareSettings
	logger   *zap.Logger
}

func NewFareCalculator(settings FareSettings, logger *zap.Logger) *FareCalculator {
	if settings.PeakMultiplier <= 0 {
		settings.PeakMultiplier = 1.0
	}
	return &FareCalculator{settings: settings, logger: logger}
}

// Estimate computes the fare for a route. The second return is false
// when the inputs cannot be priced.
func (c *FareCalculator) Estimate(distanceKm, durationMin float64) (float64, bool) {
	if distanceKm < 0 || durationMin < 0 ||
		math.IsNaN(distanceKm) || math.IsNaN(durationMin) ||
		math.IsInf(distanceKm, 0) || math.IsInf(durationMin, 0) {
		return 0, false
	}

	fare := c.settings.BaseFare +
		distanceKm*c.settings.PerKm +
		durationMin*c.settings.PerMinute
	if fare < c.settings.MinimumFare {
		fare = c.settings.MinimumFare
	}
	fare *= c.settings.PeakMultiplier

	return roundFare(fare), true
}

// ReconcileClientFare checks a client-computed fare against the server
// estimate. The client value is accepted when within tolerance, else
// the server value wins and the discrepancy is logged.
func (c *FareCalculator) ReconcileClientFare(rideID string, clientFare, serverFare float64) float64 {
	limit := math.Max(0.01, c.settings.TolerancePct*math.Max(clientFare, serverFare))
	if math.Abs(clientFare-serverFare) <= limit {
		return roundFare(clientFare)
	}

	observability.FareDiscrepancies.Inc()
	c.logger.Warn("client fare outside tolerance, using server estimate",
		zap.String("ride_id", rideID),
		zap.Float64("client_fare", clientFare),
		zap.Float64("server_fare", serverFare))
	return serverFare
}

// CancellationFee reports the fee charged to a passenger who cancels
// an already accepted ride.
func (c *FareCalculator) CancellationFee() float64 {
	return roundFare(c.settings.CancellationFee)
}

func roundFare(f float64) float64 {
	return math.Round(f*100) / 100
}
