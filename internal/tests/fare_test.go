package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

func TestFareEstimateDeterministic(t *testing.T) {
	calc := service.NewFareCalculator(service.FareSettings{
		BaseFare:       5,
		PerKm:          1.5,
		PerMinute:      0.5,
		MinimumFare:    0,
		PeakMultiplier: 1,
	}, zap.NewNop())

	fare, ok := calc.Estimate(10, 20)
	require.True(t, ok)
	assert.Equal(t, 30.00, fare)

	// Same inputs, same fare.
	again, _ := calc.Estimate(10, 20)
	assert.Equal(t, fare, again)
}

func TestFareEstimateMinimumFloor(t *testing.T) {
	calc := service.NewFareCalculator(service.FareSettings{
		BaseFare:    1,
		PerKm:       1,
		MinimumFare: 8,
	}, zap.NewNop())

	fare, ok := calc.Estimate(0.5, 0)
	require.True(t, ok)
	assert.Equal(t, 8.00, fare)
}

func TestFareEstimatePeakMultiplier(t *testing.T) {
	calc := service.NewFareCalculator(service.FareSettings{
		BaseFare:       5,
		PerKm:          1.5,
		PerMinute:      0.5,
		PeakMultiplier: 1.5,
	}, zap.NewNop())

	fare, ok := calc.Estimate(10, 20)
	require.True(t, ok)
	assert.Equal(t, 45.00, fare)
}

func TestFareEstimateRejectsBadInputs(t *testing.T) {
	calc := service.NewFareCalculator(service.FareSettings{BaseFare: 5}, zap.NewNop())

	_, ok := calc.Estimate(-1, 10)
	assert.False(t, ok)

	_, ok = calc.Estimate(10, -1)
	assert.False(t, ok)
}

func TestReconcileClientFareWithinTolerance(t *testing.T) {
	calc := service.NewFareCalculator(service.FareSettings{TolerancePct: 0.02}, zap.NewNop())

	// 1% off: client value accepted.
	assert.Equal(t, 30.25, calc.ReconcileClientFare("r1", 30.25, 30.00))

	// 10% off: server value wins.
	assert.Equal(t, 30.00, calc.ReconcileClientFare("r1", 33.00, 30.00))
}
