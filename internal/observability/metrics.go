package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rides_requested_total",
		Help: "Total ride requests created.",
	})

	RidesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rides_accepted_total",
		Help: "Total rides accepted by a driver.",
	})

	RidesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rides_completed_total",
		Help: "Total rides completed.",
	})

	RidesCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rides_cancelled_total",
		Help: "Total rides cancelled, by actor.",
	}, []string{"by"})

	AcceptConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ride_accept_conflicts_total",
		Help: "Accept attempts that lost the race for a ride.",
	})

	DispatchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_candidates_returned",
		Help:    "Pending rides returned per availability scan.",
		Buckets: []float64{0, 1, 2, 5, 10, 20},
	})

	FareDiscrepancies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fare_discrepancies_total",
		Help: "Client fares rejected for exceeding the reconciliation tolerance.",
	})

	StaleSessionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driver_stale_sessions_closed_total",
		Help: "Driver sessions force-closed by the sweeper.",
	})

	RouteLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_lookup_duration_seconds",
		Help:    "Latency of external routing lookups.",
		Buckets: prometheus.DefBuckets,
	})
)
