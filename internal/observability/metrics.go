// README: Prometheus metrics for the marketplace, shifts and HTTP layer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PackagesCreated  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roadie", Name: "packages_created_total", Help: "Package requests created"})
	PackagesAccepted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roadie", Name: "packages_accepted_total", Help: "Package requests accepted by a driver"})
	AcceptConflicts  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roadie", Name: "accept_conflicts_total", Help: "Accepts rejected because the package was no longer pending"})

	ShiftsStarted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roadie", Name: "shifts_started_total", Help: "Shift sessions started or reset"})
	ShiftTrips    = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadie", Name: "shift_trips_total", Help: "Simulated trips by outcome"},
		[]string{"outcome"},
	)
	ShiftEarnings = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roadie", Name: "shift_earnings_total", Help: "Fares collected by completed simulated trips"})

	FareAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roadie",
			Name:      "fare_amount",
			Help:      "Quoted fares by rate kind",
			Buckets:   []float64{5, 10, 15, 20, 30, 50, 75, 100, 200},
		},
		[]string{"kind"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadie", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roadie",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
