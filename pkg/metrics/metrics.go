package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdminLogins records site admin login attempts by result (success|failure).
	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamcal_admin_logins_total",
			Help: "Total number of site admin login attempts",
		},
		[]string{"result"},
	)

	// AdminCodeChecks counts team admin code verifications by result (allow|deny).
	AdminCodeChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamcal_admin_code_checks_total",
			Help: "Total number of team admin code checks",
		},
		[]string{"result"},
	)

	// Invalidations counts calendar invalidation signals emitted after team mutations.
	Invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamcal_invalidations_total",
			Help: "Total number of calendar invalidation signals",
		},
	)

	// RangeExpansionDays observes how many rows a range create expanded to.
	RangeExpansionDays = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamcal_range_expansion_days",
			Help:    "Days produced by date range expansion",
			Buckets: []float64{1, 2, 5, 7, 14, 31, 92, 183, 366},
		},
		[]string{"kind"},
	)

	// CalendarCache counts calendar view cache lookups by result (hit|miss).
	CalendarCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamcal_calendar_cache_total",
			Help: "Calendar view cache lookups",
		},
		[]string{"result"},
	)

	// RealtimeConnections tracks open realtime websocket connections.
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamcal_realtime_connections",
			Help: "Number of open realtime connections",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamcal_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
