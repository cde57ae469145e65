package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionRebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "navigation_session_rebuilds_total",
		Help: "Total number of engine sessions built from new core options",
	})
	SessionRebuildFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navigation_session_rebuild_failures_total",
		Help: "Total number of failed session rebuilds by phase",
	}, []string{"phase"})
	PresentationRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "navigation_presentation_refreshes_total",
		Help: "Total number of display option refreshes",
	})
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navigation_commands_total",
		Help: "Navigation commands by operation and outcome",
	}, []string{"op", "outcome"})
	RouteQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navigation_route_queries_total",
		Help: "Route queries by outcome",
	}, []string{"status"})
	RouteQueryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "navigation_route_query_duration_ms",
		Help:    "Route query duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
	})
	RouteCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "navigation_route_cache_hits_total",
		Help: "Total route cache hits",
	})
	RouteCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "navigation_route_cache_misses_total",
		Help: "Total route cache misses",
	})
	LocationFixesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navigation_location_fixes_total",
		Help: "Location fixes received by source and outcome",
	}, []string{"source", "outcome"})
	StateSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "navigation_state_stream_subscribers",
		Help: "Number of connected state stream clients",
	})
)

func init() {
	prometheus.MustRegister(SessionRebuildsTotal)
	prometheus.MustRegister(SessionRebuildFailuresTotal)
	prometheus.MustRegister(PresentationRefreshesTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(RouteQueriesTotal)
	prometheus.MustRegister(RouteQueryDurationMs)
	prometheus.MustRegister(RouteCacheHitsTotal)
	prometheus.MustRegister(RouteCacheMissesTotal)
	prometheus.MustRegister(LocationFixesTotal)
	prometheus.MustRegister(StateSubscribers)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
