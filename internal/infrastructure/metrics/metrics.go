package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_swipes_total",
			Help: "Total number of swipes by action",
		},
		[]string{"action"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_matches_total",
			Help: "Total number of one-directional matches recorded",
		},
	)

	mutualMatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_mutual_matches_total",
			Help: "Total number of mutual matches created",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_compatibility_scores",
			Help:    "Distribution of overall compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "discovery_fetch_duration_seconds",
			Help: "Duration of candidate fetches",
		},
		[]string{"kind"},
	)

	fetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_fetch_errors_total",
			Help: "Total number of failed candidate fetches",
		},
		[]string{"kind"},
	)

	staleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_stale_responses_total",
			Help: "Responses discarded because the session moved on",
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "discovery_active_sessions",
			Help: "Number of open discovery sessions",
		},
	)
)

func RecordSwipe(action string) {
	swipesTotal.WithLabelValues(action).Inc()
}

func RecordMatch() {
	matchesTotal.Inc()
}

func RecordMutualMatch() {
	mutualMatchesTotal.Inc()
}

func RecordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

// RecordFetch observes one fetch; kind is "load" or "append".
func RecordFetch(kind string, started time.Time, err error) {
	fetchDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	if err != nil {
		fetchErrorsTotal.WithLabelValues(kind).Inc()
	}
}

func RecordStaleResponse() {
	staleResponsesTotal.Inc()
}

func SessionOpened() {
	activeSessions.Inc()
}

func SessionClosed() {
	activeSessions.Dec()
}
