package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mtihani"

var (
	ResponsesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "responses_submitted_total",
		Help:      "Responses stored (inserted or updated).",
	})

	QuizzesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quizzes_completed_total",
		Help:      "Completions recorded in the ledger.",
	})

	ResultsServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_served_total",
		Help:      "Result summaries returned to respondents.",
	})

	ScoringSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_duration_seconds",
		Help:      "Time spent gathering inputs and scoring one attempt.",
		Buckets:   prometheus.DefBuckets,
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Completion notifications delivered, by sink.",
	}, []string{"sink"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Completion notifications that could not be delivered, by sink.",
	}, []string{"sink"})
)

// Handler serves the metrics in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
