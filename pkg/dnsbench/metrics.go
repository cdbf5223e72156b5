package dnsbench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptDurationMetrics = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dnsrtt",
		Name:      "attempt_duration_seconds",
		Help:      "Round-trip duration of successful attempts in seconds",
	}, []string{"target"})

	attemptsTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dnsrtt",
		Name:      "attempts_total",
		Help:      "The total number of attempts by outcome",
	}, []string{"target", "outcome"})

	discardedResponsesTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dnsrtt",
		Name:      "discarded_responses_total",
		Help:      "The total number of received datagrams not matching the sent query",
	}, []string{"target"})
)

func observeAttempt(target string, a Attempt) {
	attemptsTotalMetrics.WithLabelValues(target, a.Outcome.String()).Inc()
	if a.Discarded > 0 {
		discardedResponsesTotalMetrics.WithLabelValues(target).Add(float64(a.Discarded))
	}
	if a.Outcome == OutcomeCompleted {
		attemptDurationMetrics.WithLabelValues(target).Observe(a.Duration.Seconds())
	}
}
