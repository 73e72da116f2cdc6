// internal/metrics/metrics.go
//
// Prometheus metrics for solves and live attempts. Everything registers with
// the default registry, which /metrics serves.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wordler"

var (
	// attempts counts finished attempts.
	// Labels: mode (random, simulate, daily, bench, live), outcome (solved, failed, aborted)
	attempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "attempts_total",
		Help:      "Finished solve attempts by mode and outcome",
	}, []string{"mode", "outcome"})

	// guesses is the distribution of guesses taken by solved attempts.
	// Labels: mode
	guesses = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "guesses",
		Help:      "Guesses taken by solved attempts",
		Buckets:   []float64{1, 2, 3, 4, 5, 6},
	}, []string{"mode"})

	// pickLatency measures one guess selection.
	pickLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "pick_duration_seconds",
		Help:      "Time to select one guess",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	// rejections counts guesses the live surface refused.
	rejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "rejections_total",
		Help:      "Guesses rejected by the live surface",
	})

	// extractions counts pattern reads.
	// Labels: strategy (primary, secondary, none)
	extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "extractions_total",
		Help:      "Pattern reads by the strategy that produced them",
	}, []string{"strategy"})

	// faults counts session faults.
	// Labels: op (acquire, reset, ready, submit, read)
	faults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "faults_total",
		Help:      "Automation session faults by operation",
	}, []string{"op"})

	// corpusWords reports the size of the installed lists.
	// Labels: list (answers, allowed)
	corpusWords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "corpus",
		Name:      "words",
		Help:      "Words in the installed corpus",
	}, []string{"list"})
)

// RecordAttempt records a finished attempt. Solved attempts also observe
// their guess count.
func RecordAttempt(mode, outcome string, guessCount int) {
	attempts.WithLabelValues(mode, outcome).Inc()
	if outcome == OutcomeSolved {
		guesses.WithLabelValues(mode).Observe(float64(guessCount))
	}
}

// Attempt outcomes.
const (
	OutcomeSolved  = "solved"
	OutcomeFailed  = "failed"
	OutcomeAborted = "aborted"
)

// ObservePick records the duration of one selection in seconds.
func ObservePick(seconds float64) { pickLatency.Observe(seconds) }

// RecordRejection counts one rejected live guess.
func RecordRejection() { rejections.Inc() }

// RecordExtraction counts one pattern read. strategy is "primary",
// "secondary" or "none" when both failed.
func RecordExtraction(strategy string) { extractions.WithLabelValues(strategy).Inc() }

// RecordFault counts a session fault on op.
func RecordFault(op string) { faults.WithLabelValues(op).Inc() }

// SetCorpus publishes list sizes.
func SetCorpus(answers, allowed int) {
	corpusWords.WithLabelValues("answers").Set(float64(answers))
	corpusWords.WithLabelValues("allowed").Set(float64(allowed))
}
