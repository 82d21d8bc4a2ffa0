package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stardust"

var (
	wagerTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wager_requests_total",
			Help:      "Wager operations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	wagerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wager_duration_ms",
			Help:      "Wager operation duration in milliseconds",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
		},
		[]string{"op"},
	)

	feesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "house_fees_total",
			Help:      "Stardust retained by the house, by wager kind",
		},
		[]string{"kind"},
	)

	txRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Transactions replayed after a serialization failure or deadlock",
		},
	)
)

// Wager ops.
const (
	OpFight       = "fight"
	OpCreateLobby = "create_lobby"
	OpJoinLobby   = "join_lobby"
	OpCancelLobby = "cancel_lobby"
)

// RecordWager records one wager call. outcome is "win", "loss", "ok" or an
// error kind; empty means an unclassified failure.
func RecordWager(op, outcome string, started time.Time) {
	if outcome == "" {
		outcome = "error"
	}

	wagerTotal.WithLabelValues(op, outcome).Inc()
	wagerDuration.WithLabelValues(op).Observe(float64(time.Since(started).Milliseconds()))
}

func AddFee(kind string, amount float64) {
	if amount <= 0 {
		return
	}

	feesTotal.WithLabelValues(kind).Add(amount)
}

func RecordTxRetry() {
	txRetries.Inc()
}
