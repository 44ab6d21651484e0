package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

const namespace = "progression"

// Recorder turns committed grants and refused operations into Prometheus series.
type Recorder struct {
	grants     *prometheus.CounterVec
	coins      *prometheus.CounterVec
	xp         *prometheus.CounterVec
	levelUps   prometheus.Counter
	spinPayout prometheus.Histogram
	denials    *prometheus.CounterVec
}

var _ rewards.Listener = (*Recorder)(nil)

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		grants: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "grants_total",
			Help:      "Committed ledger postings by entry type.",
		}, []string{"kind"}),
		coins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "coins_total",
			Help:      "Coins moved by entry type and direction.",
		}, []string{"kind", "direction"}),
		xp: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "xp_total",
			Help:      "XP granted by entry type.",
		}, []string{"kind"}),
		levelUps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "levels",
			Name:      "level_ups_total",
			Help:      "Postings that raised a user's level.",
		}),
		spinPayout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lottery",
			Name:      "spin_payout_coins",
			Help:      "Coins won per wheel spin.",
			Buckets:   []float64{5, 10, 25, 50, 100, 500},
		}),
		denials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "denials_total",
			Help:      "Operations refused by the engine, by operation and reason.",
		}, []string{"operation", "reason"}),
	}
}

func (r *Recorder) Granted(_ context.Context, g rewards.Grant) error {
	kind := string(g.Kind)
	entry := g.Receipt.Entry

	r.grants.WithLabelValues(kind).Inc()
	switch {
	case entry.Amount > 0:
		r.coins.WithLabelValues(kind, "credit").Add(float64(entry.Amount))
	case entry.Amount < 0:
		r.coins.WithLabelValues(kind, "debit").Add(float64(-entry.Amount))
	}
	if entry.XP > 0 {
		r.xp.WithLabelValues(kind).Add(float64(entry.XP))
	}
	if g.Receipt.LevelUp() {
		r.levelUps.Inc()
	}
	if g.Kind == rewards.EntryWheelSpin {
		r.spinPayout.Observe(float64(entry.Amount))
	}
	return nil
}

// Denied counts a refused operation. Nil errors are ignored.
func (r *Recorder) Denied(operation string, err error) {
	if err == nil {
		return
	}
	r.denials.WithLabelValues(operation, Reason(err)).Inc()
}

// Reason maps engine errors onto a small fixed label set.
func Reason(err error) string {
	switch {
	case errors.Is(err, rewards.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, rewards.ErrAlreadySpun):
		return "already_spun"
	case errors.Is(err, rewards.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, rewards.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, rewards.ErrNotFound):
		return "not_found"
	case errors.Is(err, rewards.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, rewards.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
