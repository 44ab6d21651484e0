package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// Reconciler is satisfied by *rewards.Engine.
type Reconciler interface {
	Reconcile(ctx context.Context, userID snowflake.ID) (rewards.Reconciliation, error)
}

type UserLister interface {
	ListUserIDs(ctx context.Context) ([]snowflake.ID, error)
}

type ReconcileReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Checked     int                      `json:"checked"`
	Mismatches  []rewards.Reconciliation `json:"mismatches"`
}

func (r *ReconcileReport) Balanced() bool {
	return len(r.Mismatches) == 0
}

// Sweep reconciles every user in ids, or every stored user when ids is empty,
// with at most concurrency checks in flight.
func Sweep(ctx context.Context, rec Reconciler, users UserLister, ids []snowflake.ID, concurrency int) (*ReconcileReport, error) {
	if len(ids) == 0 {
		var err error
		if ids, err = users.ListUserIDs(ctx); err != nil {
			return nil, err
		}
	}
	if concurrency <= 0 {
		concurrency = config.ReconcileConcurrency
	}

	start := time.Now()
	report := &ReconcileReport{GeneratedAt: start.UTC(), Checked: len(ids)}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			r, err := rec.Reconcile(ctx, id)
			if err != nil {
				return err
			}
			if !r.Balanced {
				mu.Lock()
				report.Mismatches = append(report.Mismatches, r)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(report.Mismatches, func(a, b rewards.Reconciliation) int {
		return cmp.Compare(a.UserID, b.UserID)
	})

	slog.Info("Reconciliation finished",
		slog.String("type", "engine"),
		slog.Int("checked", report.Checked),
		slog.Int("mismatches", len(report.Mismatches)),
		slog.Duration("took", time.Since(start)))
	return report, nil
}
