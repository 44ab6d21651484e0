package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

// QueryLogger is a bun query hook that reports failed and slow statements.
type QueryLogger struct {
	slow time.Duration
}

var _ bun.QueryHook = (*QueryLogger)(nil)

func NewQueryLogger(slow time.Duration) *QueryLogger {
	return &QueryLogger{slow: slow}
}

func (l *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (l *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	took := time.Since(event.StartTime)

	// no rows is an expected lookup miss
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", event.Operation()),
			slog.String("query", event.Query),
			slog.Duration("took", took),
			slog.Any("error", event.Err),
		)
		return
	}

	if took >= l.slow {
		slog.Warn("Slow query",
			slog.String("type", "db"),
			slog.String("operation", event.Operation()),
			slog.String("query", event.Query),
			slog.Duration("took", took),
		)
	}
}
