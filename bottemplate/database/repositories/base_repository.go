package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// SQLSTATE codes the store reacts to.
const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// BaseRepository provides common repository functionality
type BaseRepository struct {
	db             *bun.DB
	defaultTimeout time.Duration
}

func NewBaseRepository(db *bun.DB) *BaseRepository {
	return &BaseRepository{
		db:             db,
		defaultTimeout: config.DefaultQueryTimeout,
	}
}

// RepositoryError represents a repository-level error. Err wraps both the
// rewards sentinel and the driver error, so errors.Is works for either.
type RepositoryError struct {
	Operation string
	Entity    string
	Err       error
}

func (re *RepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s for %s: %v", re.Operation, re.Entity, re.Err)
}

func (re *RepositoryError) Unwrap() error {
	return re.Err
}

func (br *BaseRepository) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, br.defaultTimeout)
}

// Transaction runs fn in a READ COMMITTED transaction. Every write the store
// issues is a single conditional statement, so row locks are enough.
func (br *BaseRepository) Transaction(ctx context.Context, fn func(context.Context, bun.Tx) error) error {
	ctx, cancel := br.WithTimeout(ctx)
	defer cancel()

	return br.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// HandleError maps driver failures onto the rewards sentinels.
func HandleError(operation, entity string, err error) error {
	if err == nil {
		return nil
	}
	var re *RepositoryError
	if errors.As(err, &re) {
		return err
	}
	if sentinel := classify(err); sentinel != nil {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return &RepositoryError{Operation: operation, Entity: entity, Err: err}
}

func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return rewards.ErrNotFound
	}
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Field('C') {
	case uniqueViolation:
		return rewards.ErrDuplicate
	case serializationFailure, deadlockDetected:
		return rewards.ErrConcurrencyConflict
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, rewards.ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, rewards.ErrDuplicate) || errors.Is(err, rewards.ErrConcurrencyConflict)
}
