package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

const user = snowflake.ID(42)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New(nil)
	err := s.Atomic(context.Background(), func(ctx context.Context, tx rewards.Tx) error {
		return tx.CreateProgression(ctx, rewards.UserProgressionState{UserID: user, Level: 1})
	})
	require.NoError(t, err)
	return s
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
		if _, err := tx.ApplyDelta(ctx, user, rewards.Delta{Coins: 50, XP: 500}); err != nil {
			return err
		}
		if err := tx.AppendLedgerEntry(ctx, rewards.LedgerEntry{UserID: user, Amount: 50}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	state, err := s.GetProgression(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, state.CoinBalance)
	assert.Zero(t, state.TotalXP)

	totals, err := s.LedgerTotals(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, totals.Entries)
}

func TestApplyDeltaRejectsNegativeBalance(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
		_, err := tx.ApplyDelta(ctx, user, rewards.Delta{Coins: -1})
		return err
	})
	require.ErrorIs(t, err, rewards.ErrConditionFailed)

	err = s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
		_, err := tx.ApplyDelta(ctx, snowflake.ID(7), rewards.Delta{Coins: 1})
		return err
	})
	require.ErrorIs(t, err, rewards.ErrNotFound)
}

func TestCompleteQuestSucceedsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := seeded(t)
	ctx := context.Background()
	err := s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
		if _, err := tx.EnsureQuestProgress(ctx, user, "first_post"); err != nil {
			return err
		}
		_, err := tx.AddQuestProgress(ctx, user, "first_post", 1, 1)
		return err
	})
	require.NoError(t, err)

	const attempts = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		lost int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
				return tx.CompleteQuest(ctx, user, "first_post", 1, time.Now())
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, rewards.ErrConditionFailed):
				lost++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, lost)

	err = s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
		_, err := tx.AddQuestProgress(ctx, user, "first_post", 1, 1)
		return err
	})
	require.ErrorIs(t, err, rewards.ErrConditionFailed)
}

func TestUniqueDayInserts(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	insertClaim := func(day time.Time) error {
		return s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
			return tx.InsertStreakClaim(ctx, rewards.DailyStreakClaim{UserID: user, Day: day, StreakLength: 1, CycleDay: 1})
		})
	}
	insertSpin := func(day time.Time) error {
		return s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
			return tx.InsertWheelSpin(ctx, rewards.WheelSpin{UserID: user, Day: day, SegmentID: "pebble"})
		})
	}

	require.NoError(t, insertClaim(day))
	require.ErrorIs(t, insertClaim(day), rewards.ErrDuplicate)
	require.NoError(t, insertClaim(day.AddDate(0, 0, 1)))

	require.NoError(t, insertSpin(day))
	require.ErrorIs(t, insertSpin(day), rewards.ErrDuplicate)

	latest, err := s.LatestStreakClaim(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, day.AddDate(0, 0, 1), latest.Day)

	_, err = s.GetWheelSpin(ctx, user, day.AddDate(0, 0, 1))
	require.ErrorIs(t, err, rewards.ErrNotFound)
}

func TestListLedgerEntriesNewestFirst(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		err := s.Atomic(ctx, func(ctx context.Context, tx rewards.Tx) error {
			return tx.AppendLedgerEntry(ctx, rewards.LedgerEntry{UserID: user, Amount: i})
		})
		require.NoError(t, err)
	}

	entries, err := s.ListLedgerEntries(ctx, user, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].Amount)
	assert.Equal(t, int64(2), entries[1].Amount)
}
