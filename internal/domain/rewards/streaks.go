package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// DailyRewardResult is returned by a successful daily claim.
type DailyRewardResult struct {
	XP              int64   `json:"xp"`
	Coins           int64   `json:"coins"`
	NewStreakLength int     `json:"new_streak_length"`
	CycleDay        int     `json:"cycle_day"`
	Receipt         Receipt `json:"receipt"`
}

// StreakStatus is the read-side view of a user's daily streak.
type StreakStatus struct {
	// Length is zero once the streak has been broken by a missed day.
	Length       int             `json:"length"`
	CycleDay     int             `json:"cycle_day"`
	LastClaimDay *string         `json:"last_claim_day,omitempty"`
	CanClaim     bool            `json:"can_claim"`
	NextReward   DailyRewardTier `json:"next_reward"`
}

// StreakTracker implements the daily claim cycle. Streak state is derived
// from the latest claim row and never updated in place.
type StreakTracker struct {
	store    Store
	catalog  *Catalog
	ledger   *Ledger
	calendar Calendar
	claimed  *DayLog
}

func NewStreakTracker(store Store, catalog *Catalog, ledger *Ledger, calendar Calendar, claimed *DayLog) *StreakTracker {
	return &StreakTracker{store: store, catalog: catalog, ledger: ledger, calendar: calendar, claimed: claimed}
}

func (t *StreakTracker) CanClaim(ctx context.Context, userID snowflake.ID) (bool, error) {
	today := t.calendar.Today()
	if t.claimed.Seen(userID, today) {
		return false, nil
	}

	latest, err := t.store.LatestStreakClaim(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if SameDay(latest.Day, today) {
		t.claimed.Mark(userID, today)
		return false, nil
	}
	return true, nil
}

func (t *StreakTracker) Claim(ctx context.Context, userID snowflake.ID) (DailyRewardResult, error) {
	today := t.calendar.Today()
	if t.claimed.Seen(userID, today) {
		return DailyRewardResult{}, ErrAlreadyClaimed
	}

	var result DailyRewardResult
	err := t.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetProgression(ctx, userID); err != nil {
			return err
		}

		latest, err := tx.LatestStreakClaim(ctx, userID)
		hasPrev := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if hasPrev && SameDay(latest.Day, today) {
			return ErrAlreadyClaimed
		}

		streak, cycleDay := 1, 1
		if hasPrev && SameDay(latest.Day, previousDay(today)) {
			streak = latest.StreakLength + 1
			cycleDay = latest.CycleDay%StreakCycleLength + 1
		}
		tier := t.catalog.DailyReward(cycleDay)

		claim := DailyStreakClaim{
			ID:           uuid.New(),
			UserID:       userID,
			Day:          today,
			StreakLength: streak,
			CycleDay:     cycleDay,
			XP:           tier.XP,
			Coins:        tier.Coins,
			ClaimedAt:    t.calendar.Now().UTC(),
		}
		if err := tx.InsertStreakClaim(ctx, claim); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return ErrAlreadyClaimed
			}
			return fmt.Errorf("insert streak claim: %w", err)
		}

		receipt, err := t.ledger.Post(ctx, tx, Posting{
			UserID:      userID,
			Amount:      tier.Coins,
			XP:          tier.XP,
			Description: fmt.Sprintf("Daily reward day %d (streak %d)", cycleDay, streak),
			Metadata:    StreakClaim{Day: formatDay(today), CycleDay: cycleDay, StreakLength: streak},
		})
		if err != nil {
			return err
		}

		result = DailyRewardResult{
			XP:              tier.XP,
			Coins:           tier.Coins,
			NewStreakLength: streak,
			CycleDay:        cycleDay,
			Receipt:         receipt,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			t.claimed.Mark(userID, today)
		}
		return DailyRewardResult{}, err
	}

	t.claimed.Mark(userID, today)
	return result, nil
}

// Status derives the current streak from the latest claim.
func (t *StreakTracker) Status(ctx context.Context, userID snowflake.ID) (StreakStatus, error) {
	today := t.calendar.Today()
	status := StreakStatus{CanClaim: true, NextReward: t.catalog.DailyReward(1)}

	latest, err := t.store.LatestStreakClaim(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return StreakStatus{}, err
	}

	day := formatDay(latest.Day)
	status.LastClaimDay = &day

	switch {
	case SameDay(latest.Day, today):
		status.Length = latest.StreakLength
		status.CycleDay = latest.CycleDay
		status.CanClaim = false
		status.NextReward = t.catalog.DailyReward(latest.CycleDay%StreakCycleLength + 1)
	case SameDay(latest.Day, previousDay(today)):
		status.Length = latest.StreakLength
		status.CycleDay = latest.CycleDay
		status.NextReward = t.catalog.DailyReward(latest.CycleDay%StreakCycleLength + 1)
	}
	return status, nil
}
