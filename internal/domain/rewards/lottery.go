package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// Rand is the randomness source of a spin. Float64 returns a value in [0, 1).
type Rand interface {
	Float64() float64
}

// Wheel selects segments by cumulative probability.
type Wheel struct {
	segments   []WheelSegment
	boundaries []float64
}

func NewWheel(segments []WheelSegment) *Wheel {
	boundaries := make([]float64, len(segments))
	var acc float64
	for i, s := range segments {
		acc += s.Probability
		boundaries[i] = acc
	}
	if n := len(boundaries); n > 0 {
		// float drift must not leave the last segment unreachable
		boundaries[n-1] = 1.0
	}
	return &Wheel{segments: segments, boundaries: boundaries}
}

// Pick returns the index of the first segment whose boundary is >= r.
func (w *Wheel) Pick(r float64) int {
	for i, b := range w.boundaries {
		if b >= r {
			return i
		}
	}
	return len(w.boundaries) - 1
}

func (w *Wheel) Segments() []WheelSegment {
	return w.segments
}

// SpinResult is returned by a successful spin.
type SpinResult struct {
	Segment    WheelSegment `json:"segment"`
	CoinsWon   int64        `json:"coins_won"`
	NewBalance int64        `json:"new_balance"`
	Receipt    Receipt      `json:"receipt"`
}

// WheelStatus is the read-side view of the lottery cooldown.
type WheelStatus struct {
	CanSpin         bool      `json:"can_spin"`
	NextAvailableAt time.Time `json:"next_available_at"`
}

// LotteryEngine runs the once-per-day weighted wheel.
type LotteryEngine struct {
	store    Store
	wheel    *Wheel
	ledger   *Ledger
	calendar Calendar
	spun     *DayLog
	rng      Rand
}

func NewLotteryEngine(store Store, wheel *Wheel, ledger *Ledger, calendar Calendar, spun *DayLog, rng Rand) *LotteryEngine {
	return &LotteryEngine{store: store, wheel: wheel, ledger: ledger, calendar: calendar, spun: spun, rng: rng}
}

// Spin draws from rng, or from the engine default when rng is nil.
func (l *LotteryEngine) Spin(ctx context.Context, userID snowflake.ID, rng Rand) (SpinResult, error) {
	if rng == nil {
		rng = l.rng
	}
	today := l.calendar.Today()
	if l.spun.Seen(userID, today) {
		return SpinResult{}, l.cooldown()
	}

	var result SpinResult
	err := l.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetProgression(ctx, userID); err != nil {
			return err
		}

		segment := l.wheel.segments[l.wheel.Pick(rng.Float64())]
		spin := WheelSpin{
			ID:        uuid.New(),
			UserID:    userID,
			Day:       today,
			SegmentID: segment.ID,
			Coins:     segment.Coins,
			SpunAt:    l.calendar.Now().UTC(),
		}
		if err := tx.InsertWheelSpin(ctx, spin); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return ErrAlreadySpun
			}
			return fmt.Errorf("insert wheel spin: %w", err)
		}

		receipt, err := l.ledger.Post(ctx, tx, Posting{
			UserID:      userID,
			Amount:      segment.Coins,
			Description: fmt.Sprintf("Wheel spin: %s", segment.Label),
			Metadata:    WheelSpinReward{SegmentID: segment.ID},
		})
		if err != nil {
			return err
		}

		result = SpinResult{
			Segment:    segment,
			CoinsWon:   segment.Coins,
			NewBalance: receipt.State.CoinBalance,
			Receipt:    receipt,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadySpun) {
			l.spun.Mark(userID, today)
			return SpinResult{}, l.cooldown()
		}
		return SpinResult{}, err
	}

	l.spun.Mark(userID, today)
	return result, nil
}

func (l *LotteryEngine) Status(ctx context.Context, userID snowflake.ID) (WheelStatus, error) {
	today := l.calendar.Today()
	if l.spun.Seen(userID, today) {
		return WheelStatus{NextAvailableAt: l.calendar.StartOfTomorrow()}, nil
	}

	_, err := l.store.GetWheelSpin(ctx, userID, today)
	switch {
	case errors.Is(err, ErrNotFound):
		return WheelStatus{CanSpin: true, NextAvailableAt: l.calendar.Now()}, nil
	case err != nil:
		return WheelStatus{}, err
	}
	l.spun.Mark(userID, today)
	return WheelStatus{NextAvailableAt: l.calendar.StartOfTomorrow()}, nil
}

func (l *LotteryEngine) cooldown() error {
	return &SpinCooldownError{NextAvailableAt: l.calendar.StartOfTomorrow()}
}
