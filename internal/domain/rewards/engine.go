package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const DefaultDayCacheSize = 10000

type engineOptions struct {
	location     *time.Location
	now          func() time.Time
	rng          Rand
	listeners    []Listener
	dayCacheSize int
}

type Option func(*engineOptions)

// WithLocation sets the timezone whose midnight resets daily rewards.
func WithLocation(loc *time.Location) Option {
	return func(o *engineOptions) { o.location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

// WithRand sets the default spin source used when a caller passes nil.
func WithRand(rng Rand) Option {
	return func(o *engineOptions) { o.rng = rng }
}

func WithListeners(listeners ...Listener) Option {
	return func(o *engineOptions) { o.listeners = append(o.listeners, listeners...) }
}

// WithDayCacheSize bounds the claimed/spun day cache. Zero disables it.
func WithDayCacheSize(size int) Option {
	return func(o *engineOptions) { o.dayCacheSize = size }
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Engine is the entry point collaborators call into.
type Engine struct {
	store     Store
	catalog   *Catalog
	profiles  ProfileSource
	calendar  Calendar
	ledger    *Ledger
	quests    *QuestTracker
	streaks   *StreakTracker
	lottery   *LotteryEngine
	listeners []Listener
}

func NewEngine(store Store, catalog *Catalog, profiles ProfileSource, opts ...Option) (*Engine, error) {
	o := engineOptions{
		location:     time.UTC,
		now:          time.Now,
		rng:          globalRand{},
		dayCacheSize: DefaultDayCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	claimed, err := NewDayLog(o.dayCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create claim cache: %w", err)
	}
	spun, err := NewDayLog(o.dayCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create spin cache: %w", err)
	}

	calendar := NewCalendar(o.location, o.now)
	ledger := NewLedger(store, o.now)

	return &Engine{
		store:     store,
		catalog:   catalog,
		profiles:  profiles,
		calendar:  calendar,
		ledger:    ledger,
		quests:    NewQuestTracker(store, catalog, ledger, o.now),
		streaks:   NewStreakTracker(store, catalog, ledger, calendar, claimed),
		lottery:   NewLotteryEngine(store, NewWheel(catalog.Wheel), ledger, calendar, spun, o.rng),
		listeners: o.listeners,
	}, nil
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// NextReset is when the daily claim and the wheel next become available.
func (e *Engine) NextReset() time.Time {
	return e.calendar.StartOfTomorrow()
}

// EnsureUser provisions the progression aggregate for a user. Safe to call repeatedly.
func (e *Engine) EnsureUser(ctx context.Context, userID snowflake.ID) (UserProgressionState, error) {
	state, err := e.store.GetProgression(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return UserProgressionState{}, err
	}

	now := e.calendar.Now().UTC()
	err = e.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateProgression(ctx, UserProgressionState{
			UserID:    userID,
			Level:     LevelFor(0),
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil && !errors.Is(err, ErrDuplicate) {
		return UserProgressionState{}, fmt.Errorf("create progression: %w", err)
	}
	return e.store.GetProgression(ctx, userID)
}

func (e *Engine) RecordQuestEvent(ctx context.Context, userID snowflake.ID, questType string) ([]QuestOutcome, error) {
	return e.RecordQuestEventDelta(ctx, userID, questType, 1)
}

// RecordQuestEventDelta advances every quest of questType. Profile completion is re-derived instead.
func (e *Engine) RecordQuestEventDelta(ctx context.Context, userID snowflake.ID, questType string, delta int) ([]QuestOutcome, error) {
	if questType == QuestTypeProfileComplete {
		outcome, err := e.EvaluateProfileCompletion(ctx, userID)
		if err != nil {
			return nil, err
		}
		return []QuestOutcome{outcome}, nil
	}

	outcomes, err := e.quests.RecordEvent(ctx, userID, questType, delta)
	e.notifyQuests(ctx, userID, outcomes)
	return outcomes, err
}

func (e *Engine) EvaluateProfileCompletion(ctx context.Context, userID snowflake.ID) (QuestOutcome, error) {
	defs := e.catalog.QuestsOfType(QuestTypeProfileComplete)
	if len(defs) == 0 {
		return QuestOutcome{}, fmt.Errorf("profile quest: %w", ErrNotFound)
	}

	profile, err := e.profiles.Profile(ctx, userID)
	if err != nil {
		return QuestOutcome{}, fmt.Errorf("load profile: %w", err)
	}

	outcome, err := e.quests.SetProgress(ctx, userID, defs[0].ID, profile.Filled())
	if err != nil {
		return QuestOutcome{}, err
	}
	e.notifyQuests(ctx, userID, []QuestOutcome{outcome})
	return outcome, nil
}

func (e *Engine) CanClaimDailyReward(ctx context.Context, userID snowflake.ID) (bool, error) {
	return e.streaks.CanClaim(ctx, userID)
}

func (e *Engine) ClaimDailyReward(ctx context.Context, userID snowflake.ID) (DailyRewardResult, error) {
	result, err := e.streaks.Claim(ctx, userID)
	if err != nil {
		return DailyRewardResult{}, err
	}
	e.notify(ctx, Grant{
		UserID:  userID,
		Kind:    EntryStreakClaim,
		Receipt: result.Receipt,
		Detail:  strconv.Itoa(result.CycleDay),
	})
	return result, nil
}

// SpinLotteryWheel spins once for today. A nil rng uses the engine default.
func (e *Engine) SpinLotteryWheel(ctx context.Context, userID snowflake.ID, rng Rand) (SpinResult, error) {
	result, err := e.lottery.Spin(ctx, userID, rng)
	if err != nil {
		return SpinResult{}, err
	}
	e.notify(ctx, Grant{
		UserID:  userID,
		Kind:    EntryWheelSpin,
		Receipt: result.Receipt,
		Detail:  result.Segment.ID,
	})
	return result, nil
}

// Purchase debits price coins for itemID.
func (e *Engine) Purchase(ctx context.Context, userID snowflake.ID, itemID string, price int64) (Receipt, error) {
	receipt, err := e.ledger.Debit(ctx, Posting{
		UserID:      userID,
		Amount:      price,
		Description: fmt.Sprintf("Purchase: %s", itemID),
		Metadata:    Purchase{ItemID: itemID},
	})
	if err != nil {
		return Receipt{}, err
	}
	e.notify(ctx, Grant{UserID: userID, Kind: EntryPurchase, Receipt: receipt, Detail: itemID})
	return receipt, nil
}

// Adjust posts an operator correction. Negative amounts are debits.
func (e *Engine) Adjust(ctx context.Context, userID snowflake.ID, amount int64, reason string) (Receipt, error) {
	p := Posting{
		UserID:      userID,
		Amount:      amount,
		Description: fmt.Sprintf("Adjustment: %s", reason),
		Metadata:    Adjustment{Reason: reason},
	}

	var (
		receipt Receipt
		err     error
	)
	if amount < 0 {
		p.Amount = -amount
		receipt, err = e.ledger.Debit(ctx, p)
	} else {
		receipt, err = e.ledger.Credit(ctx, p)
	}
	if err != nil {
		return Receipt{}, err
	}
	e.notify(ctx, Grant{UserID: userID, Kind: EntryAdjustment, Receipt: receipt, Detail: reason})
	return receipt, nil
}

func (e *Engine) History(ctx context.Context, userID snowflake.ID, limit int) ([]LedgerEntry, error) {
	return e.ledger.History(ctx, userID, limit)
}

func (e *Engine) Reconcile(ctx context.Context, userID snowflake.ID) (Reconciliation, error) {
	return e.ledger.Reconcile(ctx, userID)
}

func (e *Engine) notifyQuests(ctx context.Context, userID snowflake.ID, outcomes []QuestOutcome) {
	for _, o := range outcomes {
		if !o.Completed || o.Receipt == nil {
			continue
		}
		e.notify(ctx, Grant{
			UserID:  userID,
			Kind:    EntryQuestReward,
			Receipt: *o.Receipt,
			Detail:  o.Quest.ID,
		})
	}
}

func (e *Engine) notify(ctx context.Context, g Grant) {
	slog.Info("Reward granted",
		slog.String("type", "engine"),
		slog.String("user_id", g.UserID.String()),
		slog.String("kind", string(g.Kind)),
		slog.String("detail", g.Detail),
		slog.Int64("amount", g.Receipt.Entry.Amount),
		slog.Int64("balance", g.Receipt.State.CoinBalance),
	)

	for _, l := range e.listeners {
		if err := l.Granted(ctx, g); err != nil {
			slog.Warn("Reward listener failed",
				slog.String("type", "engine"),
				slog.String("user_id", g.UserID.String()),
				slog.String("kind", string(g.Kind)),
				slog.Any("error", err),
			)
		}
	}
}
