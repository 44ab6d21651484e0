package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// Posting is one balance-affecting event before it is written.
type Posting struct {
	UserID      snowflake.ID
	Amount      int64
	XP          int64
	Reputation  int64
	Description string
	Metadata    Metadata
}

// Receipt is what a committed posting produced.
type Receipt struct {
	Entry         LedgerEntry          `json:"entry"`
	State         UserProgressionState `json:"state"`
	PreviousLevel int                  `json:"previous_level"`
}

func (r Receipt) LevelUp() bool {
	return r.State.Level > r.PreviousLevel
}

// Reconciliation compares the cached aggregate with the ledger sums.
type Reconciliation struct {
	UserID   snowflake.ID         `json:"user_id"`
	State    UserProgressionState `json:"state"`
	Totals   LedgerTotals         `json:"totals"`
	Balanced bool                 `json:"balanced"`
}

// Ledger is the only code path that changes balance, XP, reputation or level.
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, now: now}
}

// Credit writes a non-negative posting in its own transaction.
func (l *Ledger) Credit(ctx context.Context, p Posting) (Receipt, error) {
	if p.Amount < 0 {
		return Receipt{}, fmt.Errorf("%w: credit amount %d", ErrInvalidAmount, p.Amount)
	}
	return l.postAtomic(ctx, p)
}

// Debit removes amount coins. It fails with ErrInsufficientBalance and
// changes nothing when the balance would drop below zero.
func (l *Ledger) Debit(ctx context.Context, p Posting) (Receipt, error) {
	if p.Amount <= 0 {
		return Receipt{}, fmt.Errorf("%w: debit amount %d", ErrInvalidAmount, p.Amount)
	}
	p.Amount = -p.Amount
	return l.postAtomic(ctx, p)
}

func (l *Ledger) postAtomic(ctx context.Context, p Posting) (Receipt, error) {
	var receipt Receipt
	err := l.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		receipt, err = l.Post(ctx, tx, p)
		return err
	})
	return receipt, err
}

// Post applies p inside tx: the entry, the aggregate and the level move together.
func (l *Ledger) Post(ctx context.Context, tx Tx, p Posting) (Receipt, error) {
	if p.Metadata == nil {
		return Receipt{}, errors.New("posting without metadata")
	}
	if p.XP < 0 {
		return Receipt{}, fmt.Errorf("%w: negative xp %d", ErrInvalidAmount, p.XP)
	}

	state, err := tx.ApplyDelta(ctx, p.UserID, Delta{Coins: p.Amount, XP: p.XP, Reputation: p.Reputation})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return Receipt{}, ErrInsufficientBalance
		}
		return Receipt{}, fmt.Errorf("apply delta: %w", err)
	}

	previous := state.Level
	if level := LevelFor(state.TotalXP); level != state.Level {
		if err := tx.SetLevel(ctx, p.UserID, level); err != nil {
			return Receipt{}, fmt.Errorf("set level: %w", err)
		}
		state.Level = level
	}

	entry := LedgerEntry{
		ID:          uuid.New(),
		UserID:      p.UserID,
		Type:        p.Metadata.EntryType(),
		Amount:      p.Amount,
		XP:          p.XP,
		Reputation:  p.Reputation,
		Description: p.Description,
		Metadata:    p.Metadata,
		CreatedAt:   l.now().UTC(),
	}
	if err := tx.AppendLedgerEntry(ctx, entry); err != nil {
		return Receipt{}, fmt.Errorf("append ledger entry: %w", err)
	}

	return Receipt{Entry: entry, State: state, PreviousLevel: previous}, nil
}

func (l *Ledger) History(ctx context.Context, userID snowflake.ID, limit int) ([]LedgerEntry, error) {
	return l.store.ListLedgerEntries(ctx, userID, limit)
}

// Reconcile reports whether the cached aggregate matches the ledger.
func (l *Ledger) Reconcile(ctx context.Context, userID snowflake.ID) (Reconciliation, error) {
	state, err := l.store.GetProgression(ctx, userID)
	if err != nil {
		return Reconciliation{}, err
	}
	totals, err := l.store.LedgerTotals(ctx, userID)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconciliation{
		UserID: userID,
		State:  state,
		Totals: totals,
		Balanced: state.CoinBalance == totals.Amount &&
			state.TotalXP == totals.XP &&
			state.Reputation == totals.Reputation &&
			state.Level == LevelFor(totals.XP),
	}, nil
}
