package rewards

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Reader is the read side of the store.
type Reader interface {
	// GetProgression returns ErrNotFound for users that were never provisioned.
	GetProgression(ctx context.Context, userID snowflake.ID) (UserProgressionState, error)
	ListQuestProgress(ctx context.Context, userID snowflake.ID) ([]QuestProgress, error)
	// LatestStreakClaim returns ErrNotFound when the user never claimed.
	LatestStreakClaim(ctx context.Context, userID snowflake.ID) (DailyStreakClaim, error)
	GetWheelSpin(ctx context.Context, userID snowflake.ID, day time.Time) (WheelSpin, error)
	// ListLedgerEntries returns the newest entries first. limit <= 0 means all.
	ListLedgerEntries(ctx context.Context, userID snowflake.ID, limit int) ([]LedgerEntry, error)
	LedgerTotals(ctx context.Context, userID snowflake.ID) (LedgerTotals, error)
	ListUserIDs(ctx context.Context) ([]snowflake.ID, error)
}

// Tx is a unit of work. Writes are either conditional (ErrConditionFailed)
// or unique-keyed appends (ErrDuplicate); nothing is read-then-written.
type Tx interface {
	Reader

	CreateProgression(ctx context.Context, state UserProgressionState) error
	// ApplyDelta adds d to the aggregate unless the coin balance would go negative.
	ApplyDelta(ctx context.Context, userID snowflake.ID, d Delta) (UserProgressionState, error)
	SetLevel(ctx context.Context, userID snowflake.ID, level int) error
	AppendLedgerEntry(ctx context.Context, entry LedgerEntry) error

	EnsureQuestProgress(ctx context.Context, userID snowflake.ID, questID string) (QuestProgress, error)
	// AddQuestProgress clamps progress+delta into [0, target] on an open quest.
	AddQuestProgress(ctx context.Context, userID snowflake.ID, questID string, delta, target int) (QuestProgress, error)
	SetQuestProgress(ctx context.Context, userID snowflake.ID, questID string, value int) (QuestProgress, error)
	// CompleteQuest flips completed false -> true. Exactly one caller succeeds.
	CompleteQuest(ctx context.Context, userID snowflake.ID, questID string, target int, at time.Time) error

	InsertStreakClaim(ctx context.Context, claim DailyStreakClaim) error
	InsertWheelSpin(ctx context.Context, spin WheelSpin) error
}

// Store is the persistence boundary injected into every component.
type Store interface {
	Reader
	// Atomic runs fn in a single transaction. An error from fn rolls everything back.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// ProfileSource reads the externally owned profile fields.
type ProfileSource interface {
	Profile(ctx context.Context, userID snowflake.ID) (Profile, error)
}
