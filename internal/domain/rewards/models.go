package rewards

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// UserProgressionState is the cached per-user aggregate. Only the Ledger changes it.
type UserProgressionState struct {
	UserID      snowflake.ID `json:"user_id"`
	TotalXP     int64        `json:"total_xp"`
	Level       int          `json:"level"`
	Reputation  int64        `json:"reputation"`
	CoinBalance int64        `json:"coin_balance"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// QuestDefinition is deployment configuration and never changes at runtime.
type QuestDefinition struct {
	ID               string `json:"id" toml:"id"`
	Type             string `json:"type" toml:"type"`
	Title            string `json:"title" toml:"title"`
	Description      string `json:"description" toml:"description"`
	Target           int    `json:"target" toml:"target"`
	XPReward         int64  `json:"xp_reward" toml:"xp_reward"`
	ReputationReward int64  `json:"reputation_reward" toml:"reputation_reward"`
	CoinReward       int64  `json:"coin_reward" toml:"coin_reward"`
}

type QuestProgress struct {
	UserID          snowflake.ID `json:"user_id"`
	QuestID         string       `json:"quest_id"`
	CurrentProgress int          `json:"current_progress"`
	Completed       bool         `json:"completed"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
}

// DailyStreakClaim is one immutable row per successful daily claim.
// Day is the calendar date expressed as midnight UTC.
type DailyStreakClaim struct {
	ID           uuid.UUID    `json:"id"`
	UserID       snowflake.ID `json:"user_id"`
	Day          time.Time    `json:"day"`
	StreakLength int          `json:"streak_length"`
	CycleDay     int          `json:"cycle_day"`
	XP           int64        `json:"xp"`
	Coins        int64        `json:"coins"`
	ClaimedAt    time.Time    `json:"claimed_at"`
}

// WheelSpin guards the once-per-day lottery spin.
type WheelSpin struct {
	ID        uuid.UUID    `json:"id"`
	UserID    snowflake.ID `json:"user_id"`
	Day       time.Time    `json:"day"`
	SegmentID string       `json:"segment_id"`
	Coins     int64        `json:"coins"`
	SpunAt    time.Time    `json:"spun_at"`
}

type EntryType string

const (
	EntryQuestReward EntryType = "quest_reward"
	EntryStreakClaim EntryType = "streak_claim"
	EntryWheelSpin   EntryType = "wheel_spin"
	EntryPurchase    EntryType = "purchase"
	EntryAdjustment  EntryType = "adjustment"
)

// LedgerEntry is append-only. Amount is the signed coin delta; XP and
// Reputation are recorded alongside so the whole aggregate can be rebuilt.
type LedgerEntry struct {
	ID          uuid.UUID    `json:"id"`
	UserID      snowflake.ID `json:"user_id"`
	Type        EntryType    `json:"type"`
	Amount      int64        `json:"amount"`
	XP          int64        `json:"xp"`
	Reputation  int64        `json:"reputation"`
	Description string       `json:"description"`
	Metadata    Metadata     `json:"metadata"`
	CreatedAt   time.Time    `json:"created_at"`
}

// LedgerTotals are the sums over every entry of one user.
type LedgerTotals struct {
	Entries    int64 `json:"entries"`
	Amount     int64 `json:"amount"`
	XP         int64 `json:"xp"`
	Reputation int64 `json:"reputation"`
}

// Delta is applied to UserProgressionState in one conditional write.
type Delta struct {
	Coins      int64
	XP         int64
	Reputation int64
}

// Profile is the external snapshot used by the profile completion quest.
type Profile struct {
	Name     string
	Bio      string
	ImageURL string
}

// Filled counts the non-empty profile fields.
func (p Profile) Filled() int {
	n := 0
	for _, s := range []string{p.Name, p.Bio, p.ImageURL} {
		if s != "" {
			n++
		}
	}
	return n
}
