package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DailyStreakClaim is written once per user and calendar day; the unique
// (user_id, calendar_day) pair is the double-claim guard.
type DailyStreakClaim struct {
	bun.BaseModel `bun:"table:daily_streak_claims,alias:dsc"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	UserID       int64     `bun:"user_id,notnull,unique:user_day"`
	CalendarDay  string    `bun:"calendar_day,type:date,notnull,unique:user_day"`
	StreakLength int       `bun:"streak_length,notnull"`
	CycleDay     int       `bun:"cycle_day,notnull"`
	XP           int64     `bun:"xp,notnull"`
	Coins        int64     `bun:"coins,notnull"`
	ClaimedAt    time.Time `bun:"claimed_at,notnull"`
}
