package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LedgerEntry rows are never updated or deleted.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entries,alias:le"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	UserID      int64     `bun:"user_id,notnull"`
	Type        string    `bun:"type,notnull"`
	Amount      int64     `bun:"amount,notnull"`
	XP          int64     `bun:"xp,notnull,default:0"`
	Reputation  int64     `bun:"reputation,notnull,default:0"`
	Description string    `bun:"description,notnull,default:''"`
	Metadata    string    `bun:"metadata,type:jsonb,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}
