package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserProgression struct {
	bun.BaseModel `bun:"table:user_progression,alias:up"`

	UserID      int64     `bun:"user_id,pk"`
	TotalXP     int64     `bun:"total_xp,notnull,default:0"`
	Level       int       `bun:"level,notnull,default:1"`
	Reputation  int64     `bun:"reputation,notnull,default:0"`
	CoinBalance int64     `bun:"coin_balance,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
