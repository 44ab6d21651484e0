package models

import (
	"time"

	"github.com/uptrace/bun"
)

// QuestDefinition mirrors the catalog so reports and dashboards can join on it.
// The catalog stays authoritative; rows are upserted at boot.
type QuestDefinition struct {
	bun.BaseModel `bun:"table:quest_definitions,alias:qd"`

	QuestID          string    `bun:"quest_id,pk"`
	QuestType        string    `bun:"quest_type,notnull"`
	Title            string    `bun:"title,notnull"`
	Description      string    `bun:"description,notnull,default:''"`
	Target           int       `bun:"target,notnull"`
	XPReward         int64     `bun:"xp_reward,notnull,default:0"`
	ReputationReward int64     `bun:"reputation_reward,notnull,default:0"`
	CoinReward       int64     `bun:"coin_reward,notnull,default:0"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
