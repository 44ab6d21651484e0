package models

import (
	"time"

	"github.com/uptrace/bun"
)

type QuestProgress struct {
	bun.BaseModel `bun:"table:quest_progress,alias:qp"`

	ID              int64      `bun:"id,pk,autoincrement"`
	UserID          int64      `bun:"user_id,notnull,unique:user_quest"`
	QuestID         string     `bun:"quest_id,notnull,unique:user_quest"`
	CurrentProgress int        `bun:"current_progress,notnull,default:0"`
	Completed       bool       `bun:"completed,notnull,default:false"`
	CompletedAt     *time.Time `bun:"completed_at"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
