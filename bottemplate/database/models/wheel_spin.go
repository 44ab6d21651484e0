package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WheelSpin struct {
	bun.BaseModel `bun:"table:wheel_spins,alias:ws"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    int64     `bun:"user_id,notnull,unique:user_spin_day"`
	SpinDay   string    `bun:"spin_day,type:date,notnull,unique:user_spin_day"`
	SegmentID string    `bun:"segment_id,notnull"`
	Coins     int64     `bun:"coins,notnull"`
	SpunAt    time.Time `bun:"spun_at,notnull"`
}
