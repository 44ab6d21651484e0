package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile is owned by the platform's profile service. Progression only reads it.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	UserID      int64     `bun:"user_id,pk"`
	DisplayName string    `bun:"display_name,notnull,default:''"`
	Bio         string    `bun:"bio,notnull,default:''"`
	ImageURL    string    `bun:"image_url,notnull,default:''"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
