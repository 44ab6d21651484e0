package repositories

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/progression/bottemplate/database/models"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var _ rewards.ProfileSource = (*ProfileRepository)(nil)

// ProfileRepository reads the platform's profiles table.
type ProfileRepository struct {
	*BaseRepository
}

func NewProfileRepository(db *bun.DB) *ProfileRepository {
	return &ProfileRepository{BaseRepository: NewBaseRepository(db)}
}

// Profile returns an empty profile for users who never saved one.
func (r *ProfileRepository) Profile(ctx context.Context, userID snowflake.ID) (rewards.Profile, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	row := new(models.Profile)
	err := r.db.NewSelect().Model(row).Where("user_id = ?", int64(userID)).Scan(ctx)
	if err != nil {
		if err = HandleError("get", "profiles", err); IsNotFound(err) {
			return rewards.Profile{}, nil
		}
		return rewards.Profile{}, err
	}
	return rewards.Profile{
		Name:     row.DisplayName,
		Bio:      row.Bio,
		ImageURL: row.ImageURL,
	}, nil
}
