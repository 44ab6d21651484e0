package rewards

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"
)

// Summary is a read-only snapshot of everything progression knows about a user.
type Summary struct {
	UserID        snowflake.ID  `json:"user_id"`
	Level         int           `json:"level"`
	TotalXP       int64         `json:"total_xp"`
	Reputation    int64         `json:"reputation"`
	CoinBalance   int64         `json:"coin_balance"`
	LevelProgress LevelProgress `json:"level_progress"`
	Quests        []QuestStatus `json:"quests"`
	Streak        StreakStatus  `json:"streak"`
	Wheel         WheelStatus   `json:"wheel"`
}

func (e *Engine) GetProgressionSummary(ctx context.Context, userID snowflake.ID) (Summary, error) {
	var (
		state  UserProgressionState
		quests []QuestStatus
		streak StreakStatus
		wheel  WheelStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, err = e.store.GetProgression(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		quests, err = e.quests.List(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = e.streaks.Status(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		wheel, err = e.lottery.Status(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Summary{
		UserID:        userID,
		Level:         state.Level,
		TotalXP:       state.TotalXP,
		Reputation:    state.Reputation,
		CoinBalance:   state.CoinBalance,
		LevelProgress: ProgressFor(state.TotalXP),
		Quests:        quests,
		Streak:        streak,
		Wheel:         wheel,
	}, nil
}
