package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// SortedSetClient is the slice of go-redis the leaderboard needs.
// *redis.Client satisfies it.
type SortedSetClient interface {
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZAddGT(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
	ZRevRank(ctx context.Context, key, member string) *redis.IntCmd
	ZScore(ctx context.Context, key, member string) *redis.FloatCmd
}

// Standing is one leaderboard row. Rank starts at 1.
type Standing struct {
	Rank   int          `json:"rank"`
	UserID snowflake.ID `json:"user_id"`
	XP     int64        `json:"xp"`
}

// Leaderboard mirrors total XP into a Redis sorted set. It is fed by the
// engine's grant listener, so it only ever sees committed state.
type Leaderboard struct {
	client SortedSetClient
	key    string
}

var _ rewards.Listener = (*Leaderboard)(nil)

func NewLeaderboard(client SortedSetClient) *Leaderboard {
	return &Leaderboard{client: client, key: config.LeaderboardKey}
}

func (l *Leaderboard) Granted(ctx context.Context, g rewards.Grant) error {
	if g.Receipt.Entry.XP == 0 {
		return nil
	}
	return l.Set(ctx, g.UserID, g.Receipt.State.TotalXP)
}

// Set only ever raises a user's total; late grants with a stale total are ignored.
func (l *Leaderboard) Set(ctx context.Context, userID snowflake.ID, totalXP int64) error {
	err := l.client.ZAddGT(ctx, l.key, redis.Z{
		Score:  float64(totalXP),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard update for %s: %w", userID, err)
	}
	return nil
}

// Sync loads every user's XP from the store, e.g. after Redis was flushed.
func (l *Leaderboard) Sync(ctx context.Context, store rewards.Reader) (int, error) {
	ids, err := store.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	members := make([]redis.Z, 0, len(ids))
	for _, id := range ids {
		state, err := store.GetProgression(ctx, id)
		if err != nil {
			return 0, err
		}
		members = append(members, redis.Z{Score: float64(state.TotalXP), Member: id.String()})
	}
	if len(members) == 0 {
		return 0, nil
	}
	if err := l.client.ZAdd(ctx, l.key, members...).Err(); err != nil {
		return 0, fmt.Errorf("leaderboard sync: %w", err)
	}
	return len(members), nil
}

// Top returns the n highest totals.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]Standing, error) {
	if n <= 0 {
		n = config.DefaultLeaderboardSize
	}
	n = min(n, config.MaxLeaderboardSize)

	zs, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}

	out := make([]Standing, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		id, err := snowflake.Parse(member)
		if err != nil {
			continue
		}
		out = append(out, Standing{Rank: i + 1, UserID: id, XP: int64(z.Score)})
	}
	return out, nil
}

// Rank reports a single user's position. ok is false for unranked users.
func (l *Leaderboard) Rank(ctx context.Context, userID snowflake.ID) (s Standing, ok bool, err error) {
	member := userID.String()
	rank, err := l.client.ZRevRank(ctx, l.key, member).Result()
	if errors.Is(err, redis.Nil) {
		return Standing{}, false, nil
	}
	if err != nil {
		return Standing{}, false, fmt.Errorf("leaderboard rank: %w", err)
	}
	score, err := l.client.ZScore(ctx, l.key, member).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Standing{}, false, fmt.Errorf("leaderboard score: %w", err)
	}
	return Standing{Rank: int(rank) + 1, UserID: userID, XP: int64(score)}, true, nil
}

// FormatXP renders large totals compactly for embeds.
func FormatXP(xp int64) string {
	switch {
	case xp >= 1_000_000:
		return strconv.FormatFloat(float64(xp)/1_000_000, 'f', 1, 64) + "M"
	case xp >= 10_000:
		return strconv.FormatFloat(float64(xp)/1_000, 'f', 1, 64) + "k"
	default:
		return strconv.FormatInt(xp, 10)
	}
}
