package rewards

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Quest event types reported by collaborators.
const (
	QuestTypePostCreated     = "post_created"
	QuestTypeCommentCreated  = "comment_created"
	QuestTypeEventCreated    = "event_created"
	QuestTypeEventJoined     = "event_joined"
	QuestTypeMessageSent     = "message_sent"
	QuestTypeStoryCreated    = "story_created"
	QuestTypeProfileComplete = "profile_complete"
)

// StreakCycleLength is the number of tiers in the daily reward table.
const StreakCycleLength = 7

const probabilityEpsilon = 1e-6

type DailyRewardTier struct {
	Day   int   `json:"day" toml:"day"`
	XP    int64 `json:"xp" toml:"xp"`
	Coins int64 `json:"coins" toml:"coins"`
}

type WheelSegment struct {
	ID          string  `json:"id" toml:"id"`
	Label       string  `json:"label" toml:"label"`
	Coins       int64   `json:"coins" toml:"coins"`
	Probability float64 `json:"probability" toml:"probability"`
}

// Catalog is the static reward configuration owned by the deployment.
type Catalog struct {
	Quests       []QuestDefinition `json:"quests" toml:"quests"`
	DailyRewards []DailyRewardTier `json:"daily_rewards" toml:"daily_rewards"`
	Wheel        []WheelSegment    `json:"wheel" toml:"wheel"`

	byID   map[string]QuestDefinition
	byType map[string][]QuestDefinition
	// tiers is DailyRewards ordered by day.
	tiers []DailyRewardTier
}

func DefaultCatalog() *Catalog {
	c := &Catalog{
		Quests: []QuestDefinition{
			{ID: "first_post", Type: QuestTypePostCreated, Title: "First Post", Description: "Share your first post", Target: 1, XPReward: 100, ReputationReward: 10, CoinReward: 10},
			{ID: "prolific_poster", Type: QuestTypePostCreated, Title: "Prolific Poster", Description: "Share 10 posts", Target: 10, XPReward: 250, ReputationReward: 25, CoinReward: 50},
			{ID: "first_comment", Type: QuestTypeCommentCreated, Title: "First Comment", Description: "Comment on a post", Target: 1, XPReward: 50, ReputationReward: 5, CoinReward: 5},
			{ID: "conversationalist", Type: QuestTypeCommentCreated, Title: "Conversationalist", Description: "Leave 25 comments", Target: 25, XPReward: 200, ReputationReward: 20, CoinReward: 40},
			{ID: "first_event", Type: QuestTypeEventCreated, Title: "Host an Event", Description: "Create your first event", Target: 1, XPReward: 100, ReputationReward: 10, CoinReward: 15},
			{ID: "social_butterfly", Type: QuestTypeEventJoined, Title: "Social Butterfly", Description: "Join 5 events", Target: 5, XPReward: 150, ReputationReward: 15, CoinReward: 25},
			{ID: "first_message", Type: QuestTypeMessageSent, Title: "Say Hello", Description: "Send your first message", Target: 1, XPReward: 25, ReputationReward: 2, CoinReward: 5},
			{ID: "storyteller", Type: QuestTypeStoryCreated, Title: "Storyteller", Description: "Publish a story", Target: 1, XPReward: 50, ReputationReward: 5, CoinReward: 10},
			{ID: "profile_complete", Type: QuestTypeProfileComplete, Title: "Complete Your Profile", Description: "Add a name, bio and profile image", Target: 3, XPReward: 150, ReputationReward: 15, CoinReward: 20},
		},
		DailyRewards: []DailyRewardTier{
			{Day: 1, XP: 10, Coins: 5},
			{Day: 2, XP: 15, Coins: 10},
			{Day: 3, XP: 20, Coins: 15},
			{Day: 4, XP: 25, Coins: 20},
			{Day: 5, XP: 30, Coins: 25},
			{Day: 6, XP: 40, Coins: 30},
			{Day: 7, XP: 60, Coins: 50},
		},
		Wheel: []WheelSegment{
			{ID: "pebble", Label: "5 coins", Coins: 5, Probability: 0.30},
			{ID: "copper", Label: "10 coins", Coins: 10, Probability: 0.25},
			{ID: "silver", Label: "25 coins", Coins: 25, Probability: 0.20},
			{ID: "gold", Label: "50 coins", Coins: 50, Probability: 0.15},
			{ID: "ruby", Label: "100 coins", Coins: 100, Probability: 0.07},
			{ID: "jackpot", Label: "Jackpot!", Coins: 500, Probability: 0.03},
		},
	}
	c.index(slices.Clone(c.DailyRewards))
	return c
}

// Validate checks the catalog and builds its lookup indexes.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Quests))
	profileQuests := 0
	for _, q := range c.Quests {
		if q.Type == QuestTypeProfileComplete {
			profileQuests++
		}
		if q.ID == "" || q.Type == "" {
			return fmt.Errorf("%w: quest id and type are required", ErrInvalidCatalog)
		}
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("%w: duplicate quest %q", ErrInvalidCatalog, q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Target < 1 {
			return fmt.Errorf("%w: quest %q target must be at least 1", ErrInvalidCatalog, q.ID)
		}
		if q.XPReward < 0 || q.ReputationReward < 0 || q.CoinReward < 0 {
			return fmt.Errorf("%w: quest %q has a negative reward", ErrInvalidCatalog, q.ID)
		}
	}

	if profileQuests > 1 {
		return fmt.Errorf("%w: at most one %s quest", ErrInvalidCatalog, QuestTypeProfileComplete)
	}

	if len(c.DailyRewards) != StreakCycleLength {
		return fmt.Errorf("%w: daily reward table needs %d tiers, got %d", ErrInvalidCatalog, StreakCycleLength, len(c.DailyRewards))
	}
	tiers := slices.Clone(c.DailyRewards)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Day < tiers[j].Day })
	for i, tier := range tiers {
		if tier.Day != i+1 {
			return fmt.Errorf("%w: daily reward tiers must be numbered 1..%d", ErrInvalidCatalog, StreakCycleLength)
		}
		if tier.XP < 0 || tier.Coins < 0 {
			return fmt.Errorf("%w: daily reward day %d is negative", ErrInvalidCatalog, tier.Day)
		}
	}

	if len(c.Wheel) == 0 {
		return fmt.Errorf("%w: wheel has no segments", ErrInvalidCatalog)
	}
	var sum float64
	segments := make(map[string]struct{}, len(c.Wheel))
	for _, s := range c.Wheel {
		if s.ID == "" {
			return fmt.Errorf("%w: wheel segment id is required", ErrInvalidCatalog)
		}
		if _, ok := segments[s.ID]; ok {
			return fmt.Errorf("%w: duplicate wheel segment %q", ErrInvalidCatalog, s.ID)
		}
		segments[s.ID] = struct{}{}
		if s.Probability <= 0 {
			return fmt.Errorf("%w: segment %q probability must be positive", ErrInvalidCatalog, s.ID)
		}
		if s.Coins < 0 {
			return fmt.Errorf("%w: segment %q pays negative coins", ErrInvalidCatalog, s.ID)
		}
		sum += s.Probability
	}
	if math.Abs(sum-1) > probabilityEpsilon {
		return fmt.Errorf("%w: wheel probabilities sum to %f", ErrInvalidCatalog, sum)
	}

	c.index(tiers)
	return nil
}

func (c *Catalog) index(tiers []DailyRewardTier) {
	c.tiers = tiers
	c.byID = make(map[string]QuestDefinition, len(c.Quests))
	c.byType = make(map[string][]QuestDefinition)
	for _, q := range c.Quests {
		c.byID[q.ID] = q
		c.byType[q.Type] = append(c.byType[q.Type], q)
	}
}

func (c *Catalog) Quest(id string) (QuestDefinition, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// QuestsOfType returns every quest advanced by the given event type, in catalog order.
func (c *Catalog) QuestsOfType(questType string) []QuestDefinition {
	return c.byType[questType]
}

// DailyReward returns the tier for a cycle day in 1..7.
func (c *Catalog) DailyReward(cycleDay int) DailyRewardTier {
	return c.tiers[cycleDay-1]
}
