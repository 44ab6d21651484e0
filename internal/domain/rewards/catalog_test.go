package rewards_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := rewards.DefaultCatalog()
	if err := c.Validate(); err != nil {
		t.Fatalf("DefaultCatalog().Validate() error = %v", err)
	}

	var sum float64
	for _, s := range c.Wheel {
		sum += s.Probability
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("wheel probabilities sum to %v", sum)
	}

	if got := c.QuestsOfType(rewards.QuestTypePostCreated); len(got) != 2 {
		t.Errorf("QuestsOfType(post_created) = %d quests, want 2", len(got))
	}
	if q, ok := c.Quest("first_post"); !ok || q.CoinReward != 10 || q.XPReward != 100 {
		t.Errorf("Quest(first_post) = %+v, %v", q, ok)
	}
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *rewards.Catalog)
	}{
		{name: "duplicate quest", mutate: func(c *rewards.Catalog) { c.Quests = append(c.Quests, c.Quests[0]) }},
		{name: "zero target", mutate: func(c *rewards.Catalog) { c.Quests[0].Target = 0 }},
		{name: "negative reward", mutate: func(c *rewards.Catalog) { c.Quests[1].CoinReward = -5 }},
		{name: "missing type", mutate: func(c *rewards.Catalog) { c.Quests[2].Type = "" }},
		{name: "two profile quests", mutate: func(c *rewards.Catalog) {
			q := c.Quests[len(c.Quests)-1]
			q.ID = "profile_complete_again"
			c.Quests = append(c.Quests, q)
		}},
		{name: "short daily table", mutate: func(c *rewards.Catalog) { c.DailyRewards = c.DailyRewards[:6] }},
		{name: "misnumbered daily table", mutate: func(c *rewards.Catalog) { c.DailyRewards[3].Day = 9 }},
		{name: "empty wheel", mutate: func(c *rewards.Catalog) { c.Wheel = nil }},
		{name: "zero probability", mutate: func(c *rewards.Catalog) {
			c.Wheel = append(c.Wheel, rewards.WheelSegment{ID: "dud", Probability: 0})
		}},
		{name: "probabilities under one", mutate: func(c *rewards.Catalog) { c.Wheel[0].Probability = 0.2 }},
		{name: "duplicate segment", mutate: func(c *rewards.Catalog) { c.Wheel[1].ID = c.Wheel[0].ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := rewards.DefaultCatalog()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, rewards.ErrInvalidCatalog) {
				t.Errorf("Catalog.Validate() error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestCatalogValidateLeavesTierOrder(t *testing.T) {
	c := rewards.DefaultCatalog()
	c.DailyRewards[0], c.DailyRewards[6] = c.DailyRewards[6], c.DailyRewards[0]

	if err := c.Validate(); err != nil {
		t.Fatalf("Catalog.Validate() error = %v", err)
	}
	if c.DailyRewards[0].Day != 7 || c.DailyRewards[6].Day != 1 {
		t.Errorf("Validate() reordered DailyRewards: first day %d, last day %d", c.DailyRewards[0].Day, c.DailyRewards[6].Day)
	}
	for day := 1; day <= rewards.StreakCycleLength; day++ {
		if got := c.DailyReward(day).Day; got != day {
			t.Errorf("DailyReward(%d).Day = %d", day, got)
		}
	}
}
