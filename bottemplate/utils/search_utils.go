package utils

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// questSource matches against "title id" so either can be typed.
type questSource []rewards.QuestDefinition

func (s questSource) Len() int { return len(s) }

func (s questSource) String(i int) string {
	return strings.ToLower(s[i].Title + " " + s[i].ID)
}

// MatchQuests ranks quests by fuzzy similarity to query. An empty query
// returns the catalog order.
func MatchQuests(quests []rewards.QuestDefinition, query string, limit int) []rewards.QuestDefinition {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return quests[:min(limit, len(quests))]
	}

	matches := fuzzy.FindFrom(query, questSource(quests))
	out := make([]rewards.QuestDefinition, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, quests[m.Index])
	}
	return out
}
