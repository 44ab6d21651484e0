package repositories

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/progression/bottemplate/database/models"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

func toState(m *models.UserProgression) rewards.UserProgressionState {
	return rewards.UserProgressionState{
		UserID:      snowflake.ID(m.UserID),
		TotalXP:     m.TotalXP,
		Level:       m.Level,
		Reputation:  m.Reputation,
		CoinBalance: m.CoinBalance,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toQuestProgress(m *models.QuestProgress) rewards.QuestProgress {
	return rewards.QuestProgress{
		UserID:          snowflake.ID(m.UserID),
		QuestID:         m.QuestID,
		CurrentProgress: m.CurrentProgress,
		Completed:       m.Completed,
		CompletedAt:     m.CompletedAt,
	}
}

func toClaim(m *models.DailyStreakClaim) (rewards.DailyStreakClaim, error) {
	day, err := parseDay(m.CalendarDay)
	if err != nil {
		return rewards.DailyStreakClaim{}, err
	}
	return rewards.DailyStreakClaim{
		ID:           m.ID,
		UserID:       snowflake.ID(m.UserID),
		Day:          day,
		StreakLength: m.StreakLength,
		CycleDay:     m.CycleDay,
		XP:           m.XP,
		Coins:        m.Coins,
		ClaimedAt:    m.ClaimedAt,
	}, nil
}

func toSpin(m *models.WheelSpin) (rewards.WheelSpin, error) {
	day, err := parseDay(m.SpinDay)
	if err != nil {
		return rewards.WheelSpin{}, err
	}
	return rewards.WheelSpin{
		ID:        m.ID,
		UserID:    snowflake.ID(m.UserID),
		Day:       day,
		SegmentID: m.SegmentID,
		Coins:     m.Coins,
		SpunAt:    m.SpunAt,
	}, nil
}

func toEntry(m *models.LedgerEntry) (rewards.LedgerEntry, error) {
	typ := rewards.EntryType(m.Type)
	meta, err := rewards.DecodeMetadata(typ, m.Metadata)
	if err != nil {
		return rewards.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", m.ID, err)
	}
	return rewards.LedgerEntry{
		ID:          m.ID,
		UserID:      snowflake.ID(m.UserID),
		Type:        typ,
		Amount:      m.Amount,
		XP:          m.XP,
		Reputation:  m.Reputation,
		Description: m.Description,
		Metadata:    meta,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// parseDay reads a DATE column. The driver may hand back either the bare
// date or a full timestamp; the first ten bytes are the date in both cases.
func parseDay(s string) (time.Time, error) {
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse calendar day %q: %w", s, err)
	}
	return day, nil
}
