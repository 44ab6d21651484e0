package rewards

import (
	"encoding/json"
	"fmt"
)

// Metadata describes why a ledger entry exists. Each variant fixes the entry type.
type Metadata interface {
	EntryType() EntryType
	isMetadata()
}

type QuestReward struct {
	QuestID string `json:"quest_id"`
}

type StreakClaim struct {
	Day          string `json:"day"`
	CycleDay     int    `json:"cycle_day"`
	StreakLength int    `json:"streak_length"`
}

type WheelSpinReward struct {
	SegmentID string `json:"segment_id"`
}

type Purchase struct {
	ItemID string `json:"item_id"`
}

type Adjustment struct {
	Reason string `json:"reason"`
}

func (QuestReward) EntryType() EntryType     { return EntryQuestReward }
func (StreakClaim) EntryType() EntryType     { return EntryStreakClaim }
func (WheelSpinReward) EntryType() EntryType { return EntryWheelSpin }
func (Purchase) EntryType() EntryType        { return EntryPurchase }
func (Adjustment) EntryType() EntryType      { return EntryAdjustment }

func (QuestReward) isMetadata()     {}
func (StreakClaim) isMetadata()     {}
func (WheelSpinReward) isMetadata() {}
func (Purchase) isMetadata()        {}
func (Adjustment) isMetadata()      {}

// EncodeMetadata serializes a variant for storage.
func EncodeMetadata(m Metadata) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode %s metadata: %w", m.EntryType(), err)
	}
	return string(b), nil
}

// DecodeMetadata restores the variant selected by the stored entry type.
func DecodeMetadata(t EntryType, raw string) (Metadata, error) {
	if raw == "" {
		raw = "{}"
	}

	var (
		m   Metadata
		err error
	)
	switch t {
	case EntryQuestReward:
		var v QuestReward
		err = json.Unmarshal([]byte(raw), &v)
		m = v
	case EntryStreakClaim:
		var v StreakClaim
		err = json.Unmarshal([]byte(raw), &v)
		m = v
	case EntryWheelSpin:
		var v WheelSpinReward
		err = json.Unmarshal([]byte(raw), &v)
		m = v
	case EntryPurchase:
		var v Purchase
		err = json.Unmarshal([]byte(raw), &v)
		m = v
	case EntryAdjustment:
		var v Adjustment
		err = json.Unmarshal([]byte(raw), &v)
		m = v
	default:
		return nil, fmt.Errorf("unknown ledger entry type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", t, err)
	}
	return m, nil
}

// UnmarshalJSON restores the Metadata variant selected by the entry type.
func (e *LedgerEntry) UnmarshalJSON(b []byte) error {
	type plain LedgerEntry
	var raw struct {
		plain
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*e = LedgerEntry(raw.plain)
	if len(raw.Metadata) == 0 || string(raw.Metadata) == "null" {
		e.Metadata = nil
		return nil
	}
	m, err := DecodeMetadata(raw.Type, string(raw.Metadata))
	if err != nil {
		return err
	}
	e.Metadata = m
	return nil
}
