package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// QuestOutcome is the result of applying one event to one quest.
type QuestOutcome struct {
	Quest    QuestDefinition `json:"quest"`
	Progress QuestProgress   `json:"progress"`
	// Completed is true only for the call that won the completion.
	Completed bool `json:"completed"`
	// AlreadyCompleted marks the idempotent no-op on a finished quest.
	AlreadyCompleted bool     `json:"already_completed"`
	Receipt          *Receipt `json:"receipt,omitempty"`
}

// QuestTracker drives per-user quest progress and pays out completions.
type QuestTracker struct {
	store   Store
	catalog *Catalog
	ledger  *Ledger
	now     func() time.Time
}

func NewQuestTracker(store Store, catalog *Catalog, ledger *Ledger, now func() time.Time) *QuestTracker {
	if now == nil {
		now = time.Now
	}
	return &QuestTracker{store: store, catalog: catalog, ledger: ledger, now: now}
}

// RecordEvent advances every quest of questType by delta. Unknown types are a no-op.
func (t *QuestTracker) RecordEvent(ctx context.Context, userID snowflake.ID, questType string, delta int) ([]QuestOutcome, error) {
	defs := t.catalog.QuestsOfType(questType)
	if len(defs) == 0 {
		return nil, nil
	}

	outcomes := make([]QuestOutcome, 0, len(defs))
	for _, def := range defs {
		outcome, err := t.advance(ctx, userID, def, func(ctx context.Context, tx Tx) (QuestProgress, error) {
			return tx.AddQuestProgress(ctx, userID, def.ID, delta, def.Target)
		})
		if err != nil {
			return outcomes, fmt.Errorf("quest %s: %w", def.ID, err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// SetProgress overwrites progress with an externally derived value, clamped to the target.
func (t *QuestTracker) SetProgress(ctx context.Context, userID snowflake.ID, questID string, value int) (QuestOutcome, error) {
	def, ok := t.catalog.Quest(questID)
	if !ok {
		return QuestOutcome{}, fmt.Errorf("quest %s: %w", questID, ErrNotFound)
	}
	value = clamp(value, 0, def.Target)

	return t.advance(ctx, userID, def, func(ctx context.Context, tx Tx) (QuestProgress, error) {
		return tx.SetQuestProgress(ctx, userID, def.ID, value)
	})
}

func (t *QuestTracker) advance(ctx context.Context, userID snowflake.ID, def QuestDefinition, update func(context.Context, Tx) (QuestProgress, error)) (QuestOutcome, error) {
	var outcome QuestOutcome
	err := t.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		outcome = QuestOutcome{Quest: def}

		if _, err := tx.GetProgression(ctx, userID); err != nil {
			return err
		}

		progress, err := tx.EnsureQuestProgress(ctx, userID, def.ID)
		if err != nil {
			return err
		}
		if progress.Completed {
			outcome.Progress = progress
			outcome.AlreadyCompleted = true
			return nil
		}

		progress, err = update(ctx, tx)
		if errors.Is(err, ErrConditionFailed) {
			// completed by a concurrent caller between the read and the update
			return errLostRace
		}
		if err != nil {
			return err
		}
		if progress.CurrentProgress < def.Target {
			outcome.Progress = progress
			return nil
		}

		at := t.now().UTC()
		if err := tx.CompleteQuest(ctx, userID, def.ID, def.Target, at); err != nil {
			if errors.Is(err, ErrConditionFailed) {
				return errLostRace
			}
			return err
		}
		progress.Completed = true
		progress.CompletedAt = &at

		receipt, err := t.ledger.Post(ctx, tx, Posting{
			UserID:      userID,
			Amount:      def.CoinReward,
			XP:          def.XPReward,
			Reputation:  def.ReputationReward,
			Description: fmt.Sprintf("Quest completed: %s", def.Title),
			Metadata:    QuestReward{QuestID: def.ID},
		})
		if err != nil {
			return err
		}

		outcome.Progress = progress
		outcome.Completed = true
		outcome.Receipt = &receipt
		return nil
	})
	if errors.Is(err, errLostRace) {
		return t.settleLostRace(ctx, userID, def)
	}
	if err != nil {
		return QuestOutcome{}, err
	}
	return outcome, nil
}

// errLostRace aborts the transaction so the loser's progress write is discarded.
var errLostRace = errors.New("quest completed concurrently")

func (t *QuestTracker) settleLostRace(ctx context.Context, userID snowflake.ID, def QuestDefinition) (QuestOutcome, error) {
	outcome := QuestOutcome{Quest: def, AlreadyCompleted: true}
	rows, err := t.store.ListQuestProgress(ctx, userID)
	if err != nil {
		return QuestOutcome{}, err
	}
	for _, p := range rows {
		if p.QuestID == def.ID {
			outcome.Progress = p
			break
		}
	}
	return outcome, nil
}

// List returns every catalog quest merged with the user's progress.
func (t *QuestTracker) List(ctx context.Context, userID snowflake.ID) ([]QuestStatus, error) {
	rows, err := t.store.ListQuestProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mergeQuestStatus(t.catalog, rows), nil
}

// QuestStatus is a catalog quest as seen by one user.
type QuestStatus struct {
	Quest       QuestDefinition `json:"quest"`
	Progress    int             `json:"progress"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func mergeQuestStatus(catalog *Catalog, rows []QuestProgress) []QuestStatus {
	byQuest := make(map[string]QuestProgress, len(rows))
	for _, p := range rows {
		byQuest[p.QuestID] = p
	}

	statuses := make([]QuestStatus, 0, len(catalog.Quests))
	for _, def := range catalog.Quests {
		status := QuestStatus{Quest: def}
		if p, ok := byQuest[def.ID]; ok {
			status.Progress = p.CurrentProgress
			status.Completed = p.Completed
			status.CompletedAt = p.CompletedAt
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
