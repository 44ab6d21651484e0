package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/progression/bottemplate/database/models"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var (
	_ rewards.Store = (*ProgressionStore)(nil)
	_ rewards.Tx    = txQueries{}
)

// ProgressionStore is the Postgres rewards.Store. Reads run on the pool;
// writes only happen inside Atomic.
type ProgressionStore struct {
	*BaseRepository
	reader
}

func NewProgressionStore(db *bun.DB) *ProgressionStore {
	return &ProgressionStore{
		BaseRepository: NewBaseRepository(db),
		reader:         reader{db: db},
	}
}

func (s *ProgressionStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx rewards.Tx) error) error {
	err := s.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, txQueries{reader{db: tx}})
	})
	if classify(err) == nil {
		return err
	}
	// commit-time serialization failures surface here without a repository wrapper
	return HandleError("commit", "transaction", err)
}

type reader struct {
	db bun.IDB
}

func (r reader) GetProgression(ctx context.Context, userID snowflake.ID) (rewards.UserProgressionState, error) {
	row := new(models.UserProgression)
	err := r.db.NewSelect().Model(row).Where("user_id = ?", int64(userID)).Scan(ctx)
	if err != nil {
		return rewards.UserProgressionState{}, HandleError("get", "user_progression", err)
	}
	return toState(row), nil
}

func (r reader) ListQuestProgress(ctx context.Context, userID snowflake.ID) ([]rewards.QuestProgress, error) {
	var rows []models.QuestProgress
	err := r.db.NewSelect().Model(&rows).
		Where("user_id = ?", int64(userID)).
		Order("quest_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, HandleError("list", "quest_progress", err)
	}
	out := make([]rewards.QuestProgress, len(rows))
	for i := range rows {
		out[i] = toQuestProgress(&rows[i])
	}
	return out, nil
}

func (r reader) LatestStreakClaim(ctx context.Context, userID snowflake.ID) (rewards.DailyStreakClaim, error) {
	row := new(models.DailyStreakClaim)
	err := r.db.NewSelect().Model(row).
		Where("user_id = ?", int64(userID)).
		Order("calendar_day DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return rewards.DailyStreakClaim{}, HandleError("latest", "daily_streak_claims", err)
	}
	return toClaim(row)
}

func (r reader) GetWheelSpin(ctx context.Context, userID snowflake.ID, day time.Time) (rewards.WheelSpin, error) {
	row := new(models.WheelSpin)
	err := r.db.NewSelect().Model(row).
		Where("user_id = ?", int64(userID)).
		Where("spin_day = ?", day.Format(time.DateOnly)).
		Scan(ctx)
	if err != nil {
		return rewards.WheelSpin{}, HandleError("get", "wheel_spins", err)
	}
	return toSpin(row)
}

func (r reader) ListLedgerEntries(ctx context.Context, userID snowflake.ID, limit int) ([]rewards.LedgerEntry, error) {
	var rows []models.LedgerEntry
	q := r.db.NewSelect().Model(&rows).
		Where("user_id = ?", int64(userID)).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, HandleError("list", "ledger_entries", err)
	}

	out := make([]rewards.LedgerEntry, 0, len(rows))
	for i := range rows {
		e, err := toEntry(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r reader) LedgerTotals(ctx context.Context, userID snowflake.ID) (rewards.LedgerTotals, error) {
	var totals struct {
		Entries    int64 `bun:"entries"`
		Amount     int64 `bun:"amount"`
		XP         int64 `bun:"xp"`
		Reputation int64 `bun:"reputation"`
	}
	err := r.db.NewSelect().Model((*models.LedgerEntry)(nil)).
		ColumnExpr("COUNT(*) AS entries").
		ColumnExpr("COALESCE(SUM(amount), 0) AS amount").
		ColumnExpr("COALESCE(SUM(xp), 0) AS xp").
		ColumnExpr("COALESCE(SUM(reputation), 0) AS reputation").
		Where("user_id = ?", int64(userID)).
		Scan(ctx, &totals)
	if err != nil {
		return rewards.LedgerTotals{}, HandleError("sum", "ledger_entries", err)
	}
	return rewards.LedgerTotals{
		Entries:    totals.Entries,
		Amount:     totals.Amount,
		XP:         totals.XP,
		Reputation: totals.Reputation,
	}, nil
}

func (r reader) ListUserIDs(ctx context.Context) ([]snowflake.ID, error) {
	var ids []int64
	err := r.db.NewSelect().Model((*models.UserProgression)(nil)).
		Column("user_id").
		Order("user_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, HandleError("list", "user_progression", err)
	}
	out := make([]snowflake.ID, len(ids))
	for i, id := range ids {
		out[i] = snowflake.ID(id)
	}
	return out, nil
}

type txQueries struct {
	reader
}

func (t txQueries) CreateProgression(ctx context.Context, s rewards.UserProgressionState) error {
	row := &models.UserProgression{
		UserID:      int64(s.UserID),
		TotalXP:     s.TotalXP,
		Level:       s.Level,
		Reputation:  s.Reputation,
		CoinBalance: s.CoinBalance,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	res, err := t.db.NewInsert().Model(row).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	return insertedOnce("create", "user_progression", res, err)
}

func (t txQueries) ApplyDelta(ctx context.Context, userID snowflake.ID, d rewards.Delta) (rewards.UserProgressionState, error) {
	row := new(models.UserProgression)
	err := t.db.NewUpdate().Model(row).
		Set("coin_balance = coin_balance + ?", d.Coins).
		Set("total_xp = total_xp + ?", d.XP).
		Set("reputation = reputation + ?", d.Reputation).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("user_id = ?", int64(userID)).
		Where("coin_balance + ? >= 0", d.Coins).
		Returning("*").
		Scan(ctx)
	if err == nil {
		return toState(row), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return rewards.UserProgressionState{}, HandleError("apply_delta", "user_progression", err)
	}

	// no row matched: either the user is unknown or the balance guard held
	exists, err := t.db.NewSelect().Model((*models.UserProgression)(nil)).
		Where("user_id = ?", int64(userID)).
		Exists(ctx)
	if err != nil {
		return rewards.UserProgressionState{}, HandleError("apply_delta", "user_progression", err)
	}
	if !exists {
		return rewards.UserProgressionState{}, HandleError("apply_delta", "user_progression", sql.ErrNoRows)
	}
	return rewards.UserProgressionState{}, rewards.ErrConditionFailed
}

func (t txQueries) SetLevel(ctx context.Context, userID snowflake.ID, level int) error {
	res, err := t.db.NewUpdate().Model((*models.UserProgression)(nil)).
		Set("level = ?", level).
		Where("user_id = ?", int64(userID)).
		Exec(ctx)
	if err != nil {
		return HandleError("set_level", "user_progression", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return HandleError("set_level", "user_progression", sql.ErrNoRows)
	}
	return nil
}

func (t txQueries) AppendLedgerEntry(ctx context.Context, e rewards.LedgerEntry) error {
	raw, err := rewards.EncodeMetadata(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode ledger metadata: %w", err)
	}
	row := &models.LedgerEntry{
		ID:          e.ID,
		UserID:      int64(e.UserID),
		Type:        string(e.Type),
		Amount:      e.Amount,
		XP:          e.XP,
		Reputation:  e.Reputation,
		Description: e.Description,
		Metadata:    raw,
		CreatedAt:   e.CreatedAt,
	}
	if _, err := t.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return HandleError("append", "ledger_entries", err)
	}
	return nil
}

func (t txQueries) EnsureQuestProgress(ctx context.Context, userID snowflake.ID, questID string) (rewards.QuestProgress, error) {
	row := &models.QuestProgress{UserID: int64(userID), QuestID: questID}
	_, err := t.db.NewInsert().Model(row).
		On("CONFLICT (user_id, quest_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return rewards.QuestProgress{}, HandleError("ensure", "quest_progress", err)
	}

	row = new(models.QuestProgress)
	err = t.db.NewSelect().Model(row).
		Where("user_id = ?", int64(userID)).
		Where("quest_id = ?", questID).
		Scan(ctx)
	if err != nil {
		return rewards.QuestProgress{}, HandleError("ensure", "quest_progress", err)
	}
	return toQuestProgress(row), nil
}

func (t txQueries) AddQuestProgress(ctx context.Context, userID snowflake.ID, questID string, delta, target int) (rewards.QuestProgress, error) {
	return t.updateOpenQuest(ctx, userID, questID,
		"current_progress = LEAST(GREATEST(current_progress + ?, 0), ?)", delta, target)
}

func (t txQueries) SetQuestProgress(ctx context.Context, userID snowflake.ID, questID string, value int) (rewards.QuestProgress, error) {
	return t.updateOpenQuest(ctx, userID, questID, "current_progress = ?", value)
}

// updateOpenQuest applies set to a quest row that is still open. A completed
// or missing row yields ErrConditionFailed.
func (t txQueries) updateOpenQuest(ctx context.Context, userID snowflake.ID, questID, set string, args ...any) (rewards.QuestProgress, error) {
	row := new(models.QuestProgress)
	err := t.db.NewUpdate().Model(row).
		Set(set, args...).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("user_id = ?", int64(userID)).
		Where("quest_id = ?", questID).
		Where("completed = FALSE").
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return rewards.QuestProgress{}, rewards.ErrConditionFailed
	}
	if err != nil {
		return rewards.QuestProgress{}, HandleError("progress", "quest_progress", err)
	}
	return toQuestProgress(row), nil
}

func (t txQueries) CompleteQuest(ctx context.Context, userID snowflake.ID, questID string, target int, at time.Time) error {
	res, err := t.db.NewUpdate().Model((*models.QuestProgress)(nil)).
		Set("completed = TRUE").
		Set("completed_at = ?", at).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("user_id = ?", int64(userID)).
		Where("quest_id = ?", questID).
		Where("completed = FALSE").
		Where("current_progress >= ?", target).
		Exec(ctx)
	if err != nil {
		return HandleError("complete", "quest_progress", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rewards.ErrConditionFailed
	}
	return nil
}

func (t txQueries) InsertStreakClaim(ctx context.Context, c rewards.DailyStreakClaim) error {
	row := &models.DailyStreakClaim{
		ID:           c.ID,
		UserID:       int64(c.UserID),
		CalendarDay:  c.Day.Format(time.DateOnly),
		StreakLength: c.StreakLength,
		CycleDay:     c.CycleDay,
		XP:           c.XP,
		Coins:        c.Coins,
		ClaimedAt:    c.ClaimedAt,
	}
	res, err := t.db.NewInsert().Model(row).
		On("CONFLICT (user_id, calendar_day) DO NOTHING").
		Exec(ctx)
	return insertedOnce("insert", "daily_streak_claims", res, err)
}

func (t txQueries) InsertWheelSpin(ctx context.Context, s rewards.WheelSpin) error {
	row := &models.WheelSpin{
		ID:        s.ID,
		UserID:    int64(s.UserID),
		SpinDay:   s.Day.Format(time.DateOnly),
		SegmentID: s.SegmentID,
		Coins:     s.Coins,
		SpunAt:    s.SpunAt,
	}
	res, err := t.db.NewInsert().Model(row).
		On("CONFLICT (user_id, spin_day) DO NOTHING").
		Exec(ctx)
	return insertedOnce("insert", "wheel_spins", res, err)
}

// insertedOnce turns an ON CONFLICT DO NOTHING that touched no row into ErrDuplicate.
func insertedOnce(op, entity string, res sql.Result, err error) error {
	if err != nil {
		return HandleError(op, entity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rewards.ErrDuplicate
	}
	return nil
}
