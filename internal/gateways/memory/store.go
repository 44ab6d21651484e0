// Package memory is a mutex-guarded in-memory rewards.Store used by tests and local runs.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var (
	_ rewards.Store = (*Store)(nil)
	_ rewards.Tx    = (*tx)(nil)
)

type questKey struct {
	userID  snowflake.ID
	questID string
}

type dayKey struct {
	userID snowflake.ID
	day    string
}

type state struct {
	users    map[snowflake.ID]rewards.UserProgressionState
	progress map[questKey]rewards.QuestProgress
	claims   map[snowflake.ID][]rewards.DailyStreakClaim
	claimDay map[dayKey]struct{}
	spins    map[dayKey]rewards.WheelSpin
	ledger   []rewards.LedgerEntry
}

func newState() *state {
	return &state{
		users:    make(map[snowflake.ID]rewards.UserProgressionState),
		progress: make(map[questKey]rewards.QuestProgress),
		claims:   make(map[snowflake.ID][]rewards.DailyStreakClaim),
		claimDay: make(map[dayKey]struct{}),
		spins:    make(map[dayKey]rewards.WheelSpin),
	}
}

func (s *state) clone() *state {
	claims := make(map[snowflake.ID][]rewards.DailyStreakClaim, len(s.claims))
	for k, v := range s.claims {
		claims[k] = slices.Clone(v)
	}
	return &state{
		users:    maps.Clone(s.users),
		progress: maps.Clone(s.progress),
		claims:   claims,
		claimDay: maps.Clone(s.claimDay),
		spins:    maps.Clone(s.spins),
		ledger:   slices.Clone(s.ledger),
	}
}

// Store keeps everything in maps. Atomic runs against a staged copy that
// replaces the live state only when fn succeeds.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{st: newState(), now: now}
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx rewards.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(ctx, &tx{st: staged, now: s.now}); err != nil {
		return err
	}
	s.st = staged
	return nil
}

func (s *Store) reader() *tx {
	return &tx{st: s.st, now: s.now}
}

func (s *Store) GetProgression(ctx context.Context, userID snowflake.ID) (rewards.UserProgressionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().GetProgression(ctx, userID)
}

func (s *Store) ListQuestProgress(ctx context.Context, userID snowflake.ID) ([]rewards.QuestProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().ListQuestProgress(ctx, userID)
}

func (s *Store) LatestStreakClaim(ctx context.Context, userID snowflake.ID) (rewards.DailyStreakClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().LatestStreakClaim(ctx, userID)
}

func (s *Store) GetWheelSpin(ctx context.Context, userID snowflake.ID, day time.Time) (rewards.WheelSpin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().GetWheelSpin(ctx, userID, day)
}

func (s *Store) ListLedgerEntries(ctx context.Context, userID snowflake.ID, limit int) ([]rewards.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().ListLedgerEntries(ctx, userID, limit)
}

func (s *Store) LedgerTotals(ctx context.Context, userID snowflake.ID) (rewards.LedgerTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().LedgerTotals(ctx, userID)
}

func (s *Store) ListUserIDs(ctx context.Context) ([]snowflake.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().ListUserIDs(ctx)
}

// tx operates on a state without locking; the owning Store holds the mutex.
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) GetProgression(_ context.Context, userID snowflake.ID) (rewards.UserProgressionState, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return rewards.UserProgressionState{}, rewards.ErrNotFound
	}
	return u, nil
}

func (t *tx) ListQuestProgress(_ context.Context, userID snowflake.ID) ([]rewards.QuestProgress, error) {
	var rows []rewards.QuestProgress
	for k, p := range t.st.progress {
		if k.userID == userID {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].QuestID < rows[j].QuestID })
	return rows, nil
}

func (t *tx) LatestStreakClaim(_ context.Context, userID snowflake.ID) (rewards.DailyStreakClaim, error) {
	claims := t.st.claims[userID]
	if len(claims) == 0 {
		return rewards.DailyStreakClaim{}, rewards.ErrNotFound
	}
	latest := claims[0]
	for _, c := range claims[1:] {
		if c.Day.After(latest.Day) {
			latest = c
		}
	}
	return latest, nil
}

func (t *tx) GetWheelSpin(_ context.Context, userID snowflake.ID, day time.Time) (rewards.WheelSpin, error) {
	spin, ok := t.st.spins[dayKey{userID: userID, day: day.Format(time.DateOnly)}]
	if !ok {
		return rewards.WheelSpin{}, rewards.ErrNotFound
	}
	return spin, nil
}

func (t *tx) ListLedgerEntries(_ context.Context, userID snowflake.ID, limit int) ([]rewards.LedgerEntry, error) {
	var entries []rewards.LedgerEntry
	for i := len(t.st.ledger) - 1; i >= 0; i-- {
		if t.st.ledger[i].UserID != userID {
			continue
		}
		entries = append(entries, t.st.ledger[i])
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (t *tx) LedgerTotals(_ context.Context, userID snowflake.ID) (rewards.LedgerTotals, error) {
	var totals rewards.LedgerTotals
	for _, e := range t.st.ledger {
		if e.UserID != userID {
			continue
		}
		totals.Entries++
		totals.Amount += e.Amount
		totals.XP += e.XP
		totals.Reputation += e.Reputation
	}
	return totals, nil
}

func (t *tx) ListUserIDs(context.Context) ([]snowflake.ID, error) {
	ids := slices.Collect(maps.Keys(t.st.users))
	slices.Sort(ids)
	return ids, nil
}

func (t *tx) CreateProgression(_ context.Context, s rewards.UserProgressionState) error {
	if _, ok := t.st.users[s.UserID]; ok {
		return rewards.ErrDuplicate
	}
	t.st.users[s.UserID] = s
	return nil
}

func (t *tx) ApplyDelta(_ context.Context, userID snowflake.ID, d rewards.Delta) (rewards.UserProgressionState, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return rewards.UserProgressionState{}, rewards.ErrNotFound
	}
	if u.CoinBalance+d.Coins < 0 {
		return rewards.UserProgressionState{}, rewards.ErrConditionFailed
	}
	u.CoinBalance += d.Coins
	u.TotalXP += d.XP
	u.Reputation += d.Reputation
	u.UpdatedAt = t.now().UTC()
	t.st.users[userID] = u
	return u, nil
}

func (t *tx) SetLevel(_ context.Context, userID snowflake.ID, level int) error {
	u, ok := t.st.users[userID]
	if !ok {
		return rewards.ErrNotFound
	}
	u.Level = level
	t.st.users[userID] = u
	return nil
}

func (t *tx) AppendLedgerEntry(_ context.Context, entry rewards.LedgerEntry) error {
	t.st.ledger = append(t.st.ledger, entry)
	return nil
}

func (t *tx) EnsureQuestProgress(_ context.Context, userID snowflake.ID, questID string) (rewards.QuestProgress, error) {
	k := questKey{userID: userID, questID: questID}
	if p, ok := t.st.progress[k]; ok {
		return p, nil
	}
	p := rewards.QuestProgress{UserID: userID, QuestID: questID}
	t.st.progress[k] = p
	return p, nil
}

func (t *tx) AddQuestProgress(_ context.Context, userID snowflake.ID, questID string, delta, target int) (rewards.QuestProgress, error) {
	k := questKey{userID: userID, questID: questID}
	p, ok := t.st.progress[k]
	if !ok {
		return rewards.QuestProgress{}, rewards.ErrNotFound
	}
	if p.Completed {
		return rewards.QuestProgress{}, rewards.ErrConditionFailed
	}
	p.CurrentProgress = max(0, min(p.CurrentProgress+delta, target))
	t.st.progress[k] = p
	return p, nil
}

func (t *tx) SetQuestProgress(_ context.Context, userID snowflake.ID, questID string, value int) (rewards.QuestProgress, error) {
	k := questKey{userID: userID, questID: questID}
	p, ok := t.st.progress[k]
	if !ok {
		return rewards.QuestProgress{}, rewards.ErrNotFound
	}
	if p.Completed {
		return rewards.QuestProgress{}, rewards.ErrConditionFailed
	}
	p.CurrentProgress = value
	t.st.progress[k] = p
	return p, nil
}

func (t *tx) CompleteQuest(_ context.Context, userID snowflake.ID, questID string, target int, at time.Time) error {
	k := questKey{userID: userID, questID: questID}
	p, ok := t.st.progress[k]
	if !ok || p.Completed || p.CurrentProgress < target {
		return rewards.ErrConditionFailed
	}
	p.Completed = true
	p.CompletedAt = &at
	t.st.progress[k] = p
	return nil
}

func (t *tx) InsertStreakClaim(_ context.Context, c rewards.DailyStreakClaim) error {
	k := dayKey{userID: c.UserID, day: c.Day.Format(time.DateOnly)}
	if _, ok := t.st.claimDay[k]; ok {
		return rewards.ErrDuplicate
	}
	t.st.claimDay[k] = struct{}{}
	t.st.claims[c.UserID] = append(t.st.claims[c.UserID], c)
	return nil
}

func (t *tx) InsertWheelSpin(_ context.Context, s rewards.WheelSpin) error {
	k := dayKey{userID: s.UserID, day: s.Day.Format(time.DateOnly)}
	if _, ok := t.st.spins[k]; ok {
		return rewards.ErrDuplicate
	}
	t.st.spins[k] = s
	return nil
}
