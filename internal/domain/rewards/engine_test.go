package rewards_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards/mock"
	"github.com/ellavondegurechaff/progression/internal/gateways/memory"
)

const (
	alice = snowflake.ID(1001)
	bob   = snowflake.ID(1002)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func testCatalog() *rewards.Catalog {
	c := rewards.DefaultCatalog()
	c.Quests = []rewards.QuestDefinition{
		{ID: "first_post", Type: rewards.QuestTypePostCreated, Title: "First Post", Target: 1, XPReward: 100, ReputationReward: 10, CoinReward: 10},
		{ID: "social_butterfly", Type: rewards.QuestTypeEventJoined, Title: "Social Butterfly", Target: 3, XPReward: 150, ReputationReward: 15, CoinReward: 25},
		{ID: "profile_complete", Type: rewards.QuestTypeProfileComplete, Title: "Complete Your Profile", Target: 3, XPReward: 150, ReputationReward: 15, CoinReward: 20},
	}
	return c
}

func newTestEngine(t *testing.T, catalog *rewards.Catalog, profiles rewards.ProfileSource, opts ...rewards.Option) (*rewards.Engine, *memory.Store, *testClock) {
	t.Helper()

	clock := newTestClock(time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC))
	store := memory.New(clock.Now)
	opts = append([]rewards.Option{rewards.WithClock(clock.Now)}, opts...)

	engine, err := rewards.NewEngine(store, catalog, profiles, opts...)
	require.NoError(t, err)
	return engine, store, clock
}

func provision(t *testing.T, engine *rewards.Engine, ids ...snowflake.ID) {
	t.Helper()
	for _, id := range ids {
		_, err := engine.EnsureUser(context.Background(), id)
		require.NoError(t, err)
	}
}

func assertReconciled(t *testing.T, engine *rewards.Engine, userID snowflake.ID) {
	t.Helper()
	rec, err := engine.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, rec.Balanced, "ledger out of balance: %+v", rec)
	assert.Equal(t, rec.Totals.Amount, rec.State.CoinBalance)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()

	first, err := engine.EnsureUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Level)
	assert.Zero(t, first.CoinBalance)

	second, err := engine.EnsureUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompletingFirstPost(t *testing.T) {
	engine, store, _ := newTestEngine(t, rewards.DefaultCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	outcomes, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
	require.NoError(t, err)
	require.NotEmpty(t, outcomes)

	first := outcomes[0]
	assert.Equal(t, "first_post", first.Quest.ID)
	assert.True(t, first.Completed)
	assert.True(t, first.Progress.Completed)
	assert.Equal(t, 1, first.Progress.CurrentProgress)
	require.NotNil(t, first.Progress.CompletedAt)
	require.NotNil(t, first.Receipt)
	assert.True(t, first.Receipt.LevelUp())

	state, err := store.GetProgression(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.TotalXP)
	assert.Equal(t, 2, state.Level)
	assert.Equal(t, int64(10), state.CoinBalance)
	assert.Equal(t, int64(10), state.Reputation)

	entries, err := store.ListLedgerEntries(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rewards.EntryQuestReward, entries[0].Type)
	assert.Equal(t, int64(10), entries[0].Amount)
	assert.Equal(t, rewards.QuestReward{QuestID: "first_post"}, entries[0].Metadata)

	assertReconciled(t, engine, alice)
}

func TestRecordQuestEventAfterCompletionIsNoop(t *testing.T) {
	engine, store, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
	require.NoError(t, err)
	before, err := store.GetProgression(ctx, alice)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		outcomes, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.False(t, outcomes[0].Completed)
		assert.True(t, outcomes[0].AlreadyCompleted)
		assert.Equal(t, 1, outcomes[0].Progress.CurrentProgress)
		assert.Nil(t, outcomes[0].Receipt)
	}

	after, err := store.GetProgression(ctx, alice)
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("state changed after completion (-before +after):\n%s", diff)
	}

	totals, err := store.LedgerTotals(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Entries)
}

func TestRecordQuestEvent(t *testing.T) {
	tests := []struct {
		name       string
		questType  string
		deltas     []int
		want       []int
		wantReward bool
	}{
		{
			name:      "unknown type",
			questType: "photo_liked",
			deltas:    []int{1},
			want:      nil,
		},
		{
			name:      "negative delta clamps at zero",
			questType: rewards.QuestTypeEventJoined,
			deltas:    []int{-2},
			want:      []int{0},
		},
		{
			name:      "partial progress",
			questType: rewards.QuestTypeEventJoined,
			deltas:    []int{1, 1},
			want:      []int{1, 2},
		},
		{
			name:       "overshoot clamps to target and completes",
			questType:  rewards.QuestTypeEventJoined,
			deltas:     []int{2, 5},
			want:       []int{2, 3},
			wantReward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, store, _ := newTestEngine(t, testCatalog(), nil)
			ctx := context.Background()
			provision(t, engine, alice)

			var got []int
			for _, d := range tt.deltas {
				outcomes, err := engine.RecordQuestEventDelta(ctx, alice, tt.questType, d)
				require.NoError(t, err)
				for _, o := range outcomes {
					got = append(got, o.Progress.CurrentProgress)
				}
			}
			assert.Equal(t, tt.want, got)

			state, err := store.GetProgression(ctx, alice)
			require.NoError(t, err)
			if tt.wantReward {
				assert.Equal(t, int64(25), state.CoinBalance)
				assert.Equal(t, int64(150), state.TotalXP)
			} else {
				assert.Zero(t, state.CoinBalance)
			}
		})
	}
}

func TestRecordQuestEventUnknownUser(t *testing.T) {
	engine, store, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()

	_, err := engine.RecordQuestEvent(ctx, bob, rewards.QuestTypePostCreated)
	require.ErrorIs(t, err, rewards.ErrNotFound)

	rows, err := store.ListQuestProgress(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestConcurrentCompletionCreditsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine, store, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	const callers = 32
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		completed atomic.Int32
		benign    atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			outcomes, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
			if err != nil {
				t.Errorf("RecordQuestEvent() error = %v", err)
				return
			}
			if outcomes[0].Completed {
				completed.Add(1)
			}
			if outcomes[0].AlreadyCompleted {
				benign.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), completed.Load())
	assert.Equal(t, int32(callers-1), benign.Load())

	totals, err := store.LedgerTotals(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Entries)
	assert.Equal(t, int64(10), totals.Amount)
	assertReconciled(t, engine, alice)
}

func TestDailyRewardScenario(t *testing.T) {
	for _, tc := range []struct {
		name string
		size int
	}{
		{name: "store guard", size: 0},
		{name: "cached", size: rewards.DefaultDayCacheSize},
	} {
		t.Run(tc.name, func(t *testing.T) {
			engine, store, clock := newTestEngine(t, testCatalog(), nil, rewards.WithDayCacheSize(tc.size))
			ctx := context.Background()
			provision(t, engine, alice)

			day1, err := engine.ClaimDailyReward(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, int64(10), day1.XP)
			assert.Equal(t, int64(5), day1.Coins)
			assert.Equal(t, 1, day1.NewStreakLength)

			_, err = engine.ClaimDailyReward(ctx, alice)
			require.ErrorIs(t, err, rewards.ErrAlreadyClaimed)
			assert.True(t, rewards.IsBenign(err))

			state, err := store.GetProgression(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, int64(5), state.CoinBalance)

			clock.Advance(24 * time.Hour)
			day2, err := engine.ClaimDailyReward(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, int64(15), day2.XP)
			assert.Equal(t, int64(10), day2.Coins)
			assert.Equal(t, 2, day2.NewStreakLength)
			assert.Equal(t, 2, day2.CycleDay)

			assertReconciled(t, engine, alice)
		})
	}
}

func TestStreakGapResets(t *testing.T) {
	engine, _, clock := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	second, err := engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 2, second.NewStreakLength)

	clock.Advance(48 * time.Hour)
	after, err := engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, after.NewStreakLength)
	assert.Equal(t, 1, after.CycleDay)
	assert.Equal(t, int64(5), after.Coins)
}

func TestStreakCycleWraps(t *testing.T) {
	engine, store, clock := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	var (
		cycle []int
		coins int64
	)
	for day := 0; day < 9; day++ {
		res, err := engine.ClaimDailyReward(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, day+1, res.NewStreakLength)
		cycle = append(cycle, res.CycleDay)
		coins += res.Coins
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 1, 2}, cycle)

	state, err := store.GetProgression(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, coins, state.CoinBalance)
	assertReconciled(t, engine, alice)
}

func TestDailyResetFollowsLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	engine, _, clock := newTestEngine(t, testCatalog(), nil, rewards.WithLocation(tokyo))
	ctx := context.Background()
	provision(t, engine, alice)

	// 09:00 UTC is 18:00 in Tokyo; 15:00 UTC starts the next Tokyo day.
	_, err := engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)

	clock.Advance(5 * time.Hour)
	ok, err := engine.CanClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Hour)
	ok, err = engine.CanClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewStreakLength)
}

func TestSpinLotteryWheel(t *testing.T) {
	engine, store, clock := newTestEngine(t, testCatalog(), nil, rewards.WithRand(fixedRand(0)))
	ctx := context.Background()
	provision(t, engine, alice)

	res, err := engine.SpinLotteryWheel(ctx, alice, fixedRand(0.95))
	require.NoError(t, err)
	assert.Equal(t, "ruby", res.Segment.ID)
	assert.Equal(t, int64(100), res.CoinsWon)
	assert.Equal(t, int64(100), res.NewBalance)

	_, err = engine.SpinLotteryWheel(ctx, alice, fixedRand(0.5))
	require.ErrorIs(t, err, rewards.ErrAlreadySpun)
	var cooldown *rewards.SpinCooldownError
	require.True(t, errors.As(err, &cooldown))
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), cooldown.NextAvailableAt)

	state, err := store.GetProgression(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.CoinBalance)

	clock.Advance(24 * time.Hour)
	res, err = engine.SpinLotteryWheel(ctx, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, "pebble", res.Segment.ID)
	assert.Equal(t, int64(105), res.NewBalance)

	entries, err := store.ListLedgerEntries(ctx, alice, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rewards.EntryWheelSpin, entries[0].Type)
	assert.Equal(t, rewards.WheelSpinReward{SegmentID: "pebble"}, entries[0].Metadata)
	assertReconciled(t, engine, alice)
}

func TestSpinAndClaimAreIndependent(t *testing.T) {
	engine, _, _ := newTestEngine(t, testCatalog(), nil, rewards.WithDayCacheSize(0))
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.SpinLotteryWheel(ctx, alice, fixedRand(0.1))
	require.NoError(t, err)
	_, err = engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)

	_, err = engine.SpinLotteryWheel(ctx, alice, fixedRand(0.1))
	require.ErrorIs(t, err, rewards.ErrAlreadySpun)
	_, err = engine.ClaimDailyReward(ctx, alice)
	require.ErrorIs(t, err, rewards.ErrAlreadyClaimed)
}

func TestPurchase(t *testing.T) {
	engine, store, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
	require.NoError(t, err)

	tests := []struct {
		name        string
		price       int64
		wantErr     error
		wantBalance int64
	}{
		{name: "exceeds balance", price: 25, wantErr: rewards.ErrInsufficientBalance, wantBalance: 10},
		{name: "zero price", price: 0, wantErr: rewards.ErrInvalidAmount, wantBalance: 10},
		{name: "affordable", price: 4, wantBalance: 6},
		{name: "exact balance", price: 6, wantBalance: 0},
		{name: "empty wallet", price: 1, wantErr: rewards.ErrInsufficientBalance, wantBalance: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := store.LedgerTotals(ctx, alice)
			require.NoError(t, err)

			receipt, err := engine.Purchase(ctx, alice, "sticker_pack", tt.price)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				after, err := store.LedgerTotals(ctx, alice)
				require.NoError(t, err)
				assert.Equal(t, before, after)
			} else {
				require.NoError(t, err)
				assert.Equal(t, -tt.price, receipt.Entry.Amount)
				assert.Equal(t, rewards.Purchase{ItemID: "sticker_pack"}, receipt.Entry.Metadata)
			}

			state, err := store.GetProgression(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, state.CoinBalance)
		})
	}
	assertReconciled(t, engine, alice)
}

func TestAdjust(t *testing.T) {
	engine, _, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	receipt, err := engine.Adjust(ctx, alice, 40, "support refund")
	require.NoError(t, err)
	assert.Equal(t, int64(40), receipt.State.CoinBalance)

	receipt, err = engine.Adjust(ctx, alice, -15, "chargeback")
	require.NoError(t, err)
	assert.Equal(t, int64(25), receipt.State.CoinBalance)
	assert.Equal(t, rewards.EntryAdjustment, receipt.Entry.Type)

	_, err = engine.Adjust(ctx, alice, -100, "overdraw")
	require.ErrorIs(t, err, rewards.ErrInsufficientBalance)
	assertReconciled(t, engine, alice)
}

func TestEvaluateProfileCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mock.NewMockProfileSource(ctrl)
	gomock.InOrder(
		profiles.EXPECT().Profile(gomock.Any(), alice).Return(rewards.Profile{Name: "Alice"}, nil),
		profiles.EXPECT().Profile(gomock.Any(), alice).Return(rewards.Profile{Name: "Alice", Bio: "hi"}, nil),
		profiles.EXPECT().Profile(gomock.Any(), alice).Return(rewards.Profile{Bio: "hi"}, nil),
		profiles.EXPECT().Profile(gomock.Any(), alice).Return(rewards.Profile{Name: "Alice", Bio: "hi", ImageURL: "https://cdn/a.png"}, nil),
		profiles.EXPECT().Profile(gomock.Any(), alice).Return(rewards.Profile{}, nil),
	)

	engine, store, _ := newTestEngine(t, testCatalog(), profiles)
	ctx := context.Background()
	provision(t, engine, alice)

	tests := []struct {
		name          string
		wantProgress  int
		wantCompleted bool
		wantAlready   bool
	}{
		{name: "name only", wantProgress: 1},
		{name: "name and bio", wantProgress: 2},
		{name: "bio removed name", wantProgress: 1},
		{name: "all fields", wantProgress: 3, wantCompleted: true},
		{name: "cleared after completion", wantProgress: 3, wantAlready: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.EvaluateProfileCompletion(ctx, alice)
			if err != nil {
				t.Errorf("Engine.EvaluateProfileCompletion() error = %v", err)
				return
			}
			if got.Progress.CurrentProgress != tt.wantProgress {
				t.Errorf("Engine.EvaluateProfileCompletion() progress = %v, want %v", got.Progress.CurrentProgress, tt.wantProgress)
			}
			if got.Completed != tt.wantCompleted {
				t.Errorf("Engine.EvaluateProfileCompletion() completed = %v, want %v", got.Completed, tt.wantCompleted)
			}
			if got.AlreadyCompleted != tt.wantAlready {
				t.Errorf("Engine.EvaluateProfileCompletion() alreadyCompleted = %v, want %v", got.AlreadyCompleted, tt.wantAlready)
			}
		})
	}

	state, err := store.GetProgression(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(20), state.CoinBalance)
	assert.Equal(t, int64(150), state.TotalXP)
}

func TestProfileCompleteEventRoutesToEvaluation(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mock.NewMockProfileSource(ctrl)
	profiles.EXPECT().Profile(gomock.Any(), alice).Return(rewards.Profile{Name: "Alice", Bio: "hi"}, nil)

	engine, _, _ := newTestEngine(t, testCatalog(), profiles)
	provision(t, engine, alice)

	outcomes, err := engine.RecordQuestEvent(context.Background(), alice, rewards.QuestTypeProfileComplete)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 2, outcomes[0].Progress.CurrentProgress)
}

func TestListenersObserveCommittedGrants(t *testing.T) {
	ctrl := gomock.NewController(t)
	listener := mock.NewMockListener(ctrl)

	var kinds []rewards.EntryType
	listener.EXPECT().
		Granted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g rewards.Grant) error {
			kinds = append(kinds, g.Kind)
			return errors.New("sink unavailable")
		}).
		Times(3)

	engine, _, _ := newTestEngine(t, testCatalog(), nil, rewards.WithListeners(listener))
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
	require.NoError(t, err)
	_, err = engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
	require.NoError(t, err)
	_, err = engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	_, err = engine.ClaimDailyReward(ctx, alice)
	require.ErrorIs(t, err, rewards.ErrAlreadyClaimed)
	_, err = engine.SpinLotteryWheel(ctx, alice, fixedRand(0.2))
	require.NoError(t, err)

	assert.Equal(t, []rewards.EntryType{rewards.EntryQuestReward, rewards.EntryStreakClaim, rewards.EntryWheelSpin}, kinds)
}

func TestGetProgressionSummary(t *testing.T) {
	engine, _, _ := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.RecordQuestEvent(ctx, alice, rewards.QuestTypePostCreated)
	require.NoError(t, err)
	_, err = engine.RecordQuestEvent(ctx, alice, rewards.QuestTypeEventJoined)
	require.NoError(t, err)
	_, err = engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)

	summary, err := engine.GetProgressionSummary(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Level)
	assert.Equal(t, int64(110), summary.TotalXP)
	assert.Equal(t, int64(15), summary.CoinBalance)
	assert.Equal(t, int64(10), summary.Reputation)
	assert.Equal(t, rewards.LevelProgress{Level: 2, IntoLevel: 10, ToNextLevel: 90, NextLevelAt: 200}, summary.LevelProgress)

	want := map[string]int{"first_post": 1, "social_butterfly": 1, "profile_complete": 0}
	require.Len(t, summary.Quests, len(want))
	for _, q := range summary.Quests {
		assert.Equal(t, want[q.Quest.ID], q.Progress, q.Quest.ID)
	}

	assert.Equal(t, 1, summary.Streak.Length)
	assert.False(t, summary.Streak.CanClaim)
	assert.Equal(t, int64(10), summary.Streak.NextReward.Coins)
	assert.True(t, summary.Wheel.CanSpin)
}

func TestSummaryReportsBrokenStreak(t *testing.T) {
	engine, _, clock := newTestEngine(t, testCatalog(), nil)
	ctx := context.Background()
	provision(t, engine, alice)

	_, err := engine.ClaimDailyReward(ctx, alice)
	require.NoError(t, err)
	clock.Advance(72 * time.Hour)

	summary, err := engine.GetProgressionSummary(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, summary.Streak.Length)
	assert.True(t, summary.Streak.CanClaim)
	assert.Equal(t, int64(5), summary.Streak.NextReward.Coins)
	require.NotNil(t, summary.Streak.LastClaimDay)
	assert.Equal(t, "2024-03-10", *summary.Streak.LastClaimDay)
}

func TestSummaryUnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t, testCatalog(), nil)

	_, err := engine.GetProgressionSummary(context.Background(), bob)
	require.ErrorIs(t, err, rewards.ErrNotFound)
}
