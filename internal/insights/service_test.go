package insights

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
	"trading-journal/internal/streak"
)

// mockSource is a testify mock of Source.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error) {
	args := m.Called(ctx, filter)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *mockSource) CountTrades(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockSource) TradeDates(ctx context.Context, userID string, since time.Time) ([]string, error) {
	args := m.Called(ctx, userID, since)
	dates, _ := args.Get(0).([]string)
	return dates, args.Error(1)
}

func (m *mockSource) CheckinDates(ctx context.Context, userID string, since time.Time) ([]string, error) {
	args := m.Called(ctx, userID, since)
	dates, _ := args.Get(0).([]string)
	return dates, args.Error(1)
}

// fakeClock is a settable streak.Clock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newMockedService(src *mockSource, clock streak.Clock) *Service {
	return NewService(src, Options{
		RestDaysPerWeek: 1,
		CacheTTL:        time.Minute,
		Clock:           clock,
		Logger:          zerolog.Nop(),
	})
}

func TestDashboard_CombinesEngines(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	src := new(mockSource)
	src.On("TradeDates", mock.Anything, "alice", mock.Anything).Return([]string{"2026-03-15", "2026-03-14", "2026-03-12", "2026-03-11"}, nil)
	src.On("CheckinDates", mock.Anything, "alice", mock.Anything).Return([]string{"2026-03-14"}, nil)
	src.On("GetTrades", mock.Anything, store.TradeFilter{UserID: "alice", Limit: 20}).Return([]models.Trade{
		{TradeDate: clock.now, RulesFollowed: []string{"a", "b", "c", "d"}, EmotionBefore: "calm"},
	}, nil)
	src.On("CountTrades", mock.Anything, "alice").Return(12, nil)

	svc := newMockedService(src, clock)
	d, err := svc.Dashboard(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-15", d.AsOf)
	assert.Equal(t, 5, d.Streak.CurrentStreak)
	assert.True(t, d.Streak.HasTradedToday)
	assert.Equal(t, 100, d.Consistency.RuleAdherence)
	assert.Equal(t, 2, d.Level.Current.Number)
	assert.Equal(t, 12, d.TotalTrades)
	src.AssertExpectations(t)
}

func TestDashboard_CachesUntilInvalidated(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	src := new(mockSource)
	src.On("TradeDates", mock.Anything, "alice", mock.Anything).Return([]string{"2026-03-15"}, nil)
	src.On("CheckinDates", mock.Anything, "alice", mock.Anything).Return(nil, nil)
	src.On("GetTrades", mock.Anything, mock.Anything).Return(nil, nil)
	src.On("CountTrades", mock.Anything, "alice").Return(1, nil)

	svc := newMockedService(src, clock)
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "CountTrades", 1)

	svc.Invalidate("alice")
	_, err = svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "CountTrades", 2)

	// expired by TTL
	clock.now = clock.now.Add(2 * time.Minute)
	_, err = svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "CountTrades", 3)

	// a new civil day is never served from cache
	clock.now = time.Date(2026, 3, 15, 23, 59, 50, 0, time.UTC)
	_, err = svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	clock.now = clock.now.Add(20 * time.Second)
	_, err = svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "CountTrades", 5)

	svc.PurgeAll()
	assert.Equal(t, 0, svc.cache.size())
}

func TestDashboard_PropagatesStoreErrors(t *testing.T) {
	src := new(mockSource)
	src.On("TradeDates", mock.Anything, "alice", mock.Anything).Return(nil, errors.ErrDatabaseError)
	src.On("CheckinDates", mock.Anything, "alice", mock.Anything).Return(nil, nil)
	src.On("GetTrades", mock.Anything, mock.Anything).Return(nil, nil)
	src.On("CountTrades", mock.Anything, "alice").Return(0, nil)

	svc := newMockedService(src, &fakeClock{now: time.Now()})
	_, err := svc.Dashboard(context.Background(), "alice")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDatabaseError))
	assert.Equal(t, 0, svc.cache.size())
}

func TestDashboard_RequiresUser(t *testing.T) {
	svc := newMockedService(new(mockSource), nil)
	_, err := svc.Dashboard(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrInputValidation))
}

func TestDashboard_AgainstSQLiteStore(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	for _, off := range []int{0, 1, 3} {
		require.NoError(t, s.LogTrade(ctx, &models.Trade{
			UserID: "alice", Symbol: "EURUSD", Direction: models.DirectionLong,
			PositionSize: 1, TradeDate: now.AddDate(0, 0, -off),
		}))
	}
	require.NoError(t, s.SaveCheckin(ctx, &models.Checkin{UserID: "alice", Date: "2026-03-13"}))

	svc := NewService(s, Options{RestDaysPerWeek: 1, Clock: &fakeClock{now: now}, Logger: zerolog.Nop()})
	d, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 4, d.Streak.CurrentStreak)
	assert.Equal(t, 3, d.TotalTrades)
	assert.Equal(t, 3, d.Consistency.EntriesScored)
}

func TestExcludeDates(t *testing.T) {
	got := ExcludeDates(
		[]string{"2026-03-10", "2026-03-11T08:00:00Z", "bad", "2026-03-12"},
		[]string{"2026-03-11", "2026-03-12 09:00"},
	)
	assert.Equal(t, []string{"2026-03-10"}, got)
}

func TestScheduler_RegistersPurge(t *testing.T) {
	svc := newMockedService(new(mockSource), nil)
	sched := NewScheduler(svc, time.UTC, zerolog.Nop())

	require.NoError(t, sched.RegisterPurge(""))
	assert.Len(t, sched.Cron.Entries(), 1)

	assert.Error(t, sched.RegisterPurge("not a cron spec"))

	sched.Start()
	sched.Stop()
}
