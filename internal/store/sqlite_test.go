package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func f(v float64) *float64 { return &v }

func sampleTrade(user string, at time.Time) *models.Trade {
	return &models.Trade{
		UserID:        user,
		Symbol:        "EURUSD",
		Direction:     models.DirectionLong,
		EntryPrice:    1.1,
		ExitPrice:     1.105,
		PositionSize:  1,
		StopLoss:      f(1.095),
		PnL:           500,
		Pips:          50,
		RMultiple:     f(1),
		Outcome:       models.OutcomeWin,
		EmotionBefore: "calm",
		RulesFollowed: []string{"plan", "size", "stop", "news"},
		Tags:          []string{"london"},
		TradeDate:     at,
	}
}

func TestLogTradeAndGetTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tr := sampleTrade("alice", at)
	require.NoError(t, s.LogTrade(ctx, tr))
	require.NotEmpty(t, tr.ID)

	got, err := s.GetTrade(ctx, "alice", tr.ID)
	require.NoError(t, err)

	assert.Equal(t, "EURUSD", got.Symbol)
	assert.Equal(t, models.DirectionLong, got.Direction)
	assert.True(t, at.Equal(got.TradeDate))
	require.NotNil(t, got.StopLoss)
	assert.InDelta(t, 1.095, *got.StopLoss, 1e-12)
	assert.Nil(t, got.TakeProfit)
	assert.Equal(t, []string{"plan", "size", "stop", "news"}, got.RulesFollowed)
	assert.Equal(t, []string{"london"}, got.Tags)
	assert.Equal(t, models.OutcomeWin, got.Outcome)

	_, err = s.GetTrade(ctx, "bob", tr.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLogTradeRequiresUser(t *testing.T) {
	s := newTestStore(t)
	err := s.LogTrade(context.Background(), &models.Trade{Symbol: "EURUSD"})
	assert.True(t, errors.Is(err, errors.ErrInputValidation))
}

func TestGetTradesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		tr := sampleTrade("alice", base.AddDate(0, 0, i))
		if i%2 == 1 {
			tr.Symbol = "GBPUSD"
			tr.Direction = models.DirectionShort
			tr.Outcome = models.OutcomeLoss
		}
		require.NoError(t, s.LogTrade(ctx, tr))
	}
	require.NoError(t, s.LogTrade(ctx, sampleTrade("bob", base)))

	all, err := s.GetTrades(ctx, TradeFilter{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "2026-03-05", all[0].Day())

	gbp, err := s.GetTrades(ctx, TradeFilter{UserID: "alice", Symbol: "GBPUSD"})
	require.NoError(t, err)
	assert.Len(t, gbp, 2)

	losses, err := s.GetTrades(ctx, TradeFilter{UserID: "alice", Outcome: models.OutcomeLoss, Direction: models.DirectionShort})
	require.NoError(t, err)
	assert.Len(t, losses, 2)

	ranged, err := s.GetTrades(ctx, TradeFilter{
		UserID:    "alice",
		StartDate: base.AddDate(0, 0, 1),
		EndDate:   base.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	page, err := s.GetTrades(ctx, TradeFilter{UserID: "alice", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2026-03-03", page[0].Day())
}

func TestDeleteAndCountTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr := sampleTrade("alice", time.Now())
	require.NoError(t, s.LogTrade(ctx, tr))
	require.NoError(t, s.LogTrade(ctx, sampleTrade("alice", time.Now())))

	n, err := s.CountTrades(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteTrade(ctx, "alice", tr.ID))
	err = s.DeleteTrade(ctx, "alice", tr.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	n, err = s.CountTrades(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTradeDatesAreDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.LogTrade(ctx, sampleTrade("alice", day)))
	require.NoError(t, s.LogTrade(ctx, sampleTrade("alice", day.Add(3*time.Hour))))
	require.NoError(t, s.LogTrade(ctx, sampleTrade("alice", day.AddDate(0, 0, -1))))
	require.NoError(t, s.LogTrade(ctx, sampleTrade("alice", day.AddDate(0, 0, -30))))

	dates, err := s.TradeDates(ctx, "alice", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10", "2026-03-09", "2026-02-08"}, dates)

	recent, err := s.TradeDates(ctx, "alice", day.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10", "2026-03-09"}, recent)
}

func TestSaveCheckinDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCheckin(ctx, &models.Checkin{UserID: "alice", Date: "2026-03-10", Mood: "calm"}))
	err := s.SaveCheckin(ctx, &models.Checkin{UserID: "alice", Date: "2026-03-10"})
	assert.True(t, errors.Is(err, errors.ErrDuplicateCheckin))

	// another user on the same day is fine
	require.NoError(t, s.SaveCheckin(ctx, &models.Checkin{UserID: "bob", Date: "2026-03-10"}))

	err = s.SaveCheckin(ctx, &models.Checkin{UserID: "alice", Date: "10/03/2026"})
	assert.True(t, errors.Is(err, errors.ErrInputValidation))
}

func TestGetCheckinsAndDates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2026-03-08", "2026-03-10", "2026-03-09"} {
		require.NoError(t, s.SaveCheckin(ctx, &models.Checkin{UserID: "alice", Date: d, Note: "rest"}))
	}

	checkins, err := s.GetCheckins(ctx, CheckinFilter{UserID: "alice", Limit: 2})
	require.NoError(t, err)
	require.Len(t, checkins, 2)
	assert.Equal(t, "2026-03-10", checkins[0].Date)
	assert.Equal(t, "rest", checkins[0].Note)

	dates, err := s.CheckinDates(ctx, "alice", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10", "2026-03-09"}, dates)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", DSN: "x"})
	assert.True(t, errors.Is(err, errors.ErrInputValidation))
}

func TestReadsBackInJournalLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	s, err := Open(context.Background(), Options{
		Driver:   DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "tz.db"),
		Location: loc,
	})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	at := time.Date(2026, 3, 10, 22, 0, 0, 0, loc)
	tr := sampleTrade("alice", at)
	require.NoError(t, s.LogTrade(ctx, tr))

	got, err := s.GetTrade(ctx, "alice", tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", got.Day())

	dates, err := s.TradeDates(ctx, "alice", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10"}, dates)
}

func TestTradeDayTakenInJournalLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	s, err := Open(context.Background(), Options{
		Driver:   DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "tz.db"),
		Location: loc,
	})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	// 02:00 UTC on the 11th is 21:00 on the 10th in the journal's zone.
	tr := sampleTrade("alice", time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC))
	require.NoError(t, s.LogTrade(ctx, tr))

	dates, err := s.TradeDates(ctx, "alice", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10"}, dates)

	got, err := s.GetTrades(ctx, TradeFilter{UserID: "alice", StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, loc)})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// An unstamped trade is dated now in the journal's zone.
	now := sampleTrade("bob", time.Time{})
	require.NoError(t, s.LogTrade(ctx, now))
	assert.Equal(t, loc, now.TradeDate.Location())
}

func TestCorruptListColumnIsReported(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr := sampleTrade("alice", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, s.LogTrade(ctx, tr))

	_, err := s.db.ExecContext(ctx, `UPDATE trades SET rules_followed = 'plan,size' WHERE id = ?`, tr.ID)
	require.NoError(t, err)

	_, err = s.GetTrade(ctx, "alice", tr.ID)
	assert.True(t, errors.Is(err, errors.ErrDatabaseError), "got %v", err)

	_, err = s.GetTrades(ctx, TradeFilter{UserID: "alice"})
	assert.True(t, errors.Is(err, errors.ErrDatabaseError), "got %v", err)
}
