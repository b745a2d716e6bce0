// Package insights is the data-fetch layer around the journal engines. It
// reads a user's records from the store, feeds the pure streak, scoring and
// level engines, and caches the combined dashboard per user.
package insights

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trading-journal/internal/errors"
	"trading-journal/internal/levels"
	"trading-journal/internal/models"
	"trading-journal/internal/scoring"
	"trading-journal/internal/store"
	"trading-journal/internal/streak"
)

// Source is the subset of store.DataStore the service reads from.
type Source interface {
	GetTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error)
	CountTrades(ctx context.Context, userID string) (int, error)
	TradeDates(ctx context.Context, userID string, since time.Time) ([]string, error)
	CheckinDates(ctx context.Context, userID string, since time.Time) ([]string, error)
}

// Dashboard combines every engine result for one user.
type Dashboard struct {
	UserID      string            `json:"user_id"`
	AsOf        string            `json:"as_of"`
	Streak      streak.Result     `json:"streak"`
	Consistency scoring.Breakdown `json:"consistency"`
	Level       levels.Progress   `json:"level"`
	TotalTrades int               `json:"total_trades"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Options configures a Service.
type Options struct {
	RestDaysPerWeek int
	CacheTTL        time.Duration
	Location        *time.Location
	Clock           streak.Clock
	Logger          zerolog.Logger
}

// Service computes and caches dashboards.
type Service struct {
	source   Source
	streaks  *streak.Calculator
	clock    streak.Clock
	loc      *time.Location
	restDays int
	cache    *dashboardCache
	logger   zerolog.Logger
}

// NewService creates a Service reading from source.
func NewService(source Source, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = streak.SystemClock
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		source:   source,
		streaks:  streak.NewCalculator(clock, loc),
		clock:    clock,
		loc:      loc,
		restDays: opts.RestDaysPerWeek,
		cache:    newDashboardCache(opts.CacheTTL),
		logger:   opts.Logger,
	}
}

// Dashboard returns the user's dashboard, served from cache while fresh and
// computed on the same civil day.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user_id", userID, "user id is required")
	}

	today := s.streaks.Today()
	now := s.clock.Now()
	if d, ok := s.cache.get(userID, today, now); ok {
		s.logger.Debug().Str("user_id", userID).Msg("dashboard cache hit")
		return d, nil
	}

	d, err := s.compute(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	s.cache.put(userID, d, now)
	return d, nil
}

func (s *Service) compute(ctx context.Context, userID, today string) (*Dashboard, error) {
	since := s.clock.Now().In(s.loc).AddDate(0, 0, -(streak.MaxLookbackDays + 1))

	var (
		tradeDates   []string
		checkinDates []string
		recent       []models.Trade
		count        int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tradeDates, err = s.source.TradeDates(gctx, userID, since)
		return errors.Wrap(err, "loading trade dates")
	})
	g.Go(func() error {
		var err error
		checkinDates, err = s.source.CheckinDates(gctx, userID, since)
		return errors.Wrap(err, "loading check-in dates")
	})
	g.Go(func() error {
		var err error
		recent, err = s.source.GetTrades(gctx, store.TradeFilter{UserID: userID, Limit: scoring.RecentEntriesLimit})
		return errors.Wrap(err, "loading recent trades")
	})
	g.Go(func() error {
		var err error
		count, err = s.source.CountTrades(gctx, userID)
		return errors.Wrap(err, "counting trades")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]scoring.Entry, len(recent))
	for i, t := range recent {
		entries[i] = scoring.EntryFromTrade(t)
	}

	d := &Dashboard{
		UserID:      userID,
		AsOf:        today,
		Streak:      s.streaks.Calculate(tradeDates, ExcludeDates(checkinDates, tradeDates), s.restDays),
		Consistency: scoring.Calculate(entries),
		Level:       levels.ForTradeCount(count),
		TotalTrades: count,
		GeneratedAt: s.clock.Now().UTC(),
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("streak", d.Streak.CurrentStreak).
		Int("score", d.Consistency.Overall).
		Int("level", d.Level.Current.Number).
		Msg("dashboard computed")

	return d, nil
}

// Invalidate drops the cached dashboard for userID. Callers invoke it after
// any write to the user's journal.
func (s *Service) Invalidate(userID string) {
	s.cache.delete(userID)
}

// PurgeAll drops every cached dashboard.
func (s *Service) PurgeAll() {
	n := s.cache.purge()
	s.logger.Info().Int("entries", n).Msg("dashboard cache purged")
}

// ExcludeDates returns the dates in checkins that are not in trades, in
// their original order. A check-in marks a day without a trade.
func ExcludeDates(checkins, trades []string) []string {
	traded := make(map[string]struct{}, len(trades))
	for _, d := range trades {
		if key, ok := streak.NormalizeDate(d); ok {
			traded[key] = struct{}{}
		}
	}

	out := make([]string, 0, len(checkins))
	for _, d := range checkins {
		key, ok := streak.NormalizeDate(d)
		if !ok {
			continue
		}
		if _, dup := traded[key]; !dup {
			out = append(out, d)
		}
	}
	return out
}
