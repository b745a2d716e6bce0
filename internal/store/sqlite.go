package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/security"
	"trading-journal/pkg/utils"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Options configures Open.
type Options struct {
	Driver         string
	DSN            string
	ConnectRetries int
	RetryDelay     time.Duration

	// Location is the journal time zone. Trade days are taken in it and
	// timestamps are read back in it.
	Location *time.Location
	Logger   zerolog.Logger
}

// SQLStore implements DataStore on top of sqlx. It runs against SQLite
// (the default) or PostgreSQL; queries are written with ? placeholders and
// rebound for the active driver.
type SQLStore struct {
	db     *sqlx.DB
	driver string
	loc    *time.Location
	logger zerolog.Logger
}

// NewSQLiteStore creates a SQLite-backed store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	return Open(context.Background(), Options{Driver: DriverSQLite, DSN: dbPath, Logger: zerolog.Nop()})
}

// Open connects to the configured database, retrying the initial connection,
// and ensures the schema exists.
func Open(ctx context.Context, opts Options) (*SQLStore, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, errors.NewValidationError("driver", driver, "must be sqlite3 or postgres")
	}

	dsn := opts.DSN
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	retry := utils.DefaultRetryConfig()
	if opts.ConnectRetries > 0 {
		retry.MaxAttempts = opts.ConnectRetries
	}
	if opts.RetryDelay > 0 {
		retry.InitialDelay = opts.RetryDelay
	}
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		opts.Logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Str("driver", driver).Msg("database connect failed, retrying")
	}

	db, err := utils.RetryWithResult(ctx, retry, func() (*sqlx.DB, error) {
		return sqlx.ConnectContext(ctx, driver, dsn)
	})
	if err != nil {
		return nil, errors.NewStoreError("open", driver, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err))
	}

	if driver == DriverSQLite {
		// one writer at a time keeps WAL mode free of busy errors
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(time.Hour)

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &SQLStore{db: db, driver: driver, loc: loc, logger: opts.Logger}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Debug().Str("driver", driver).Str("dsn", security.RedactDSN(opts.DSN)).Msg("journal store opened")
	return s, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLStore) initSchema(ctx context.Context) error {
	schema := `
	-- Journaled trades
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price DOUBLE PRECISION NOT NULL,
		exit_price DOUBLE PRECISION NOT NULL,
		position_size DOUBLE PRECISION NOT NULL,
		stop_loss DOUBLE PRECISION,
		take_profit DOUBLE PRECISION,
		pnl DOUBLE PRECISION NOT NULL DEFAULT 0,
		pips DOUBLE PRECISION NOT NULL DEFAULT 0,
		r_multiple DOUBLE PRECISION,
		outcome TEXT NOT NULL DEFAULT '',
		emotion_before TEXT NOT NULL DEFAULT '',
		emotion_after TEXT NOT NULL DEFAULT '',
		rules_followed TEXT NOT NULL DEFAULT '[]',
		setup TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		trade_date TEXT NOT NULL,
		traded_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Voluntary check-ins, at most one per user and day
	CREATE TABLE IF NOT EXISTS checkins (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		mood TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE(user_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, trade_date);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_checkins_user_date ON checkins(user_id, date);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.NewStoreError("init_schema", "", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Driver returns the active driver name.
func (s *SQLStore) Driver() string {
	return s.driver
}

// tradeRow is the column layout of the trades table.
type tradeRow struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	Symbol        string          `db:"symbol"`
	Direction     string          `db:"direction"`
	EntryPrice    float64         `db:"entry_price"`
	ExitPrice     float64         `db:"exit_price"`
	PositionSize  float64         `db:"position_size"`
	StopLoss      sql.NullFloat64 `db:"stop_loss"`
	TakeProfit    sql.NullFloat64 `db:"take_profit"`
	PnL           float64         `db:"pnl"`
	Pips          float64         `db:"pips"`
	RMultiple     sql.NullFloat64 `db:"r_multiple"`
	Outcome       string          `db:"outcome"`
	EmotionBefore string          `db:"emotion_before"`
	EmotionAfter  string          `db:"emotion_after"`
	RulesFollowed string          `db:"rules_followed"`
	Setup         string          `db:"setup"`
	Notes         string          `db:"notes"`
	Tags          string          `db:"tags"`
	TradeDate     string          `db:"trade_date"`
	TradedAt      time.Time       `db:"traded_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

const tradeColumns = `id, user_id, symbol, direction, entry_price, exit_price, position_size, stop_loss, take_profit,
	pnl, pips, r_multiple, outcome, emotion_before, emotion_after, rules_followed, setup, notes, tags,
	trade_date, traded_at, created_at, updated_at`

func newTradeRow(t *models.Trade, loc *time.Location) tradeRow {
	rules, _ := json.Marshal(nonNil(t.RulesFollowed))
	tags, _ := json.Marshal(nonNil(t.Tags))

	return tradeRow{
		ID:            t.ID,
		UserID:        t.UserID,
		Symbol:        t.Symbol,
		Direction:     string(t.Direction),
		EntryPrice:    t.EntryPrice,
		ExitPrice:     t.ExitPrice,
		PositionSize:  t.PositionSize,
		StopLoss:      nullFloat(t.StopLoss),
		TakeProfit:    nullFloat(t.TakeProfit),
		PnL:           t.PnL,
		Pips:          t.Pips,
		RMultiple:     nullFloat(t.RMultiple),
		Outcome:       string(t.Outcome),
		EmotionBefore: t.EmotionBefore,
		EmotionAfter:  t.EmotionAfter,
		RulesFollowed: string(rules),
		Setup:         t.Setup,
		Notes:         t.Notes,
		Tags:          string(tags),
		TradeDate:     t.TradeDate.In(loc).Format(models.DateLayout),
		TradedAt:      t.TradeDate.UTC(),
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
}

func (r tradeRow) toModel(loc *time.Location) (models.Trade, error) {
	t := models.Trade{
		ID:            r.ID,
		UserID:        r.UserID,
		Symbol:        r.Symbol,
		Direction:     models.Direction(r.Direction),
		EntryPrice:    r.EntryPrice,
		ExitPrice:     r.ExitPrice,
		PositionSize:  r.PositionSize,
		StopLoss:      floatPtr(r.StopLoss),
		TakeProfit:    floatPtr(r.TakeProfit),
		PnL:           r.PnL,
		Pips:          r.Pips,
		RMultiple:     floatPtr(r.RMultiple),
		Outcome:       models.Outcome(r.Outcome),
		EmotionBefore: r.EmotionBefore,
		EmotionAfter:  r.EmotionAfter,
		Setup:         r.Setup,
		Notes:         r.Notes,
		TradeDate:     r.TradedAt.In(loc),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.RulesFollowed), &t.RulesFollowed); err != nil {
		return t, errors.NewStoreError("decode_trade", r.ID, fmt.Errorf("%w: rules_followed: %v", errors.ErrDatabaseError, err))
	}
	if err := json.Unmarshal([]byte(r.Tags), &t.Tags); err != nil {
		return t, errors.NewStoreError("decode_trade", r.ID, fmt.Errorf("%w: tags: %v", errors.ErrDatabaseError, err))
	}
	return t, nil
}

// LogTrade inserts a trade. Missing ids and timestamps are filled in.
func (s *SQLStore) LogTrade(ctx context.Context, trade *models.Trade) error {
	if trade.UserID == "" {
		return errors.NewValidationError("user_id", trade.UserID, "user id is required")
	}
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if trade.TradeDate.IsZero() {
		trade.TradeDate = now.In(s.loc)
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = now
	}
	trade.UpdatedAt = now

	query := `INSERT INTO trades (` + tradeColumns + `) VALUES (
		:id, :user_id, :symbol, :direction, :entry_price, :exit_price, :position_size, :stop_loss, :take_profit,
		:pnl, :pips, :r_multiple, :outcome, :emotion_before, :emotion_after, :rules_followed, :setup, :notes, :tags,
		:trade_date, :traded_at, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, query, newTradeRow(trade, s.loc)); err != nil {
		return errors.NewStoreError("log_trade", trade.ID, err)
	}
	return nil
}

// GetTrade returns one trade owned by userID.
func (s *SQLStore) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	var row tradeRow
	query := s.db.Rebind(`SELECT ` + tradeColumns + ` FROM trades WHERE user_id = ? AND id = ?`)
	if err := s.db.GetContext(ctx, &row, query, userID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewStoreError("get_trade", id, errors.ErrNotFound)
		}
		return nil, errors.NewStoreError("get_trade", id, err)
	}
	t, err := row.toModel(s.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTrades returns trades matching filter, most recent first.
func (s *SQLStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Direction != "" {
		query += " AND direction = ?"
		args = append(args, string(filter.Direction))
	}
	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(filter.Outcome))
	}
	if !filter.StartDate.IsZero() {
		query += " AND trade_date >= ?"
		args = append(args, filter.StartDate.Format(models.DateLayout))
	}
	if !filter.EndDate.IsZero() {
		query += " AND trade_date <= ?"
		args = append(args, filter.EndDate.Format(models.DateLayout))
	}

	query += " ORDER BY traded_at DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	var rows []tradeRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, errors.NewStoreError("get_trades", "", err)
	}

	trades := make([]models.Trade, 0, len(rows))
	for _, r := range rows {
		t, err := r.toModel(s.loc)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// DeleteTrade removes a trade owned by userID.
func (s *SQLStore) DeleteTrade(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM trades WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return errors.NewStoreError("delete_trade", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewStoreError("delete_trade", id, errors.ErrNotFound)
	}
	return nil
}

// CountTrades returns the cumulative number of trades for userID.
func (s *SQLStore) CountTrades(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM trades WHERE user_id = ?`), userID); err != nil {
		return 0, errors.NewStoreError("count_trades", userID, err)
	}
	return n, nil
}

// TradeDates returns the distinct civil dates with at least one trade on or
// after since, newest first. A zero since returns every date.
func (s *SQLStore) TradeDates(ctx context.Context, userID string, since time.Time) ([]string, error) {
	return s.distinctDates(ctx, "trades", "trade_date", userID, since)
}

// SaveCheckin records a check-in. A second check-in for the same user and
// day fails with ErrDuplicateCheckin.
func (s *SQLStore) SaveCheckin(ctx context.Context, checkin *models.Checkin) error {
	if checkin.UserID == "" {
		return errors.NewValidationError("user_id", checkin.UserID, "user id is required")
	}
	if _, err := time.Parse(models.DateLayout, checkin.Date); err != nil {
		return errors.NewValidationError("date", checkin.Date, "must be YYYY-MM-DD")
	}
	if checkin.ID == "" {
		checkin.ID = uuid.NewString()
	}
	if checkin.CreatedAt.IsZero() {
		checkin.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind(`INSERT INTO checkins (id, user_id, date, mood, note, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, checkin.ID, checkin.UserID, checkin.Date, checkin.Mood, checkin.Note, checkin.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewStoreError("save_checkin", checkin.Date, errors.ErrDuplicateCheckin)
		}
		return errors.NewStoreError("save_checkin", checkin.Date, err)
	}
	return nil
}

// GetCheckins returns check-ins matching filter, newest first.
func (s *SQLStore) GetCheckins(ctx context.Context, filter CheckinFilter) ([]models.Checkin, error) {
	query := "SELECT id, user_id, date, mood, note, created_at FROM checkins WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.Format(models.DateLayout))
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.Format(models.DateLayout))
	}
	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.NewStoreError("get_checkins", "", err)
	}
	defer rows.Close()

	var checkins []models.Checkin
	for rows.Next() {
		var c models.Checkin
		if err := rows.Scan(&c.ID, &c.UserID, &c.Date, &c.Mood, &c.Note, &c.CreatedAt); err != nil {
			return nil, errors.NewStoreError("get_checkins", "", err)
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

// CheckinDates returns the distinct check-in dates on or after since, newest first.
func (s *SQLStore) CheckinDates(ctx context.Context, userID string, since time.Time) ([]string, error) {
	return s.distinctDates(ctx, "checkins", "date", userID, since)
}

func (s *SQLStore) distinctDates(ctx context.Context, table, column, userID string, since time.Time) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE user_id = ?", column, table)
	args := []interface{}{userID}
	if !since.IsZero() {
		query += fmt.Sprintf(" AND %s >= ?", column)
		args = append(args, since.Format(models.DateLayout))
	}
	query += fmt.Sprintf(" ORDER BY %s DESC", column)

	var dates []string
	if err := s.db.SelectContext(ctx, &dates, s.db.Rebind(query), args...); err != nil {
		return nil, errors.NewStoreError("dates", table, err)
	}
	return dates, nil
}

// isUniqueViolation reports whether err is a unique-constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
