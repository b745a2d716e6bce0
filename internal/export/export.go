// Package export moves journal trades in and out of spreadsheet formats.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trading-journal/internal/errors"
	"trading-journal/internal/insights"
	"trading-journal/internal/models"
)

// Format is a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (want csv or xlsx)", errors.ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Write exports trades in format. The report, if non-nil, is added as a
// summary sheet in XLSX output and ignored for CSV.
func Write(w io.Writer, format Format, trades []models.Trade, report *insights.Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, trades)
	case FormatXLSX:
		return WriteXLSX(w, trades, report)
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, format)
	}
}

// Read imports trades in format for userID. Trade dates are resolved in loc;
// nil means UTC.
func Read(r io.Reader, format Format, userID string, loc *time.Location) ([]models.Trade, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, userID, loc)
	case FormatXLSX:
		return ReadXLSX(r, userID, loc)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, format)
	}
}

// header is the column order shared by every format.
var header = []string{
	"id", "date", "symbol", "direction", "entry_price", "exit_price", "position_size",
	"stop_loss", "take_profit", "pips", "pnl", "r_multiple", "outcome",
	"emotion_before", "emotion_after", "rules_followed", "setup", "tags", "notes",
}

// record is one exported trade, flattened to strings and numbers.
type record struct {
	ID            string  `csv:"id"`
	Date          string  `csv:"date"`
	Symbol        string  `csv:"symbol"`
	Direction     string  `csv:"direction"`
	EntryPrice    float64 `csv:"entry_price"`
	ExitPrice     float64 `csv:"exit_price"`
	PositionSize  float64 `csv:"position_size"`
	StopLoss      string  `csv:"stop_loss"`
	TakeProfit    string  `csv:"take_profit"`
	Pips          float64 `csv:"pips"`
	PnL           float64 `csv:"pnl"`
	RMultiple     string  `csv:"r_multiple"`
	Outcome       string  `csv:"outcome"`
	EmotionBefore string  `csv:"emotion_before"`
	EmotionAfter  string  `csv:"emotion_after"`
	RulesFollowed string  `csv:"rules_followed"`
	Setup         string  `csv:"setup"`
	Tags          string  `csv:"tags"`
	Notes         string  `csv:"notes"`
}

// listSep joins rule and tag lists inside a single cell.
const listSep = ";"

func toRecord(t models.Trade) record {
	return record{
		ID:            t.ID,
		Date:          t.TradeDate.Format(time.RFC3339),
		Symbol:        t.Symbol,
		Direction:     string(t.Direction),
		EntryPrice:    t.EntryPrice,
		ExitPrice:     t.ExitPrice,
		PositionSize:  t.PositionSize,
		StopLoss:      optFloat(t.StopLoss),
		TakeProfit:    optFloat(t.TakeProfit),
		Pips:          t.Pips,
		PnL:           t.PnL,
		RMultiple:     optFloat(t.RMultiple),
		Outcome:       string(t.Outcome),
		EmotionBefore: t.EmotionBefore,
		EmotionAfter:  t.EmotionAfter,
		RulesFollowed: strings.Join(t.RulesFollowed, listSep),
		Setup:         t.Setup,
		Tags:          strings.Join(t.Tags, listSep),
		Notes:         t.Notes,
	}
}

// values returns the record in header order.
func (r record) values() []interface{} {
	return []interface{}{
		r.ID, r.Date, r.Symbol, r.Direction, r.EntryPrice, r.ExitPrice, r.PositionSize,
		r.StopLoss, r.TakeProfit, r.Pips, r.PnL, r.RMultiple, r.Outcome,
		r.EmotionBefore, r.EmotionAfter, r.RulesFollowed, r.Setup, r.Tags, r.Notes,
	}
}

// toTrade validates an imported record. line is the 1-based source row used
// in error messages.
func (r record) toTrade(userID string, loc *time.Location, line int) (models.Trade, error) {
	fail := func(field string, value interface{}, msg string) (models.Trade, error) {
		return models.Trade{}, errors.Wrapf(errors.NewValidationError(field, value, msg), "row %d", line)
	}

	if strings.TrimSpace(r.Symbol) == "" {
		return fail("symbol", r.Symbol, "symbol is required")
	}
	dir, ok := models.ParseDirection(r.Direction)
	if !ok {
		return fail("direction", r.Direction, "must be long or short")
	}
	outcome, ok := models.ParseOutcome(r.Outcome)
	if !ok {
		return fail("outcome", r.Outcome, "must be win, loss or breakeven")
	}
	date, err := parseDate(r.Date, loc)
	if err != nil {
		return fail("date", r.Date, "must be RFC3339 or YYYY-MM-DD")
	}
	if r.PositionSize <= 0 {
		return fail("position_size", r.PositionSize, "must be positive")
	}

	t := models.Trade{
		ID:            strings.TrimSpace(r.ID),
		UserID:        userID,
		Symbol:        strings.ToUpper(strings.TrimSpace(r.Symbol)),
		Direction:     dir,
		EntryPrice:    r.EntryPrice,
		ExitPrice:     r.ExitPrice,
		PositionSize:  r.PositionSize,
		Pips:          r.Pips,
		PnL:           r.PnL,
		Outcome:       outcome,
		EmotionBefore: strings.TrimSpace(r.EmotionBefore),
		EmotionAfter:  strings.TrimSpace(r.EmotionAfter),
		RulesFollowed: splitList(r.RulesFollowed),
		Setup:         r.Setup,
		Tags:          splitList(r.Tags),
		Notes:         r.Notes,
		TradeDate:     date,
	}
	if t.StopLoss, err = parseOptFloat(r.StopLoss); err != nil {
		return fail("stop_loss", r.StopLoss, "must be a number")
	}
	if t.TakeProfit, err = parseOptFloat(r.TakeProfit); err != nil {
		return fail("take_profit", r.TakeProfit, "must be a number")
	}
	if t.RMultiple, err = parseOptFloat(r.RMultiple); err != nil {
		return fail("r_multiple", r.RMultiple, "must be a number")
	}
	return t, nil
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseOptFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseDate reads an RFC3339 timestamp or a plain date. Plain dates are
// midnight in loc and timestamps are moved into loc, so the civil day is the
// journal's.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation(models.DateLayout, s, loc)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
