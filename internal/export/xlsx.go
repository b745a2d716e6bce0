package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"trading-journal/internal/errors"
	"trading-journal/internal/insights"
	"trading-journal/internal/models"
)

// Sheet names in exported workbooks.
const (
	TradesSheet  = "Trades"
	SummarySheet = "Summary"
)

// WriteXLSX writes trades to an Excel workbook. A non-nil report adds a
// summary sheet.
func WriteXLSX(w io.Writer, trades []models.Trade, report *insights.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TradesSheet); err != nil {
		return errors.Wrap(err, "naming trades sheet")
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(TradesSheet, "A1", &headerRow); err != nil {
		return errors.Wrap(err, "writing header")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(TradesSheet, "A1", lastCol+"1", bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, t := range trades {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := toRecord(t).values()
		if err := f.SetSheetRow(TradesSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	f.SetColWidth(TradesSheet, "A", "A", 38)
	f.SetColWidth(TradesSheet, "B", "B", 26)

	if report != nil {
		if err := writeSummary(f, report); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeSummary(f *excelize.File, r *insights.Report) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return errors.Wrap(err, "creating summary sheet")
	}

	avgR := ""
	if r.AvgR != nil {
		avgR = strconv.FormatFloat(*r.AvgR, 'f', 2, 64)
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Trades", r.Trades},
		{"Wins", r.Wins},
		{"Losses", r.Losses},
		{"Breakeven", r.Breakeven},
		{"Win rate %", r.WinRate},
		{"Net P&L", r.NetPnL},
		{"Average P&L", r.AvgPnL},
		{"Median P&L", r.MedianPnL},
		{"Std dev P&L", r.StdDevPnL},
		{"Best trade", r.BestTrade},
		{"Worst trade", r.WorstTrade},
		{"Profit factor", r.ProfitFactor},
		{"Average R", avgR},
		{"Total pips", r.TotalPips},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := row
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return errors.Wrap(err, "writing summary")
		}
	}
	f.SetColWidth(SummarySheet, "A", "A", 18)
	return nil
}

// ReadXLSX parses trades from the first sheet of a workbook. The first row
// must hold column names as written by WriteXLSX.
func ReadXLSX(r io.Reader, userID string, loc *time.Location) ([]models.Trade, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewValidationError("workbook", "", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	trades := make([]models.Trade, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		line := i + 2
		if blankRow(cells) {
			continue
		}
		rec, err := recordFromCells(index, cells)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", line)
		}
		t, err := rec.toTrade(userID, loc, line)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func recordFromCells(index map[string]int, cells []string) (record, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}
	num := func(col string) (float64, error) {
		s := get(col)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", col, errors.NewValidationError(col, s, "must be a number"))
		}
		return v, nil
	}

	rec := record{
		ID:            get("id"),
		Date:          get("date"),
		Symbol:        get("symbol"),
		Direction:     get("direction"),
		StopLoss:      get("stop_loss"),
		TakeProfit:    get("take_profit"),
		RMultiple:     get("r_multiple"),
		Outcome:       get("outcome"),
		EmotionBefore: get("emotion_before"),
		EmotionAfter:  get("emotion_after"),
		RulesFollowed: get("rules_followed"),
		Setup:         get("setup"),
		Tags:          get("tags"),
		Notes:         get("notes"),
	}
	var err error
	if rec.EntryPrice, err = num("entry_price"); err != nil {
		return rec, err
	}
	if rec.ExitPrice, err = num("exit_price"); err != nil {
		return rec, err
	}
	if rec.PositionSize, err = num("position_size"); err != nil {
		return rec, err
	}
	if rec.Pips, err = num("pips"); err != nil {
		return rec, err
	}
	if rec.PnL, err = num("pnl"); err != nil {
		return rec, err
	}
	return rec, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
