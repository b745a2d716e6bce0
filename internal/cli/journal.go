package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/errors"
	"trading-journal/internal/levels"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/pnl"
	"trading-journal/internal/security"
	"trading-journal/internal/store"
	"trading-journal/internal/streak"
)

// addJournalCommands adds commands that write to or read from the journal.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newLogCmd(app))
	rootCmd.AddCommand(newListCmd(app))
	rootCmd.AddCommand(newShowCmd(app))
	rootCmd.AddCommand(newDeleteCmd(app))
	rootCmd.AddCommand(newCheckinCmd(app))
}

func newLogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Journal a closed trade",
		Long: `Journal a closed trade. Pips, P&L and R-multiple are computed from the
instrument catalog; the outcome is derived from P&L unless given.`,
		Example: `  journal log --symbol EURUSD --direction long --entry 1.1000 --exit 1.1050 --stop 1.0975
  journal log -s XAUUSD -d short --entry 2400 --exit 2390 --size 0.5 --emotion-before calm \
      --rules plan,stop,size,session --tags london`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			trade, err := tradeFromFlags(cmd, app)
			if err != nil {
				return err
			}

			res, err := app.PnL.Calculate(pnl.Input{
				Symbol:       trade.Symbol,
				Direction:    trade.Direction,
				EntryPrice:   trade.EntryPrice,
				ExitPrice:    trade.ExitPrice,
				PositionSize: trade.PositionSize,
				StopLoss:     trade.StopLoss,
			})
			if err != nil {
				return err
			}
			trade.Pips = res.Pips
			trade.PnL = res.PnL
			trade.RMultiple = res.RMultiple
			if trade.Outcome == models.OutcomeUnset {
				trade.Outcome = models.OutcomeFromPnL(res.PnL)
			}

			before, err := app.Store.CountTrades(ctx, trade.UserID)
			if err != nil {
				return err
			}
			if err := app.Store.LogTrade(ctx, trade); err != nil {
				return err
			}
			app.Insights.Invalidate(trade.UserID)
			logging.LogTrade(app.Logger, trade.ID, trade.Symbol, string(trade.Direction), trade.PnL)

			level, leveled := levels.LeveledUp(before, before+1)
			if leveled {
				logging.LogLevelUp(app.Logger, trade.UserID, level.Number, level.Name)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trade":    trade,
					"level_up": leveledUpLevel(level, leveled),
				})
			}

			output.Success("✓ Trade %s journaled", trade.ID)
			output.Printf("  %s %s  %s → %s  x%.2f\n",
				trade.Symbol, strings.ToUpper(string(trade.Direction)),
				FormatPrice(trade.EntryPrice), FormatPrice(trade.ExitPrice), trade.PositionSize)
			output.Printf("  Pips: %s   P&L: %s   R: %s   Outcome: %s\n",
				output.FormatPips(trade.Pips), output.FormatPnL(trade.PnL), FormatR(trade.RMultiple), trade.Outcome)
			if leveled {
				output.Println()
				output.Success("★ Level up! You are now level %d: %s", level.Number, level.Name)
				for _, f := range level.Unlocks {
					output.Printf("  Unlocked: %s\n", f)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("symbol", "s", "", "Instrument symbol (default from config)")
	cmd.Flags().StringP("direction", "d", "long", "Trade direction (long, short)")
	cmd.Flags().Float64("entry", 0, "Entry price")
	cmd.Flags().Float64("exit", 0, "Exit price")
	cmd.Flags().Float64("size", 0, "Position size in lots (default from config)")
	cmd.Flags().Float64("stop", 0, "Stop-loss price")
	cmd.Flags().Float64("target", 0, "Take-profit price")
	cmd.Flags().String("outcome", "", "Outcome override (win, loss, breakeven)")
	cmd.Flags().String("emotion-before", "", "Emotion before the trade")
	cmd.Flags().String("emotion-after", "", "Emotion after the trade")
	cmd.Flags().StringSlice("rules", nil, "Rules followed (comma separated)")
	cmd.Flags().String("setup", "", "Setup name")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.Flags().StringSlice("tags", nil, "Tags (comma separated)")
	cmd.Flags().String("date", "", "Trade date (YYYY-MM-DD or RFC3339, default now)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("exit")

	return cmd
}

func leveledUpLevel(l levels.Level, ok bool) *levels.Level {
	if !ok {
		return nil
	}
	return &l
}

// tradeFromFlags builds an unsaved trade from the log command's flags.
func tradeFromFlags(cmd *cobra.Command, app *App) (*models.Trade, error) {
	flags := cmd.Flags()
	symbol, _ := flags.GetString("symbol")
	if symbol == "" {
		symbol = app.Config.Journal.DefaultInstrument
	}
	dirRaw, _ := flags.GetString("direction")
	dir, ok := models.ParseDirection(dirRaw)
	if !ok {
		return nil, errors.NewValidationError("direction", dirRaw, "must be long or short")
	}
	outcomeRaw, _ := flags.GetString("outcome")
	outcome, ok := models.ParseOutcome(outcomeRaw)
	if !ok {
		return nil, errors.NewValidationError("outcome", outcomeRaw, "must be win, loss or breakeven")
	}

	entry, _ := flags.GetFloat64("entry")
	exit, _ := flags.GetFloat64("exit")
	size, _ := flags.GetFloat64("size")
	if size == 0 {
		size = app.Config.Journal.DefaultPositionLot
	}

	t := &models.Trade{
		UserID:       app.Config.Journal.UserID,
		Symbol:       pnl.NormalizeSymbol(symbol),
		Direction:    dir,
		EntryPrice:   entry,
		ExitPrice:    exit,
		PositionSize: size,
		Outcome:      outcome,
	}
	if flags.Changed("stop") {
		v, _ := flags.GetFloat64("stop")
		t.StopLoss = &v
	}
	if flags.Changed("target") {
		v, _ := flags.GetFloat64("target")
		t.TakeProfit = &v
	}

	text := func(name string) string {
		v, _ := flags.GetString(name)
		return security.SanitizeText(v)
	}
	t.EmotionBefore = text("emotion-before")
	t.EmotionAfter = text("emotion-after")
	t.Setup = text("setup")
	t.Notes = text("notes")
	t.RulesFollowed, _ = flags.GetStringSlice("rules")
	t.Tags, _ = flags.GetStringSlice("tags")

	date, _ := flags.GetString("date")
	when, err := parseWhen(date, app.Location)
	if err != nil {
		return nil, err
	}
	t.TradeDate = when
	return t, nil
}

// parseWhen parses a CLI date flag in loc; empty means now.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(models.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, errors.NewValidationError("date", s, "must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

func newListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List journaled trades",
		Example: `  journal list
  journal list --symbol EURUSD --outcome loss --from 2026-03-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			filter, err := tradeFilterFromFlags(cmd, app)
			if err != nil {
				return err
			}
			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				output.Dim("Tip: journal a trade with 'journal log --entry ... --exit ...'")
				return nil
			}

			table := NewTable(output, "Date", "ID", "Symbol", "Side", "Pips", "P&L", "R", "Outcome", "Setup")
			var total float64
			for _, t := range trades {
				total += t.PnL
				table.AddRow(
					FormatDate(t.TradeDate, app.Location, app.Config.UI.DateFormat),
					TruncateString(t.ID, 8),
					t.Symbol,
					string(t.Direction),
					output.FormatPips(t.Pips),
					output.FormatPnL(t.PnL),
					FormatR(t.RMultiple),
					string(t.Outcome),
					TruncateString(t.Setup, 15),
				)
			}
			table.Render()
			output.Println()
			output.Printf("  %d trades, net %s\n", len(trades), output.FormatPnL(total))
			return nil
		},
	}

	addTradeFilterFlags(cmd)
	cmd.Flags().IntP("limit", "n", 50, "Maximum trades to show")
	cmd.Flags().Int("offset", 0, "Skip this many trades")

	return cmd
}

// addTradeFilterFlags registers the flags read by tradeFilterFromFlags.
func addTradeFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("symbol", "s", "", "Filter by symbol")
	cmd.Flags().StringP("direction", "d", "", "Filter by direction (long, short)")
	cmd.Flags().String("outcome", "", "Filter by outcome (win, loss, breakeven)")
	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
}

func tradeFilterFromFlags(cmd *cobra.Command, app *App) (store.TradeFilter, error) {
	flags := cmd.Flags()
	filter := store.TradeFilter{UserID: app.Config.Journal.UserID}

	if v, _ := flags.GetString("symbol"); v != "" {
		filter.Symbol = pnl.NormalizeSymbol(v)
	}
	if v, _ := flags.GetString("direction"); v != "" {
		dir, ok := models.ParseDirection(v)
		if !ok {
			return filter, errors.NewValidationError("direction", v, "must be long or short")
		}
		filter.Direction = dir
	}
	if v, _ := flags.GetString("outcome"); v != "" {
		o, ok := models.ParseOutcome(v)
		if !ok {
			return filter, errors.NewValidationError("outcome", v, "must be win, loss or breakeven")
		}
		filter.Outcome = o
	}
	for name, dst := range map[string]*time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
		v, _ := flags.GetString(name)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(models.DateLayout, v, app.Location)
		if err != nil {
			return filter, errors.NewValidationError(name, v, "must be YYYY-MM-DD")
		}
		*dst = t
	}
	if flags.Lookup("limit") != nil {
		filter.Limit, _ = flags.GetInt("limit")
		filter.Offset, _ = flags.GetInt("offset")
	}
	return filter, nil
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			t, err := app.Store.GetTrade(ctx, app.Config.Journal.UserID, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}

			lines := []string{
				fmt.Sprintf("Date:      %s", FormatDate(t.TradeDate, app.Location, "2006-01-02 15:04")),
				fmt.Sprintf("Symbol:    %s %s", t.Symbol, strings.ToUpper(string(t.Direction))),
				fmt.Sprintf("Entry/Exit: %s → %s", FormatPrice(t.EntryPrice), FormatPrice(t.ExitPrice)),
				fmt.Sprintf("Size:      %.2f lots", t.PositionSize),
				fmt.Sprintf("Pips:      %s", output.FormatPips(t.Pips)),
				fmt.Sprintf("P&L:       %s", output.FormatPnL(t.PnL)),
				fmt.Sprintf("R:         %s", FormatR(t.RMultiple)),
				fmt.Sprintf("Outcome:   %s", t.Outcome),
			}
			if t.StopLoss != nil {
				lines = append(lines, fmt.Sprintf("Stop:      %s", FormatPrice(*t.StopLoss)))
			}
			if t.TakeProfit != nil {
				lines = append(lines, fmt.Sprintf("Target:    %s", FormatPrice(*t.TakeProfit)))
			}
			if t.EmotionBefore != "" || t.EmotionAfter != "" {
				lines = append(lines, fmt.Sprintf("Emotion:   %s → %s", t.EmotionBefore, t.EmotionAfter))
			}
			if len(t.RulesFollowed) > 0 {
				lines = append(lines, fmt.Sprintf("Rules:     %s", strings.Join(t.RulesFollowed, ", ")))
			}
			if t.Setup != "" {
				lines = append(lines, fmt.Sprintf("Setup:     %s", t.Setup))
			}
			if len(t.Tags) > 0 {
				lines = append(lines, fmt.Sprintf("Tags:      %s", strings.Join(t.Tags, ", ")))
			}
			if t.Notes != "" {
				lines = append(lines, fmt.Sprintf("Notes:     %s", TruncateString(t.Notes, 60)))
			}
			output.Box("Trade "+t.ID, lines)
			return nil
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			userID := app.Config.Journal.UserID
			if err := app.Store.DeleteTrade(ctx, userID, args[0]); err != nil {
				return err
			}
			app.Insights.Invalidate(userID)

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade %s deleted", args[0])
			return nil
		},
	}
}

func newCheckinCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Check in on a day without a trade",
		Long: `Record a check-in. A check-in keeps the streak alive on days you
studied or reviewed instead of trading.`,
		Example: `  journal checkin --mood calm --note "reviewed last week's losers"
  journal checkin --date 2026-03-14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = app.Streaks.Today()
			} else if d, ok := streak.NormalizeDate(date); ok {
				date = d
			} else {
				return errors.NewValidationError("date", date, "must be YYYY-MM-DD")
			}
			mood, _ := cmd.Flags().GetString("mood")
			note, _ := cmd.Flags().GetString("note")

			c := &models.Checkin{
				UserID: app.Config.Journal.UserID,
				Date:   date,
				Mood:   security.SanitizeText(mood),
				Note:   security.SanitizeText(note),
			}
			if err := app.Store.SaveCheckin(ctx, c); err != nil {
				if errors.Is(err, errors.ErrDuplicateCheckin) {
					output.Warning("Already checked in for %s", date)
				}
				return err
			}
			app.Insights.Invalidate(c.UserID)
			logging.LogCheckin(app.Logger, c.UserID, c.Date)

			if output.IsJSON() {
				return output.JSON(c)
			}
			output.Success("✓ Checked in for %s", date)
			return nil
		},
	}

	cmd.Flags().String("date", "", "Check-in date (YYYY-MM-DD, default today)")
	cmd.Flags().String("mood", "", "How you feel today")
	cmd.Flags().String("note", "", "Short note")

	return cmd
}
