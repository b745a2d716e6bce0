package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/insights"
	"trading-journal/internal/levels"
)

// addInsightCommands adds the streak, score, level, dashboard and report
// commands.
func addInsightCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStreakCmd(app))
	rootCmd.AddCommand(newScoreCmd(app))
	rootCmd.AddCommand(newLevelCmd(app))
	rootCmd.AddCommand(newDashboardCmd(app))
	rootCmd.AddCommand(newReportCmd(app))
}

// loadDashboard fetches the configured user's dashboard.
func loadDashboard(cmd *cobra.Command, app *App) (*insights.Dashboard, error) {
	if err := app.requireStore(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return app.Insights.Dashboard(ctx, app.Config.Journal.UserID)
}

func newStreakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current journaling streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			d, err := loadDashboard(cmd, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(d.Streak)
			}
			printStreak(output, d, app.Config.Journal.RestDaysPerWeek)
			return nil
		},
	}
}

func printStreak(output *Output, d *insights.Dashboard, allowance int) {
	s := d.Streak
	output.Bold("Streak")
	output.Printf("  Current:    %s\n", output.Green(fmt.Sprintf("%d days", s.CurrentStreak)))
	output.Printf("  Rest days:  %d of %d used this week\n", s.RestDaysUsedThisWeek, allowance)
	switch {
	case s.HasTradedToday:
		output.Printf("  Today:      %s\n", output.Green("traded ✓"))
	case s.HasCheckedInToday:
		output.Printf("  Today:      %s\n", output.Green("checked in ✓"))
	default:
		output.Printf("  Today:      %s\n", output.Yellow("not yet - log a trade or 'journal checkin'"))
	}
}

func newScoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Show the consistency score",
		Long: `Show the 0-100 consistency score over your most recent 20 trades:
rule adherence, risk management (stop set), emotional discipline and
journaling consistency (distinct trading days).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			d, err := loadDashboard(cmd, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(d.Consistency)
			}
			printScore(output, d)
			return nil
		},
	}
}

func printScore(output *Output, d *insights.Dashboard) {
	c := d.Consistency
	output.Bold("Consistency %s", output.FormatScore(c.Overall))
	if c.EntriesScored == 0 {
		output.Dim("  No trades yet.")
		return
	}
	rows := []struct {
		name  string
		score int
	}{
		{"Rule adherence", c.RuleAdherence},
		{"Risk management", c.RiskManagement},
		{"Emotional discipline", c.EmotionalDiscipline},
		{"Journaling", c.JournalingConsistency},
	}
	for _, r := range rows {
		output.Printf("  %s %s %s\n", PadRight(r.name, 21), ProgressBar(r.score, 20), output.FormatScore(r.score))
	}
	output.Dim("  Based on the last %d trades", c.EntriesScored)
}

func newLevelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Show your level and unlocked features",
		Example: `  journal level
  journal level --trades 42   # preview the ladder for a trade count`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var p levels.Progress
			if cmd.Flags().Changed("trades") {
				n, _ := cmd.Flags().GetInt("trades")
				p = levels.ForTradeCount(n)
			} else {
				d, err := loadDashboard(cmd, app)
				if err != nil {
					return err
				}
				p = d.Level
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"progress": p,
					"unlocked": levels.UnlockedFeatures(p.TradeCount),
				})
			}
			printLevel(output, p)
			return nil
		},
	}
	cmd.Flags().Int("trades", 0, "Show progress for this trade count instead of the journal's")
	return cmd
}

func printLevel(output *Output, p levels.Progress) {
	output.Bold("Level %d: %s", p.Current.Number, p.Current.Name)
	output.Printf("  Trades:   %d\n", p.TradeCount)
	if p.AtCeiling() {
		output.Printf("  Progress: %s max level\n", ProgressBar(100, 20))
	} else {
		output.Printf("  Progress: %s %d%%\n", ProgressBar(p.ProgressPercent, 20), p.ProgressPercent)
		output.Printf("  Next:     %s in %d trades\n", p.Next.Name, p.TradesToNext)
	}

	features := levels.UnlockedFeatures(p.TradeCount)
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	output.Printf("  Unlocked: %s\n", strings.Join(names, ", "))
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show streak, score and level together",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			d, err := loadDashboard(cmd, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(d)
			}

			output.Box("Journal - "+d.AsOf, []string{
				fmt.Sprintf("Streak:       %d days", d.Streak.CurrentStreak),
				fmt.Sprintf("Consistency:  %s", FormatScore(d.Consistency.Overall)),
				fmt.Sprintf("Level:        %d %s", d.Level.Current.Number, d.Level.Current.Name),
				fmt.Sprintf("Trades:       %d", d.TotalTrades),
			})
			output.Println()
			printStreak(output, d, app.Config.Journal.RestDaysPerWeek)
			output.Println()
			printScore(output, d)
			output.Println()
			printLevel(output, d.Level)
			return nil
		},
	}
}

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize performance over a period",
		Example: `  journal report
  journal report --from 2026-03-01 --to 2026-03-31 --symbol EURUSD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			filter, err := tradeFilterFromFlags(cmd, app)
			if err != nil {
				return err
			}
			r, err := app.Insights.Report(ctx, filter)
			if err != nil {
				return err
			}
			if app.requireFeature(ctx, levels.FeatureEmotionInsights) != nil {
				r.ByEmotion = nil
			}
			if output.IsJSON() {
				return output.JSON(r)
			}
			printReport(output, r)
			return nil
		},
	}
	addTradeFilterFlags(cmd)
	return cmd
}

func printReport(output *Output, r *insights.Report) {
	if r.Trades == 0 {
		output.Info("No trades in range.")
		return
	}

	output.Bold("Performance")
	output.Printf("  Trades:        %d (%d W / %d L / %d BE)\n", r.Trades, r.Wins, r.Losses, r.Breakeven)
	output.Printf("  Win rate:      %.1f%%\n", r.WinRate)
	output.Printf("  Net P&L:       %s\n", output.FormatPnL(r.NetPnL))
	output.Printf("  Avg / median:  %s / %s\n", output.FormatPnL(r.AvgPnL), output.FormatPnL(r.MedianPnL))
	output.Printf("  Std dev:       %s\n", FormatMoney(r.StdDevPnL, output.Currency()))
	output.Printf("  Best / worst:  %s / %s\n", output.FormatPnL(r.BestTrade), output.FormatPnL(r.WorstTrade))
	output.Printf("  Profit factor: %.2f\n", r.ProfitFactor)
	output.Printf("  Avg R:         %s\n", FormatR(r.AvgR))
	output.Printf("  Total pips:    %s\n", output.FormatPips(r.TotalPips))

	if len(r.BySymbol) > 0 {
		output.Println()
		output.Bold("By symbol")
		table := NewTable(output, "Symbol", "Trades", "Net P&L", "Win %")
		for _, s := range r.BySymbol {
			table.AddRow(s.Symbol, fmt.Sprintf("%d", s.Trades), output.FormatPnL(s.NetPnL), fmt.Sprintf("%.1f", s.WinRate))
		}
		table.Render()
	}

	if len(r.ByEmotion) > 0 {
		output.Println()
		output.Bold("By emotion")
		table := NewTable(output, "Emotion", "Trades", "Avg P&L", "Win %")
		for _, e := range r.ByEmotion {
			table.AddRow(e.Emotion, fmt.Sprintf("%d", e.Trades), output.FormatPnL(e.AvgPnL), fmt.Sprintf("%.1f", e.WinRate))
		}
		table.Render()
	}
}
