package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/errors"
	"trading-journal/internal/export"
	"trading-journal/internal/insights"
	"trading-journal/internal/levels"
	"trading-journal/internal/models"
	"trading-journal/internal/pnl"
)

// addDataCommands adds export and import.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades to CSV or Excel",
		Long: `Export journaled trades. The format is taken from --format or the
output file extension; CSV goes to stdout when no file is given. Excel
workbooks include a summary sheet.`,
		Example: `  journal export -o trades.xlsx
  journal export --format csv --from 2026-01-01 > q1.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			if force, _ := cmd.Flags().GetBool("force"); !force {
				if err := app.requireFeature(ctx, levels.FeatureExport); err != nil {
					return err
				}
			}

			outFile, _ := cmd.Flags().GetString("output")
			formatRaw, _ := cmd.Flags().GetString("format")
			format, err := resolveFormat(formatRaw, outFile)
			if err != nil {
				return err
			}
			if format == export.FormatXLSX && outFile == "" {
				return errors.NewValidationError("output", "", "xlsx export needs --output")
			}

			filter, err := tradeFilterFromFlags(cmd, app)
			if err != nil {
				return err
			}
			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return errors.Wrapf(err, "creating %s", outFile)
				}
				defer f.Close()
				w = f
			}

			report := insights.BuildReport(trades)
			if err := export.Write(w, format, trades, &report); err != nil {
				return err
			}

			app.Logger.Info().Str("format", string(format)).Int("trades", len(trades)).Str("file", outFile).Msg("Trades exported")
			if outFile != "" {
				output.Success("✓ Exported %d trades to %s", len(trades), outFile)
			}
			return nil
		},
	}

	addTradeFilterFlags(cmd)
	cmd.Flags().String("format", "", "Output format (csv, xlsx)")
	cmd.Flags().StringP("output", "o", "", "Output file path")
	cmd.Flags().Bool("force", false, "Export even if the export feature is not unlocked yet")

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from CSV or Excel",
		Long: `Import trades written by 'journal export' or any file with the same
column names. Trades whose id already exists are skipped. Rows without
pips and P&L are computed from the instrument catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			path := args[0]
			formatRaw, _ := cmd.Flags().GetString("format")
			format, err := resolveFormat(formatRaw, path)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "opening %s", path)
			}
			defer f.Close()

			userID := app.Config.Journal.UserID
			trades, err := export.Read(f, format, userID, app.Location)
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			res, err := importTrades(ctx, app, trades, dryRun)
			if err != nil {
				return err
			}
			if !dryRun && res.Imported > 0 {
				app.Insights.Invalidate(userID)
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			output.Success("✓ %s %d trades (%d skipped)", verb, res.Imported, res.Skipped)
			return nil
		},
	}

	cmd.Flags().String("format", "", "Input format (csv, xlsx; default from extension)")
	cmd.Flags().Bool("dry-run", false, "Validate the file without writing")

	return cmd
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func importTrades(ctx context.Context, app *App, trades []models.Trade, dryRun bool) (ImportResult, error) {
	var res ImportResult
	for i := range trades {
		t := &trades[i]

		if t.ID != "" {
			if _, err := app.Store.GetTrade(ctx, t.UserID, t.ID); err == nil {
				res.Skipped++
				continue
			} else if !errors.Is(err, errors.ErrNotFound) {
				return res, err
			}
		}

		if t.Pips == 0 && t.PnL == 0 {
			calc, err := app.PnL.Calculate(pnl.Input{
				Symbol:       t.Symbol,
				Direction:    t.Direction,
				EntryPrice:   t.EntryPrice,
				ExitPrice:    t.ExitPrice,
				PositionSize: t.PositionSize,
				StopLoss:     t.StopLoss,
			})
			if err != nil {
				app.Logger.Warn().Err(err).Str("symbol", t.Symbol).Msg("P&L not computed for imported trade")
			} else {
				t.Pips, t.PnL, t.RMultiple = calc.Pips, calc.PnL, calc.RMultiple
			}
		}
		if t.Outcome == models.OutcomeUnset {
			t.Outcome = models.OutcomeFromPnL(t.PnL)
		}

		if !dryRun {
			if err := app.Store.LogTrade(ctx, t); err != nil {
				return res, fmt.Errorf("importing trade %d: %w", i+1, err)
			}
		}
		res.Imported++
	}
	return res, nil
}

// resolveFormat prefers an explicit format name and falls back to the file
// extension, then CSV.
func resolveFormat(name, path string) (export.Format, error) {
	if name != "" {
		return export.ParseFormat(name)
	}
	if path != "" {
		return export.FormatFromPath(path)
	}
	return export.FormatCSV, nil
}
