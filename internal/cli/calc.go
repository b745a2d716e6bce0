package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/api"
	"trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/pnl"
)

// addCalcCommands adds calculators that need no journal data.
func addCalcCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPnLCmd(app))
	rootCmd.AddCommand(newInstrumentsCmd(app))
}

func newPnLCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pnl",
		Short: "Calculate pips, P&L and R-multiple for a trade",
		Example: `  journal pnl --symbol EURUSD --direction long --entry 1.1000 --exit 1.1050
  journal pnl -s USDJPY -d short --entry 150.20 --exit 149.80 --size 2 --stop 150.50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			flags := cmd.Flags()

			symbol, _ := flags.GetString("symbol")
			if symbol == "" {
				symbol = app.Config.Journal.DefaultInstrument
			}
			dirRaw, _ := flags.GetString("direction")
			dir, _ := models.ParseDirection(dirRaw)

			in := pnl.Input{Symbol: pnl.NormalizeSymbol(symbol), Direction: dir}
			in.EntryPrice, _ = flags.GetFloat64("entry")
			in.ExitPrice, _ = flags.GetFloat64("exit")
			in.PositionSize, _ = flags.GetFloat64("size")
			if in.PositionSize == 0 {
				in.PositionSize = app.Config.Journal.DefaultPositionLot
			}
			if flags.Changed("stop") {
				v, _ := flags.GetFloat64("stop")
				in.StopLoss = &v
			}

			if err := api.NewValidator().Struct(in); err != nil {
				fields := api.FieldErrors(err)
				keys := make([]string, 0, len(fields))
				for k := range fields {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				msgs := make([]string, len(keys))
				for i, k := range keys {
					msgs[i] = k + " " + fields[k]
				}
				return fmt.Errorf("%w: %s", errors.ErrInputValidation, strings.Join(msgs, "; "))
			}

			res, err := app.PnL.Calculate(in)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Bold("%s %s", in.Symbol, strings.ToUpper(string(in.Direction)))
			output.Printf("  Pips: %s\n", output.FormatPips(res.Pips))
			output.Printf("  P&L:  %s\n", output.FormatPnL(res.PnL))
			output.Printf("  R:    %s\n", FormatR(res.RMultiple))
			return nil
		},
	}

	cmd.Flags().StringP("symbol", "s", "", "Instrument symbol (default from config)")
	cmd.Flags().StringP("direction", "d", "long", "Trade direction (long, short)")
	cmd.Flags().Float64("entry", 0, "Entry price")
	cmd.Flags().Float64("exit", 0, "Exit price")
	cmd.Flags().Float64("size", 0, "Position size in lots (default from config)")
	cmd.Flags().Float64("stop", 0, "Stop-loss price")

	return cmd
}

func newInstrumentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List instruments with pip size and pip value",
		Long: `List the instrument catalog. Add or override entries in the YAML file
named by journal.instruments_file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			catalog := app.PnL.Catalog()

			var list []pnl.Instrument
			for _, sym := range catalog.Symbols() {
				if inst, err := catalog.Lookup(sym); err == nil {
					list = append(list, inst)
				}
			}

			if output.IsJSON() {
				return output.JSON(list)
			}
			table := NewTable(output, "Symbol", "Pip size", "Pip value")
			for _, inst := range list {
				table.AddRow(inst.Symbol, fmt.Sprintf("%g", inst.PipSize), FormatMoney(inst.PipValue, output.Currency()))
			}
			table.Render()
			return nil
		},
	}
}
