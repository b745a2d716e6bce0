package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newCommandsCmd(app))
	rootCmd.AddCommand(newExamplesCmd(app))
	rootCmd.AddCommand(newQuickstartCmd(app))
}

type helpEntry struct {
	cmd  string
	desc string
}

func newCommandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List all commands by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Trading Journal Commands")
			output.Println()

			categories := []struct {
				name     string
				commands []helpEntry
			}{
				{
					name: "Journal",
					commands: []helpEntry{
						{"log", "Journal a closed trade"},
						{"list", "List journaled trades"},
						{"show <id>", "Show one trade"},
						{"delete <id>", "Delete a trade"},
						{"checkin", "Check in on a day without trading"},
					},
				},
				{
					name: "Progress",
					commands: []helpEntry{
						{"dashboard", "Streak, consistency and level together"},
						{"streak", "Current journaling streak"},
						{"score", "Consistency score breakdown"},
						{"level", "Level, progress and unlocked features"},
						{"report", "Performance summary over a period"},
					},
				},
				{
					name: "Calculators",
					commands: []helpEntry{
						{"pnl", "Pips, P&L and R-multiple for a trade"},
						{"instruments", "Instrument catalog"},
					},
				},
				{
					name: "Data",
					commands: []helpEntry{
						{"export", "Export trades to CSV or Excel"},
						{"import <file>", "Import trades from CSV or Excel"},
					},
				},
				{
					name: "Server",
					commands: []helpEntry{
						{"serve", "Run the HTTP API"},
					},
				},
				{
					name: "Configuration",
					commands: []helpEntry{
						{"config show", "Show current configuration"},
						{"config path", "Show the config directory"},
						{"config validate", "Validate configuration"},
						{"version", "Show version information"},
					},
				},
			}

			for _, cat := range categories {
				output.Bold("%s", cat.name)
				for _, c := range cat.commands {
					output.Printf("  %-24s %s\n", output.Cyan(c.cmd), c.desc)
				}
				output.Println()
			}

			output.Dim("Use 'journal help <command>' for detailed help on any command")
			return nil
		},
	}
}

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Journal a Trade",
					commands: []string{
						"journal pnl -s EURUSD --entry 1.1000 --exit 1.1050 --stop 1.0980   # Check the numbers",
						"journal log -s EURUSD -d long --entry 1.1000 --exit 1.1050 --stop 1.0980 --emotion-before calm --rules plan,size",
						"journal list --limit 10          # Recent trades",
					},
				},
				{
					title: "Keep the Streak Alive",
					commands: []string{
						"journal streak                   # Where you stand today",
						"journal checkin --mood tired     # No trade today, still journaling",
					},
				},
				{
					title: "Weekly Review",
					commands: []string{
						"journal dashboard                # Streak, score and level",
						"journal report --from 2026-03-09 --to 2026-03-15",
						"journal export -o week.xlsx --from 2026-03-09",
					},
				},
				{
					title: "Move Between Machines",
					commands: []string{
						"journal export -o trades.csv --force   # Full history",
						"journal import trades.csv --dry-run    # Check before writing",
						"journal import trades.csv",
					},
				},
				{
					title: "Run the API",
					commands: []string{
						"journal serve                    # Listens on api.addr",
						"curl localhost:8080/api/v1/calc/level?trades=30",
					},
				},
			}

			for _, ex := range examples {
				output.Bold("%s", ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}
			return nil
		},
	}
}

func newQuickstartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "New user guide",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Trading Journal - Quick Start Guide")
			output.Println()

			steps := []struct {
				title string
				desc  string
				cmd   string
			}{
				{"Check Configuration", "A commented config.toml is created on first run.", "journal config path"},
				{"Set Your Rest Days", "Days per week you may skip without breaking the streak.", "journal.rest_days_per_week = 1"},
				{"Log Your First Trade", "Every closed trade counts toward your level.", "journal log -s EURUSD -d long --entry 1.1000 --exit 1.1050"},
				{"Check In on Quiet Days", "A check-in keeps the streak without a trade.", "journal checkin"},
				{"Watch Your Progress", "Ten trades unlock streaks, 25 the consistency score.", "journal dashboard"},
			}

			for i, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), i+1, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Configuration Files")
			output.Println()
			output.Printf("  %s - Journal, database and API settings\n", output.Cyan("config.toml"))
			output.Printf("  %s - Extra or overridden instruments\n", output.Cyan("instruments.yaml"))
			output.Printf("  %s - Environment overrides (JOURNAL_*)\n", output.Cyan(".env"))
			output.Println()

			output.Bold("Getting Help")
			output.Println()
			output.Printf("  %s - List all commands\n", output.Cyan("journal commands"))
			output.Printf("  %s - Common workflows\n", output.Cyan("journal examples"))
			output.Printf("  %s - Help for any command\n", output.Cyan("journal help <command>"))
			return nil
		},
	}
}
