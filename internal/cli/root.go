// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-journal/internal/config"
	"trading-journal/internal/errors"
	"trading-journal/internal/insights"
	"trading-journal/internal/levels"
	"trading-journal/internal/logging"
	"trading-journal/internal/pnl"
	"trading-journal/internal/security"
	"trading-journal/internal/store"
	"trading-journal/internal/streak"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Location *time.Location
	Store    store.DataStore
	Insights *insights.Service
	PnL      *pnl.Calculator
	Streaks  *streak.Calculator
}

// NewApp wires the journal services from cfg. A store that fails to open is
// logged and left nil so that the pure calculators keep working.
func NewApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *App {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Location: cfg.Location(),
	}

	catalog := pnl.DefaultCatalog()
	if path := cfg.Journal.InstrumentsFile; path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := catalog.LoadFile(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("Failed to load instruments file, using built-in catalog")
			} else {
				logger.Debug().Str("path", path).Msg("Instrument overrides loaded")
			}
		}
	}
	app.PnL = pnl.NewCalculator(catalog)
	app.Streaks = streak.NewCalculator(nil, app.Location)

	dataStore, err := store.Open(ctx, store.Options{
		Driver:         cfg.Database.Driver,
		DSN:            cfg.Database.DSN,
		ConnectRetries: cfg.Database.ConnectRetries,
		RetryDelay:     cfg.Database.RetryDelay,
		Location:       app.Location,
		Logger:         logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journal commands are unavailable")
		return app
	}
	app.Store = dataStore
	app.Insights = insights.NewService(dataStore, insights.Options{
		RestDaysPerWeek: cfg.Journal.RestDaysPerWeek,
		CacheTTL:        cfg.Cache.TTL,
		Location:        app.Location,
		Logger:          logger,
	})
	logger.Debug().Str("driver", cfg.Database.Driver).Msg("Journal store initialized")

	return app
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// requireStore returns ErrStoreUnavailable when the store failed to open.
func (a *App) requireStore() error {
	if a.Store == nil {
		return fmt.Errorf("%w: check [database] in config.toml", errors.ErrStoreUnavailable)
	}
	return nil
}

// requireFeature returns ErrFeatureLocked when the user's trade count has
// not reached the level that unlocks feature.
func (a *App) requireFeature(ctx context.Context, feature levels.Feature) error {
	count, err := a.Store.CountTrades(ctx, a.Config.Journal.UserID)
	if err != nil {
		return err
	}
	if levels.IsUnlocked(count, feature) {
		return nil
	}
	required, _ := levels.RequiredLevel(feature)
	return fmt.Errorf("%w: %s unlocks at level %d (%s, %d trades); you have %d",
		errors.ErrFeatureLocked, feature, required.Number, required.Name, required.MinTrades, count)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal - streaks, consistency and P&L for your trades",
		Long: `Trading journal records your trades and check-ins and turns them into
habit and discipline metrics: a rest-day tolerant streak, a 0-100
consistency score, pip/P&L/R-multiple figures and a level ladder that
unlocks features as you journal more.

Use 'journal help <command>' for more information about a command.
Use 'journal examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			app.Logger = logging.WithOperation(logging.WithUser(app.Logger, app.Config.Journal.UserID), cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, uiKey{}, uiSettings{
				color:    app.Config.UI.ColorEnabled,
				currency: app.Config.UI.Currency,
			}))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addInsightCommands(rootCmd, app)
	addCalcCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addServeCommands(rootCmd, app)
	addHelpCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trading Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.Config.Dir})
			}
			output.Println(app.Config.Dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal")
	output.Printf("  User:             %s\n", cfg.Journal.UserID)
	output.Printf("  Timezone:         %s\n", cfg.Journal.Timezone)
	output.Printf("  Rest days/week:   %d\n", cfg.Journal.RestDaysPerWeek)
	output.Printf("  Instruments file: %s\n", cfg.Journal.InstrumentsFile)
	output.Printf("  Default symbol:   %s\n", cfg.Journal.DefaultInstrument)
	output.Println()

	output.Bold("Database")
	output.Printf("  Driver:           %s\n", cfg.Database.Driver)
	output.Printf("  DSN:              %s\n", security.RedactDSN(cfg.Database.DSN))
	output.Printf("  Connect retries:  %d\n", cfg.Database.ConnectRetries)
	output.Println()

	output.Bold("API")
	output.Printf("  Address:          %s\n", cfg.API.Addr)
	output.Printf("  Cache TTL:        %s\n", cfg.Cache.TTL)
	output.Printf("  Cache purge:      %s\n", cfg.Cache.PurgeCron)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:            %s\n", cfg.Logging.Level)
	output.Printf("  File:             %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
}
