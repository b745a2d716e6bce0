package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trading-journal/internal/api"
	"trading-journal/internal/insights"
)

// addServeCommands adds the HTTP API server command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the calculators and the configured journal over HTTP.

  POST /api/v1/calc/streak        streak from trade and check-in dates
  POST /api/v1/calc/consistency   consistency score for entries
  POST /api/v1/calc/pnl           pips, P&L and R-multiple
  GET  /api/v1/calc/level         level progress for ?trades=N
  GET  /api/v1/instruments        instrument catalog
  GET  /api/v1/users/{id}/dashboard
  GET  /api/v1/users/{id}/report
  POST /api/v1/users/{id}/checkins

The dashboard cache is purged on cache.purge_cron.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}

			cfg := app.Config
			addr := cfg.API.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scheduler := insights.NewScheduler(app.Insights, app.Location, app.Logger)
			if err := scheduler.RegisterPurge(cfg.Cache.PurgeCron); err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			server := api.NewServer(api.Config{
				Addr:            addr,
				ReadTimeout:     cfg.API.ReadTimeout,
				WriteTimeout:    cfg.API.WriteTimeout,
				RestDaysPerWeek: cfg.Journal.RestDaysPerWeek,
				RateLimit:       cfg.API.RateLimit,
				RateBurst:       cfg.API.RateBurst,
			}, api.Deps{
				Store:    app.Store,
				Insights: app.Insights,
				PnL:      app.PnL,
				Streaks:  app.Streaks,
				Logger:   app.Logger,
			})

			output.Success("✓ Journal API listening on %s", addr)
			output.Dim("  Press Ctrl+C to stop")
			if err := server.ListenAndServe(ctx); err != nil {
				return err
			}
			output.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from api.addr)")
	return cmd
}
