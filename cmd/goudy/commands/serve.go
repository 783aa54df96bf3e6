package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"willamette-dining/internal/components/chrono"
	"willamette-dining/internal/components/telemetry"
	libtelemetry "willamette-dining/lib/telemetry"

	"github.com/spf13/cobra"
)

var servePerfInterval time.Duration

func init() {
	serveCmd.Flags().DurationVar(&servePerfInterval, "perf-interval", time.Minute, "How often process stats are recorded.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs once now and then on the configured schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		shutdown := setupTelemetry(ctx)
		defer shutdown()
		libtelemetry.InstrumentPerfStats(ctx, servePerfInterval)

		tel := telemetry.SlogAPI{}
		p, err := newPipeline(cfg, tel)
		if err != nil {
			return err
		}

		timeAPI, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			return err
		}

		// a failed first run is reported like any scheduled one, the daemon stays up
		err = runJob(ctx, p)
		if err != nil {
			slog.Error("initial run failed", "err", err)
		}

		// the first firing is computed after the initial run so a slow run never
		// triggers an immediate second one
		scheduler := chrono.NewScheduler(timeAPI, tel)
		err = scheduler.Add("pipeline", cfg.Schedule, func(ctx context.Context) error {
			return runJob(ctx, p)
		})
		if err != nil {
			return err
		}

		next, _ := scheduler.Next()
		slog.Info("waiting for the next scheduled run", "schedule", cfg.Schedule, "next", next)

		err = scheduler.Run(ctx)
		if errors.Is(err, context.Canceled) {
			slog.Info("shutting down")
			return nil
		}
		return err
	},
}
