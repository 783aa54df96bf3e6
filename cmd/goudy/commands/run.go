package commands

import (
	"willamette-dining/internal/components/telemetry"
	"willamette-dining/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrapes the menu and looks up its nutrients once.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}

		shutdown := setupTelemetry(cmd.Context())
		p, err := newPipeline(cfg, telemetry.SlogAPI{})
		if err != nil {
			shutdown()
			serviceutil.Fatal("failed to create pipeline", err)
		}
		err = runJob(cmd.Context(), p)
		shutdown()
		if err != nil {
			serviceutil.Fatal("run failed", err)
		}
	},
}
