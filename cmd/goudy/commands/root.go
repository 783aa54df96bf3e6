package commands

import (
	"context"
	"fmt"
	"os"
	"willamette-dining/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dumpHttp   string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The config file, <name>.local.<ext> next to it overrides it.")
	rootCmd.PersistentFlags().StringVar(&dumpHttp, "dump-http", "", "Write every http exchange to this directory, exchange files left by an earlier run are replaced.")
}

var rootCmd = &cobra.Command{
	Use:   "goudy",
	Short: "goudy scrapes the Goudy Commons menu and looks up the nutrients of every item.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(os.Stderr, verbose)
	},
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
