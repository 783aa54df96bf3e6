package commands

import (
	"fmt"
	"willamette-dining/internal/menucsv"
	"willamette-dining/internal/pipeline"

	"github.com/spf13/cobra"
)

var showMenu bool

func init() {
	showCmd.Flags().BoolVar(&showMenu, "menu", false, "Show the scraped menu instead of the nutrients.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [--menu]",
	Short: "Prints the output of the last run as a table.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		if showMenu {
			items, err := menucsv.Read(cfg.Output.MenuCsv)
			if err != nil {
				return fmt.Errorf("read menu: %w", err)
			}
			renderMenu(cmd.OutOrStdout(), items)
			return nil
		}

		records, err := pipeline.ReadRecords(cfg.Output.NutrientsJson)
		if err != nil {
			return fmt.Errorf("read nutrients: %w", err)
		}
		renderNutrients(cmd.OutOrStdout(), records)
		return nil
	},
}
