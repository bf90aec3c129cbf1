package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/aretw0/agrimind/internal/presentation/tui"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/spf13/cobra"
)

var seasonalCmd = &cobra.Command{
	Use:   "seasonal",
	Short: "Print the planting and harvest calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		crop, _ := cmd.Flags().GetString("crop")
		asJSON, _ := cmd.Flags().GetBool("json")

		cal, err := actions.Seasonal()
		if err != nil {
			return err
		}

		if crop != "" {
			planting, harvest := cal.ForCrop(crop)
			if planting == nil && harvest == nil {
				return fmt.Errorf("no seasonal windows for %q", crop)
			}
			cal = &actions.Calendar{}
			if planting != nil {
				cal.Planting = append(cal.Planting, *planting)
			}
			if harvest != nil {
				cal.Harvest = append(cal.Harvest, *harvest)
			}
		}

		if asJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), cal)
		}
		return tui.NewPrinter(os.Stdout).Markdown(cal.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(seasonalCmd)
	seasonalCmd.Flags().String("crop", "", "Only show one crop, e.g. Corn")
	seasonalCmd.Flags().Bool("json", false, "Print as JSON")
}
