package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the action catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		specs := app.Invoker.Actions()
		if asJSON {
			infos := make([]domain.ActionInfo, 0, len(specs))
			for _, spec := range specs {
				infos = append(infos, spec.Info())
			}
			return cli.PrintJSON(cmd.OutOrStdout(), infos)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tINPUT\tDESCRIPTION")
		for _, spec := range specs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Name, spec.Input.Signature(), spec.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.Flags().Bool("json", false, "Print names, descriptions and JSON Schemas as JSON")
}
