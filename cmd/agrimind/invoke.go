package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/aretw0/agrimind/internal/presentation/tui"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <action>",
	Short: "Invoke one action and print its result",
	Long: `Invokes an action once. The input is a JSON object given inline, as @file.json,
or as - to read stdin. --photo fills the photoDataUri field of detect-pests.

Exit status: 0 on success, 2 on invalid input, 3 when the provider failed or
replied with something unusable, 1 otherwise.`,
	Example: `  agrimind invoke weather-forecast --input '{"location":"Nakuru, Kenya"}'
  agrimind invoke recommend-crop --input @field.json --format markdown
  agrimind invoke detect-pests --photo leaf.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputArg, _ := cmd.Flags().GetString("input")
		photo, _ := cmd.Flags().GetString("photo")
		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "markdown" {
			return fmt.Errorf("unknown format %q: use json or markdown", format)
		}

		input, err := cli.ReadInput(inputArg, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if photo != "" {
			uri, err := cli.PhotoDataURI(photo)
			if err != nil {
				return err
			}
			input["photoDataUri"] = uri
		}

		app, err := loadApp(cmd, args[0] != actions.SendSMSAction)
		if err != nil {
			return err
		}
		defer app.Close()

		res := app.Run(cmd.Context(), args[0], input)
		if format == "markdown" {
			if err := tui.NewPrinter(os.Stdout).Markdown(cli.ResultMarkdown(res)); err != nil {
				return err
			}
		} else if err := cli.PrintJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		return cli.ResultError(res)
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringP("input", "i", "", "Input JSON object, @file.json, or - for stdin")
	invokeCmd.Flags().String("photo", "", "Image file for detect-pests")
	invokeCmd.Flags().StringP("format", "f", "json", "Output format: json or markdown")
}
