package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy forecasts from the data folder (or S3 bucket) into the SQLite store",
		Long: `Import every forecast from the upstream source into the forecast store so the
server can run with FORECAST_SOURCE=store.

Example:
  forecastfolio import --data ./data --db ./data/forecasts.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, _, _, err := flags.wire(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			result, err := container.Importer.Import(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d forecasts into %s\n", len(result.Imported), container.ForecastsDB.Path())
			for _, f := range result.Failed {
				fmt.Fprintf(out, "  skipped %s: %v\n", f.Ticker, f.Err)
			}
			return nil
		},
	}
}
