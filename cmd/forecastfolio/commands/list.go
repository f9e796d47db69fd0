package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available forecasts",
		Long: `List every ticker the configured source provides, with its point count and date span.

Example:
  forecastfolio list --data ./data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, _, log, err := flags.wire(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			tickers, err := container.Source.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(tickers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no forecasts found")
				return nil
			}

			series, failures, err := container.Loader.LoadMany(cmd.Context(), tickers)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TICKER\tPOINTS\tFIRST\tLAST")
			for _, s := range series {
				if s.Len() == 0 {
					fmt.Fprintf(tw, "%s\t0\t-\t-\n", s.Ticker)
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
					s.Ticker, s.Len(), s.First().Format("2006-01-02"), s.Last().Format("2006-01-02"))
			}
			for _, f := range failures {
				status := "unreadable"
				if errors.Is(f.Err, forecasts.ErrNotFound) {
					status = "missing"
				}
				fmt.Fprintf(tw, "%s\t%s\t-\t-\n", f.Ticker, status)
				log.Warn().Err(f.Err).Str("ticker", f.Ticker).Msg("Forecast could not be loaded")
			}
			return tw.Flush()
		},
	}
}
