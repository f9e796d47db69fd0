package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/forecastfolio/internal/modules/charts"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
)

// Output formats
const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatRaw      = "raw" // markdown source without terminal styling
)

type optimizeOptions struct {
	tickers []string
	window  string
	format  string
}

func newOptimizeCmd(flags *globalFlags) *cobra.Command {
	opts := &optimizeOptions{}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compute the equal-weight and maximum-Sharpe portfolios",
		Long: `Estimate every asset over the lookback window and compute the long-only,
fully-invested portfolio with the highest Sharpe ratio (risk-free rate 0).

Window accepts days ("180d"), Go durations ("720h") or "0" for the full series.

Example:
  forecastfolio optimize --data ./data --tickers AAPL,MSFT,NVDA --window 180d
  forecastfolio optimize --data ./data --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, flags, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.tickers, "tickers", nil, "comma separated tickers (default: every available forecast)")
	cmd.Flags().StringVar(&opts.window, "window", "", "lookback window (default $FORECAST_LOOKBACK_DAYS)")
	cmd.Flags().StringVar(&opts.format, "format", formatMarkdown, "output format (markdown|json|raw)")

	return cmd
}

func runOptimize(cmd *cobra.Command, flags *globalFlags, opts *optimizeOptions) error {
	switch opts.format {
	case formatMarkdown, formatJSON, formatRaw:
	default:
		return fmt.Errorf("%w: unknown format %q (markdown, json or raw)", optimization.ErrConfiguration, opts.format)
	}

	container, cfg, _, err := flags.wire(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	window := cfg.Lookback()
	if opts.window != "" {
		window, err = parseWindow(opts.window)
		if err != nil {
			return err
		}
	}

	report, err := container.OptimizationService.Run(cmd.Context(), optimization.Request{
		Tickers: opts.tickers,
		Window:  window,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*optimization.Report
			Scatter []charts.ScatterPoint `json:"scatter"`
		}{report, charts.RiskReturnScatter(report.Assets)})
	case formatRaw:
		md, err := renderReportMarkdown(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, md)
		return err
	default:
		md, err := renderReportMarkdown(report)
		if err != nil {
			return err
		}
		styled, err := styleMarkdown(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, styled)
		return err
	}
}

// parseWindow accepts "<n>d", a Go duration or a bare day count. Zero means the full series.
func parseWindow(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)

	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: invalid window %q", optimization.ErrConfiguration, raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: window must not be negative, got %q", optimization.ErrConfiguration, raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid window %q", optimization.ErrConfiguration, raw)
	}
	return d, nil
}
