package optimization

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one solve when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// RunRecorder receives run outcomes. *metrics.Recorder satisfies it.
type RunRecorder interface {
	RecordRun(outcome string)
	RecordExcluded(reason string)
	RecordSolve(seconds float64)
	RecordSharpe(sharpe float64)
}

// ServiceConfig holds run defaults.
type ServiceConfig struct {
	// DefaultWindow is the lookback used by callers that do not choose one. Zero means the full series.
	DefaultWindow time.Duration
	// Timeout bounds the solve of one run.
	Timeout time.Duration
}

// Service runs the forecast -> metrics -> allocation pipeline.
type Service struct {
	loader    *forecasts.Loader
	estimator *Estimator
	optimizer *MVOptimizer
	recorder  RunRecorder
	cfg       ServiceConfig
	log       zerolog.Logger
}

// NewService creates a new optimization service. recorder may be nil.
func NewService(
	loader *forecasts.Loader,
	estimator *Estimator,
	optimizer *MVOptimizer,
	recorder RunRecorder,
	cfg ServiceConfig,
	log zerolog.Logger,
) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		loader:    loader,
		estimator: estimator,
		optimizer: optimizer,
		recorder:  recorder,
		cfg:       cfg,
		log:       log.With().Str("component", "optimization_service").Logger(),
	}
}

// DefaultWindow returns the configured default lookback.
func (s *Service) DefaultWindow() time.Duration {
	return s.cfg.DefaultWindow
}

// Run loads the requested forecasts, estimates every asset and computes the
// equal-weight and maximum-Sharpe portfolios. An empty ticker list means every
// ticker the source provides.
//
// Assets that cannot be loaded or estimated are excluded and reported as warnings.
// Optimizer errors fail the whole run; no partial allocation is returned.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	if req.Window < 0 {
		s.record("invalid")
		return nil, fmt.Errorf("%w: window must not be negative, got %s", ErrConfiguration, req.Window)
	}

	tickers, err := s.resolveTickers(ctx, req.Tickers)
	if err != nil {
		s.record("invalid")
		return nil, err
	}

	series, failures, err := s.loader.LoadMany(ctx, tickers)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	for _, f := range failures {
		warnings = append(warnings, s.exclude(f.Ticker, ReasonLoadFailed, f.Err))
	}

	var window *time.Duration
	if req.Window > 0 {
		window = &req.Window
	}

	metrics := make(map[string]AssetMetrics, len(series))
	for _, sr := range series {
		m, err := s.estimator.Estimate(sr, window)
		if err != nil {
			reason := ReasonInvalidSeries
			if errors.Is(err, ErrInsufficientData) {
				reason = ReasonInsufficientData
			}
			warnings = append(warnings, s.exclude(sr.Ticker, reason, err))
			continue
		}
		metrics[sr.Ticker] = m
	}

	if len(metrics) == 0 {
		s.record("invalid")
		return nil, fmt.Errorf("%w: none of the %d requested assets has usable forecast data", ErrConfiguration, len(tickers))
	}

	equal, err := EqualWeight(metrics)
	if err != nil {
		s.record("invalid")
		return nil, err
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	solveStart := time.Now()
	weights, optimized, err := s.optimizer.OptimizeContext(solveCtx, metrics)
	if s.recorder != nil {
		s.recorder.RecordSolve(time.Since(solveStart).Seconds())
	}
	if err != nil {
		s.record(outcome(err))
		s.log.Error().Err(err).Int("assets", len(metrics)).Msg("Optimization failed")
		return nil, err
	}

	sharpe, _ := formulas.SharpeRatio(optimized.ExpectedReturn, optimized.Volatility)

	assets := make([]AssetMetrics, 0, len(metrics))
	for _, m := range metrics {
		assets = append(assets, m)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Ticker < assets[j].Ticker })

	report := &Report{
		RunID:       uuid.New().String(),
		WindowDays:  int(req.Window / (24 * time.Hour)),
		Assets:      assets,
		Warnings:    warnings,
		EqualWeight: equal,
		Optimized: OptimizedPortfolio{
			Weights: weights,
			Metrics: optimized,
			Sharpe:  sharpe,
		},
		GeneratedAt: time.Now().UTC(),
	}
	if report.Warnings == nil {
		report.Warnings = []Warning{}
	}

	s.record("ok")
	if s.recorder != nil {
		s.recorder.RecordSharpe(sharpe)
	}

	s.log.Info().
		Str("run_id", report.RunID).
		Int("assets", len(assets)).
		Int("excluded", len(warnings)).
		Float64("sharpe", sharpe).
		Dur("duration", time.Since(start)).
		Msg("Optimization run completed")

	return report, nil
}

func (s *Service) resolveTickers(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		tickers, err := s.loader.Source().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		if len(tickers) == 0 {
			return nil, fmt.Errorf("%w: no forecasts available", ErrConfiguration)
		}
		return tickers, nil
	}

	seen := make(map[string]bool, len(requested))
	for _, t := range requested {
		if t == "" {
			return nil, fmt.Errorf("%w: empty ticker", ErrConfiguration)
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: duplicate ticker %s", ErrConfiguration, t)
		}
		seen[t] = true
	}
	return requested, nil
}

func (s *Service) exclude(ticker, reason string, err error) Warning {
	s.log.Warn().Err(err).Str("ticker", ticker).Str("reason", reason).Msg("Excluding asset from run")
	if s.recorder != nil {
		s.recorder.RecordExcluded(reason)
	}
	return Warning{Ticker: ticker, Reason: reason, Message: err.Error()}
}

func (s *Service) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordRun(outcome)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrDegenerateInput):
		return "degenerate"
	case IsTimeout(err):
		return "timeout"
	case errors.Is(err, ErrOptimizationFailed):
		return "failed"
	default:
		return "invalid"
	}
}
