package optimization

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// DefaultMaxIterations caps the major iterations of one solve.
const DefaultMaxIterations = 500

const (
	gradientThreshold = 1e-9
	convergeAbsolute  = 1e-13
	convergeWindow    = 25
	weightTolerance   = 1e-6
)

// MVOptimizer finds the long-only, fully invested allocation with the highest Sharpe ratio.
//
// Mathematical formulation:
//   - maximize S(w) = μ'w / sqrt(w'Σw), risk-free rate 0
//   - Σw = 1, 0 ≤ w_i ≤ 1
//
// Σ is diagonal (σ_i² on the diagonal, no cross-asset covariance) unless a
// covariance matrix is supplied with WithCovariance.
//
// The constraints are removed by the substitution w_i = x_i² / Σx_j², which maps
// every non-zero x onto the simplex, and -S is minimized over x with BFGS.
// Nelder-Mead is used as a fallback when the gradient method fails.
type MVOptimizer struct {
	maxIterations int
	log           zerolog.Logger
}

// NewMVOptimizer creates a new mean-variance optimizer.
func NewMVOptimizer(log zerolog.Logger) *MVOptimizer {
	return &MVOptimizer{
		maxIterations: DefaultMaxIterations,
		log:           log.With().Str("component", "mv_optimizer").Logger(),
	}
}

// OptimizeOption adjusts one solve.
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	maxIterations int
	covTickers    []string
	covariance    *mat.SymDense
}

// WithMaxIterations overrides the iteration cap for one solve.
func WithMaxIterations(n int) OptimizeOption {
	return func(c *optimizeConfig) {
		c.maxIterations = n
	}
}

// WithCovariance replaces the diagonal risk model with a full covariance matrix.
// tickers gives the row/column order of cov and must cover exactly the optimized assets.
func WithCovariance(tickers []string, cov *mat.SymDense) OptimizeOption {
	return func(c *optimizeConfig) {
		c.covTickers = tickers
		c.covariance = cov
	}
}

// SetMaxIterations changes the default iteration cap.
func (mvo *MVOptimizer) SetMaxIterations(n int) {
	if n > 0 {
		mvo.maxIterations = n
	}
}

// Optimize solves the maximum-Sharpe problem without a deadline.
func (mvo *MVOptimizer) Optimize(metrics map[string]AssetMetrics, opts ...OptimizeOption) (PortfolioWeights, PortfolioMetrics, error) {
	return mvo.OptimizeContext(context.Background(), metrics, opts...)
}

// OptimizeContext solves the maximum-Sharpe problem. The solve stops when ctx is
// done and the result is ErrOptimizationFailed wrapping ctx.Err().
func (mvo *MVOptimizer) OptimizeContext(ctx context.Context, metrics map[string]AssetMetrics, opts ...OptimizeOption) (PortfolioWeights, PortfolioMetrics, error) {
	cfg := optimizeConfig{maxIterations: mvo.maxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxIterations <= 0 {
		return nil, PortfolioMetrics{}, fmt.Errorf("%w: max iterations must be positive, got %d", ErrConfiguration, cfg.maxIterations)
	}

	tickers, mu, err := validateMetrics(metrics)
	if err != nil {
		return nil, PortfolioMetrics{}, err
	}

	sigma, err := riskModel(tickers, metrics, cfg)
	if err != nil {
		return nil, PortfolioMetrics{}, err
	}

	n := len(tickers)
	if n == 1 {
		weights := PortfolioWeights{tickers[0]: 1}
		return weights, portfolioMetrics([]float64{1}, mu, sigma), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, PortfolioMetrics{}, fmt.Errorf("%w: %w", ErrOptimizationFailed, err)
	}

	x, err := mvo.solve(ctx, mu, sigma, cfg.maxIterations)
	if err != nil {
		return nil, PortfolioMetrics{}, err
	}

	w := toWeights(x)
	for i, v := range w {
		if math.IsNaN(v) || v < -weightTolerance || v > 1+weightTolerance {
			return nil, PortfolioMetrics{}, fmt.Errorf("%w: solver produced invalid weight %v for %s", ErrOptimizationFailed, v, tickers[i])
		}
	}

	weights := make(PortfolioWeights, n)
	for i, t := range tickers {
		weights[t] = w[i]
	}

	return weights, portfolioMetrics(w, mu, sigma), nil
}

// solve minimizes -S over the unconstrained x parametrization.
func (mvo *MVOptimizer) solve(ctx context.Context, mu []float64, sigma *mat.SymDense, maxIterations int) ([]float64, error) {
	n := len(mu)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := toWeights(x)
			if w == nil {
				return math.Inf(1)
			}
			return -sharpe(w, mu, sigma)
		},
		Grad: func(grad, x []float64) {
			sharpeGradient(grad, x, mu, sigma)
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.RuntimeLimit, err
			}
			return optimize.NotTerminated, nil
		},
	}

	// Equal weights: x_i = sqrt(1/N)
	initial := make([]float64, n)
	for i := range initial {
		initial[i] = math.Sqrt(1.0 / float64(n))
	}

	settings := func() *optimize.Settings {
		return &optimize.Settings{
			GradientThreshold: gradientThreshold,
			MajorIterations:   maxIterations,
			Converger: &optimize.FunctionConverge{
				Absolute:   convergeAbsolute,
				Iterations: convergeWindow,
			},
		}
	}

	result, err := optimize.Minimize(problem, initial, settings(), &optimize.BFGS{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: solver stopped: %w", ErrOptimizationFailed, ctxErr)
	}
	if err == nil && result != nil && acceptedStatus(result.Status) {
		mvo.log.Debug().
			Str("method", "bfgs").
			Str("status", result.Status.String()).
			Int("iterations", result.Stats.MajorIterations).
			Msg("Solver converged")
		return result.X, nil
	}

	mvo.log.Debug().
		Err(err).
		Str("status", statusString(result)).
		Msg("BFGS did not converge, falling back to Nelder-Mead")

	start := initial
	if result != nil && toWeights(result.X) != nil {
		start = result.X
	}

	fallback, err := optimize.Minimize(problem, start, settings(), &optimize.NelderMead{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: solver stopped: %w", ErrOptimizationFailed, ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOptimizationFailed, statusString(fallback), err)
	}
	if !acceptedStatus(fallback.Status) {
		return nil, fmt.Errorf("%w: solver terminated with status %s after %d iterations",
			ErrOptimizationFailed, fallback.Status, fallback.Stats.MajorIterations)
	}

	mvo.log.Debug().
		Str("method", "nelder_mead").
		Str("status", fallback.Status.String()).
		Int("iterations", fallback.Stats.MajorIterations).
		Msg("Solver converged")

	return fallback.X, nil
}

func acceptedStatus(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence,
		optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

func statusString(r *optimize.Result) string {
	if r == nil {
		return "no result"
	}
	return r.Status.String()
}

// validateMetrics orders tickers and rejects mappings the solver cannot use.
func validateMetrics(metrics map[string]AssetMetrics) ([]string, []float64, error) {
	if len(metrics) == 0 {
		return nil, nil, fmt.Errorf("%w: no assets to optimize", ErrConfiguration)
	}

	tickers := make([]string, 0, len(metrics))
	for t := range metrics {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	mu := make([]float64, len(tickers))
	for i, t := range tickers {
		m := metrics[t]
		if !isFinite(m.ExpectedReturn) {
			return nil, nil, fmt.Errorf("%w: expected return for %s is undefined", ErrConfiguration, t)
		}
		if math.IsNaN(m.Volatility) || math.IsInf(m.Volatility, 0) {
			return nil, nil, fmt.Errorf("%w: volatility for %s is undefined", ErrConfiguration, t)
		}
		if m.Volatility <= 0 {
			return nil, nil, fmt.Errorf("%w: %s has volatility %g, must be positive", ErrDegenerateInput, t, m.Volatility)
		}
		mu[i] = m.ExpectedReturn
	}

	return tickers, mu, nil
}

// riskModel returns Σ ordered like tickers.
func riskModel(tickers []string, metrics map[string]AssetMetrics, cfg optimizeConfig) (*mat.SymDense, error) {
	n := len(tickers)

	if cfg.covariance == nil {
		sigma := mat.NewSymDense(n, nil)
		for i, t := range tickers {
			v := metrics[t].Volatility
			sigma.SetSym(i, i, v*v)
		}
		return sigma, nil
	}

	if cfg.covariance.SymmetricDim() != n || len(cfg.covTickers) != n {
		return nil, fmt.Errorf("%w: covariance matrix is %dx%d for %d tickers, need %d assets",
			ErrConfiguration, cfg.covariance.SymmetricDim(), cfg.covariance.SymmetricDim(), len(cfg.covTickers), n)
	}

	pos := make(map[string]int, n)
	for i, t := range cfg.covTickers {
		pos[t] = i
	}

	sigma := mat.NewSymDense(n, nil)
	for i, ti := range tickers {
		pi, ok := pos[ti]
		if !ok {
			return nil, fmt.Errorf("%w: covariance matrix has no row for %s", ErrConfiguration, ti)
		}
		for j := i; j < n; j++ {
			pj, ok := pos[tickers[j]]
			if !ok {
				return nil, fmt.Errorf("%w: covariance matrix has no row for %s", ErrConfiguration, tickers[j])
			}
			sigma.SetSym(i, j, cfg.covariance.At(pi, pj))
		}
		if sigma.At(i, i) <= 0 {
			return nil, fmt.Errorf("%w: %s has variance %g, must be positive", ErrDegenerateInput, ti, sigma.At(i, i))
		}
	}

	return sigma, nil
}

// toWeights maps x onto the simplex. Returns nil when every x_i is zero.
func toWeights(x []float64) []float64 {
	var q float64
	for _, v := range x {
		q += v * v
	}
	if q == 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return nil
	}

	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = v * v / q
	}
	// Renormalize against rounding drift.
	floats.Scale(1/floats.Sum(w), w)
	return w
}

func sharpe(w, mu []float64, sigma *mat.SymDense) float64 {
	variance := mat.Inner(mat.NewVecDense(len(w), w), sigma, mat.NewVecDense(len(w), w))
	if variance <= 0 {
		return math.Inf(-1)
	}
	return floats.Dot(w, mu) / math.Sqrt(variance)
}

// sharpeGradient writes d(-S)/dx into grad.
//
// With g = dS/dw = μ/b - a·Σw/b³ (a = μ'w, b = sqrt(w'Σw)) and
// dw_i/dx_k = (2x_k/q)(δ_ik - w_i), q = Σx²:
//
//	dS/dx_k = (2x_k/q)(g_k - g'w)
func sharpeGradient(grad, x, mu []float64, sigma *mat.SymDense) {
	n := len(x)
	w := toWeights(x)
	if w == nil {
		for i := range grad {
			grad[i] = 0
		}
		return
	}

	var q float64
	for _, v := range x {
		q += v * v
	}

	wv := mat.NewVecDense(n, w)
	var sw mat.VecDense
	sw.MulVec(sigma, wv)

	a := floats.Dot(w, mu)
	b := math.Sqrt(mat.Dot(wv, &sw))
	if b == 0 {
		for i := range grad {
			grad[i] = 0
		}
		return
	}
	b3 := b * b * b

	g := make([]float64, n)
	for i := range g {
		g[i] = mu[i]/b - a*sw.AtVec(i)/b3
	}
	gw := floats.Dot(g, w)

	for k := range grad {
		grad[k] = -(2 * x[k] / q) * (g[k] - gw)
	}
}

// portfolioMetrics evaluates w under Σ.
func portfolioMetrics(w, mu []float64, sigma *mat.SymDense) PortfolioMetrics {
	wv := mat.NewVecDense(len(w), w)
	variance := mat.Inner(wv, sigma, wv)
	return PortfolioMetrics{
		ExpectedReturn: floats.Dot(w, mu),
		Volatility:     math.Sqrt(math.Max(variance, 0)),
	}
}

// IsTimeout reports whether err came from a solve stopped by its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrOptimizationFailed) && errors.Is(err, context.DeadlineExceeded)
}
