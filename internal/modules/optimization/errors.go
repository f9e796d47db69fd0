package optimization

import "errors"

// Error kinds reported by the estimator, the optimizer and the run service.
// Callers classify failures with errors.Is.
var (
	// ErrInsufficientData means an asset has fewer than two usable points.
	// It is local to that asset: the asset is excluded and the run continues.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateInput means an included asset has zero or negative volatility.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrOptimizationFailed means the solver did not converge.
	ErrOptimizationFailed = errors.New("optimization failed")

	// ErrConfiguration means an invalid window or a malformed metrics mapping.
	ErrConfiguration = errors.New("configuration error")
)
