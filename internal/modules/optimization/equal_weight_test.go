package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualWeight(t *testing.T) {
	pm, err := EqualWeight(assetMap(
		asset("AAA", 0.10, 0.20),
		asset("BBB", 0.20, 0.40),
	))
	require.NoError(t, err)

	assert.InDelta(t, 0.15, pm.ExpectedReturn, 1e-12)
	// Plain mean of volatilities, not sqrt(Σ(σ/N)²) ≈ 0.2236
	assert.InDelta(t, 0.30, pm.Volatility, 1e-12)
}

func TestEqualWeight_Errors(t *testing.T) {
	_, err := EqualWeight(nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = EqualWeight(assetMap(asset("AAA", math.NaN(), 0.2)))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPortfolioWeights_Sum(t *testing.T) {
	w := PortfolioWeights{"B": 0.25, "A": 0.75}
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
}
