package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordRun(t *testing.T) {
	r := New()
	r.RecordRun("ok")
	r.RecordRun("ok")
	r.RecordRun("degenerate")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("degenerate")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordRun("ok")
		r.RecordExcluded("insufficient_data")
		r.RecordSolve(0.1)
		r.RecordLoad("folder", 0.1)
		r.RecordSharpe(1.2)
	})
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.RecordSharpe(0.75)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "forecastfolio_last_optimized_sharpe 0.75")
}
