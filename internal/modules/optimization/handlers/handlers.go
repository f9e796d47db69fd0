// Package handlers provides HTTP handlers for optimization runs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/forecastfolio/internal/modules/charts"
	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
	"github.com/aristath/forecastfolio/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

func init() {
	// Tickers must be usable as forecast file names.
	err := validation.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return forecasts.ValidateTicker(fl.Field().String()) == nil
	})
	if err != nil {
		panic(err)
	}
}

// Runner runs optimizations. *optimization.Service satisfies it.
type Runner interface {
	Run(ctx context.Context, req optimization.Request) (*optimization.Report, error)
	DefaultWindow() time.Duration
}

// Handler handles optimization HTTP requests
type Handler struct {
	runner Runner
	log    zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(runner Runner, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		log:    log.With().Str("handler", "optimization").Logger(),
	}
}

// RunRequest is the body of POST /api/optimizer/run.
// A missing window_days uses the configured lookback; 0 uses the full series.
type RunRequest struct {
	Tickers    []string `json:"tickers" validate:"required,min=1,max=100,unique,dive,ticker"`
	WindowDays *int     `json:"window_days" validate:"omitempty,gte=0,lte=3650"`
}

// RunResponse is a report plus the risk/return scatter of its assets.
type RunResponse struct {
	*optimization.Report
	Scatter []charts.ScatterPoint `json:"scatter"`
}

// HandleRun handles POST /api/optimizer/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if errs := validation.DecodeJSON(r, &req); errs != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  validation.Message(errs),
			"errors": errs,
		})
		return
	}

	window := h.runner.DefaultWindow()
	if req.WindowDays != nil {
		window = time.Duration(*req.WindowDays) * 24 * time.Hour
	}

	report, err := h.runner.Run(r.Context(), optimization.Request{
		Tickers: req.Tickers,
		Window:  window,
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Strs("tickers", req.Tickers).Msg("Optimization run failed")
		}
		h.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	response := map[string]interface{}{
		"data": RunResponse{
			Report:  report,
			Scatter: charts.RiskReturnScatter(report.Assets),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// statusFor maps run errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, optimization.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, optimization.ErrDegenerateInput):
		return http.StatusUnprocessableEntity
	case optimization.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
