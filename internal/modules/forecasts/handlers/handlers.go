// Package handlers provides HTTP handlers for forecast data.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles forecast HTTP requests
type Handler struct {
	source forecasts.Source
	log    zerolog.Logger
}

// NewHandler creates a new forecasts handler
func NewHandler(source forecasts.Source, log zerolog.Logger) *Handler {
	return &Handler{
		source: source,
		log:    log.With().Str("handler", "forecasts").Logger(),
	}
}

// HandleList handles GET /api/forecasts
// An unreachable data folder is reported as a warning with an empty list.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"source": h.source.Kind(),
	}

	tickers, err := h.source.List(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to list forecasts")
		tickers = []string{}
		data["warning"] = err.Error()
	}
	if tickers == nil {
		tickers = []string{}
	}
	data["tickers"] = tickers
	data["count"] = len(tickers)

	h.writeJSON(w, http.StatusOK, envelope(data))
}

// HandleGet handles GET /api/forecasts/{ticker}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	series, err := h.source.Load(r.Context(), ticker)
	if err != nil {
		switch {
		case errors.Is(err, forecasts.ErrInvalidTicker):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, forecasts.ErrNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
		default:
			h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to load forecast")
			h.writeError(w, http.StatusInternalServerError, "failed to load forecast")
		}
		return
	}

	data := map[string]interface{}{
		"ticker":      series.Ticker,
		"point_count": series.Len(),
		"points":      series.Points,
	}
	if series.Len() > 0 {
		data["first_ds"] = series.First().Format("2006-01-02")
		data["last_ds"] = series.Last().Format("2006-01-02")
	}

	h.writeJSON(w, http.StatusOK, envelope(data))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
