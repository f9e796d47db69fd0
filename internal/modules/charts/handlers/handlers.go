// Package handlers provides HTTP handlers for chart data.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/forecastfolio/internal/modules/charts"
	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/pkg/validation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles chart HTTP requests
type Handler struct {
	service *charts.Service
	log     zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// ForecastChartQuery holds the query parameters of the forecast chart endpoint.
type ForecastChartQuery struct {
	SMA   int    `json:"sma" default:"20" validate:"gte=1,lte=250"`
	Range string `json:"range" default:"all" validate:"oneof=1M 3M 6M 1Y all"`
}

// HandleForecastChart handles GET /api/charts/forecasts/{ticker}?sma=20&range=6M
func (h *Handler) HandleForecastChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	var query ForecastChartQuery
	if raw := r.URL.Query().Get("sma"); raw != "" {
		sma, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "sma must be an integer")
			return
		}
		query.SMA = sma
	}
	query.Range = r.URL.Query().Get("range")

	if errs := validation.Validate(r.Context(), &query); errs != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(errs))
		return
	}

	points, err := h.service.GetForecastChart(r.Context(), ticker, query.SMA, query.Range)
	if err != nil {
		switch {
		case errors.Is(err, forecasts.ErrInvalidTicker):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, forecasts.ErrNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
		default:
			h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to build forecast chart")
			h.writeError(w, http.StatusInternalServerError, "failed to build chart")
		}
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"ticker":     ticker,
			"sma_period": query.SMA,
			"range":      query.Range,
			"points":     points,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
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
