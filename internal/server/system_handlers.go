package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aristath/forecastfolio/internal/database"
	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	source      forecasts.Source
	forecastsDB *database.DB

	// Jobs (set after job registration in main.go)
	forecastSyncJob   scheduler.Job
	walCheckpointsJob scheduler.Job
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	ForecastSource string  `json:"forecast_source"`
	ForecastCount  int     `json:"forecast_count"`
	Warning        string  `json:"warning,omitempty"`
	LastChecked    string  `json:"last_checked"`
}

// DatabaseStatsResponse is returned by GET /api/system/database/stats
type DatabaseStatsResponse struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	SizeMB      float64 `json:"size_mb"`
	LastChecked string  `json:"last_checked"`
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, source forecasts.Source, forecastsDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		source:      source,
		forecastsDB: forecastsDB,
	}
}

// SetJobs registers job references for manual triggering
func (h *SystemHandlers) SetJobs(forecastSync, walCheckpoints scheduler.Job) {
	h.forecastSyncJob = forecastSync
	h.walCheckpointsJob = walCheckpoints
}

// HandleSystemStatus returns process and forecast source status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	if h.source != nil {
		response.ForecastSource = h.source.Kind()
		tickers, err := h.source.List(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to list forecasts for status")
			response.Status = "degraded"
			response.Warning = err.Error()
		}
		response.ForecastCount = len(tickers)
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats returns forecast database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.forecastsDB == nil {
		http.Error(w, "Forecast database not available", http.StatusServiceUnavailable)
		return
	}

	response := DatabaseStatsResponse{
		Name:        h.forecastsDB.Name(),
		Path:        h.forecastsDB.Path(),
		LastChecked: time.Now().Format(time.RFC3339),
	}
	if info, err := os.Stat(h.forecastsDB.Path()); err == nil {
		response.SizeMB = float64(info.Size()) / 1024 / 1024
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleTriggerForecastSync runs the forecast sync job immediately
// POST /api/system/jobs/forecast-sync
func (h *SystemHandlers) HandleTriggerForecastSync(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, h.forecastSyncJob)
}

// HandleTriggerCheckWALCheckpoints runs the WAL checkpoint job immediately
// POST /api/system/jobs/check-wal-checkpoints
func (h *SystemHandlers) HandleTriggerCheckWALCheckpoints(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, h.walCheckpointsJob)
}

func (h *SystemHandlers) runJob(w http.ResponseWriter, job scheduler.Job) {
	if job == nil {
		h.log.Warn().Msg("Job not registered yet")
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "Job not registered",
		})
		return
	}

	h.log.Info().Str("job", job.Name()).Msg("Manual job trigger")

	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", job.Name()).Msg("Manual job failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": job.Name() + " completed",
	})
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short sampling interval so the endpoint stays responsive
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
