package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// handleHealth reports process, host and database health in one payload.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":     "ok",
		"uptime_sec": int(time.Since(startTime).Seconds()),
		"goroutines": runtime.NumGoroutine(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		payload["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		payload["memory_percent"] = memStat.UsedPercent
	}

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			payload["status"] = "degraded"
			payload["database_error"] = err.Error()
		} else {
			payload["database"] = s.db.GetStats()
		}
	}

	if s.events != nil {
		payload["progress_subscribers"] = s.events.SubscriberCount()
	}

	status := http.StatusOK
	if payload["status"] != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(s.log, w, status, payload)
}

func respondJSON(log zerolog.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
