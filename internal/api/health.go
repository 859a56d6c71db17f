package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health reports 503 only when the store is unreachable. A failing cache or
// NER service leaves the API usable and is reported as degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: statusOK, Checks: map[string]string{}}
	status := http.StatusOK

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Error("[API] Store health check failed", slog.String("error", err.Error()))
			resp.Checks["store"] = statusDown
			resp.Status = statusDown
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["store"] = statusOK
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("[API] Cache health check failed", slog.String("error", err.Error()))
			resp.Checks["cache"] = statusDown
			resp.Status = degrade(resp.Status)
		} else {
			resp.Checks["cache"] = statusOK
		}
	}

	if h.ner != nil {
		if h.ner.Load() {
			resp.Checks["ner"] = statusOK
		} else {
			resp.Checks["ner"] = statusDown
			resp.Status = degrade(resp.Status)
		}
	}

	respondJSON(w, status, resp)
}

func degrade(status string) string {
	if status == statusOK {
		return statusDegraded
	}
	return status
}
