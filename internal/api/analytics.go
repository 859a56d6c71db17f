package api

import (
	"net/http"
	"time"

	"github.com/spacesedan/dreamflow/internal/journal"
	"github.com/spacesedan/dreamflow/internal/models"
)

const (
	defaultDays        = 30
	defaultPatternDays = 90
)

type summaryRequest struct {
	PeriodType string     `json:"period_type" validate:"required,oneof=weekly monthly"`
	End        *time.Time `json:"end"`
}

// daysHandler adapts a days-windowed journal read into a handler.
func daysHandler[T any](h *Handler, def int, read func(h *Handler, r *http.Request, days int) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := intParam(r, "days", def)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		out, err := read(h, r, days)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, defaultDays, func(h *Handler, r *http.Request, days int) (journal.Overview, error) {
		return h.journal.Overview(r.Context(), days)
	})(w, r)
}

func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, defaultDays, func(h *Handler, r *http.Request, days int) (map[string]any, error) {
		points, err := h.journal.Timeline(r.Context(), days)
		if err != nil {
			return nil, err
		}
		return map[string]any{"days": days, "points": points}, nil
	})(w, r)
}

func (h *Handler) Patterns(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, defaultPatternDays, func(h *Handler, r *http.Request, days int) (any, error) {
		return h.journal.Patterns(r.Context(), days)
	})(w, r)
}

func (h *Handler) Mood(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, defaultDays, func(h *Handler, r *http.Request, days int) (any, error) {
		return h.journal.MoodForecast(r.Context(), days)
	})(w, r)
}

// Themes and Entities default to the whole journal.
func (h *Handler) Themes(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, journal.MaxWindowDays, func(h *Handler, r *http.Request, days int) (any, error) {
		return h.journal.ThemeCounts(r.Context(), days)
	})(w, r)
}

func (h *Handler) Entities(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, journal.MaxWindowDays, func(h *Handler, r *http.Request, days int) (any, error) {
		return h.journal.EntityFrequencies(r.Context(), days)
	})(w, r)
}

func (h *Handler) PersonalInsights(w http.ResponseWriter, r *http.Request) {
	daysHandler(h, defaultPatternDays, func(h *Handler, r *http.Request, days int) (any, error) {
		return h.journal.PersonalInsights(r.Context(), days)
	})(w, r)
}

func (h *Handler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	var end time.Time
	if req.End != nil {
		end = *req.End
	}
	summary, err := h.journal.GenerateSummary(r.Context(), models.PeriodType(req.PeriodType), end)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, summary)
}

func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.journal.ListSummaries(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []models.PeriodSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}
