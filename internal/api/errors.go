package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spacesedan/dreamflow/internal/insights"
	"github.com/spacesedan/dreamflow/internal/journal"
)

// MapErrorToStatusCode maps service errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, journal.ErrNotFound),
		errors.Is(err, journal.ErrNoEntries):
		return http.StatusNotFound
	case errors.Is(err, journal.ErrValidation),
		errors.Is(err, insights.ErrInvalidPeriodBounds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func safeMessage(err error, status int) string {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		return "entry not found"
	case errors.Is(err, journal.ErrNoEntries):
		return "no entries in the requested window"
	case errors.Is(err, insights.ErrInvalidPeriodBounds):
		return "start must be before end"
	case status == http.StatusBadRequest:
		return err.Error()
	default:
		return "internal server error"
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("[API] Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	respondError(w, r, status, safeMessage(err, status))
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
