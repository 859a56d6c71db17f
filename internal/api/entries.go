package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spacesedan/dreamflow/internal/journal"
	"github.com/spacesedan/dreamflow/internal/models"
)

type importRequest struct {
	Entries []models.EntryInput `json:"entries" validate:"required,min=1"`
}

type importResponse struct {
	Imported int                    `json:"imported"`
	Entries  []models.AnalyzedEntry `json:"entries"`
}

type analyzeRequest struct {
	Content string `json:"content" validate:"required"`
}

// bindJSON decodes and validates a request body, writing a 400 on failure.
func (h *Handler) bindJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, v); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondError(w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var in models.EntryInput
	if !h.bindJSON(w, r, &in) {
		return
	}
	entry, err := h.journal.CreateEntry(r.Context(), in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var in models.EntryInput
	if !h.bindJSON(w, r, &in) {
		return
	}
	entry, err := h.journal.UpdateEntry(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := journal.ListQuery{Tag: r.URL.Query().Get("tag")}
	var err error
	if q.Start, err = timeParam(r, "start", false); err != nil {
		h.handleError(w, r, err)
		return
	}
	if q.End, err = timeParam(r, "end", true); err != nil {
		h.handleError(w, r, err)
		return
	}
	if q.Page, err = intParam(r, "page", 1); err != nil {
		h.handleError(w, r, err)
		return
	}
	if q.PerPage, err = intParam(r, "per_page", journal.DefaultPerPage); err != nil {
		h.handleError(w, r, err)
		return
	}

	page, err := h.journal.ListEntries(r.Context(), q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) ImportEntries(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	imported, err := h.journal.ImportEntries(r.Context(), req.Entries)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, importResponse{Imported: len(imported), Entries: imported})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	result, err := h.journal.AnalyzeText(r.Context(), req.Content)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.journal.Tags(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}
