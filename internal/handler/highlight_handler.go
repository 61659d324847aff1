package handler

import (
	"encoding/json"
	"net/http"

	"paper-reader/internal/domain"

	"github.com/gorilla/mux"
)

// HighlightHandler handles highlight-related HTTP requests.
type HighlightHandler struct {
	highlightService domain.HighlightService
	logger           domain.Logger
}

func NewHighlightHandler(highlightService domain.HighlightService, logger domain.Logger) *HighlightHandler {
	return &HighlightHandler{
		highlightService: highlightService,
		logger:           logger,
	}
}

type createHighlightRequest struct {
	PaperPath    string `json:"paper_path"`
	ContentText  string `json:"content_text"`
	PositionJSON string `json:"position_json"`
	Color        string `json:"color"`
	Comment      string `json:"comment"`
}

// CreateHighlight handles POST /api/highlights
func (h *HighlightHandler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	var req createHighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.highlightService.CreateHighlight(r.Context(), &domain.Highlight{
		PaperPath:    req.PaperPath,
		ContentText:  req.ContentText,
		PositionJSON: req.PositionJSON,
		Color:        req.Color,
		Comment:      req.Comment,
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListHighlights handles GET /api/highlights?paper_path=...
func (h *HighlightHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	paperPath := r.URL.Query().Get("paper_path")
	if paperPath == "" {
		writeError(w, http.StatusBadRequest, "paper_path is required")
		return
	}

	highlights, err := h.highlightService.ListHighlights(r.Context(), paperPath)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if highlights == nil {
		highlights = make([]*domain.Highlight, 0)
	}
	writeJSON(w, http.StatusOK, highlights)
}

// UpdateHighlight handles PATCH /api/highlights/{id}
func (h *HighlightHandler) UpdateHighlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var update domain.HighlightUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.highlightService.UpdateHighlight(r.Context(), id, update)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteHighlight handles DELETE /api/highlights/{id}
func (h *HighlightHandler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.highlightService.DeleteHighlight(r.Context(), id); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
