package handler

import (
	"net/http"
	"strconv"

	"paper-reader/internal/domain"
)

// PaperHandler serves PDF bytes, extracted text and metadata.
type PaperHandler struct {
	paperService domain.PaperService
	logger       domain.Logger
}

func NewPaperHandler(paperService domain.PaperService, logger domain.Logger) *PaperHandler {
	return &PaperHandler{
		paperService: paperService,
		logger:       logger,
	}
}

func requirePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return "", false
	}
	return path, true
}

// GetPDF handles GET /api/papers/pdf?path=... with range support.
func (h *PaperHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}

	file, err := h.paperService.Open(path)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	defer file.Content.Close()

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, file.Name, file.ModTime, file.Content)
}

// GetText handles GET /api/papers/text?path=...&page=N (page is 0-indexed).
func (h *PaperHandler) GetText(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}

	var page *int
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = &n
	}

	text, err := h.paperService.Text(r.Context(), path, page)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, text)
}

// GetMetadata handles GET /api/papers/metadata?path=...
func (h *PaperHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}

	meta, err := h.paperService.Metadata(r.Context(), path)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetRecent handles GET /api/papers/recent?limit=N
func (h *PaperHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	papers, err := h.paperService.Recent(r.Context(), limit)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, papers)
}
