package handler

import (
	"net/http"

	"paper-reader/internal/domain"
)

// FileHandler serves the home-restricted file browser.
type FileHandler struct {
	fileService domain.FileService
	logger      domain.Logger
}

func NewFileHandler(fileService domain.FileService, logger domain.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// Roots handles GET /api/files/roots
func (h *FileHandler) Roots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.fileService.Roots())
}

// Browse handles GET /api/files/browse?path=...
func (h *FileHandler) Browse(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	entries, err := h.fileService.Browse(path)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
