package service

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"
)

// FileService browses directories below the configured home directory.
type FileService struct {
	home   string
	logger domain.Logger
}

// NewFileService creates a browser rooted at homeDir.
func NewFileService(homeDir string, logger domain.Logger) *FileService {
	return &FileService{home: resolvePath(homeDir), logger: logger}
}

// Roots lists the well-known folders that exist.
func (s *FileService) Roots() []domain.RootEntry {
	candidates := []domain.RootEntry{
		{Name: "Home", Path: s.home},
		{Name: "Documents", Path: filepath.Join(s.home, "Documents")},
		{Name: "Downloads", Path: filepath.Join(s.home, "Downloads")},
		{Name: "Desktop", Path: filepath.Join(s.home, "Desktop")},
	}

	roots := make([]domain.RootEntry, 0, len(candidates))
	for _, c := range candidates {
		if _, err := os.Stat(c.Path); err == nil {
			roots = append(roots, c)
		}
	}
	return roots
}

// Browse lists subdirectories and PDF files of dirPath. Hidden entries are
// skipped; directories sort first, then names case-insensitively.
func (s *FileService) Browse(dirPath string) ([]domain.FileEntry, error) {
	path, err := s.guard(dirPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, apperrors.NewNotFoundError("Directory not found: " + path).WithCause(domain.ErrDirectoryNotFound)
	}

	items, err := os.ReadDir(path)
	if err != nil {
		s.logger.Warn("Failed to read directory", "path", path, "error", err)
		return []domain.FileEntry{}, nil
	}

	entries := make([]domain.FileEntry, 0, len(items))
	for _, item := range items {
		name := item.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(path, name)

		// Follow symlinks so linked folders browse like real ones.
		fi, err := os.Stat(full)
		if err != nil {
			continue
		}
		if fi.IsDir() {
			entries = append(entries, domain.FileEntry{Name: name, Path: full, IsDir: true})
			continue
		}
		if !isPDF(name) {
			continue
		}
		entries = append(entries, domain.FileEntry{
			Name:     name,
			Path:     full,
			Size:     fi.Size(),
			Modified: float64(fi.ModTime().UnixNano()) / 1e9,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// ResolvePDF returns the cleaned absolute path of an existing PDF inside home.
func (s *FileService) ResolvePDF(path string) (string, error) {
	resolved, err := s.guard(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() || !isPDF(resolved) {
		return "", apperrors.NewNotFoundError("PDF not found").WithCause(domain.ErrPaperNotFound)
	}
	return resolved, nil
}

func (s *FileService) guard(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperrors.NewValidationError("path is required")
	}
	resolved := resolvePath(path)
	if !withinDir(s.home, resolved) {
		s.logger.Warn("Blocked path outside home directory", "path", path)
		return "", apperrors.NewForbiddenError("Access restricted to home directory").WithCause(domain.ErrOutsideHome)
	}
	return resolved, nil
}

// resolvePath makes path absolute and resolves symlinks when it exists.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// withinDir reports whether path is root or below it.
func withinDir(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

var _ domain.FileService = (*FileService)(nil)
