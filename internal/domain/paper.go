package domain

import (
	"context"
	"io"
	"time"
)

// RootEntry is a well-known starting directory offered to the file browser.
type RootEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// FileEntry is a directory or PDF file inside a browsed directory.
type FileEntry struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"is_dir"`
	Size     int64   `json:"size"`
	Modified float64 `json:"modified"`
}

// PageText holds the extracted text of one page. PageNum is 0-indexed.
type PageText struct {
	PageNum int    `json:"page_num"`
	Text    string `json:"text"`
}

// PaperText is the payload of the text endpoint.
type PaperText struct {
	Pages []PageText `json:"pages"`
}

// PaperMetadata describes a PDF document.
type PaperMetadata struct {
	PageCount int    `json:"page_count"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Subject   string `json:"subject"`
}

// Paper is a recently opened PDF.
type Paper struct {
	ID         string    `json:"id"`
	FilePath   string    `json:"file_path"`
	Title      string    `json:"title"`
	PageCount  int       `json:"page_count"`
	LastOpened time.Time `json:"last_opened"`
}

// OpenFile is a readable PDF handed to the HTTP layer for serving.
type OpenFile struct {
	Name    string
	ModTime time.Time
	Content io.ReadSeekCloser
}

// FileService lists directories below the home directory.
type FileService interface {
	Roots() []RootEntry
	Browse(dirPath string) ([]FileEntry, error)
	// ResolvePDF cleans path, enforces the home restriction and checks the
	// file is an existing .pdf.
	ResolvePDF(path string) (string, error)
}

// PaperRepository persists recently opened papers.
type PaperRepository interface {
	Upsert(ctx context.Context, paper *Paper) error
	ListRecent(ctx context.Context, limit int) ([]*Paper, error)
}

// PaperService serves PDF files, text and metadata.
type PaperService interface {
	Open(path string) (*OpenFile, error)
	Text(ctx context.Context, path string, page *int) (*PaperText, error)
	Metadata(ctx context.Context, path string) (*PaperMetadata, error)
	FullText(ctx context.Context, path string) (string, error)
	Recent(ctx context.Context, limit int) ([]*Paper, error)
}
