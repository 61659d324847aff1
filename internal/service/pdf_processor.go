package service

import (
	"fmt"
	"strings"
	"time"

	"paper-reader/internal/domain"

	"github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
)

const pageTimeout = 90 * time.Second

// FitzExtractor reads PDFs through MuPDF.
type FitzExtractor struct {
	logger domain.Logger
}

func NewFitzExtractor(logger domain.Logger) *FitzExtractor {
	return &FitzExtractor{logger: logger}
}

func (e *FitzExtractor) Name() string { return "mupdf" }

// ExtractPages returns the text of every page, or only of page when set.
// Pages are 0-indexed; an out-of-range page yields an empty slice.
func (e *FitzExtractor) ExtractPages(path string, page *int) ([]domain.PageText, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]domain.PageText, 0, numPages)

	type pageResult struct {
		text string
		err  error
	}

	for i := 0; i < numPages; i++ {
		if page != nil && *page != i {
			continue
		}

		resultCh := make(chan pageResult, 1)
		go func(idx int) {
			t, err := doc.Text(idx)
			resultCh <- pageResult{text: t, err: err}
		}(i)

		var text string
		select {
		case res := <-resultCh:
			if res.err != nil {
				e.logger.Warn("Failed to extract text from page", "path", path, "page", i, "error", res.err)
			}
			text = res.text
		case <-time.After(pageTimeout):
			e.logger.Warn("PDF page extraction timeout; using empty page", "path", path, "page", i, "timeout_sec", int(pageTimeout.Seconds()))
		}

		pages = append(pages, domain.PageText{PageNum: i, Text: sanitizeText(text)})
	}
	return pages, nil
}

func (e *FitzExtractor) Metadata(path string) (*domain.PaperMetadata, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	meta := doc.Metadata()
	return &domain.PaperMetadata{
		PageCount: doc.NumPage(),
		Title:     meta["title"],
		Author:    meta["author"],
		Subject:   meta["subject"],
	}, nil
}

// PlainExtractor is a pure Go reader used when MuPDF cannot open a file.
type PlainExtractor struct{}

func NewPlainExtractor() *PlainExtractor { return &PlainExtractor{} }

func (e *PlainExtractor) Name() string { return "ledongthuc" }

func (e *PlainExtractor) ExtractPages(path string, page *int) ([]domain.PageText, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]domain.PageText, 0, numPages)
	for i := 0; i < numPages; i++ {
		if page != nil && *page != i {
			continue
		}
		// ledongthuc pages are 1-indexed.
		p := reader.Page(i + 1)
		var text string
		if !p.V.IsNull() {
			if t, err := p.GetPlainText(nil); err == nil {
				text = t
			}
		}
		pages = append(pages, domain.PageText{PageNum: i, Text: sanitizeText(text)})
	}
	return pages, nil
}

func (e *PlainExtractor) Metadata(path string) (*domain.PaperMetadata, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info := reader.Trailer().Key("Info")
	return &domain.PaperMetadata{
		PageCount: reader.NumPage(),
		Title:     info.Key("Title").Text(),
		Author:    info.Key("Author").Text(),
		Subject:   info.Key("Subject").Text(),
	}, nil
}

// PDFProcessor tries each extractor in order until one can open the file.
type PDFProcessor struct {
	extractors []domain.PDFExtractor
	logger     domain.Logger
}

// NewPDFProcessor creates a processor using MuPDF with a pure Go fallback.
func NewPDFProcessor(logger domain.Logger) *PDFProcessor {
	return NewPDFProcessorWith(logger, NewFitzExtractor(logger), NewPlainExtractor())
}

func NewPDFProcessorWith(logger domain.Logger, extractors ...domain.PDFExtractor) *PDFProcessor {
	return &PDFProcessor{extractors: extractors, logger: logger}
}

func (p *PDFProcessor) Name() string { return "chain" }

func (p *PDFProcessor) ExtractPages(path string, page *int) ([]domain.PageText, error) {
	var lastErr error
	for _, e := range p.extractors {
		pages, err := e.ExtractPages(path, page)
		if err == nil {
			return pages, nil
		}
		p.logger.Warn("PDF extractor failed", "extractor", e.Name(), "path", path, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

func (p *PDFProcessor) Metadata(path string) (*domain.PaperMetadata, error) {
	var lastErr error
	for _, e := range p.extractors {
		meta, err := e.Metadata(path)
		if err == nil {
			meta.Title = sanitizeText(meta.Title)
			meta.Author = sanitizeText(meta.Author)
			meta.Subject = sanitizeText(meta.Subject)
			return meta, nil
		}
		p.logger.Warn("PDF extractor failed", "extractor", e.Name(), "path", path, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

// sanitizeText drops NUL, surrogates and control characters other than
// tab, newline and carriage return.
func sanitizeText(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20:
		case r >= 0xD800 && r <= 0xDFFF:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ domain.PDFExtractor = (*PDFProcessor)(nil)
