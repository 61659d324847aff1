package domain

// PDFExtractor reads page text and document info from a PDF on disk.
type PDFExtractor interface {
	Name() string
	ExtractPages(path string, page *int) ([]PageText, error)
	Metadata(path string) (*PaperMetadata, error)
}
