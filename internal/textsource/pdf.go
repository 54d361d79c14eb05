package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFSource extracts per-page plain text from PDF files. It tries the Go
// library first, then falls back to pdftotext if available.
type PDFSource struct {
	FallbackPdftotext bool
	Logger            *slog.Logger
}

func NewPDFSource(fallback bool, logger *slog.Logger) *PDFSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFSource{FallbackPdftotext: fallback, Logger: logger}
}

func (s *PDFSource) Pages(ctx context.Context, path string) ([]Page, error) {
	pages, err := extractPDFPages(path)
	if err != nil && s.FallbackPdftotext {
		s.Logger.Warn("textsource.pdf.fallback", "path", path, "error", err)
		pages, err = extractPdftotextPages(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	return pages, nil
}

func extractPDFPages(path string) ([]Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i, Text: ""})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			pages = append(pages, Page{Number: i, Text: ""})
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

func extractPdftotextPages(ctx context.Context, path string) ([]Page, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	parts := strings.Split(string(out), "\f")
	pages := make([]Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, Page{Number: i + 1, Text: part})
	}
	return pages, nil
}
