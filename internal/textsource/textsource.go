// Package textsource turns input documents into ordered (page, text) pairs.
// The extraction engine treats it as an opaque provider.
package textsource

import "context"

// Page is one page of extracted text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Source yields the pages of a document in ascending page order. Called once
// per document per run.
type Source interface {
	Pages(ctx context.Context, path string) ([]Page, error)
}

// Memory serves pre-extracted pages keyed by document path. Used in tests
// and anywhere text is already available.
type Memory struct {
	Docs map[string][]Page
}

func (m *Memory) Pages(_ context.Context, path string) ([]Page, error) {
	return m.Docs[path], nil
}
