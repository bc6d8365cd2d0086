// Package ingest turns uploaded documents into plain text for the bank
// parser. Extraction is a boundary concern: a failure here is reported to
// the uploader and never touches session state.
package ingest

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Extractor produces plain text from an uploaded document.
type Extractor interface {
	ExtractText(ctx context.Context, filename string, r io.Reader) (string, error)
}

// ForFilename selects an extractor by file extension. Word documents get the
// docx extractor; everything else is treated as plain text.
func ForFilename(filename string) Extractor {
	if strings.EqualFold(filepath.Ext(filename), ".docx") {
		return DocxExtractor{}
	}
	return PlainTextExtractor{}
}

// PlainTextExtractor reads the upload as-is, normalizing line endings.
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(_ context.Context, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
