// Package extract turns spec documents on disk into text sections ready
// for ingestion. PDF pages become one section each so chunk locators can
// point back at a page; everything else is treated as plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poleguard/repeal/internal/corpus"
)

// ReadDocument extracts the text sections of the document at path,
// dispatching on the file extension.
func ReadDocument(path string) ([]corpus.Section, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ReadPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []corpus.Section{{Text: string(data)}}, nil
}
