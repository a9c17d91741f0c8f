package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/poleguard/repeal/internal/corpus"
)

// ReadPDF extracts plain text from every page of the PDF at path. Each
// non-empty page becomes one section with a "page N" locator. Pages whose
// text cannot be decoded are skipped rather than failing the document;
// scanned-image pages simply come back empty.
func ReadPDF(path string) ([]corpus.Section, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var sections []corpus.Section
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		sections = append(sections, corpus.Section{
			Ref:  fmt.Sprintf("page %d", i),
			Text: text,
		})
	}

	return sections, nil
}
