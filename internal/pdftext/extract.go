// Package pdftext extracts plain text and page-1 layout from PDF bytes.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultTextPages is how many pages of plain text the pipeline reads.
const DefaultTextPages = 3

// ExtractText returns the concatenated plain text of the first maxPages
// pages. A document with zero pages yields an empty string, not an error;
// only bytes that cannot be opened as a PDF at all return an error.
func ExtractText(data []byte, maxPages int) (text string, err error) {
	// The content stream parser panics on some malformed PDFs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = nil
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// ExtractPageText returns the plain text of a single page (1-based).
// Missing or unreadable pages yield an empty string.
func ExtractPageText(data []byte, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = nil
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	if pageNum < 1 || pageNum > r.NumPage() {
		return "", nil
	}

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	pageText, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil
	}
	return pageText, nil
}
