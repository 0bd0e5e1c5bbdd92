// Package codec handles PDF parsing, page extraction, text and table
// recovery, and composition of new documents from plain content.
package codec

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is a parsed, validated PDF held in memory.
type Document struct {
	data      []byte
	pageCount int
}

// Open validates raw bytes as a PDF and returns a Document. Byte streams
// that do not parse as a PDF surface as ErrMalformed.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return &Document{data: data, pageCount: count}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Bytes returns the raw document content.
func (d *Document) Bytes() []byte {
	return d.data
}

// Reader returns a fresh ReadSeeker over the document content.
func (d *Document) Reader() *bytes.Reader {
	return bytes.NewReader(d.data)
}

// ExtractPage produces a single-page PDF containing only the given page.
// Pages are 1-indexed.
func (d *Document) ExtractPage(page int) ([]byte, error) {
	if page < 1 || page > d.pageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, d.pageCount)
	}

	var buf bytes.Buffer
	selected := []string{strconv.Itoa(page)}

	if err := api.Trim(d.Reader(), &buf, selected, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("extract page %d: %w", page, err)
	}

	return buf.Bytes(), nil
}
