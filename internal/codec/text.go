package codec

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts plain text from every page, joined by blank lines.
// Documents with no extractable text surface as ErrNoText.
func (d *Document) Text() (string, error) {
	pages, err := d.pageTexts()
	if err != nil {
		return "", err
	}

	joined := strings.Join(pages, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return "", ErrNoText
	}

	return joined, nil
}

// PageText extracts plain text from a single page. Pages are 1-indexed.
func (d *Document) PageText(page int) (string, error) {
	if page < 1 || page > d.pageCount {
		return "", fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, d.pageCount)
	}

	reader, err := d.textReader()
	if err != nil {
		return "", err
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", page, err)
	}

	return strings.TrimRight(text, "\n"), nil
}

func (d *Document) pageTexts() ([]string, error) {
	reader, err := d.textReader()
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d: %w", i, err)
		}

		pages = append(pages, strings.TrimRight(text, "\n"))
	}

	return pages, nil
}

func (d *Document) textReader() (*pdf.Reader, error) {
	reader, err := pdf.NewReader(d.Reader(), int64(len(d.data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return reader, nil
}
