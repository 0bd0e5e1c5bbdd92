package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// ComposeDocx renders plain text into a Word document, one paragraph
// per line.
func ComposeDocx(text string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	for _, line := range strings.Split(text, "\n") {
		doc.AddParagraph().AddText(line)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	return buf.Bytes(), nil
}

// DocxText extracts paragraph text from a Word document, one line per
// paragraph. Documents with no text surface as ErrNoText.
func DocxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			lines = append(lines, p.String())
		}
	}

	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	return text, nil
}
