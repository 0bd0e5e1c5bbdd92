package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	composeFont     = "Helvetica"
	composeFontSize = 11.0
	composeLineHt   = 6.0
	composeCellHt   = 8.0
	pageWidth       = 190.0
)

// ComposeText renders plain text into a new PDF document. Long lines
// wrap; form feeds force page breaks.
func ComposeText(text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont(composeFont, "", composeFontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pages := strings.Split(text, "\f")
	for _, page := range pages {
		doc.AddPage()
		doc.MultiCell(0, composeLineHt, tr(page), "", "L", false)
	}

	return render(doc)
}

// ComposeTable renders rows of cells into a new PDF as a bordered grid.
// Column count follows the widest row; short rows are padded with empty
// cells.
func ComposeTable(rows [][]string) ([]byte, error) {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil, fmt.Errorf("%w: no cells to compose", ErrNoTable)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont(composeFont, "", composeFontSize)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	colWidth := pageWidth / float64(cols)
	for _, row := range rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			doc.CellFormat(colWidth, composeCellHt, tr(cell), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	return render(doc)
}

func render(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
