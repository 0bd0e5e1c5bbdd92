package codec

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// cellGap is the minimum horizontal distance between text fragments
	// that separates two table cells on the same row.
	cellGap = 12.0

	// rowTolerance groups fragments whose baselines differ by less than
	// this many points into the same row.
	rowTolerance = 2.0
)

// FirstTable detects and extracts the first table in the document,
// scanning pages in order. A table is a run of at least two consecutive
// rows with at least two cells each. Documents without such a run
// surface as ErrNoTable.
func (d *Document) FirstTable() ([][]string, error) {
	reader, err := d.textReader()
	if err != nil {
		return nil, err
	}

	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}

		if table := detectTable(groupRows(p.Content().Text)); table != nil {
			return table, nil
		}
	}

	return nil, ErrNoTable
}

// groupRows clusters positioned fragments into rows by baseline,
// ordered top to bottom with fragments left to right.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	var rows [][]pdf.Text

	for _, t := range texts {
		placed := false
		for i := range rows {
			if math.Abs(rows[i][0].Y-t.Y) <= rowTolerance {
				rows[i] = append(rows[i], t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []pdf.Text{t})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][0].Y > rows[j][0].Y
	})
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
	}

	return rows
}

// detectTable returns the first run of at least two consecutive
// multi-cell rows, or nil when no such run exists.
func detectTable(rows [][]pdf.Text) [][]string {
	var table [][]string

	for _, row := range rows {
		cells := groupCells(row)

		if len(cells) >= 2 {
			table = append(table, cells)
			continue
		}

		if len(table) >= 2 {
			break
		}
		table = nil
	}

	if len(table) < 2 {
		return nil
	}

	return table
}

// groupCells merges a row's fragments into cells, splitting wherever
// the horizontal gap between fragments exceeds cellGap.
func groupCells(row []pdf.Text) []string {
	if len(row) == 0 {
		return nil
	}

	var cells []string
	var current strings.Builder

	prev := row[0]
	current.WriteString(prev.S)

	for _, t := range row[1:] {
		if t.X-(prev.X+prev.W) > cellGap {
			cells = appendCell(cells, current.String())
			current.Reset()
		}
		current.WriteString(t.S)
		prev = t
	}

	return appendCell(cells, current.String())
}

func appendCell(cells []string, cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return cells
	}
	return append(cells, cell)
}
