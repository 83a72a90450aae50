package measurement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIndexRowMissing is returned when a table is too short to carry its index label row
var ErrIndexRowMissing = errors.New("index label row missing")

// Table is a row-major sheet of coerced cells. Row 0 is the header row.
type Table struct {
	Name string
	Rows [][]Cell
}

// Cell returns the cell at (row, col), or an empty cell when out of range
func (t Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return EmptyCell()
	}
	return t.Rows[row][col]
}

// Header returns the trimmed header text of every column
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	out := make([]string, len(t.Rows[0]))
	for i, c := range t.Rows[0] {
		out[i] = strings.TrimSpace(c.String())
	}
	return out
}

// ColumnIndex finds a header column by case-insensitive name
func (t Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header() {
		if strings.EqualFold(h, name) {
			return i, true
		}
	}
	return -1, false
}

// Layout declares the positional schema of a measurement sheet
type Layout struct {
	IndexRow      int // row supplying index labels
	IdentifierCol int
	SpecLowCol    int
	TargetCol     int
	SpecHighCol   int
	FirstValueCol int
}

// DefaultLayout is the wafer acceptance test export layout: identifier in column 0,
// spec low/target/high in columns 1-3, measurements from column 4, and index labels
// on the second data row.
func DefaultLayout() Layout {
	return Layout{
		IndexRow:      2,
		IdentifierCol: 0,
		SpecLowCol:    1,
		TargetCol:     2,
		SpecHighCol:   3,
		FirstValueCol: 4,
	}
}

// IndexLabels extracts the label run from the layout's index row. Positions whose
// label cell is empty yield a zero label.
func (l Layout) IndexLabels(t Table) ([]IndexLabel, error) {
	if l.IndexRow < 0 || l.IndexRow >= len(t.Rows) {
		return nil, fmt.Errorf("%w: sheet %q has %d rows, index row is %d", ErrIndexRowMissing, t.Name, len(t.Rows), l.IndexRow)
	}
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width <= l.FirstValueCol {
		return []IndexLabel{}, nil
	}
	labels := make([]IndexLabel, width-l.FirstValueCol)
	for i := range labels {
		if lbl, ok := LabelFromCell(t.Cell(l.IndexRow, l.FirstValueCol+i)); ok {
			labels[i] = lbl
		}
	}
	return labels, nil
}

// ParseRecords applies the layout to every data row of the table. The header row
// and the index row are never records. Rows shorter than the label run are padded
// with missing values.
func ParseRecords(t Table, l Layout) ([]RawRecord, error) {
	labels, err := l.IndexLabels(t)
	if err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(t.Rows))
	for r := 1; r < len(t.Rows); r++ {
		if r == l.IndexRow {
			continue
		}
		values := make([]*float64, len(labels))
		for i := range labels {
			values[i] = t.Cell(r, l.FirstValueCol+i).OptionalFloat()
		}
		records = append(records, RawRecord{
			Row:         r,
			Identifier:  t.Cell(r, l.IdentifierCol),
			IndexLabels: labels,
			SpecLow:     t.Cell(r, l.SpecLowCol).OptionalFloat(),
			Target:      t.Cell(r, l.TargetCol).OptionalFloat(),
			SpecHigh:    t.Cell(r, l.SpecHighCol).OptionalFloat(),
			Values:      values,
		})
	}
	return records, nil
}
