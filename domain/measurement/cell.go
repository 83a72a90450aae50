package measurement

import "math"

// CellKind classifies a sheet cell after coercion
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is one coerced spreadsheet cell
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

// EmptyCell returns a missing cell
func EmptyCell() Cell { return Cell{} }

// NumberCell returns a numeric cell; NaN and infinities are treated as missing
func NumberCell(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Kind: CellNumber, Num: v}
}

// TextCell returns a text cell; blank text is missing
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// IsEmpty reports whether the cell holds no value
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// Float returns the numeric value of a number cell
func (c Cell) Float() (float64, bool) {
	if c.Kind != CellNumber {
		return 0, false
	}
	return c.Num, true
}

// OptionalFloat returns a pointer to the cell's number, or nil when it is not a number
func (c Cell) OptionalFloat() *float64 {
	v, ok := c.Float()
	if !ok {
		return nil
	}
	return &v
}

// String returns the cell as text
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return NumericLabel(c.Num).String()
	case CellText:
		return c.Text
	}
	return ""
}
