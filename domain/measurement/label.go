package measurement

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IndexLabel is the shared per-column key aligning measurements across rows
// (a wafer, site or unit number). Labels that parse as numbers are stored in
// canonical numeric form so "1", "1.0" and 1 compare and hash equal.
type IndexLabel struct {
	text    string
	num     float64
	numeric bool
}

// NumericLabel builds a label from a number
func NumericLabel(v float64) IndexLabel {
	return IndexLabel{text: strconv.FormatFloat(v, 'g', -1, 64), num: v, numeric: true}
}

// ParseLabel builds a label from text, promoting it to a numeric label when it parses as a finite number
func ParseLabel(s string) IndexLabel {
	s = strings.TrimSpace(s)
	if s == "" {
		return IndexLabel{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return NumericLabel(v)
	}
	return IndexLabel{text: s}
}

// LabelFromCell converts a sheet cell into a label; empty cells yield no label
func LabelFromCell(c Cell) (IndexLabel, bool) {
	switch c.Kind {
	case CellNumber:
		return NumericLabel(c.Num), true
	case CellText:
		l := ParseLabel(c.Text)
		return l, !l.IsZero()
	default:
		return IndexLabel{}, false
	}
}

// String returns the canonical text of the label
func (l IndexLabel) String() string { return l.text }

// IsZero reports whether the label is absent
func (l IndexLabel) IsZero() bool { return l.text == "" }

// IsNumeric reports whether the label parsed as a number
func (l IndexLabel) IsNumeric() bool { return l.numeric }

// Float returns the numeric value of the label
func (l IndexLabel) Float() (float64, bool) { return l.num, l.numeric }

// CompareLabels is a total order over labels: numeric labels sort before text
// labels, numeric labels by value and text labels by canonical text.
func CompareLabels(a, b IndexLabel) int {
	switch {
	case a.numeric && b.numeric:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return strings.Compare(a.text, b.text)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	}
	return strings.Compare(a.text, b.text)
}

// MarshalJSON emits numeric labels as JSON numbers and the rest as strings
func (l IndexLabel) MarshalJSON() ([]byte, error) {
	if l.numeric {
		return json.Marshal(l.num)
	}
	return json.Marshal(l.text)
}
