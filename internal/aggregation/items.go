package aggregation

import (
	"errors"
	"fmt"
	"strings"

	"waferplot/domain/measurement"
)

// ErrColumnMissing is returned when a table lacks a column the aggregation keys on
var ErrColumnMissing = errors.New("required column missing")

// DefaultItemColumn names the column carrying test item identifiers
const DefaultItemColumn = "ITEM_ID"

// ItemAggregator collects (column index, value) samples per test item across any
// number of site sheets. Only columns whose header is a plain integer contribute.
type ItemAggregator struct {
	column string
	items  map[string][]measurement.ItemSample
	order  []string
}

// NewItemAggregator creates an aggregator keyed on column (DefaultItemColumn when empty)
func NewItemAggregator(column string) *ItemAggregator {
	if column == "" {
		column = DefaultItemColumn
	}
	return &ItemAggregator{column: column, items: make(map[string][]measurement.ItemSample)}
}

// Ingest adds every data row of the table
func (a *ItemAggregator) Ingest(t measurement.Table) error {
	idCol, ok := t.ColumnIndex(a.column)
	if !ok {
		return fmt.Errorf("%w: %q in sheet %q", ErrColumnMissing, a.column, t.Name)
	}

	type indexColumn struct {
		col   int
		label measurement.IndexLabel
	}
	var cols []indexColumn
	for i, h := range t.Header() {
		if isDigits(h) {
			cols = append(cols, indexColumn{col: i, label: measurement.ParseLabel(h)})
		}
	}

	for r := 1; r < len(t.Rows); r++ {
		item := strings.TrimSpace(t.Cell(r, idCol).String())
		if item == "" {
			continue
		}
		if _, seen := a.items[item]; !seen {
			a.items[item] = nil
			a.order = append(a.order, item)
		}
		for _, c := range cols {
			if v, ok := t.Cell(r, c.col).Float(); ok {
				a.items[item] = append(a.items[item], measurement.ItemSample{Index: c.label, Value: v})
			}
		}
	}
	return nil
}

// Items returns item identifiers in first-seen order
func (a *ItemAggregator) Items() []string {
	return append([]string(nil), a.order...)
}

// Samples returns the samples of item
func (a *ItemAggregator) Samples(item string) []measurement.ItemSample {
	return a.items[item]
}

// FilterItemMaxIndex keeps numeric-labelled samples at or below max
func FilterItemMaxIndex(samples []measurement.ItemSample, max float64) []measurement.ItemSample {
	out := make([]measurement.ItemSample, 0, len(samples))
	for _, s := range samples {
		if v, ok := s.Index.Float(); ok && v <= max {
			out = append(out, s)
		}
	}
	return out
}

// Category is one box of a box plot: a label and its values in input order
type Category struct {
	Label  string
	Values []float64
}

// GroupItemSamples buckets samples by index label, ordered by label
func GroupItemSamples(samples []measurement.ItemSample) []Category {
	byKey := make(map[string]*Category)
	var labels []measurement.IndexLabel
	for _, s := range samples {
		k := s.Index.String()
		c, ok := byKey[k]
		if !ok {
			c = &Category{Label: k}
			byKey[k] = c
			labels = append(labels, s.Index)
		}
		c.Values = append(c.Values, s.Value)
	}
	sortLabels(labels)

	out := make([]Category, len(labels))
	for i, l := range labels {
		out[i] = *byKey[l.String()]
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
