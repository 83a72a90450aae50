package aggregation

import (
	"waferplot/domain/measurement"
)

func fp(v float64) *float64 { return &v }

func num(v float64) measurement.IndexLabel { return measurement.NumericLabel(v) }

func samples(pairs ...float64) []measurement.Sample {
	out := make([]measurement.Sample, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, measurement.Sample{Index: num(pairs[i]), Value: pairs[i+1]})
	}
	return out
}

// sheet builds a table in the default layout: header, one filler row, the index
// label row, then the given data rows.
func sheet(labels []measurement.Cell, rows ...[]measurement.Cell) measurement.Table {
	header := []measurement.Cell{measurement.TextCell("ITEM"), measurement.TextCell("LOW"), measurement.TextCell("TARGET"), measurement.TextCell("HIGH")}
	indexRow := append([]measurement.Cell{measurement.TextCell("Wafer"), {}, {}, {}}, labels...)
	t := measurement.Table{Name: "site", Rows: [][]measurement.Cell{header, {measurement.TextCell("Unit")}, indexRow}}
	t.Rows = append(t.Rows, rows...)
	return t
}

func row(id string, spec [3]*float64, values ...*float64) []measurement.Cell {
	cells := []measurement.Cell{measurement.TextCell(id)}
	for _, s := range spec {
		if s == nil {
			cells = append(cells, measurement.EmptyCell())
		} else {
			cells = append(cells, measurement.NumberCell(*s))
		}
	}
	for _, v := range values {
		if v == nil {
			cells = append(cells, measurement.EmptyCell())
		} else {
			cells = append(cells, measurement.NumberCell(*v))
		}
	}
	return cells
}

func numberCells(vs ...float64) []measurement.Cell {
	out := make([]measurement.Cell, len(vs))
	for i, v := range vs {
		out[i] = measurement.NumberCell(v)
	}
	return out
}
