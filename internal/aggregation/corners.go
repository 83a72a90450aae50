package aggregation

import (
	"fmt"
	"sort"
	"strings"

	"waferplot/domain/measurement"
)

// Column names of a corner sweep table
const (
	VoltageColumn = "Voltage"
	CornerColumn  = "Corner"
	ValueColumn   = "Value"
)

// VoltagePanel holds the per-corner value groups measured at one supply voltage
type VoltagePanel struct {
	Voltage measurement.IndexLabel
	Corners []Category
}

// CornerSamples reads (voltage, corner, value) triples from a corner sweep table.
// Rows missing any of the three are skipped.
func CornerSamples(t measurement.Table) ([]measurement.CornerSample, error) {
	cols := make(map[string]int, 3)
	for _, name := range []string{VoltageColumn, CornerColumn, ValueColumn} {
		i, ok := t.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q in sheet %q", ErrColumnMissing, name, t.Name)
		}
		cols[name] = i
	}

	var out []measurement.CornerSample
	for r := 1; r < len(t.Rows); r++ {
		voltage, ok := measurement.LabelFromCell(t.Cell(r, cols[VoltageColumn]))
		if !ok {
			continue
		}
		corner := strings.TrimSpace(t.Cell(r, cols[CornerColumn]).String())
		value, ok := t.Cell(r, cols[ValueColumn]).Float()
		if corner == "" || !ok {
			continue
		}
		out = append(out, measurement.CornerSample{Voltage: voltage, Corner: corner, Value: value})
	}
	return out, nil
}

// GroupCorners builds one panel per voltage (ascending) with corners sorted by name
func GroupCorners(samples []measurement.CornerSample) []VoltagePanel {
	panels := make(map[string]*VoltagePanel)
	corners := make(map[string]map[string]*Category)
	var voltages []measurement.IndexLabel

	for _, s := range samples {
		vk := s.Voltage.String()
		if _, ok := panels[vk]; !ok {
			panels[vk] = &VoltagePanel{Voltage: s.Voltage}
			corners[vk] = make(map[string]*Category)
			voltages = append(voltages, s.Voltage)
		}
		c, ok := corners[vk][s.Corner]
		if !ok {
			c = &Category{Label: s.Corner}
			corners[vk][s.Corner] = c
		}
		c.Values = append(c.Values, s.Value)
	}
	sortLabels(voltages)

	out := make([]VoltagePanel, 0, len(voltages))
	for _, v := range voltages {
		vk := v.String()
		names := make([]string, 0, len(corners[vk]))
		for name := range corners[vk] {
			names = append(names, name)
		}
		sort.Strings(names)

		panel := *panels[vk]
		for _, name := range names {
			panel.Corners = append(panel.Corners, *corners[vk][name])
		}
		out = append(out, panel)
	}
	return out
}
