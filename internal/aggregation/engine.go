package aggregation

import (
	"log"
	"sort"
	"time"

	"waferplot/domain/measurement"
)

// Stats counts what happened to the input of one aggregation pass
type Stats struct {
	Records       int `json:"records"`
	Decoded       int `json:"decoded"`
	DroppedKeys   int `json:"dropped_keys"`
	Samples       int `json:"samples"`
	MissingValues int `json:"missing_values"`
}

// Result is the independently owned output of one pass
type Result struct {
	Groups map[string]measurement.DeviceGroup `json:"groups"`
	Boxes  map[string]measurement.SpecBox     `json:"boxes"`
	Stats  Stats                              `json:"stats"`
}

// Engine runs the paired-channel aggregation over already-parsed records.
// It holds no state between calls.
type Engine struct{}

// NewEngine creates a new aggregation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Aggregate decodes, normalizes, accumulates and pairs records, and derives spec
// boxes from the same records. Malformed records are counted and skipped.
func (e *Engine) Aggregate(records []measurement.RawRecord) *Result {
	start := time.Now()
	agg := NewAggregator()
	boxes := NewSpecBoxBuilder()
	stats := Stats{Records: len(records)}

	for _, rec := range records {
		norm, ok := Normalize(rec)
		if !ok {
			stats.DroppedKeys++
			continue
		}
		stats.Decoded++
		stats.Samples += len(norm.Samples)
		stats.MissingValues += missingCount(rec)

		agg.Ingest(norm.Key.DeviceCode, norm.Key.Channel, norm.Samples)
		boxes.Observe(norm.Key, norm.Spec)
	}

	result := &Result{
		Groups: PairAll(agg.Finalize()),
		Boxes:  boxes.BuildAll(),
		Stats:  stats,
	}

	log.Printf("[Aggregation] %d records -> %d device groups, %d spec boxes (%d dropped) in %.2fms",
		stats.Records, len(result.Groups), len(result.Boxes), stats.DroppedKeys,
		float64(time.Since(start).Nanoseconds())/1e6)
	return result
}

// Codes returns the device codes of the result, ascending
func (r *Result) Codes() []string {
	codes := make([]string, 0, len(r.Groups))
	for c := range r.Groups {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// PointStream returns the complete points of the requested codes in the declared
// order: device code ascending, then label order within each group. A nil codes
// slice selects every group; unknown codes are skipped.
func (r *Result) PointStream(codes []string) []measurement.PlotPoint {
	if codes == nil {
		codes = r.Codes()
	} else {
		codes = append([]string(nil), codes...)
		sort.Strings(codes)
	}

	var out []measurement.PlotPoint
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		g, ok := r.Groups[c]
		if !ok {
			continue
		}
		for _, p := range g.CompletePoints() {
			out = append(out, measurement.PlotPoint{Code: c, Index: p.Index, X: *p.N, Y: *p.P})
		}
	}
	return out
}

// Incomplete counts the points of code missing one coordinate
func (r *Result) Incomplete(code string) int {
	g := r.Groups[code]
	return len(g.Points) - len(g.CompletePoints())
}
