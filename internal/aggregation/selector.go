package aggregation

import (
	"waferplot/domain/measurement"
)

// DefaultTrackedCapacity bounds the number of distinct index labels in one rendering
const DefaultTrackedCapacity = 8

// TrackedIndexSelector admits points while at most capacity distinct index labels
// have been seen. Once full, only points whose label is already tracked pass.
// The outcome depends on stream order; callers feed it Result.PointStream.
type TrackedIndexSelector struct {
	capacity int
	tracked  map[string]struct{}
	order    []measurement.IndexLabel
}

// NewTrackedIndexSelector creates a selector for one rendering pass.
// A non-positive capacity selects DefaultTrackedCapacity.
func NewTrackedIndexSelector(capacity int) *TrackedIndexSelector {
	if capacity <= 0 {
		capacity = DefaultTrackedCapacity
	}
	return &TrackedIndexSelector{
		capacity: capacity,
		tracked:  make(map[string]struct{}, capacity),
	}
}

// Admit reports whether p belongs in the output, tracking its label if there is room
func (s *TrackedIndexSelector) Admit(p measurement.PlotPoint) bool {
	key := p.Index.String()
	if _, ok := s.tracked[key]; ok {
		return true
	}
	if len(s.tracked) >= s.capacity {
		return false
	}
	s.tracked[key] = struct{}{}
	s.order = append(s.order, p.Index)
	return true
}

// Tracked returns the tracked labels in encounter order
func (s *TrackedIndexSelector) Tracked() []measurement.IndexLabel {
	out := make([]measurement.IndexLabel, len(s.order))
	copy(out, s.order)
	return out
}

// SelectTracked filters a point stream through a fresh selector
func SelectTracked(points []measurement.PlotPoint, capacity int) []measurement.PlotPoint {
	sel := NewTrackedIndexSelector(capacity)
	out := make([]measurement.PlotPoint, 0, len(points))
	for _, p := range points {
		if sel.Admit(p) {
			out = append(out, p)
		}
	}
	return out
}

// FilterMaxIndex keeps points whose numeric label is at most max. Non-numeric
// labels are dropped.
func FilterMaxIndex(points []measurement.PlotPoint, max float64) []measurement.PlotPoint {
	out := make([]measurement.PlotPoint, 0, len(points))
	for _, p := range points {
		if v, ok := p.Index.Float(); ok && v <= max {
			out = append(out, p)
		}
	}
	return out
}
