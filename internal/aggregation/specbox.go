package aggregation

import (
	"sort"

	"waferplot/domain/measurement"
)

// SpecBoxBuilder keeps the first spec-bearing record per (device code, channel)
// and derives the spec rectangle from the N and P limits. Later records never
// replace the first one.
type SpecBoxBuilder struct {
	first map[seriesKey]measurement.SpecLimits
}

// NewSpecBoxBuilder creates an empty builder
func NewSpecBoxBuilder() *SpecBoxBuilder {
	return &SpecBoxBuilder{first: make(map[seriesKey]measurement.SpecLimits)}
}

// Observe offers the spec fields of a decoded record
func (b *SpecBoxBuilder) Observe(key measurement.DecodedKey, spec measurement.SpecLimits) {
	if !spec.HasAny() {
		return
	}
	k := seriesKey{code: key.DeviceCode, channel: key.Channel}
	if _, seen := b.first[k]; seen {
		return
	}
	b.first[k] = spec
}

// Build returns the spec box of code. A box needs low and high limits on both
// channels; the target point is attached only when both targets are present.
func (b *SpecBoxBuilder) Build(code string) (measurement.SpecBox, bool) {
	n, okN := b.first[seriesKey{code: code, channel: measurement.ChannelN}]
	p, okP := b.first[seriesKey{code: code, channel: measurement.ChannelP}]
	if !okN || !okP {
		return measurement.SpecBox{}, false
	}
	if n.Low == nil || n.High == nil || p.Low == nil || p.High == nil {
		return measurement.SpecBox{}, false
	}

	box := measurement.SpecBox{
		Code:   code,
		Origin: measurement.Point{X: *n.Low, Y: *p.Low},
		Width:  *n.High - *n.Low,
		Height: *p.High - *p.Low,
	}
	if n.Target != nil && p.Target != nil {
		box.Target = &measurement.Point{X: *n.Target, Y: *p.Target}
	}
	return box, true
}

// BuildAll returns a box for every device code that qualifies
func (b *SpecBoxBuilder) BuildAll() map[string]measurement.SpecBox {
	codes := make(map[string]struct{})
	for k := range b.first {
		codes[k.code] = struct{}{}
	}
	names := make([]string, 0, len(codes))
	for c := range codes {
		names = append(names, c)
	}
	sort.Strings(names)

	boxes := make(map[string]measurement.SpecBox)
	for _, c := range names {
		if box, ok := b.Build(c); ok {
			boxes[c] = box
		}
	}
	return boxes
}

// BuildSpecBox scans records for code and builds its spec box
func BuildSpecBox(code string, records []measurement.RawRecord) (measurement.SpecBox, bool) {
	b := NewSpecBoxBuilder()
	for _, rec := range records {
		key, ok := DecodeKey(rec.Identifier)
		if !ok || key.DeviceCode != code {
			continue
		}
		b.Observe(key, SpecFields(rec))
	}
	return b.Build(code)
}
