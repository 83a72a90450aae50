package aggregation

import (
	"sort"

	"waferplot/domain/measurement"
)

type seriesKey struct {
	code    string
	channel measurement.Channel
}

// Series maps canonical index label text to the latest sample at that label
type Series map[string]measurement.Sample

// Value returns the value stored at label
func (s Series) Value(label measurement.IndexLabel) (float64, bool) {
	sample, ok := s[label.String()]
	return sample.Value, ok
}

// Labels returns the series labels in pair order
func (s Series) Labels() []measurement.IndexLabel {
	out := make([]measurement.IndexLabel, 0, len(s))
	for _, sample := range s {
		out = append(out, sample.Index)
	}
	sortLabels(out)
	return out
}

// Aggregator accumulates samples per (device code, channel). Repeated rows of the
// same key flatten into one series; a later value at an existing label replaces
// the earlier one.
type Aggregator struct {
	series    map[seriesKey]Series
	finalized bool
}

// NewAggregator creates an empty aggregator for one pass
func NewAggregator() *Aggregator {
	return &Aggregator{series: make(map[seriesKey]Series)}
}

// Ingest merges samples into the (code, channel) series. It panics when called
// after Finalize.
func (a *Aggregator) Ingest(code string, channel measurement.Channel, samples []measurement.Sample) {
	if a.finalized {
		panic("aggregation: Ingest called on a finalized Aggregator")
	}
	key := seriesKey{code: code, channel: channel}
	s, ok := a.series[key]
	if !ok {
		s = make(Series)
		a.series[key] = s
	}
	for _, sample := range samples {
		s[sample.Index.String()] = sample
	}
}

// Finalize closes the pass and hands ownership of the series to the returned set
func (a *Aggregator) Finalize() *ChannelSeriesSet {
	a.finalized = true
	set := &ChannelSeriesSet{series: a.series}
	a.series = nil
	return set
}

// ChannelSeriesSet is the immutable result of one aggregation pass
type ChannelSeriesSet struct {
	series map[seriesKey]Series
}

// Series returns the finalized series of (code, channel); nil when none was ingested
func (s *ChannelSeriesSet) Series(code string, channel measurement.Channel) Series {
	return s.series[seriesKey{code: code, channel: channel}]
}

// Codes returns every device code with at least one series, ascending
func (s *ChannelSeriesSet) Codes() []string {
	seen := make(map[string]struct{})
	for k := range s.series {
		seen[k.code] = struct{}{}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func sortLabels(labels []measurement.IndexLabel) {
	sort.SliceStable(labels, func(i, j int) bool {
		return measurement.CompareLabels(labels[i], labels[j]) < 0
	})
}
