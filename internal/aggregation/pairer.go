package aggregation

import (
	"sort"

	"waferplot/domain/measurement"
)

// Pair merges the N and P series of code into one paired point per label seen in
// either channel, sorted by label. ok is false when neither channel has a label.
func Pair(set *ChannelSeriesSet, code string) (measurement.DeviceGroup, bool) {
	if set == nil {
		panic("aggregation: Pair requires a finalized ChannelSeriesSet")
	}

	nSeries := set.Series(code, measurement.ChannelN)
	pSeries := set.Series(code, measurement.ChannelP)

	union := make(map[string]measurement.IndexLabel, len(nSeries)+len(pSeries))
	for k, s := range nSeries {
		union[k] = s.Index
	}
	for k, s := range pSeries {
		union[k] = s.Index
	}
	if len(union) == 0 {
		return measurement.DeviceGroup{}, false
	}

	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	labels := make([]measurement.IndexLabel, len(keys))
	for i, k := range keys {
		labels[i] = union[k]
	}
	sortLabels(labels)

	points := make([]measurement.PairedPoint, len(labels))
	for i, l := range labels {
		points[i] = measurement.PairedPoint{Index: l}
		if v, ok := nSeries.Value(l); ok {
			points[i].N = &v
		}
		if v, ok := pSeries.Value(l); ok {
			points[i].P = &v
		}
	}
	return measurement.DeviceGroup{Code: code, Points: points}, true
}

// PairAll pairs every device code of the set
func PairAll(set *ChannelSeriesSet) map[string]measurement.DeviceGroup {
	groups := make(map[string]measurement.DeviceGroup)
	for _, code := range set.Codes() {
		if g, ok := Pair(set, code); ok {
			groups[code] = g
		}
	}
	return groups
}
