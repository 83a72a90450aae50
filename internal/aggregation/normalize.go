package aggregation

import (
	"math"

	"waferplot/domain/measurement"
)

// NormalizedRecord is a decoded record reduced to its sparse samples and spec fields
type NormalizedRecord struct {
	Row     int
	Key     measurement.DecodedKey
	Samples []measurement.Sample
	Spec    measurement.SpecLimits
}

// Normalize decodes the record key and extracts samples and spec fields.
// ok is false when the identifier does not decode.
func Normalize(rec measurement.RawRecord) (NormalizedRecord, bool) {
	key, ok := DecodeKey(rec.Identifier)
	if !ok {
		return NormalizedRecord{}, false
	}
	return NormalizedRecord{
		Row:     rec.Row,
		Key:     key,
		Samples: Samples(rec),
		Spec:    SpecFields(rec),
	}, true
}

// Samples pairs each present value with its index label. Missing values and
// positions without a label are omitted, never stored as null.
func Samples(rec measurement.RawRecord) []measurement.Sample {
	out := make([]measurement.Sample, 0, len(rec.Values))
	for i, v := range rec.Values {
		if i >= len(rec.IndexLabels) {
			break
		}
		label := rec.IndexLabels[i]
		if label.IsZero() || missing(v) {
			continue
		}
		out = append(out, measurement.Sample{Index: label, Value: *v})
	}
	return out
}

// SpecFields returns the low/target/high fields; each is independently optional
func SpecFields(rec measurement.RawRecord) measurement.SpecLimits {
	return measurement.SpecLimits{
		Low:    present(rec.SpecLow),
		Target: present(rec.Target),
		High:   present(rec.SpecHigh),
	}
}

// missingCount reports how many labelled positions of the record had no value
func missingCount(rec measurement.RawRecord) int {
	n := 0
	for i, v := range rec.Values {
		if i < len(rec.IndexLabels) && !rec.IndexLabels[i].IsZero() && missing(v) {
			n++
		}
	}
	return n
}

func missing(v *float64) bool {
	return v == nil || math.IsNaN(*v)
}

func present(v *float64) *float64 {
	if missing(v) {
		return nil
	}
	c := *v
	return &c
}
