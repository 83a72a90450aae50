package aggregation

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// BoxSummary is the five-number summary of one category with Tukey whiskers
type BoxSummary struct {
	Label        string    `json:"label"`
	N            int       `json:"n"`
	Mean         float64   `json:"mean"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

// Summarize computes quartiles and 1.5 IQR whiskers. ok is false for an empty category.
func Summarize(cat Category) (BoxSummary, bool) {
	if len(cat.Values) == 0 {
		return BoxSummary{}, false
	}
	data := stats.Float64Data(cat.Values)
	sorted := append([]float64(nil), cat.Values...)
	sort.Float64s(sorted)

	s := BoxSummary{Label: cat.Label, N: len(sorted), Mean: stat.Mean(sorted, nil)}
	if len(sorted) == 1 {
		v := sorted[0]
		s.Q1, s.Median, s.Q3, s.LowerWhisker, s.UpperWhisker = v, v, v, v, v
		return s, true
	}

	q, err := stats.Quartile(data)
	if err != nil {
		return BoxSummary{}, false
	}
	s.Q1, s.Median, s.Q3 = q.Q1, q.Q2, q.Q3

	iqr := s.Q3 - s.Q1
	lowFence, highFence := s.Q1-1.5*iqr, s.Q3+1.5*iqr
	s.LowerWhisker, s.UpperWhisker = s.Q1, s.Q3
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			s.Outliers = append(s.Outliers, v)
			continue
		}
		if v < s.LowerWhisker {
			s.LowerWhisker = v
		}
		if v > s.UpperWhisker {
			s.UpperWhisker = v
		}
	}
	return s, true
}

// Extent returns the lowest and highest drawn value of the summaries
func Extent(summaries []BoxSummary) (float64, float64, bool) {
	var values []float64
	for _, s := range summaries {
		values = append(values, s.LowerWhisker, s.UpperWhisker)
		values = append(values, s.Outliers...)
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	return lo, hi, true
}

// CornerExtent is the shared value range of every corner panel, so panels can be
// drawn on one scale. It spans whiskers and outliers, not just the medians.
func CornerExtent(panels []VoltagePanel) (float64, float64, bool) {
	var summaries []BoxSummary
	for _, p := range panels {
		for _, c := range p.Corners {
			if s, ok := Summarize(c); ok {
				summaries = append(summaries, s)
			}
		}
	}
	return Extent(summaries)
}
