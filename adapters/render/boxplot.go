package render

import (
	chart "github.com/wcharczuk/go-chart/v2"

	"waferplot/internal/aggregation"
	"waferplot/ports"
)

const boxHalfWidth = 0.3

// boxPath traces whiskers, box and median of one summary as a single polyline
// centred on x.
func boxPath(x float64, s aggregation.BoxSummary) ([]float64, []float64) {
	l, r := x-boxHalfWidth, x+boxHalfWidth
	xs := []float64{x, x, l, l, x, x, x, r, r, l, r, r, x}
	ys := []float64{
		s.LowerWhisker, s.Q1, s.Q1, s.Q3, s.Q3, s.UpperWhisker, s.Q3,
		s.Q3, s.Median, s.Median, s.Median, s.Q1, s.Q1,
	}
	return xs, ys
}

// BoxPlotChart draws one box per category at x = 1..n with outliers as dots
func BoxPlotChart(spec ports.BoxPlotSpec) (*chart.Chart, []aggregation.BoxSummary, error) {
	var summaries []aggregation.BoxSummary
	for _, cat := range spec.Categories {
		if s, ok := aggregation.Summarize(cat); ok {
			summaries = append(summaries, s)
		}
	}
	if len(summaries) == 0 {
		return nil, nil, ErrNothingToPlot
	}

	colors := rankColors(len(summaries))
	var series []chart.Series
	ticks := make([]chart.Tick, 0, len(summaries))
	for i, s := range summaries {
		x := float64(i + 1)
		xs, ys := boxPath(x, s)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style:   outlineStyle(colors[i], false),
		})
		if len(s.Outliers) > 0 {
			ox := make([]float64, len(s.Outliers))
			for j := range ox {
				ox[j] = x
			}
			series = append(series, chart.ContinuousSeries{
				Name:    s.Label + " outliers",
				XValues: ox,
				YValues: s.Outliers,
				Style:   pointStyle(colors[i]),
			})
		}
		ticks = append(ticks, chart.Tick{Value: x, Label: s.Label})
	}

	var yRange *chart.ContinuousRange
	if spec.YRange != nil && spec.YRange[1] > spec.YRange[0] {
		yRange = &chart.ContinuousRange{Min: spec.YRange[0], Max: spec.YRange[1]}
	} else {
		lo, hi, _ := aggregation.Extent(summaries)
		yRange = axisRange([]float64{lo, hi}, 0.05)
	}

	ch := &chart.Chart{
		Title:      spec.Style.Title,
		Width:      spec.Style.Width,
		Height:     spec.Style.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  spec.Style.XLabel,
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(summaries)) + 0.5},
			Ticks: ticks,
		},
		YAxis:  chart.YAxis{Name: spec.Style.YLabel, Range: yRange},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, summaries, nil
}
