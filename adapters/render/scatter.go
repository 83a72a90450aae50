package render

import (
	"fmt"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"

	"waferplot/domain/measurement"
	"waferplot/ports"
)

// Rect is an axis-aligned rectangle in (N, P) space
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) corners() ([]float64, []float64) {
	return []float64{r.X, r.X + r.W, r.X + r.W, r.X, r.X},
		[]float64{r.Y, r.Y, r.Y + r.H, r.Y + r.H, r.Y}
}

// CodeRegion returns the bounding rectangle of points padded by a fraction of
// each span, the way code groups are outlined on the chart.
func CodeRegion(points []measurement.PlotPoint, padding float64) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)
	w, h := maxX-minX, maxY-minY
	return Rect{
		X: minX - padding*w,
		Y: minY - padding*h,
		W: w + 2*padding*w,
		H: h + 2*padding*h,
	}, true
}

// ScatterChart builds the N/P scatter: one dot series per index label coloured
// by its rank among the plotted labels, an outlined region per device code, and
// dashed spec boxes with their target points. The legend lists index labels only.
func ScatterChart(spec ports.ScatterSpec) (*chart.Chart, error) {
	ch, legend, err := scatterChart(spec)
	if err != nil {
		return nil, err
	}
	ch.Elements = []chart.Renderable{chart.Legend(&chart.Chart{Series: legend})}
	return ch, nil
}

func scatterChart(spec ports.ScatterSpec) (*chart.Chart, []chart.Series, error) {
	if len(spec.Points) == 0 && len(spec.Boxes) == 0 {
		return nil, nil, ErrNothingToPlot
	}

	type labelSeries struct {
		label  measurement.IndexLabel
		xs, ys []float64
	}
	var labels []*labelSeries
	byLabel := make(map[string]*labelSeries)
	byCode := make(map[string][]measurement.PlotPoint)
	var codes []string
	var allX, allY []float64

	for _, p := range spec.Points {
		ls, ok := byLabel[p.Index.String()]
		if !ok {
			ls = &labelSeries{label: p.Index}
			byLabel[p.Index.String()] = ls
			labels = append(labels, ls)
		}
		ls.xs = append(ls.xs, p.X)
		ls.ys = append(ls.ys, p.Y)

		if _, ok := byCode[p.Code]; !ok {
			codes = append(codes, p.Code)
		}
		byCode[p.Code] = append(byCode[p.Code], p)
		allX = append(allX, p.X)
		allY = append(allY, p.Y)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return measurement.CompareLabels(labels[i].label, labels[j].label) < 0
	})

	var series []chart.Series
	colors := rankColors(len(labels))
	for i, ls := range labels {
		series = append(series, chart.ContinuousSeries{
			Name:    ls.label.String(),
			XValues: ls.xs,
			YValues: ls.ys,
			Style:   pointStyle(colors[i]),
		})
	}

	legend := append([]chart.Series(nil), series...)

	var annotations []chart.Value2
	for _, code := range codes {
		region, _ := CodeRegion(byCode[code], spec.RegionPadding)
		xs, ys := region.corners()
		series = append(series, chart.ContinuousSeries{
			Name:    code,
			XValues: xs,
			YValues: ys,
			Style:   outlineStyle(regionColor, false),
		})
		allX = append(allX, region.X, region.X+region.W)
		allY = append(allY, region.Y, region.Y+region.H)
		annotations = append(annotations, chart.Value2{
			XValue: region.X + region.W/2,
			YValue: region.Y + region.H,
			Label:  code,
		})
	}

	for _, box := range spec.Boxes {
		xs, ys := Rect{X: box.Origin.X, Y: box.Origin.Y, W: box.Width, H: box.Height}.corners()
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s spec", box.Code),
			XValues: xs,
			YValues: ys,
			Style:   outlineStyle(specColor, true),
		})
		allX = append(allX, xs...)
		allY = append(allY, ys...)
		if box.Target != nil {
			series = append(series, chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s target", box.Code),
				XValues: []float64{box.Target.X},
				YValues: []float64{box.Target.Y},
				Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 7, DotColor: targetColor},
			})
			allX = append(allX, box.Target.X)
			allY = append(allY, box.Target.Y)
		}
	}

	if len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{Annotations: annotations})
	}

	ch := &chart.Chart{
		Title:      spec.Style.Title,
		Width:      spec.Style.Width,
		Height:     spec.Style.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.Style.XLabel, Range: axisRange(allX, 0.05)},
		YAxis:      chart.YAxis{Name: spec.Style.YLabel, Range: axisRange(allY, 0.05)},
		Series:     series,
	}
	return ch, legend, nil
}
