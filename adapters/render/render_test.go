package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"waferplot/domain/measurement"
	"waferplot/internal/aggregation"
	"waferplot/ports"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func plotPoint(code string, idx, x, y float64) measurement.PlotPoint {
	return measurement.PlotPoint{Code: code, Index: measurement.NumericLabel(idx), X: x, Y: y}
}

func sampleScatter() ports.ScatterSpec {
	return ports.ScatterSpec{
		Style: ports.ChartStyle{Title: "RO_SDB_Vt_Targeting", XLabel: "N", YLabel: "P", Width: 800, Height: 500},
		Points: []measurement.PlotPoint{
			plotPoint("LVT", 1, 0.10, 0.40),
			plotPoint("LVT", 2, 0.12, 0.44),
			plotPoint("RVT", 1, 0.20, 0.50),
			plotPoint("RVT", 3, 0.22, 0.55),
		},
		Boxes: []measurement.SpecBox{{
			Code: "LVT", Origin: measurement.Point{X: 0.09, Y: 0.39}, Width: 0.05, Height: 0.07,
			Target: &measurement.Point{X: 0.11, Y: 0.42},
		}},
		RegionPadding: 0.1,
	}
}

func seriesNames(ch *chart.Chart) []string {
	var names []string
	for _, s := range ch.Series {
		names = append(names, s.GetName())
	}
	return names
}

func TestScatterChartSeries(t *testing.T) {
	ch, err := ScatterChart(sampleScatter())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "LVT", "RVT", "LVT spec", "LVT target", ""}, seriesNames(ch))
	one := ch.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, []float64{0.10, 0.20}, one.XValues)
	assert.NotEqual(t, one.Style.DotColor, ch.Series[2].(chart.ContinuousSeries).Style.DotColor)
}

func TestScatterColoursFollowLabelRank(t *testing.T) {
	spec := ports.ScatterSpec{
		Points: []measurement.PlotPoint{
			plotPoint("LVT", 3, 0.10, 0.40),
			plotPoint("RVT", 1, 0.20, 0.50),
		},
	}
	ch, err := ScatterChart(spec)
	require.NoError(t, err)

	first := ch.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, "1", first.Name)
	assert.Equal(t, pointStyle(chart.Viridis(0, 0, 1)).DotColor, first.Style.DotColor)
	assert.Equal(t, "3", ch.Series[1].GetName())
}

func TestScatterLegendListsLabelsOnly(t *testing.T) {
	_, legend, err := scatterChart(sampleScatter())
	require.NoError(t, err)

	var names []string
	for _, s := range legend {
		names = append(names, s.GetName())
	}
	assert.Equal(t, []string{"1", "2", "3"}, names)
}

func TestScatterChartEmpty(t *testing.T) {
	_, err := ScatterChart(ports.ScatterSpec{})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestCodeRegion(t *testing.T) {
	region, ok := CodeRegion([]measurement.PlotPoint{plotPoint("LVT", 1, 0, 0), plotPoint("LVT", 2, 10, 20)}, 0.1)
	require.True(t, ok)
	assert.InDelta(t, -1, region.X, 1e-9)
	assert.InDelta(t, -2, region.Y, 1e-9)
	assert.InDelta(t, 12, region.W, 1e-9)
	assert.InDelta(t, 24, region.H, 1e-9)

	_, ok = CodeRegion(nil, 0.1)
	assert.False(t, ok)
}

func TestRankNormalizationGuardsSingleLabel(t *testing.T) {
	assert.Equal(t, 0.0, normalizeRank(0, 1))
	assert.Equal(t, 1.0, normalizeRank(3, 4))
	assert.Len(t, rankColors(1), 1)
}

func TestAxisRangeDegenerate(t *testing.T) {
	r := axisRange([]float64{2, 2}, 0.05)
	assert.Less(t, r.Min, 2.0)
	assert.Greater(t, r.Max, 2.0)

	r = axisRange([]float64{0}, 0.05)
	assert.Equal(t, -1.0, r.Min)
	assert.Equal(t, 1.0, r.Max)
}

func TestRenderScatterPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer().RenderScatter(context.Background(), &buf, sampleScatter()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderBoxPlotPNG(t *testing.T) {
	spec := ports.BoxPlotSpec{
		Style: ports.ChartStyle{Title: "Vt lin", XLabel: "Wafer ID", Width: 600, Height: 400},
		Categories: []aggregation.Category{
			{Label: "1", Values: []float64{1, 2, 3, 4}},
			{Label: "2", Values: []float64{2, 3, 4, 9}},
		},
		YRange: &[2]float64{0, 10},
	}
	var buf bytes.Buffer
	require.NoError(t, NewRenderer().RenderBoxPlot(context.Background(), &buf, spec))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	err := NewRenderer().RenderBoxPlot(context.Background(), &buf, ports.BoxPlotSpec{Style: spec.Style})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestRenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRenderer().RenderScatter(ctx, &bytes.Buffer{}, sampleScatter())
	assert.ErrorIs(t, err, context.Canceled)
}
