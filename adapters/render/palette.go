package render

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	regionColor = drawing.ColorFromHex("d62728")
	specColor   = drawing.ColorFromHex("1f77b4")
	targetColor = drawing.ColorFromHex("000000")
)

// rankColors maps n ranks onto the viridis scale. A single rank maps to the
// start of the scale instead of dividing by a zero span.
func rankColors(n int) []drawing.Color {
	out := make([]drawing.Color, n)
	for i := range out {
		out[i] = chart.Viridis(normalizeRank(i, n), 0, 1)
	}
	return out
}

func normalizeRank(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col.WithAlpha(128),
	}
}

func outlineStyle(col drawing.Color, dashed bool) chart.Style {
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: 1.5,
	}
	if dashed {
		st.StrokeDashArray = []float64{5, 3}
	}
	return st
}
