package ports

import (
	"context"
	"io"

	"waferplot/domain/measurement"
	"waferplot/internal/aggregation"
)

// ChartStyle carries the presentation settings shared by every chart
type ChartStyle struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
}

// ScatterSpec describes one paired N/P scatter chart
type ScatterSpec struct {
	Style ChartStyle
	// Points must already be filtered and ordered; colours follow label encounter order
	Points []measurement.PlotPoint
	Boxes  []measurement.SpecBox
	// RegionPadding pads each device code's bounding rectangle by this fraction of its span
	RegionPadding float64
}

// BoxPlotSpec describes one box plot of categorised values
type BoxPlotSpec struct {
	Style      ChartStyle
	Categories []aggregation.Category
	// YRange pins the value axis when set, so several panels share one scale
	YRange *[2]float64
}

// ChartRenderer draws charts as PNG
type ChartRenderer interface {
	RenderScatter(ctx context.Context, w io.Writer, spec ScatterSpec) error
	RenderBoxPlot(ctx context.Context, w io.Writer, spec BoxPlotSpec) error
}
