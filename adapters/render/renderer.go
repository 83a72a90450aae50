package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"waferplot/internal/errors"
	"waferplot/ports"
)

// ErrNothingToPlot is returned when a chart would have no data
var ErrNothingToPlot = stderrors.New("nothing to plot")

// Renderer draws charts to PNG with go-chart
type Renderer struct{}

// NewRenderer creates a PNG chart renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// RenderScatter draws the paired scatter chart
func (r *Renderer) RenderScatter(ctx context.Context, w io.Writer, spec ports.ScatterSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := ScatterChart(spec)
	if err != nil {
		return err
	}
	return encode(ch, w, spec.Style.Title)
}

// RenderBoxPlot draws a box plot
func (r *Renderer) RenderBoxPlot(ctx context.Context, w io.Writer, spec ports.BoxPlotSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, _, err := BoxPlotChart(spec)
	if err != nil {
		return err
	}
	return encode(ch, w, spec.Style.Title)
}

func encode(ch *chart.Chart, w io.Writer, title string) error {
	start := time.Now()
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return errors.RenderError(err, "chart render failed")
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.RenderError(err, "chart write failed")
	}
	log.Printf("[Renderer] %q rendered in %.2fms", title, float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}
