package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"waferplot/domain/measurement"
	"waferplot/internal"
	"waferplot/internal/aggregation"
	"waferplot/internal/errors"
	"waferplot/internal/metrics"
	"waferplot/internal/output"
	"waferplot/internal/report"
	"waferplot/ports"
)

// ScatterOptions selects and styles the points of one scatter chart
type ScatterOptions struct {
	Codes           []string // device codes to plot; nil plots every code
	TrackedCapacity int
	MaxIndex        float64 // 0 disables the value cutoff
	RegionPadding   float64
	Style           ports.ChartStyle
}

// ScatterSelection is what survived filtering and is about to be drawn
type ScatterSelection struct {
	Points  []measurement.PlotPoint  `json:"points"`
	Tracked []measurement.IndexLabel `json:"tracked"`
	Codes   []string                 `json:"codes"`
	Skipped []string                 `json:"skipped,omitempty"` // requested codes with no complete point
}

// ScatterRequest is one file-to-file scatter run
type ScatterRequest struct {
	Input     string
	Sheet     string
	Layout    measurement.Layout
	Options   ScatterOptions
	OutputDir string
	Report    bool
}

// ScatterOutcome reports a finished scatter run
type ScatterOutcome struct {
	RunID     string
	Result    *aggregation.Result
	Selection ScatterSelection
	File      string
	Report    string
}

// BoxPlotRequest is one item box plot run over every matching sheet of a workbook
type BoxPlotRequest struct {
	Input        string
	SheetFilters []string
	ItemColumn   string
	MaxIndex     float64
	Style        ports.ChartStyle
	OutputDir    string
	Workers      int
	Report       bool
}

// CornerRequest is one corner sweep run
type CornerRequest struct {
	Input      string
	Sheet      string
	UnifyScale bool
	Style      ports.ChartStyle
	OutputDir  string
	Workers    int
	Report     bool
}

// ChartsOutcome reports a run that wrote several charts
type ChartsOutcome struct {
	RunID  string
	Files  []string
	Report string
}

// PlotService turns measurement workbooks into charts
type PlotService struct {
	reader   ports.SheetReader
	renderer ports.ChartRenderer
	engine   *aggregation.Engine
	log      *internal.Logger
}

// NewPlotService creates a plot service
func NewPlotService(reader ports.SheetReader, renderer ports.ChartRenderer) *PlotService {
	return &PlotService{
		reader:   reader,
		renderer: renderer,
		engine:   aggregation.NewEngine(),
		log:      internal.NewDefaultLogger("PlotService"),
	}
}

// AggregateTable parses a sheet with layout and runs the paired-channel aggregation
func (s *PlotService) AggregateTable(table measurement.Table, layout measurement.Layout) (*aggregation.Result, error) {
	records, err := measurement.ParseRecords(table, layout)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	result := s.engine.Aggregate(records)
	metrics.ObserveAggregation(result.Stats)
	return result, nil
}

// Aggregate reads one sheet from path and aggregates it
func (s *PlotService) Aggregate(ctx context.Context, path, sheet string, layout measurement.Layout) (*aggregation.Result, error) {
	table, err := s.reader.ReadSheet(ctx, path, sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return s.AggregateTable(table, layout)
}

// AggregateUpload reads one sheet from an uploaded file and aggregates it
func (s *PlotService) AggregateUpload(ctx context.Context, filename string, body io.Reader, sheet string, layout measurement.Layout) (*aggregation.Result, error) {
	table, err := s.reader.ReadUpload(ctx, filename, body, sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read upload %s", filename)
	}
	return s.AggregateTable(table, layout)
}

// Select applies code filtering, the value cutoff and the tracked-label bound, in
// that order, to the result's point stream.
func Select(result *aggregation.Result, opts ScatterOptions) ScatterSelection {
	points := result.PointStream(opts.Codes)
	if opts.MaxIndex > 0 {
		points = aggregation.FilterMaxIndex(points, opts.MaxIndex)
	}

	sel := aggregation.NewTrackedIndexSelector(opts.TrackedCapacity)
	kept := make([]measurement.PlotPoint, 0, len(points))
	present := make(map[string]bool)
	var codes []string
	for _, p := range points {
		if !sel.Admit(p) {
			continue
		}
		kept = append(kept, p)
		if !present[p.Code] {
			present[p.Code] = true
			codes = append(codes, p.Code)
		}
	}

	var skipped []string
	for _, c := range opts.Codes {
		if !present[c] {
			skipped = append(skipped, c)
		}
	}
	return ScatterSelection{Points: kept, Tracked: sel.Tracked(), Codes: codes, Skipped: skipped}
}

// ScatterSpec builds the chart description of a selection. Spec boxes are drawn for
// plotted codes only.
func ScatterSpec(result *aggregation.Result, sel ScatterSelection, opts ScatterOptions) ports.ScatterSpec {
	var boxes []measurement.SpecBox
	for _, c := range sel.Codes {
		if box, ok := result.Boxes[c]; ok {
			boxes = append(boxes, box)
		}
	}
	return ports.ScatterSpec{
		Style:         opts.Style,
		Points:        sel.Points,
		Boxes:         boxes,
		RegionPadding: opts.RegionPadding,
	}
}

// RenderScatter selects points from result and draws them to w
func (s *PlotService) RenderScatter(ctx context.Context, w io.Writer, result *aggregation.Result, opts ScatterOptions) (ScatterSelection, error) {
	sel := Select(result, opts)
	if len(sel.Points) == 0 {
		return sel, errors.NotFound(fmt.Sprintf("complete points for codes %v", opts.Codes))
	}
	start := time.Now()
	err := s.renderer.RenderScatter(ctx, w, ScatterSpec(result, sel, opts))
	metrics.ObserveRender(metrics.KindScatter, start, err)
	return sel, err
}

// ScatterFileName names the scatter chart after its plotted codes
func ScatterFileName(codes []string) string {
	return output.FileName(strings.Join(codes, "_"), "_scatterplot.png")
}

// Scatter reads, aggregates and renders one scatter chart into the output directory
func (s *PlotService) Scatter(ctx context.Context, req ScatterRequest) (*ScatterOutcome, error) {
	start := time.Now()
	run := report.NewRun("scatter", req.Input)
	run.Sheet = req.Sheet

	result, err := s.Aggregate(ctx, req.Input, req.Sheet, req.Layout)
	if err != nil {
		return nil, err
	}

	sel := Select(result, req.Options)
	if len(sel.Points) == 0 {
		return nil, errors.NotFound(fmt.Sprintf("complete points for codes %v", req.Options.Codes))
	}
	for _, c := range sel.Skipped {
		s.log.Warn("device code %s has no complete points, skipped", c)
		run.Notef("device code %s has no complete points", c)
	}

	path := filepath.Join(req.OutputDir, ScatterFileName(sel.Codes))
	err = output.WriteFile(path, func(w io.Writer) error {
		renderStart := time.Now()
		err := s.renderer.RenderScatter(ctx, w, ScatterSpec(result, sel, req.Options))
		metrics.ObserveRender(metrics.KindScatter, renderStart, err)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to write scatter chart")
	}

	run.AddResult(result, sel.Codes)
	run.Tracked = sel.Tracked
	run.AddFile(path)
	outcome := &ScatterOutcome{RunID: run.ID, Result: result, Selection: sel, File: path}
	if req.Report {
		if outcome.Report, err = run.Write(req.OutputDir); err != nil {
			return nil, errors.WithCode(errors.CodeInternalError, err)
		}
	}

	s.log.Timed(fmt.Sprintf("scatter %s: %d points, %d labels", filepath.Base(path), len(sel.Points), len(sel.Tracked)), start)
	return outcome, nil
}

// BoxPlots draws one box plot per test item found in the matching sheets
func (s *PlotService) BoxPlots(ctx context.Context, req BoxPlotRequest) (*ChartsOutcome, error) {
	start := time.Now()
	run := report.NewRun("boxplot", req.Input)

	tables, err := s.reader.ReadMatchingSheets(ctx, req.Input, req.SheetFilters)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", req.Input)
	}
	if len(tables) == 0 {
		return nil, errors.NotFound(fmt.Sprintf("sheets matching %v", req.SheetFilters))
	}

	items := aggregation.NewItemAggregator(req.ItemColumn)
	for _, t := range tables {
		if err := items.Ingest(t); err != nil {
			s.log.Warn("%v", err)
			run.Notef("sheet %s skipped: %v", t.Name, err)
		}
	}

	jobs := make([]chartJob, 0, len(items.Items()))
	for _, item := range items.Items() {
		samples := items.Samples(item)
		if req.MaxIndex > 0 {
			samples = aggregation.FilterItemMaxIndex(samples, req.MaxIndex)
		}
		categories := aggregation.GroupItemSamples(samples)
		if len(categories) == 0 {
			run.Notef("item %s has no samples", item)
			continue
		}
		style := req.Style
		style.Title = item
		jobs = append(jobs, chartJob{
			path: filepath.Join(req.OutputDir, output.FileName(item, "_boxplot.png")),
			spec: ports.BoxPlotSpec{Style: style, Categories: categories},
			kind: metrics.KindBoxPlot,
		})
	}

	files, err := s.renderBoxPlots(ctx, jobs, req.Workers)
	if err != nil {
		return nil, err
	}
	outcome, err := s.finish(run, files, req.OutputDir, req.Report)
	if err != nil {
		return nil, err
	}
	s.log.Timed(fmt.Sprintf("boxplot: %d items from %d sheets", len(files), len(tables)), start)
	return outcome, nil
}

// Corners draws one box plot panel per supply voltage of a corner sweep table
func (s *PlotService) Corners(ctx context.Context, req CornerRequest) (*ChartsOutcome, error) {
	start := time.Now()
	run := report.NewRun("corners", req.Input)
	run.Sheet = req.Sheet

	table, err := s.reader.ReadSheet(ctx, req.Input, req.Sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", req.Input)
	}
	samples, err := aggregation.CornerSamples(table)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	panels := aggregation.GroupCorners(samples)
	if len(panels) == 0 {
		return nil, errors.NotFound("corner samples")
	}

	var yRange *[2]float64
	if req.UnifyScale {
		if lo, hi, ok := aggregation.CornerExtent(panels); ok && hi > lo {
			pad := (hi - lo) * 0.05
			yRange = &[2]float64{lo - pad, hi + pad}
			run.Notef("panels share the value range %.4g..%.4g", lo, hi)
		}
	}

	jobs := make([]chartJob, 0, len(panels))
	for _, p := range panels {
		style := req.Style
		style.Title = "Voltage: " + p.Voltage.String()
		style.XLabel = aggregation.CornerColumn
		jobs = append(jobs, chartJob{
			path: filepath.Join(req.OutputDir, output.FileName("voltage_"+p.Voltage.String(), "_boxplot.png")),
			spec: ports.BoxPlotSpec{Style: style, Categories: p.Corners, YRange: yRange},
			kind: metrics.KindCorner,
		})
	}

	files, err := s.renderBoxPlots(ctx, jobs, req.Workers)
	if err != nil {
		return nil, err
	}
	outcome, err := s.finish(run, files, req.OutputDir, req.Report)
	if err != nil {
		return nil, err
	}
	s.log.Timed(fmt.Sprintf("corners: %d voltage panels", len(files)), start)
	return outcome, nil
}

type chartJob struct {
	path string
	spec ports.BoxPlotSpec
	kind string
}

// renderBoxPlots writes every job with at most workers renders in flight. The first
// failure cancels the rest.
func (s *PlotService) renderBoxPlots(ctx context.Context, jobs []chartJob, workers int) ([]string, error) {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	files := make([]string, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			err := output.WriteFile(job.path, func(w io.Writer) error {
				renderStart := time.Now()
				err := s.renderer.RenderBoxPlot(gctx, w, job.spec)
				metrics.ObserveRender(job.kind, renderStart, err)
				return err
			})
			if err != nil {
				return errors.Wrapf(err, "failed to write %s", filepath.Base(job.path))
			}
			files[i] = job.path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *PlotService) finish(run *report.Run, files []string, dir string, writeReport bool) (*ChartsOutcome, error) {
	sort.Strings(files)
	for _, f := range files {
		run.AddFile(f)
	}
	outcome := &ChartsOutcome{RunID: run.ID, Files: files}
	if writeReport {
		path, err := run.Write(dir)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInternalError, err)
		}
		outcome.Report = path
	}
	return outcome, nil
}
