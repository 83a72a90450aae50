package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"waferplot/domain/measurement"
	"waferplot/internal/errors"
	"waferplot/internal/report"
	"waferplot/internal/testkit"
	"waferplot/ports"
)

// Mock implementations for testing
type MockSheetReader struct {
	mock.Mock
}

func (m *MockSheetReader) ReadSheet(ctx context.Context, path, sheet string) (measurement.Table, error) {
	args := m.Called(ctx, path, sheet)
	return args.Get(0).(measurement.Table), args.Error(1)
}

func (m *MockSheetReader) ReadMatchingSheets(ctx context.Context, path string, contains []string) ([]measurement.Table, error) {
	args := m.Called(ctx, path, contains)
	return args.Get(0).([]measurement.Table), args.Error(1)
}

func (m *MockSheetReader) ReadUpload(ctx context.Context, filename string, body io.Reader, sheet string) (measurement.Table, error) {
	args := m.Called(ctx, filename, body, sheet)
	return args.Get(0).(measurement.Table), args.Error(1)
}

type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) RenderScatter(ctx context.Context, w io.Writer, spec ports.ScatterSpec) error {
	args := m.Called(ctx, w, spec)
	return args.Error(0)
}

func (m *MockChartRenderer) RenderBoxPlot(ctx context.Context, w io.Writer, spec ports.BoxPlotSpec) error {
	args := m.Called(ctx, w, spec)
	return args.Error(0)
}

func writePNG(args mock.Arguments) {
	_, _ = args.Get(1).(io.Writer).Write([]byte("png"))
}

func waferConfig() testkit.WaferGeneratorConfig {
	config := testkit.DefaultWaferConfig()
	config.DropRate = 0
	return config
}

func siteTable() measurement.Table {
	return testkit.Table(testkit.SiteSheet, testkit.NewWaferDataGenerator(waferConfig()).SiteRows())
}

func scatterOptions(codes ...string) ScatterOptions {
	return ScatterOptions{
		Codes:           codes,
		TrackedCapacity: 4,
		MaxIndex:        8,
		RegionPadding:   0.1,
		Style:           ports.ChartStyle{Title: "Vt", Width: 800, Height: 400},
	}
}

func TestSelectOrdersAndBoundsPoints(t *testing.T) {
	service := NewPlotService(&MockSheetReader{}, &MockChartRenderer{})
	result, err := service.AggregateTable(siteTable(), measurement.DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, []string{"HVT", "LVT", "RVT", "SLVT"}, result.Codes())

	sel := Select(result, scatterOptions("SLVT", "RVT", "LVT", "XVT"))

	assert.Equal(t, []string{"LVT", "RVT", "SLVT"}, sel.Codes)
	assert.Equal(t, []string{"XVT"}, sel.Skipped)
	require.Len(t, sel.Tracked, 4)
	for i, l := range sel.Tracked {
		v, ok := l.Float()
		require.True(t, ok)
		assert.Equal(t, float64(i+1), v)
	}
	require.Len(t, sel.Points, 12)
	assert.Equal(t, "LVT", sel.Points[0].Code)
	assert.Equal(t, "SLVT", sel.Points[11].Code)

	spec := ScatterSpec(result, sel, scatterOptions())
	require.Len(t, spec.Boxes, 3)
	assert.Equal(t, "LVT", spec.Boxes[0].Code)
	require.NotNil(t, spec.Boxes[0].Target)
	assert.InDelta(t, 0.32, spec.Boxes[0].Target.X, 1e-9)
	assert.InDelta(t, 0.30, spec.Boxes[0].Target.Y, 1e-9)
}

func TestScatterWritesChartAndReport(t *testing.T) {
	reader := &MockSheetReader{}
	renderer := &MockChartRenderer{}
	reader.On("ReadSheet", mock.Anything, "wafer.xlsx", "site").Return(siteTable(), nil)
	renderer.On("RenderScatter", mock.Anything, mock.Anything, mock.MatchedBy(func(spec ports.ScatterSpec) bool {
		return len(spec.Points) == 12 && len(spec.Boxes) == 3 && spec.RegionPadding == 0.1
	})).Run(writePNG).Return(nil).Once()

	dir := t.TempDir()
	outcome, err := NewPlotService(reader, renderer).Scatter(context.Background(), ScatterRequest{
		Input:     "wafer.xlsx",
		Sheet:     "site",
		Layout:    measurement.DefaultLayout(),
		Options:   scatterOptions("LVT", "RVT", "SLVT"),
		OutputDir: dir,
		Report:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "LVT_RVT_SLVT_scatterplot.png"), outcome.File)
	data, err := os.ReadFile(outcome.File)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	assert.Equal(t, filepath.Join(dir, report.FileName), outcome.Report)
	page, err := os.ReadFile(outcome.Report)
	require.NoError(t, err)
	assert.Contains(t, string(page), outcome.RunID)

	reader.AssertExpectations(t)
	renderer.AssertExpectations(t)
}

func TestScatterWithoutPointsIsNotFound(t *testing.T) {
	reader := &MockSheetReader{}
	renderer := &MockChartRenderer{}
	reader.On("ReadSheet", mock.Anything, "wafer.xlsx", "").Return(siteTable(), nil)

	_, err := NewPlotService(reader, renderer).Scatter(context.Background(), ScatterRequest{
		Input:     "wafer.xlsx",
		Layout:    measurement.DefaultLayout(),
		Options:   scatterOptions("XVT"),
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	renderer.AssertNotCalled(t, "RenderScatter", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregateTableRejectsShortSheet(t *testing.T) {
	service := NewPlotService(&MockSheetReader{}, &MockChartRenderer{})
	_, err := service.AggregateTable(measurement.Table{Name: "empty"}, measurement.DefaultLayout())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBoxPlotsRendersEveryItem(t *testing.T) {
	gen := testkit.NewWaferDataGenerator(waferConfig())
	tables := []measurement.Table{
		testkit.Table(testkit.ItemSheet1, gen.ItemRows()),
		testkit.Table(testkit.ItemSheet2, gen.ItemRows()),
		testkit.Table("NZWB2_LEGACY_SITE", [][]interface{}{{"LOT", "1"}, {"L01", 1.0}}),
	}
	filters := []string{"NZWB2", "_SITE"}

	reader := &MockSheetReader{}
	renderer := &MockChartRenderer{}
	reader.On("ReadMatchingSheets", mock.Anything, "wafer.xlsx", filters).Return(tables, nil)
	renderer.On("RenderBoxPlot", mock.Anything, mock.Anything, mock.MatchedBy(func(spec ports.BoxPlotSpec) bool {
		return len(spec.Categories) == 8 && spec.YRange == nil
	})).Run(writePNG).Return(nil).Times(2)

	dir := t.TempDir()
	outcome, err := NewPlotService(reader, renderer).BoxPlots(context.Background(), BoxPlotRequest{
		Input:        "wafer.xlsx",
		SheetFilters: filters,
		MaxIndex:     8,
		Style:        ports.ChartStyle{XLabel: "Wafer ID", Width: 800, Height: 400},
		OutputDir:    dir,
		Workers:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "Idsat_boxplot.png"),
		filepath.Join(dir, "Vt_lin_boxplot.png"),
	}, outcome.Files)
	assert.Empty(t, outcome.Report)
	renderer.AssertExpectations(t)
}

func TestBoxPlotsPropagatesRenderFailure(t *testing.T) {
	gen := testkit.NewWaferDataGenerator(waferConfig())
	reader := &MockSheetReader{}
	renderer := &MockChartRenderer{}
	reader.On("ReadMatchingSheets", mock.Anything, "wafer.xlsx", mock.Anything).
		Return([]measurement.Table{testkit.Table(testkit.ItemSheet1, gen.ItemRows())}, nil)
	renderer.On("RenderBoxPlot", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.RenderError(nil, "chart render failed"))

	dir := t.TempDir()
	_, err := NewPlotService(reader, renderer).BoxPlots(context.Background(), BoxPlotRequest{
		Input:     "wafer.xlsx",
		OutputDir: dir,
		Workers:   1,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeRenderError, errors.GetCode(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCornersShareOneScale(t *testing.T) {
	gen := testkit.NewWaferDataGenerator(waferConfig())
	reader := &MockSheetReader{}
	renderer := &MockChartRenderer{}
	reader.On("ReadSheet", mock.Anything, "sweep.xlsx", testkit.CornerSheet).
		Return(testkit.Table(testkit.CornerSheet, gen.CornerRows()), nil)

	var mu sync.Mutex
	var specs []ports.BoxPlotSpec
	renderer.On("RenderBoxPlot", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		specs = append(specs, args.Get(2).(ports.BoxPlotSpec))
		mu.Unlock()
		writePNG(args)
	}).Return(nil)

	dir := t.TempDir()
	outcome, err := NewPlotService(reader, renderer).Corners(context.Background(), CornerRequest{
		Input:      "sweep.xlsx",
		Sheet:      testkit.CornerSheet,
		UnifyScale: true,
		Style:      ports.ChartStyle{Width: 600, Height: 400},
		OutputDir:  dir,
		Workers:    2,
		Report:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "voltage_0.75_boxplot.png"),
		filepath.Join(dir, "voltage_0.9_boxplot.png"),
	}, outcome.Files)
	assert.FileExists(t, outcome.Report)

	require.Len(t, specs, 2)
	require.NotNil(t, specs[0].YRange)
	assert.Equal(t, *specs[0].YRange, *specs[1].YRange)
	for _, spec := range specs {
		assert.Equal(t, "Corner", spec.Style.XLabel)
		assert.Len(t, spec.Categories, 3)
	}
}
