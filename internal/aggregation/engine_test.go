package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waferplot/domain/measurement"
)

func aggregate(t *testing.T, tbl measurement.Table) *Result {
	t.Helper()
	records, err := measurement.ParseRecords(tbl, measurement.DefaultLayout())
	require.NoError(t, err)
	return NewEngine().Aggregate(records)
}

func TestEngineEndToEndPairs(t *testing.T) {
	none := [3]*float64{}
	res := aggregate(t, sheet(numberCells(1, 2, 3),
		row("LVTN_1", none, fp(1), fp(2), fp(3)),
		row("LVTP_1", none, fp(10), fp(20), fp(30)),
	))

	g, ok := res.Groups["LVT"]
	require.True(t, ok)
	require.Len(t, g.Points, 3)
	for i, want := range [][3]float64{{1, 1, 10}, {2, 2, 20}, {3, 3, 30}} {
		idx, _ := g.Points[i].Index.Float()
		assert.Equal(t, want[0], idx)
		assert.Equal(t, want[1], *g.Points[i].N)
		assert.Equal(t, want[2], *g.Points[i].P)
	}
	assert.Empty(t, res.Boxes)
}

func TestEngineEndToEndSpecBox(t *testing.T) {
	res := aggregate(t, sheet(numberCells(1),
		row("LVTN_1", [3]*float64{fp(0.1), fp(0.2), fp(0.3)}, fp(1)),
		row("LVTP_1", [3]*float64{fp(0.4), fp(0.5), fp(0.6)}, fp(10)),
	))

	box, ok := res.Boxes["LVT"]
	require.True(t, ok)
	assert.Equal(t, measurement.Point{X: 0.1, Y: 0.4}, box.Origin)
	assert.InDelta(t, 0.2, box.Width, 1e-12)
	assert.InDelta(t, 0.2, box.Height, 1e-12)
	require.NotNil(t, box.Target)
	assert.Equal(t, measurement.Point{X: 0.2, Y: 0.5}, *box.Target)
}

func TestEngineFiltersMalformedRows(t *testing.T) {
	none := [3]*float64{}
	tbl := sheet(numberCells(1, 2),
		row("LVTN_1", none, fp(1), nil),
		row("Comment row", none, fp(9), fp(9)),
		[]measurement.Cell{measurement.NumberCell(7), {}, {}, {}, measurement.NumberCell(5)},
		row("LVTP_1", none, fp(10), fp(20)),
		row("LVTN_2", none, nil, fp(2)),
	)
	res := aggregate(t, tbl)

	assert.Equal(t, Stats{Records: 6, Decoded: 3, DroppedKeys: 3, Samples: 4, MissingValues: 2}, res.Stats)
	require.Contains(t, res.Groups, "LVT")
	assert.Len(t, res.Groups["LVT"].CompletePoints(), 2)
	assert.Equal(t, 0, res.Incomplete("LVT"))
}

func TestEnginePointStreamOrder(t *testing.T) {
	none := [3]*float64{}
	res := aggregate(t, sheet(numberCells(2, 1, 3),
		row("SLVTN_1", none, fp(1), fp(1), fp(1)),
		row("SLVTP_1", none, fp(1), fp(1), fp(1)),
		row("LVTN_1", none, fp(2), fp(2), fp(2)),
		row("LVTP_1", none, fp(2), nil, fp(2)),
	))

	var got []string
	for _, p := range res.PointStream([]string{"SLVT", "LVT", "MISSING", "LVT"}) {
		got = append(got, p.Code+":"+p.Index.String())
	}
	assert.Equal(t, []string{"LVT:2", "LVT:3", "SLVT:1", "SLVT:2", "SLVT:3"}, got)
	assert.Equal(t, 1, res.Incomplete("LVT"))
	assert.Equal(t, []string{"LVT", "SLVT"}, res.Codes())
	assert.Len(t, res.PointStream(nil), 5)
}

func TestEngineRunsAreIndependent(t *testing.T) {
	none := [3]*float64{}
	e := NewEngine()
	first, err := measurement.ParseRecords(sheet(numberCells(1), row("LVTN_1", none, fp(1)), row("LVTP_1", none, fp(2))), measurement.DefaultLayout())
	require.NoError(t, err)
	second, err := measurement.ParseRecords(sheet(numberCells(1), row("RVTN_1", none, fp(1)), row("RVTP_1", none, fp(2))), measurement.DefaultLayout())
	require.NoError(t, err)

	a := e.Aggregate(first)
	b := e.Aggregate(second)
	assert.Equal(t, []string{"LVT"}, a.Codes())
	assert.Equal(t, []string{"RVT"}, b.Codes())
}
