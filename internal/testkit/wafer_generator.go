package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/xuri/excelize/v2"

	"waferplot/domain/measurement"
)

// DeviceProfile describes the nominal N/P threshold voltages of one device code
type DeviceProfile struct {
	Code     string  `json:"code"`
	NTarget  float64 `json:"n_target"`
	PTarget  float64 `json:"p_target"`
	SpecHalf float64 `json:"spec_half"` // half width of the spec window on both channels
}

// WaferGeneratorConfig configures the synthetic wafer export generator
type WaferGeneratorConfig struct {
	Devices   []DeviceProfile `json:"devices"`
	Sites     int             `json:"sites"`      // index labels 1..Sites
	Noise     float64         `json:"noise"`      // standard deviation around target
	DropRate  float64         `json:"drop_rate"`  // probability a measurement is blank
	Items     []string        `json:"items"`      // item ids of the item sheets
	ItemWafer int             `json:"item_wafer"` // rows per item per item sheet
	Corners   []string        `json:"corners"`
	Voltages  []float64       `json:"voltages"`
	Seed      int64           `json:"seed"`
}

// DefaultWaferConfig returns a small but realistic wafer layout
func DefaultWaferConfig() WaferGeneratorConfig {
	return WaferGeneratorConfig{
		Devices: []DeviceProfile{
			{Code: "LVT", NTarget: 0.32, PTarget: 0.30, SpecHalf: 0.03},
			{Code: "RVT", NTarget: 0.40, PTarget: 0.38, SpecHalf: 0.03},
			{Code: "SLVT", NTarget: 0.25, PTarget: 0.23, SpecHalf: 0.025},
			{Code: "HVT", NTarget: 0.48, PTarget: 0.46, SpecHalf: 0.04},
		},
		Sites:     10,
		Noise:     0.01,
		DropRate:  0.05,
		Items:     []string{"Vt lin", "Idsat"},
		ItemWafer: 4,
		Corners:   []string{"FF", "SS", "TT"},
		Voltages:  []float64{0.75, 0.9},
		Seed:      42,
	}
}

// WaferDataGenerator produces deterministic wafer acceptance test exports
type WaferDataGenerator struct {
	config WaferGeneratorConfig
	rng    *rand.Rand
}

// NewWaferDataGenerator creates a generator seeded from config
func NewWaferDataGenerator(config WaferGeneratorConfig) *WaferDataGenerator {
	return &WaferDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// SiteRows builds the site sheet: header row, unit row, index label row, then one
// N and one P row per device code, keyed like "LVTN_RO_SDB_Vtsat".
func (g *WaferDataGenerator) SiteRows() [][]interface{} {
	header := []interface{}{"Parameter", "Spec Low", "Target", "Spec High"}
	units := []interface{}{"", "V", "V", "V"}
	index := []interface{}{"Site", "", "", ""}
	for i := 1; i <= g.config.Sites; i++ {
		header = append(header, fmt.Sprintf("S%d", i))
		units = append(units, "V")
		index = append(index, i)
	}

	rows := [][]interface{}{header, units, index}
	for _, d := range g.config.Devices {
		rows = append(rows,
			g.channelRow(d.Code+"N_RO_SDB_Vtsat", d.NTarget, d.SpecHalf),
			g.channelRow(d.Code+"P_RO_SDB_Vtsat", d.PTarget, d.SpecHalf),
		)
	}
	return rows
}

func (g *WaferDataGenerator) channelRow(key string, target, half float64) []interface{} {
	row := []interface{}{key, round(target - half), round(target), round(target + half)}
	for i := 0; i < g.config.Sites; i++ {
		if g.rng.Float64() < g.config.DropRate {
			row = append(row, "")
			continue
		}
		row = append(row, round(target+g.rng.NormFloat64()*g.config.Noise))
	}
	return row
}

// ItemRows builds one item sheet: ITEM_ID plus integer-headed columns 1..Sites
func (g *WaferDataGenerator) ItemRows() [][]interface{} {
	header := []interface{}{"LOT", measurementItemColumn}
	for i := 1; i <= g.config.Sites; i++ {
		header = append(header, strconv.Itoa(i))
	}
	rows := [][]interface{}{header}
	for _, item := range g.config.Items {
		base := 1 + g.rng.Float64()
		for w := 0; w < g.config.ItemWafer; w++ {
			row := []interface{}{fmt.Sprintf("L%02d", w+1), item}
			for i := 0; i < g.config.Sites; i++ {
				row = append(row, round(base+g.rng.NormFloat64()*0.1*base))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// CornerRows builds a Voltage/Corner/Value sweep table
func (g *WaferDataGenerator) CornerRows() [][]interface{} {
	rows := [][]interface{}{{"Voltage", "Corner", "Value"}}
	for _, v := range g.config.Voltages {
		for ci, c := range g.config.Corners {
			center := v * (1 + 0.1*float64(ci))
			for i := 0; i < g.config.Sites; i++ {
				rows = append(rows, []interface{}{v, c, round(center + g.rng.NormFloat64()*0.02)})
			}
		}
	}
	return rows
}

const measurementItemColumn = "ITEM_ID"

// Sheet names written by WriteWorkbook
const (
	SiteSheet   = "site"
	ItemSheet1  = "NZWB2_W01_SITE"
	ItemSheet2  = "NZWB2_W02_SITE"
	CornerSheet = "corners"
)

// WriteWorkbook writes every generated sheet to an xlsx file. The first sheet is a
// summary so sheet selection by name is exercised.
func (g *WaferDataGenerator) WriteWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "summary"); err != nil {
		return err
	}
	if err := f.SetCellValue("summary", "A1", "generated wafer export"); err != nil {
		return err
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SiteSheet, g.SiteRows()},
		{ItemSheet1, g.ItemRows()},
		{ItemSheet2, g.ItemRows()},
		{CornerSheet, g.CornerRows()},
	}
	for _, s := range sheets {
		if err := WriteSheet(f, s.name, s.rows); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// WriteSheet adds a sheet and fills it row by row
func WriteSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// Table converts generated rows to a measurement table without a file round trip
func Table(name string, rows [][]interface{}) measurement.Table {
	t := measurement.Table{Name: name, Rows: make([][]measurement.Cell, len(rows))}
	for r, row := range rows {
		cells := make([]measurement.Cell, len(row))
		for c, v := range row {
			switch x := v.(type) {
			case float64:
				cells[c] = measurement.NumberCell(x)
			case int:
				cells[c] = measurement.NumberCell(float64(x))
			case string:
				cells[c] = measurement.TextCell(x)
			}
		}
		t.Rows[r] = cells
	}
	return t
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
