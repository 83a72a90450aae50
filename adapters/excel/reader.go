package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"waferplot/domain/measurement"
	"waferplot/internal/errors"
)

// DataReader reads Excel and CSV files into measurement tables
type DataReader struct {
	config  ExcelConfig
	coercer *CellCoercer
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(config ExcelConfig) *DataReader {
	return &DataReader{config: config, coercer: NewCellCoercer(config.CoercionConfig)}
}

func fileType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "xlsx"
}

// ReadSheet reads one sheet. An empty sheet name selects the configured sheet,
// then "site", then the second sheet, then the first. CSV files have a single
// sheet named after the file.
func (r *DataReader) ReadSheet(ctx context.Context, path, sheet string) (measurement.Table, error) {
	if err := ctx.Err(); err != nil {
		return measurement.Table{}, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return measurement.Table{}, errors.NotFound(fmt.Sprintf("input file %s", path))
	}

	if fileType(path) == "csv" {
		return r.readCSVFile(path)
	}

	start := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return measurement.Table{}, errors.ReadError(err, "failed to open Excel file")
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(start).Nanoseconds())/1e6)

	return r.readWorkbookSheet(f, sheet)
}

// ReadUpload reads one sheet from an uploaded workbook or CSV body
func (r *DataReader) ReadUpload(ctx context.Context, filename string, body io.Reader, sheet string) (measurement.Table, error) {
	if err := ctx.Err(); err != nil {
		return measurement.Table{}, err
	}
	if fileType(filename) == "csv" {
		return r.readCSV(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), body)
	}

	f, err := excelize.OpenReader(body)
	if err != nil {
		return measurement.Table{}, errors.ReadError(err, "failed to open uploaded workbook")
	}
	defer f.Close()
	return r.readWorkbookSheet(f, sheet)
}

// ReadMatchingSheets reads every sheet whose name contains all of the given substrings
func (r *DataReader) ReadMatchingSheets(ctx context.Context, path string, contains []string) ([]measurement.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("input file %s", path))
	}
	if fileType(path) == "csv" {
		t, err := r.readCSVFile(path)
		if err != nil {
			return nil, err
		}
		return []measurement.Table{t}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.ReadError(err, "failed to open Excel file")
	}
	defer f.Close()

	var tables []measurement.Table
	for _, name := range f.GetSheetList() {
		if !matchesAll(name, contains) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := r.readNamedSheet(f, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	log.Printf("[DataReader] %d of %d sheets matched %v", len(tables), f.SheetCount, contains)
	return tables, nil
}

func (r *DataReader) readWorkbookSheet(f *excelize.File, sheet string) (measurement.Table, error) {
	if sheet == "" {
		sheet = r.config.Sheet
	}
	name, err := SelectSheet(f.GetSheetList(), sheet)
	if err != nil {
		return measurement.Table{}, err
	}
	return r.readNamedSheet(f, name)
}

func (r *DataReader) readNamedSheet(f *excelize.File, name string) (measurement.Table, error) {
	readStart := time.Now()
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return measurement.Table{}, errors.ReadError(err, fmt.Sprintf("failed to read sheet %s", name))
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)", name, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return r.toTable(name, rows), nil
}

func (r *DataReader) readCSVFile(path string) (measurement.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return measurement.Table{}, errors.ReadError(err, "failed to open CSV file")
	}
	defer file.Close()
	return r.readCSV(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), file)
}

func (r *DataReader) readCSV(name string, body io.Reader) (measurement.Table, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return measurement.Table{}, errors.ReadError(err, "failed to read CSV file")
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return r.toTable(name, rows), nil
}

func (r *DataReader) toTable(name string, rows [][]string) measurement.Table {
	t := measurement.Table{Name: name, Rows: make([][]measurement.Cell, len(rows))}
	for i, row := range rows {
		t.Rows[i] = r.coercer.CoerceRow(row)
	}
	return t
}

// SelectSheet resolves the sheet to read. A requested name must exist; otherwise
// "site" is preferred, then the second sheet, then the first.
func SelectSheet(names []string, want string) (string, error) {
	if len(names) == 0 {
		return "", errors.InvalidInput("workbook has no sheets")
	}
	if want != "" {
		for _, n := range names {
			if n == want {
				return n, nil
			}
		}
		return "", errors.NotFound(fmt.Sprintf("sheet %s", want))
	}
	for _, n := range names {
		if n == PreferredSheet {
			return n, nil
		}
	}
	if len(names) > 1 {
		return names[1], nil
	}
	return names[0], nil
}

func matchesAll(name string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(name, p) {
			return false
		}
	}
	return true
}
