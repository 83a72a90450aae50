package ports

import (
	"context"
	"io"

	"waferplot/domain/measurement"
)

// SheetReader loads spreadsheet exports into measurement tables.
// It is the only component that touches input files.
type SheetReader interface {
	// ReadSheet reads one sheet; an empty name lets the reader pick its default sheet
	ReadSheet(ctx context.Context, path, sheet string) (measurement.Table, error)
	// ReadMatchingSheets reads every sheet whose name contains all substrings
	ReadMatchingSheets(ctx context.Context, path string, contains []string) ([]measurement.Table, error)
	// ReadUpload reads one sheet from an uploaded file body
	ReadUpload(ctx context.Context, filename string, body io.Reader, sheet string) (measurement.Table, error)
}
