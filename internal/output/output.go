package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"waferplot/internal/errors"
)

// WriteFile writes through draw into a temporary file next to path and renames it into place
func WriteFile(path string, draw func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.RenderError(err, "failed to create output directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chart-*.png")
	if err != nil {
		return errors.RenderError(err, "failed to create output file")
	}
	defer os.Remove(tmp.Name())

	if err := draw(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.RenderError(err, "failed to close output file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.RenderError(err, "failed to move output file into place")
	}
	return nil
}

// FileName makes a chart or item name safe for the file system
func FileName(name, suffix string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name) + suffix
}
