package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"

	"waferplot/domain/measurement"
	"waferplot/internal/aggregation"
)

// FileName is the name of the HTML report written next to the charts
const FileName = "report.html"

// GroupRow summarises one device group
type GroupRow struct {
	Code       string
	Points     int
	Complete   int
	Incomplete int
	Plotted    bool
	Box        *measurement.SpecBox
}

// Run collects what one invocation read, aggregated and wrote
type Run struct {
	ID        string
	Command   string
	Input     string
	Sheet     string
	StartedAt time.Time
	Stats     *aggregation.Stats
	Groups    []GroupRow
	Tracked   []measurement.IndexLabel
	Files     []string
	Notes     []string
}

// NewRun starts a report with a fresh run identifier
func NewRun(command, input string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Command:   command,
		Input:     input,
		StartedAt: time.Now(),
	}
}

// AddResult records the device groups and spec boxes of an aggregation pass.
// Codes listed in plotted are marked as drawn.
func (r *Run) AddResult(res *aggregation.Result, plotted []string) {
	stats := res.Stats
	r.Stats = &stats

	drawn := make(map[string]bool, len(plotted))
	for _, c := range plotted {
		drawn[c] = true
	}
	for _, code := range res.Codes() {
		g := res.Groups[code]
		row := GroupRow{
			Code:       code,
			Points:     len(g.Points),
			Complete:   len(g.CompletePoints()),
			Incomplete: res.Incomplete(code),
			Plotted:    drawn[code],
		}
		if box, ok := res.Boxes[code]; ok {
			b := box
			row.Box = &b
		}
		r.Groups = append(r.Groups, row)
	}
}

// AddFile records a written output file
func (r *Run) AddFile(path string) {
	r.Files = append(r.Files, path)
}

// Notef adds a free-form line to the report
func (r *Run) Notef(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Markdown renders the run summary
func (r *Run) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# waferplot %s\n\n", r.Command)
	fmt.Fprintf(&b, "- Run: `%s`\n", r.ID)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	if r.Input != "" {
		fmt.Fprintf(&b, "- Input: `%s`\n", r.Input)
	}
	if r.Sheet != "" {
		fmt.Fprintf(&b, "- Sheet: `%s`\n", r.Sheet)
	}

	if r.Stats != nil {
		s := r.Stats
		b.WriteString("\n## Input\n\n")
		fmt.Fprintf(&b, "| Records | Decoded | Dropped keys | Samples | Missing values |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n", s.Records, s.Decoded, s.DroppedKeys, s.Samples, s.MissingValues)
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n## Device groups\n\n")
		b.WriteString("| Code | Points | Complete | Incomplete | Plotted | Spec box |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, g := range r.Groups {
			plotted := "no"
			if g.Plotted {
				plotted = "yes"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s | %s |\n",
				g.Code, g.Points, g.Complete, g.Incomplete, plotted, describeBox(g.Box))
		}
	}

	if len(r.Tracked) > 0 {
		labels := make([]string, len(r.Tracked))
		for i, l := range r.Tracked {
			labels[i] = l.String()
		}
		fmt.Fprintf(&b, "\nTracked index labels: %s\n", strings.Join(labels, ", "))
	}

	if len(r.Files) > 0 {
		b.WriteString("\n## Files\n\n")
		files := append([]string(nil), r.Files...)
		sort.Strings(files)
		for _, f := range files {
			fmt.Fprintf(&b, "- `%s`\n", filepath.Base(f))
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func describeBox(box *measurement.SpecBox) string {
	if box == nil {
		return "-"
	}
	s := fmt.Sprintf("N %.4g..%.4g, P %.4g..%.4g",
		box.Origin.X, box.Origin.X+box.Width, box.Origin.Y, box.Origin.Y+box.Height)
	if box.Target != nil {
		s += fmt.Sprintf(", target (%.4g, %.4g)", box.Target.X, box.Target.Y)
	}
	return s
}

// HTML converts the markdown summary into a standalone page
func (r *Run) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "waferplot " + r.Command,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// Write stores the HTML report in dir and returns its path
func (r *Run) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, r.HTML(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
