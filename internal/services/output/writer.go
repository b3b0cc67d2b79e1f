// Package output writes a crawl report to a timestamped markdown file.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/interfaces"
	"github.com/ternarybob/doccrawl/internal/models"
)

// TimestampLayout is the sortable timestamp used in output file names
const TimestampLayout = "20060102_150405"

// Writer saves crawl reports as <dir>/<prefix>_<timestamp>.md
type Writer struct {
	dir      string
	prefix   string
	now      func() time.Time
	reporter interfaces.Reporter
	logger   arbor.ILogger
}

// NewWriter creates a new output writer
func NewWriter(dir, prefix string, reporter interfaces.Reporter, logger arbor.ILogger) *Writer {
	return &Writer{
		dir:      dir,
		prefix:   prefix,
		now:      time.Now,
		reporter: reporter,
		logger:   logger,
	}
}

// WithClock replaces the clock used for file names
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// FileName returns the output file name for a run at t
func (w *Writer) FileName(t time.Time) string {
	return fmt.Sprintf("%s_%s.md", w.prefix, t.Format(TimestampLayout))
}

// Write saves report in one write and returns the file path.
// An empty report writes nothing. Write errors are reported, never returned.
func (w *Writer) Write(report *models.CrawlReport) (string, bool) {
	if report == nil || report.IsEmpty() {
		w.reporter.NothingCrawled()
		return "", false
	}

	path := filepath.Join(w.dir, w.FileName(w.now()))
	body := report.Body()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.reporter.SaveFailed(path, fmt.Errorf("failed to create output directory: %w", err))
		return path, false
	}

	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		w.reporter.SaveFailed(path, err)
		return path, false
	}

	w.logger.Debug().
		Str("path", path).
		Int("bytes", len(body)).
		Msg("Output file written")

	w.reporter.Saved(path, report.Len(), report.Failed)

	return path, true
}
