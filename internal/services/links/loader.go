// Package links reads the ordered list of URLs to crawl from a flat text file.
package links

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/interfaces"
)

var (
	// ErrSourceNotFound is returned when the links file does not exist
	ErrSourceNotFound = errors.New("links source not found")
	// ErrSourceUnreadable is returned when the links file exists but can not be read
	ErrSourceUnreadable = errors.New("links source unreadable")
)

// Loader reads URL lists. Every failure is reported and turned into an empty list.
type Loader struct {
	reporter interfaces.Reporter
	logger   arbor.ILogger
}

// NewLoader creates a new links loader
func NewLoader(reporter interfaces.Reporter, logger arbor.ILogger) *Loader {
	return &Loader{
		reporter: reporter,
		logger:   logger,
	}
}

// Load returns the non-blank, trimmed lines of path in file order.
// A missing, unreadable or broken source yields an empty list after being reported.
func (l *Loader) Load(path string) []string {
	urls, err := ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, ErrSourceNotFound):
			l.reporter.SourceNotFound(path)
		case errors.Is(err, ErrSourceUnreadable):
			l.reporter.SourceUnreadable(path, err)
		default:
			l.reporter.SourceFailed(path, err)
		}
		return []string{}
	}

	l.logger.Debug().
		Str("path", path).
		Int("url_count", len(urls)).
		Msg("Links source loaded")

	return urls
}

// ReadFile opens path and parses it with Parse.
// Open errors are classified as ErrSourceNotFound or ErrSourceUnreadable.
func ReadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
		default:
			return nil, fmt.Errorf("failed to open links source %s: %w", path, err)
		}
	}
	defer file.Close()

	urls, err := Parse(file)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
		}
		return nil, fmt.Errorf("failed to read links source %s: %w", path, err)
	}
	return urls, nil
}

// Parse returns the trimmed, non-empty lines of r in order.
// Lines may be of any length.
func Parse(r io.Reader) ([]string, error) {
	urls := []string{}

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if url := strings.TrimSpace(line); url != "" {
			urls = append(urls, url)
		}
		if errors.Is(err, io.EOF) {
			return urls, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
