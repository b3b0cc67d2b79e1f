// Package reporter turns crawl progress events into log lines.
package reporter

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/interfaces"
)

// LogReporter writes crawl progress to an arbor logger
type LogReporter struct {
	logger arbor.ILogger
}

var _ interfaces.Reporter = (*LogReporter)(nil)

// NewLogReporter creates a reporter backed by logger
func NewLogReporter(logger arbor.ILogger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) SourceNotFound(path string) {
	r.logger.Error().Str("path", path).Msg("Error: links source not found")
}

func (r *LogReporter) SourceUnreadable(path string, err error) {
	r.logger.Error().Err(err).Str("path", path).Msg("Error: links source unreadable")
}

func (r *LogReporter) SourceFailed(path string, err error) {
	r.logger.Error().Err(err).Str("path", path).Msg("An unexpected error occurred reading the links source")
}

func (r *LogReporter) URLsFound(count int) {
	r.logger.Info().Int("url_count", count).Msgf("Found %d URLs to crawl", count)
}

func (r *LogReporter) NoURLs() {
	r.logger.Warn().Msg("No URLs found to crawl")
}

func (r *LogReporter) EngineStartFailed(err error) {
	r.logger.Error().Err(err).Msg("Failed to start the browser, nothing was crawled")
}

func (r *LogReporter) PageSucceeded(url string, contentLength int) {
	r.logger.Info().
		Str("url", url).
		Int("markdown_length", contentLength).
		Msg("Successfully crawled")
}

func (r *LogReporter) PageFailed(url string, reason string) {
	r.logger.Warn().
		Str("url", url).
		Str("error", reason).
		Msg("Failed")
}

func (r *LogReporter) EngineReleaseFailed(err error) {
	r.logger.Warn().Err(err).Msg("Failed to close the browser cleanly")
}

func (r *LogReporter) Saved(path string, pages int, failed int) {
	r.logger.Info().
		Str("path", path).
		Int("total_pages", pages).
		Int("failed_pages", failed).
		Msg("Crawled content saved")
}

func (r *LogReporter) NothingCrawled() {
	r.logger.Warn().Msg("No content was successfully crawled.")
}

func (r *LogReporter) SaveFailed(path string, err error) {
	r.logger.Error().Err(err).Str("path", path).Msg("Error saving file")
}
