package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/common"
	"github.com/ternarybob/doccrawl/internal/interfaces"
	"github.com/ternarybob/doccrawl/internal/models"
)

// Orchestrator crawls a list of URLs one at a time through a single browser session
type Orchestrator struct {
	newEngine     interfaces.RenderEngineFactory
	render        models.RenderConfig
	sessionPrefix string
	reporter      interfaces.Reporter
	logger        arbor.ILogger
}

// NewOrchestrator creates a new sequential crawl orchestrator.
// render is forwarded unchanged to every fetch.
func NewOrchestrator(newEngine interfaces.RenderEngineFactory, render models.RenderConfig, sessionPrefix string, reporter interfaces.Reporter, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		newEngine:     newEngine,
		render:        render.Clone(),
		sessionPrefix: sessionPrefix,
		reporter:      reporter,
		logger:        logger,
	}
}

// Run fetches every URL in order, reusing one engine and one session token.
// Failed pages are reported and left out of the returned report; Run never fails because of a page.
func (o *Orchestrator) Run(ctx context.Context, urls []string) *models.CrawlReport {
	report := &models.CrawlReport{}
	if len(urls) == 0 {
		return report
	}

	engine, err := o.newEngine(ctx, o.render.Clone())
	if err != nil {
		o.reporter.EngineStartFailed(err)
		return report
	}
	defer o.release(engine)

	session := common.NewSessionToken(o.sessionPrefix)
	startTime := time.Now()

	o.logger.Debug().
		Str("session_id", string(session)).
		Int("url_count", len(urls)).
		Msg("Sequential crawl started")

	for i, url := range urls {
		report.Attempted++

		switch outcome := engine.Fetch(ctx, url, o.render, session).(type) {
		case models.FetchSuccess:
			report.Add(models.NewPageRecord(url, outcome.Content))
			o.reporter.PageSucceeded(url, len(outcome.Content))
		case models.FetchFailure:
			report.Failed++
			o.reporter.PageFailed(url, outcome.Reason)
		default:
			report.Failed++
			o.reporter.PageFailed(url, fmt.Sprintf("unexpected fetch outcome %T", outcome))
		}

		o.logger.Trace().
			Int("index", i).
			Int("crawled", report.Len()).
			Int("failed", report.Failed).
			Msg("Crawl progress")
	}

	o.logger.Debug().
		Str("session_id", string(session)).
		Int("crawled", report.Len()).
		Int("failed", report.Failed).
		Dur("duration", time.Since(startTime)).
		Msg("Sequential crawl finished")

	return report
}

// release closes the engine; failures are reported and otherwise ignored
func (o *Orchestrator) release(engine interfaces.RenderEngine) {
	if err := engine.Close(); err != nil {
		o.reporter.EngineReleaseFailed(err)
	}
}
