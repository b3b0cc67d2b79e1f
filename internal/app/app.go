package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/common"
	"github.com/ternarybob/doccrawl/internal/interfaces"
	"github.com/ternarybob/doccrawl/internal/models"
	"github.com/ternarybob/doccrawl/internal/services/crawler"
	"github.com/ternarybob/doccrawl/internal/services/links"
	"github.com/ternarybob/doccrawl/internal/services/output"
	"github.com/ternarybob/doccrawl/internal/services/reporter"
)

// App holds the components of one crawl run
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Reporter interfaces.Reporter

	Loader       *links.Loader
	Orchestrator *crawler.Orchestrator
	Writer       *output.Writer
}

// Result summarises a finished run
type Result struct {
	URLs       int
	Report     *models.CrawlReport
	OutputPath string
	Saved      bool
}

// New wires the loader, orchestrator and writer from configuration.
// A nil runReporter logs through logger.
func New(cfg *common.Config, logger arbor.ILogger, newEngine interfaces.RenderEngineFactory, runReporter interfaces.Reporter) (*App, error) {
	render, err := cfg.RenderSettings()
	if err != nil {
		return nil, fmt.Errorf("invalid render settings: %w", err)
	}

	if runReporter == nil {
		runReporter = reporter.NewLogReporter(logger)
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Reporter:     runReporter,
		Loader:       links.NewLoader(runReporter, logger),
		Orchestrator: crawler.NewOrchestrator(newEngine, render, cfg.Crawler.SessionPrefix, runReporter, logger),
		Writer:       output.NewWriter(cfg.Crawler.OutputDir, cfg.Crawler.FilePrefix, runReporter, logger),
	}, nil
}

// Run loads the URL list, crawls it and saves the assembled output.
// An empty URL list ends the run before any browser is started.
func (a *App) Run(ctx context.Context) Result {
	urls := a.Loader.Load(a.Config.Crawler.LinksFile)
	if len(urls) == 0 {
		a.Reporter.NoURLs()
		return Result{Report: &models.CrawlReport{}}
	}

	a.Reporter.URLsFound(len(urls))

	report := a.Orchestrator.Run(ctx, urls)
	path, saved := a.Writer.Write(report)

	return Result{
		URLs:       len(urls),
		Report:     report,
		OutputPath: path,
		Saved:      saved,
	}
}
