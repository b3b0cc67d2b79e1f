// Package browser renders pages with a headless Chrome driven through chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/interfaces"
	"github.com/ternarybob/doccrawl/internal/models"
)

const defaultStartupTimeout = 30 * time.Second

// session is one browser tab reused by every fetch carrying the same token
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Engine owns one Chrome process and the session tabs opened on it.
// It is not safe for concurrent fetches.
type Engine struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc

	mu        sync.Mutex
	sessions  map[models.SessionToken]*session
	closed    bool
	userAgent string

	transform interfaces.TransformService
	logger    arbor.ILogger
}

var _ interfaces.RenderEngine = (*Engine)(nil)

// NewEngineFactory returns a factory that starts a fresh engine per crawl run
func NewEngineFactory(transform interfaces.TransformService, logger arbor.ILogger) interfaces.RenderEngineFactory {
	return func(ctx context.Context, config models.RenderConfig) (interfaces.RenderEngine, error) {
		return NewEngine(ctx, config, transform, logger)
	}
}

// NewEngine launches Chrome and verifies it responds.
// The browser process is killed when ctx is cancelled or Close is called.
func NewEngine(ctx context.Context, config models.RenderConfig, transform interfaces.TransformService, logger arbor.ILogger) (*Engine, error) {
	startTime := time.Now()
	userAgent := selectUserAgent(config, rand.New(rand.NewSource(time.Now().UnixNano())))

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(config, userAgent)...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	e := &Engine{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		sessions:        make(map[models.SessionToken]*session),
		userAgent:       userAgent,
		transform:       transform,
		logger:          logger,
	}

	startupTimeout := config.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = defaultStartupTimeout
	}

	logger.Info().
		Bool("headless", config.Headless).
		Str("user_agent", userAgent).
		Int64("viewport_width", config.ViewportWidth).
		Int64("viewport_height", config.ViewportHeight).
		Msg("Starting headless browser")

	if err := e.start(startupTimeout); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, err
	}

	logger.Debug().
		Dur("startup_time", time.Since(startTime)).
		Msg("Headless browser started")

	return e, nil
}

// start allocates the browser and runs a responsiveness check.
// The first Run on a chromedp context owns the browser, so it must not carry a timeout.
func (e *Engine) start(timeout time.Duration) error {
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(e.browserCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
	case <-time.After(timeout):
		return fmt.Errorf("browser did not start within %s", timeout)
	}

	testCtx, cancel := context.WithTimeout(e.browserCtx, timeout)
	defer cancel()

	var title string
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank"), chromedp.Title(&title)); err != nil {
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	return nil
}

// Fetch renders url in the tab of the given session and converts it to markdown.
// Every problem is returned as a FetchFailure.
func (e *Engine) Fetch(ctx context.Context, url string, config models.RenderConfig, token models.SessionToken) models.FetchOutcome {
	s, err := e.session(token, config)
	if err != nil {
		return models.Failed("browser session unavailable: %v", err)
	}

	var fetchCtx context.Context
	var cancel context.CancelFunc
	if config.PageTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(s.ctx, config.PageTimeout)
	} else {
		fetchCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	// Propagate caller cancellation into the tab-scoped context
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	startTime := time.Now()
	html, finalURL, err := e.render(fetchCtx, url, config)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return models.Failed("page timeout of %s exceeded: %v", config.PageTimeout, err)
		}
		return models.Failed("%v", err)
	}

	outcome := e.convert(html, finalURL, config)
	if success, ok := outcome.(models.FetchSuccess); ok {
		e.logger.Debug().
			Str("url", url).
			Str("final_url", finalURL).
			Str("session_id", string(token)).
			Int("html_length", len(html)).
			Int("markdown_length", len(success.Content)).
			Dur("render_time", time.Since(startTime)).
			Msg("Page rendered")
	}

	return outcome
}

// convert turns captured page HTML into the fetch outcome
func (e *Engine) convert(html string, pageURL string, config models.RenderConfig) models.FetchOutcome {
	if err := e.transform.ValidateHTML(html); err != nil {
		return models.Failed("page returned no usable HTML: %v", err)
	}

	markdown, err := e.transform.HTMLToMarkdown(html, pageURL, config.OnlyMainContent)
	if err != nil {
		return models.Failed("markdown conversion failed: %v", err)
	}

	return models.Succeeded(markdown)
}

// render navigates, waits for readiness, runs the post-load actions and returns the page HTML
func (e *Engine) render(ctx context.Context, url string, config models.RenderConfig) (string, string, error) {
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return "", "", fmt.Errorf("navigation failed: %w", err)
	}

	if wait := readinessAction(config.WaitFor); wait != nil {
		if err := chromedp.Run(ctx, wait); err != nil {
			return "", "", fmt.Errorf("wait condition failed: %w", err)
		}
	}

	for i, snippet := range config.JSActions {
		if strings.TrimSpace(snippet) == "" {
			continue
		}
		err := chromedp.Run(ctx, chromedp.Evaluate(actionScript(snippet), nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
		if err != nil {
			return "", "", fmt.Errorf("js action %d failed: %w", i+1, err)
		}
	}

	if config.DelayBeforeReturn > 0 {
		if err := chromedp.Run(ctx, chromedp.Sleep(config.DelayBeforeReturn)); err != nil {
			return "", "", fmt.Errorf("settle delay interrupted: %w", err)
		}
	}

	var html, finalURL string
	err := chromedp.Run(ctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return "", "", fmt.Errorf("content extraction failed: %w", err)
	}
	if finalURL == "" {
		finalURL = url
	}

	return html, finalURL, nil
}

// session returns the tab for token, opening and preparing it on first use
func (e *Engine) session(token models.SessionToken, config models.RenderConfig) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errors.New("engine closed")
	}
	if s, ok := e.sessions[token]; ok {
		return s, nil
	}

	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)

	// First Run creates the tab; no timeout here for the same reason as in start
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	actions := []chromedp.Action{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
	if len(config.Headers) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(extraHeaders(config.Headers)))
	}
	if config.ViewportWidth > 0 && config.ViewportHeight > 0 {
		actions = append(actions, chromedp.EmulateViewport(config.ViewportWidth, config.ViewportHeight))
	}

	prepareCtx, cancel := context.WithTimeout(tabCtx, defaultStartupTimeout)
	defer cancel()
	if err := chromedp.Run(prepareCtx, actions...); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to prepare tab: %w", err)
	}

	s := &session{ctx: tabCtx, cancel: tabCancel}
	e.sessions[token] = s

	e.logger.Debug().
		Str("session_id", string(token)).
		Int("header_count", len(config.Headers)).
		Msg("Browser session opened")

	return s, nil
}

// UserAgent returns the user agent presented by this engine
func (e *Engine) UserAgent() string {
	return e.userAgent
}

// Close closes every session tab and then the browser.
// Calling Close more than once is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	for token, s := range e.sessions {
		s.cancel()
		e.logger.Debug().Str("session_id", string(token)).Msg("Browser session closed")
	}
	e.sessions = nil

	// Cancel closes the browser gracefully and waits for the process to exit
	err := chromedp.Cancel(e.browserCtx)
	e.browserCancel()
	e.allocatorCancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}

	e.logger.Debug().Msg("Headless browser closed")
	return nil
}
