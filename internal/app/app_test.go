package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/common"
	"github.com/ternarybob/doccrawl/internal/interfaces"
	"github.com/ternarybob/doccrawl/internal/models"
	"github.com/ternarybob/doccrawl/internal/services/reporter/reportertest"
)

// scriptedEngine returns a fixed outcome per URL
type scriptedEngine struct {
	outcomes map[string]models.FetchOutcome
	fetched  []string
}

func (e *scriptedEngine) Fetch(_ context.Context, url string, _ models.RenderConfig, _ models.SessionToken) models.FetchOutcome {
	e.fetched = append(e.fetched, url)
	if outcome, ok := e.outcomes[url]; ok {
		return outcome
	}
	return models.Failed("no scripted outcome for %s", url)
}

func (e *scriptedEngine) Close() error { return nil }

type harness struct {
	app      *App
	engine   *scriptedEngine
	started  int
	recorder *reportertest.Recorder
	outDir   string
}

func newHarness(t *testing.T, linksBody *string, outcomes map[string]models.FetchOutcome) *harness {
	t.Helper()

	dir := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Crawler.LinksFile = filepath.Join(dir, "links.txt")
	cfg.Crawler.OutputDir = filepath.Join(dir, "out")

	if linksBody != nil {
		require.NoError(t, os.WriteFile(cfg.Crawler.LinksFile, []byte(*linksBody), 0644))
	}

	h := &harness{
		engine:   &scriptedEngine{outcomes: outcomes},
		recorder: reportertest.NewRecorder(),
		outDir:   cfg.Crawler.OutputDir,
	}

	factory := func(context.Context, models.RenderConfig) (interfaces.RenderEngine, error) {
		h.started++
		return h.engine, nil
	}

	app, err := New(cfg, arbor.NewNoOpLogger(), factory, h.recorder)
	require.NoError(t, err)
	app.Writer.WithClock(func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) })
	h.app = app

	return h
}

func (h *harness) outputFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.outDir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func stringPtr(s string) *string { return &s }

func TestRun_AllPagesSaved(t *testing.T) {
	h := newHarness(t, stringPtr("https://a.example/x\nhttps://b.example/y\n"), map[string]models.FetchOutcome{
		"https://a.example/x": models.Succeeded("A"),
		"https://b.example/y": models.Succeeded("B"),
	})

	result := h.app.Run(context.Background())

	assert.True(t, result.Saved)
	assert.Equal(t, 2, result.URLs)
	assert.Equal(t, filepath.Join(h.outDir, "crawled_docs_20240309_140507.md"), result.OutputPath)

	body, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "# https://a.example/x\n\nA\n\n---\n\n# https://b.example/y\n\nB", string(body))

	found := h.recorder.OfKind(reportertest.KindURLsFound)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Count)

	saved := h.recorder.OfKind(reportertest.KindSaved)
	require.Len(t, saved, 1)
	assert.Equal(t, 2, saved[0].Count)
}

func TestRun_EmptyLinksFile(t *testing.T) {
	h := newHarness(t, stringPtr("\n   \n\n"), nil)

	result := h.app.Run(context.Background())

	assert.False(t, result.Saved)
	assert.Zero(t, result.URLs)
	assert.True(t, result.Report.IsEmpty())
	assert.Zero(t, h.started, "no engine may start without URLs")
	assert.Len(t, h.recorder.OfKind(reportertest.KindNoURLs), 1)
	assert.Empty(t, h.recorder.OfKind(reportertest.KindURLsFound))
	assert.Empty(t, h.recorder.OfKind(reportertest.KindNothingCrawled))
	assert.Empty(t, h.outputFiles(t))
}

func TestRun_FailedPageOmitted(t *testing.T) {
	h := newHarness(t, stringPtr("https://a.example/1\nhttps://a.example/2\nhttps://a.example/3\n"), map[string]models.FetchOutcome{
		"https://a.example/1": models.Succeeded("one"),
		"https://a.example/2": models.Failed("navigation failed: net::ERR_NAME_NOT_RESOLVED"),
		"https://a.example/3": models.Succeeded("three"),
	})

	result := h.app.Run(context.Background())

	require.True(t, result.Saved)
	assert.Equal(t, []string{"https://a.example/1", "https://a.example/3"}, result.Report.URLs())
	assert.Equal(t, 1, result.Report.Failed)
	assert.Equal(t, []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"}, h.engine.fetched)

	failures := h.recorder.OfKind(reportertest.KindPageFailed)
	require.Len(t, failures, 1)
	assert.Equal(t, "https://a.example/2", failures[0].URL)

	body, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "# https://a.example/1\n\none\n\n---\n\n# https://a.example/3\n\nthree", string(body))
}

func TestRun_MissingLinksFile(t *testing.T) {
	h := newHarness(t, nil, nil)

	result := h.app.Run(context.Background())

	assert.False(t, result.Saved)
	assert.Zero(t, h.started)
	assert.Len(t, h.recorder.OfKind(reportertest.KindSourceNotFound), 1)
	assert.Len(t, h.recorder.OfKind(reportertest.KindNoURLs), 1)
	assert.Empty(t, h.outputFiles(t))
}

func TestRun_NothingCrawled(t *testing.T) {
	h := newHarness(t, stringPtr("https://a.example/down\n"), map[string]models.FetchOutcome{
		"https://a.example/down": models.Failed("page timeout of 30s exceeded"),
	})

	result := h.app.Run(context.Background())

	assert.False(t, result.Saved)
	assert.Equal(t, 1, h.started)
	assert.Len(t, h.recorder.OfKind(reportertest.KindNothingCrawled), 1)
	assert.Empty(t, h.outputFiles(t))
}

func TestNew_InvalidRenderSettings(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Render.PageTimeout = "soon"

	_, err := New(cfg, arbor.NewNoOpLogger(), nil, reportertest.NewRecorder())
	assert.Error(t, err)
}
