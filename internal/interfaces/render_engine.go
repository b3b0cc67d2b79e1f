package interfaces

import (
	"context"

	"github.com/ternarybob/doccrawl/internal/models"
)

// RenderEngine turns a URL into rendered markdown.
// An engine is not safe for concurrent use; fetches for one session must be sequential.
type RenderEngine interface {
	// Fetch renders url inside the browser session identified by session.
	// Page-level problems are returned as models.FetchFailure, never as a panic.
	Fetch(ctx context.Context, url string, config models.RenderConfig, session models.SessionToken) models.FetchOutcome

	// Close releases the browser and every session opened on it
	Close() error
}

// RenderEngineFactory starts a render engine for one crawl run
type RenderEngineFactory func(ctx context.Context, config models.RenderConfig) (RenderEngine, error)
