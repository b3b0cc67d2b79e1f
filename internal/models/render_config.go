package models

import "time"

// User agent selection modes
const (
	UserAgentModeFixed  = "fixed"
	UserAgentModeRandom = "random"
)

// RenderConfig is handed unchanged to the render engine for every fetch.
// The crawl orchestrator never reads its fields.
type RenderConfig struct {
	// Browser process
	Headless       bool
	ViewportWidth  int64
	ViewportHeight int64
	Headers        map[string]string
	ExtraFlags     []string // chromium switches, with or without the leading "--"
	UserAgent      string
	UserAgentMode  string
	StartupTimeout time.Duration

	// Per page
	WaitFor           string   // "css:<selector>" or a JS predicate, optionally prefixed with "js:"
	JSActions         []string // run in order after the page is ready; may use await
	PageTimeout       time.Duration
	DelayBeforeReturn time.Duration
	OnlyMainContent   bool
}

// Clone returns a deep copy so the caller can not mutate a config in use
func (c RenderConfig) Clone() RenderConfig {
	clone := c
	if c.Headers != nil {
		clone.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			clone.Headers[k] = v
		}
	}
	if c.ExtraFlags != nil {
		clone.ExtraFlags = append([]string(nil), c.ExtraFlags...)
	}
	if c.JSActions != nil {
		clone.JSActions = append([]string(nil), c.JSActions...)
	}
	return clone
}
