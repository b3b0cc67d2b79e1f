package browser

import (
	"math/rand"

	"github.com/ternarybob/doccrawl/internal/models"
)

// desktopUserAgents are Chromium-based desktop user agents used in random mode.
// They must match the engine actually driving the page.
var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
}

// selectUserAgent returns the user agent for one engine.
// Random mode picks once per engine so every page of a session presents the same browser.
func selectUserAgent(config models.RenderConfig, rng *rand.Rand) string {
	if config.UserAgentMode == models.UserAgentModeRandom || config.UserAgent == "" {
		return desktopUserAgents[rng.Intn(len(desktopUserAgents))]
	}
	return config.UserAgent
}
