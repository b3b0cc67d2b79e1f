package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved run settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("DocCrawl", GetVersion())

	logger.Info().
		Str("links_file", config.Crawler.LinksFile).
		Str("output_dir", config.Crawler.OutputDir).
		Bool("headless", config.Browser.Headless).
		Str("user_agent_mode", config.Browser.UserAgentMode).
		Str("page_timeout", config.Render.PageTimeout).
		Msg("Crawler configuration loaded")
}
