package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/doccrawl/internal/models"
)

// Config represents the application configuration
type Config struct {
	Crawler CrawlerConfig `toml:"crawler" yaml:"crawler"`
	Browser BrowserConfig `toml:"browser" yaml:"browser"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// CrawlerConfig controls where URLs are read from and where the output goes
type CrawlerConfig struct {
	LinksFile     string `toml:"links_file" yaml:"links_file" validate:"required"`         // One URL per line (default: "./links.txt")
	OutputDir     string `toml:"output_dir" yaml:"output_dir" validate:"required"`         // Directory for crawled_docs_*.md (default: ".")
	FilePrefix    string `toml:"file_prefix" yaml:"file_prefix" validate:"required"`       // Output file prefix (default: "crawled_docs")
	SessionPrefix string `toml:"session_prefix" yaml:"session_prefix" validate:"required"` // Prefix of the per-run session token (default: "session")
}

// BrowserConfig holds the headless browser process settings
type BrowserConfig struct {
	Headless       bool              `toml:"headless" yaml:"headless"`
	ViewportWidth  int64             `toml:"viewport_width" yaml:"viewport_width" validate:"gt=0"`
	ViewportHeight int64             `toml:"viewport_height" yaml:"viewport_height" validate:"gt=0"`
	Headers        map[string]string `toml:"headers" yaml:"headers"`                                            // Extra HTTP headers sent with every request
	ExtraFlags     []string          `toml:"extra_flags" yaml:"extra_flags"`                                    // Chromium command line switches
	UserAgent      string            `toml:"user_agent" yaml:"user_agent"`                                      // Used when user_agent_mode = "fixed"
	UserAgentMode  string            `toml:"user_agent_mode" yaml:"user_agent_mode" validate:"oneof=fixed random"` // "fixed" or "random"
	StartupTimeout string            `toml:"startup_timeout" yaml:"startup_timeout" validate:"duration"`         // e.g. "30s"
}

// RenderConfig holds the per-page rendering settings
type RenderConfig struct {
	WaitFor           string   `toml:"wait_for" yaml:"wait_for"`                                           // JS readiness predicate ("js:" prefix allowed)
	JSActions         []string `toml:"js_actions" yaml:"js_actions"`                                       // Scripts run after the page is ready
	PageTimeout       string   `toml:"page_timeout" yaml:"page_timeout" validate:"duration"`               // Hard timeout per page, e.g. "30s"
	DelayBeforeReturn string   `toml:"delay_before_return" yaml:"delay_before_return" validate:"duration"` // Settle delay before HTML extraction
	OnlyMainContent   bool     `toml:"only_main_content" yaml:"only_main_content"`                         // Strip navigation/boilerplate before conversion
}

// LoggingConfig controls the arbor logger
type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output" yaml:"output" validate:"dive,oneof=stdout console file"`
	File       string   `toml:"file" yaml:"file"`               // Log file used when output contains "file"
	TimeFormat string   `toml:"time_format" yaml:"time_format"` // default: "15:04:05"
}

// NewDefaultConfig creates a configuration with default values.
// The defaults reproduce a plain run: ./links.txt in, crawled_docs_<timestamp>.md out.
func NewDefaultConfig() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			LinksFile:     "./links.txt",
			OutputDir:     ".",
			FilePrefix:    "crawled_docs",
			SessionPrefix: "session",
		},
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Headers: map[string]string{
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
				"Accept-Language":           "en-US,en;q=0.9",
				"Accept-Encoding":           "gzip, deflate, br",
				"DNT":                       "1",
				"Upgrade-Insecure-Requests": "1",
			},
			ExtraFlags: []string{
				"--disable-gpu",
				"--disable-dev-shm-usage",
				"--no-sandbox",
				"--disable-blink-features=AutomationControlled",
				"--disable-features=VizDisplayCompositor",
			},
			UserAgentMode:  models.UserAgentModeRandom,
			StartupTimeout: "30s",
		},
		Render: RenderConfig{
			WaitFor: "js:() => (document.querySelector('#app') && document.querySelector('#app').children.length > 0) || " +
				"document.querySelector('main') || document.querySelector('.content') || document.readyState === 'complete'",
			JSActions: []string{
				"await new Promise(resolve => setTimeout(resolve, 2000));",
				"window.scrollTo(0, document.body.scrollHeight);",
				"await new Promise(resolve => setTimeout(resolve, 1000));",
			},
			PageTimeout:       "30s",
			DelayBeforeReturn: "3s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			File:       "./logs/doccrawl.log",
			TimeFormat: "15:04:05",
		},
	}
}

// headersSection decodes only browser.headers from a config file
type headersSection struct {
	Browser struct {
		Headers map[string]string `toml:"headers" yaml:"headers"`
	} `toml:"browser" yaml:"browser"`
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. Files ending in .yaml/.yml are decoded as YAML, everything else as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		unmarshal := toml.Unmarshal
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			unmarshal = yaml.Unmarshal
		}

		// A headers table in a file replaces the headers set so far instead of merging into them
		var headers headersSection
		if err := unmarshal(data, &headers); err == nil && headers.Browser.Headers != nil {
			config.Browser.Headers = nil
		}

		if err := unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies DOCCRAWL_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if linksFile := os.Getenv("DOCCRAWL_LINKS_FILE"); linksFile != "" {
		config.Crawler.LinksFile = linksFile
	}
	if outputDir := os.Getenv("DOCCRAWL_OUTPUT_DIR"); outputDir != "" {
		config.Crawler.OutputDir = outputDir
	}

	if level := os.Getenv("DOCCRAWL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("DOCCRAWL_LOG_OUTPUT"); output != "" {
		outputs := splitList(output)
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if headless := os.Getenv("DOCCRAWL_BROWSER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if userAgent := os.Getenv("DOCCRAWL_BROWSER_USER_AGENT"); userAgent != "" {
		config.Browser.UserAgent = userAgent
		config.Browser.UserAgentMode = models.UserAgentModeFixed
	}

	if pageTimeout := os.Getenv("DOCCRAWL_RENDER_PAGE_TIMEOUT"); pageTimeout != "" {
		if _, err := time.ParseDuration(pageTimeout); err == nil {
			config.Render.PageTimeout = pageTimeout
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, linksFile, outputDir, logLevel string) {
	if linksFile != "" {
		config.Crawler.LinksFile = linksFile
	}
	if outputDir != "" {
		config.Crawler.OutputDir = outputDir
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate checks the configuration for values the crawler can not work with
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d >= 0
	}); err != nil {
		return fmt.Errorf("failed to register duration validation: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Browser.UserAgentMode == models.UserAgentModeFixed && strings.TrimSpace(c.Browser.UserAgent) == "" {
		return fmt.Errorf("invalid configuration: browser.user_agent is required when user_agent_mode is %q", models.UserAgentModeFixed)
	}

	return nil
}

// RenderSettings builds the render configuration handed to the render engine.
// Call Validate first; unparsable durations are reported as errors here as well.
func (c *Config) RenderSettings() (models.RenderConfig, error) {
	startupTimeout, err := time.ParseDuration(c.Browser.StartupTimeout)
	if err != nil {
		return models.RenderConfig{}, fmt.Errorf("invalid browser.startup_timeout %q: %w", c.Browser.StartupTimeout, err)
	}
	pageTimeout, err := time.ParseDuration(c.Render.PageTimeout)
	if err != nil {
		return models.RenderConfig{}, fmt.Errorf("invalid render.page_timeout %q: %w", c.Render.PageTimeout, err)
	}
	delay, err := time.ParseDuration(c.Render.DelayBeforeReturn)
	if err != nil {
		return models.RenderConfig{}, fmt.Errorf("invalid render.delay_before_return %q: %w", c.Render.DelayBeforeReturn, err)
	}

	settings := models.RenderConfig{
		Headless:          c.Browser.Headless,
		ViewportWidth:     c.Browser.ViewportWidth,
		ViewportHeight:    c.Browser.ViewportHeight,
		Headers:           c.Browser.Headers,
		ExtraFlags:        c.Browser.ExtraFlags,
		UserAgent:         c.Browser.UserAgent,
		UserAgentMode:     c.Browser.UserAgentMode,
		StartupTimeout:    startupTimeout,
		WaitFor:           c.Render.WaitFor,
		JSActions:         c.Render.JSActions,
		PageTimeout:       pageTimeout,
		DelayBeforeReturn: delay,
		OnlyMainContent:   c.Render.OnlyMainContent,
	}

	return settings.Clone(), nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
