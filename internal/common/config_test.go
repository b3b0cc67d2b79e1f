package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/doccrawl/internal/models"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "./links.txt", config.Crawler.LinksFile)
	assert.Equal(t, ".", config.Crawler.OutputDir)
	assert.Equal(t, "crawled_docs", config.Crawler.FilePrefix)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, int64(1920), config.Browser.ViewportWidth)
	assert.Equal(t, int64(1080), config.Browser.ViewportHeight)
	assert.Equal(t, models.UserAgentModeRandom, config.Browser.UserAgentMode)
	assert.Contains(t, config.Browser.ExtraFlags, "--no-sandbox")
	assert.Len(t, config.Render.JSActions, 3)
	assert.True(t, strings.HasPrefix(config.Render.WaitFor, "js:"))
	assert.NoError(t, config.Validate())
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig().Crawler, config.Crawler)
}

func TestLoadFromFiles_TOML(t *testing.T) {
	path := writeConfigFile(t, "doccrawl.toml", `
[crawler]
links_file = "docs/links.txt"
output_dir = "out"

[browser]
headless = false
viewport_width = 1280

[render]
page_timeout = "45s"
only_main_content = true

[logging]
level = "debug"
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "docs/links.txt", config.Crawler.LinksFile)
	assert.Equal(t, "out", config.Crawler.OutputDir)
	assert.Equal(t, "crawled_docs", config.Crawler.FilePrefix, "unset keys keep their defaults")
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, int64(1280), config.Browser.ViewportWidth)
	assert.Equal(t, int64(1080), config.Browser.ViewportHeight)
	assert.Equal(t, "45s", config.Render.PageTimeout)
	assert.True(t, config.Render.OnlyMainContent)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromFiles_YAML(t *testing.T) {
	path := writeConfigFile(t, "doccrawl.yaml", `
crawler:
  links_file: urls.txt
render:
  delay_before_return: 500ms
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "urls.txt", config.Crawler.LinksFile)
	assert.Equal(t, "500ms", config.Render.DelayBeforeReturn)
}

func TestLoadFromFiles_HeadersReplaceDefaults(t *testing.T) {
	tomlPath := writeConfigFile(t, "doccrawl.toml", `
[browser.headers]
DNT = "0"
`)
	config, err := LoadFromFiles(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DNT": "0"}, config.Browser.Headers)

	yamlPath := writeConfigFile(t, "doccrawl.yaml", `
browser:
  headers:
    Accept-Language: de-DE
`)
	config, err = LoadFromFiles(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Accept-Language": "de-DE"}, config.Browser.Headers)

	withoutHeaders := writeConfigFile(t, "other.toml", "[browser]\nheadless = false\n")
	config, err = LoadFromFiles(withoutHeaders)
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig().Browser.Headers, config.Browser.Headers, "files without headers keep the defaults")
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	base := writeConfigFile(t, "base.toml", "[crawler]\nlinks_file = \"base.txt\"\noutput_dir = \"base\"\n")
	override := writeConfigFile(t, "override.toml", "[crawler]\nlinks_file = \"override.txt\"\n")

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, "override.txt", config.Crawler.LinksFile)
	assert.Equal(t, "base", config.Crawler.OutputDir)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	broken := writeConfigFile(t, "broken.toml", "[crawler\nlinks_file = ")
	_, err = LoadFromFiles(broken)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCCRAWL_LINKS_FILE", "env-links.txt")
	t.Setenv("DOCCRAWL_OUTPUT_DIR", "env-out")
	t.Setenv("DOCCRAWL_LOG_LEVEL", "warn")
	t.Setenv("DOCCRAWL_LOG_OUTPUT", "stdout, file")
	t.Setenv("DOCCRAWL_BROWSER_HEADLESS", "false")
	t.Setenv("DOCCRAWL_BROWSER_USER_AGENT", "Test-Agent/1.0")
	t.Setenv("DOCCRAWL_RENDER_PAGE_TIMEOUT", "not-a-duration")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "env-links.txt", config.Crawler.LinksFile)
	assert.Equal(t, "env-out", config.Crawler.OutputDir)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, []string{"stdout", "file"}, config.Logging.Output)
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, "Test-Agent/1.0", config.Browser.UserAgent)
	assert.Equal(t, models.UserAgentModeFixed, config.Browser.UserAgentMode)
	assert.Equal(t, "30s", config.Render.PageTimeout, "invalid durations are ignored")
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, "flag-links.txt", "", "debug")

	assert.Equal(t, "flag-links.txt", config.Crawler.LinksFile)
	assert.Equal(t, ".", config.Crawler.OutputDir)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing links file", func(c *Config) { c.Crawler.LinksFile = "" }},
		{"zero viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }},
		{"unknown user agent mode", func(c *Config) { c.Browser.UserAgentMode = "rotating" }},
		{"fixed mode without agent", func(c *Config) { c.Browser.UserAgentMode = models.UserAgentModeFixed }},
		{"bad page timeout", func(c *Config) { c.Render.PageTimeout = "thirty" }},
		{"negative delay", func(c *Config) { c.Render.DelayBeforeReturn = "-1s" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log output", func(c *Config) { c.Logging.Output = []string{"syslog"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestRenderSettings(t *testing.T) {
	config := NewDefaultConfig()

	settings, err := config.RenderSettings()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, settings.PageTimeout)
	assert.Equal(t, 3*time.Second, settings.DelayBeforeReturn)
	assert.Equal(t, 30*time.Second, settings.StartupTimeout)
	assert.Equal(t, config.Render.WaitFor, settings.WaitFor)
	assert.Equal(t, config.Browser.Headers, settings.Headers)

	settings.Headers["DNT"] = "0"
	assert.Equal(t, "1", config.Browser.Headers["DNT"], "settings must not share maps with the config")

	config.Render.PageTimeout = "soon"
	_, err = config.RenderSettings()
	assert.Error(t, err)
}

func TestNewSessionToken(t *testing.T) {
	first := NewSessionToken("crawl")
	second := NewSessionToken("crawl")

	assert.True(t, strings.HasPrefix(string(first), "crawl_"))
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(string(NewSessionToken("")), "session_"))
}

func TestDiscoverConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "doccrawl.yaml"), []byte("crawler:\n  links_file: urls.txt\n"), 0644))
	assert.Equal(t, "doccrawl.yaml", DiscoverConfigFile())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "doccrawl.toml"), []byte("[crawler]\n"), 0644))
	assert.Equal(t, "doccrawl.toml", DiscoverConfigFile(), "toml takes precedence")

	assert.Equal(t, AppName, filepath.Base(ConfigDir()))
}
