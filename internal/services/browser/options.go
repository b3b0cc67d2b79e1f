package browser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/ternarybob/doccrawl/internal/models"
)

// Readiness predicate prefixes
const (
	jsPrefix  = "js:"
	cssPrefix = "css:"
)

var functionRe = regexp.MustCompile(`^(async\s+)?(function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`)

// allocatorOptions builds the exec allocator options for one browser process
func allocatorOptions(config models.RenderConfig, userAgent string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(userAgent),
	)

	if config.ViewportWidth > 0 && config.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(int(config.ViewportWidth), int(config.ViewportHeight)))
	}

	for _, raw := range config.ExtraFlags {
		name, value, ok := parseFlag(raw)
		if !ok {
			continue
		}
		opts = append(opts, chromedp.Flag(name, value))
	}

	return opts
}

// parseFlag splits "--name=value" into its parts; bare switches map to true
func parseFlag(raw string) (string, interface{}, bool) {
	flag := strings.TrimLeft(strings.TrimSpace(raw), "-")
	if flag == "" {
		return "", nil, false
	}

	name, value, hasValue := strings.Cut(flag, "=")
	if !hasValue {
		return name, true, true
	}
	return name, value, true
}

// extraHeaders converts configured headers into the CDP representation
func extraHeaders(headers map[string]string) network.Headers {
	converted := make(network.Headers, len(headers))
	for k, v := range headers {
		converted[k] = v
	}
	return converted
}

// readinessAction returns the action that waits for the page to be ready, or nil when no predicate is set.
// "css:<selector>" waits for the element, "js:<code>" (or bare code) polls until the code is truthy.
func readinessAction(waitFor string) chromedp.Action {
	predicate := strings.TrimSpace(waitFor)
	if predicate == "" {
		return nil
	}

	if strings.HasPrefix(predicate, cssPrefix) {
		return chromedp.WaitReady(strings.TrimSpace(strings.TrimPrefix(predicate, cssPrefix)), chromedp.ByQuery)
	}

	var ready bool
	return chromedp.PollFunction(readinessFunction(predicate), &ready)
}

// readinessFunction wraps a predicate so it always yields a boolean
func readinessFunction(predicate string) string {
	code := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(predicate), jsPrefix))
	if functionRe.MatchString(code) {
		return fmt.Sprintf("() => Boolean((%s)())", code)
	}
	return fmt.Sprintf("() => Boolean(%s)", code)
}

// actionScript wraps a post-load snippet so top-level await works
func actionScript(snippet string) string {
	return "(async () => {\n" + snippet + "\n})()"
}
