package transform

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/interfaces"
)

// Elements that never carry readable page content
const nonContentSelector = "script, style, noscript, template, iframe, svg"

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Service converts rendered HTML to markdown
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.TransformService = (*Service)(nil)

// NewService creates a new transform service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// HTMLToMarkdown converts HTML content to markdown.
// baseURL is used for resolving relative links.
// With mainContentOnly the article body is extracted with readability before conversion.
func (s *Service) HTMLToMarkdown(content string, baseURL string, mainContentOnly bool) (string, error) {
	if content == "" {
		return "", nil
	}

	s.logger.Debug().
		Int("html_length", len(content)).
		Str("base_url", baseURL).
		Bool("main_content_only", mainContentOnly).
		Msg("Converting HTML to markdown")

	source := content
	if mainContentOnly {
		source = s.extractMainContent(content, baseURL)
	}

	cleaned, err := removeNonContent(source)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML cleanup failed, converting raw HTML")
		cleaned = source
	}

	mdConverter := md.NewConverter(md.DomainFromURL(baseURL), true, nil)
	converted, err := mdConverter.ConvertString(cleaned)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return stripHTMLTags(cleaned), nil
	}

	if strings.TrimSpace(converted) == "" {
		s.logger.Warn().
			Int("html_length", len(content)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		return stripHTMLTags(cleaned), nil
	}

	s.logger.Debug().
		Int("markdown_length", len(converted)).
		Int("html_length", len(content)).
		Msg("HTML to markdown conversion successful")

	return converted, nil
}

// extractMainContent returns the readability article HTML, or the input when no article is found
func (s *Service) extractMainContent(content string, baseURL string) string {
	pageURL, err := url.Parse(baseURL)
	if err != nil {
		pageURL = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(content), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		s.logger.Debug().Err(err).Str("base_url", baseURL).Msg("No main content found, converting full page")
		return content
	}

	if article.Title != "" && !strings.Contains(article.Content, "<h1") {
		return "<h1>" + html.EscapeString(article.Title) + "</h1>" + article.Content
	}
	return article.Content
}

// removeNonContent drops scripts, styles and similar nodes
func removeNonContent(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(nonContentSelector).Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return cleaned, nil
}

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	stripped := tagRe.ReplaceAllString(htmlStr, "")
	cleaned := spaceRe.ReplaceAllString(stripped, " ")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	)

	return strings.TrimSpace(replacer.Replace(cleaned))
}

// ValidateHTML checks if the input looks like HTML
func (s *Service) ValidateHTML(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("empty content")
	}

	if !strings.Contains(trimmed, "<") {
		return fmt.Errorf("content does not appear to be HTML")
	}

	return nil
}
