package interfaces

// TransformService converts rendered HTML into markdown
type TransformService interface {
	// HTMLToMarkdown converts HTML content to markdown.
	// baseURL is used for resolving relative links.
	// When mainContentOnly is set, navigation and boilerplate are stripped first.
	HTMLToMarkdown(html string, baseURL string, mainContentOnly bool) (string, error)

	// ValidateHTML checks if the input looks like HTML
	ValidateHTML(content string) error
}
