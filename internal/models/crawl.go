package models

import (
	"fmt"
	"strings"
)

// PageSeparator joins page sections in the output artifact
const PageSeparator = "\n\n---\n\n"

// SessionToken identifies the browser session shared by every fetch in one crawl run
type SessionToken string

// FetchOutcome is the result of fetching a single URL.
// It is either a FetchSuccess or a FetchFailure.
type FetchOutcome interface {
	fetchOutcome()
}

// FetchSuccess carries the rendered markdown of a page
type FetchSuccess struct {
	Content string
}

// FetchFailure carries the reason a page could not be fetched
type FetchFailure struct {
	Reason string
}

func (FetchSuccess) fetchOutcome() {}
func (FetchFailure) fetchOutcome() {}

// Succeeded builds a successful outcome
func Succeeded(content string) FetchOutcome {
	return FetchSuccess{Content: content}
}

// Failed builds a failed outcome, formatting the reason like fmt.Sprintf
func Failed(format string, args ...interface{}) FetchOutcome {
	return FetchFailure{Reason: fmt.Sprintf(format, args...)}
}

// PageRecord is one successfully crawled page
type PageRecord struct {
	URL     string
	Content string
}

// NewPageRecord pairs a URL with its rendered content, kept verbatim
func NewPageRecord(url, content string) PageRecord {
	return PageRecord{URL: url, Content: content}
}

// Format renders the record as a titled markdown section
func (r PageRecord) Format() string {
	return "# " + r.URL + "\n\n" + r.Content
}

// CrawlReport accumulates page records in input order
type CrawlReport struct {
	Pages     []PageRecord
	Attempted int
	Failed    int
}

// Add appends a page record
func (r *CrawlReport) Add(record PageRecord) {
	r.Pages = append(r.Pages, record)
}

// Len returns the number of crawled pages
func (r *CrawlReport) Len() int {
	return len(r.Pages)
}

// IsEmpty reports whether no page was crawled
func (r *CrawlReport) IsEmpty() bool {
	return len(r.Pages) == 0
}

// URLs returns the URLs of the crawled pages in order
func (r *CrawlReport) URLs() []string {
	urls := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		urls = append(urls, p.URL)
	}
	return urls
}

// Body joins all formatted page records with PageSeparator
func (r *CrawlReport) Body() string {
	sections := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		sections = append(sections, p.Format())
	}
	return strings.Join(sections, PageSeparator)
}
