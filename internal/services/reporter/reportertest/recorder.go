// Package reportertest provides an in-memory reporter for tests.
package reportertest

import (
	"fmt"
	"sync"

	"github.com/ternarybob/doccrawl/internal/interfaces"
)

// Event is one reported crawl event
type Event struct {
	Kind    string
	URL     string
	Path    string
	Count   int
	Message string
}

// Event kinds
const (
	KindSourceNotFound    = "source_not_found"
	KindSourceUnreadable  = "source_unreadable"
	KindSourceFailed      = "source_failed"
	KindURLsFound         = "urls_found"
	KindNoURLs            = "no_urls"
	KindEngineStartFailed = "engine_start_failed"
	KindPageSucceeded     = "page_succeeded"
	KindPageFailed        = "page_failed"
	KindEngineRelease     = "engine_release_failed"
	KindSaved             = "saved"
	KindNothingCrawled    = "nothing_crawled"
	KindSaveFailed        = "save_failed"
)

// Recorder keeps reported events in memory, in order
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ interfaces.Reporter = (*Recorder)(nil)

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfKind returns the recorded events of one kind
func (r *Recorder) OfKind(kind string) []Event {
	var matched []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			matched = append(matched, e)
		}
	}
	return matched
}

func (r *Recorder) SourceNotFound(path string) {
	r.add(Event{Kind: KindSourceNotFound, Path: path})
}

func (r *Recorder) SourceUnreadable(path string, err error) {
	r.add(Event{Kind: KindSourceUnreadable, Path: path, Message: errString(err)})
}

func (r *Recorder) SourceFailed(path string, err error) {
	r.add(Event{Kind: KindSourceFailed, Path: path, Message: errString(err)})
}

func (r *Recorder) URLsFound(count int) {
	r.add(Event{Kind: KindURLsFound, Count: count})
}

func (r *Recorder) NoURLs() {
	r.add(Event{Kind: KindNoURLs})
}

func (r *Recorder) EngineStartFailed(err error) {
	r.add(Event{Kind: KindEngineStartFailed, Message: errString(err)})
}

func (r *Recorder) PageSucceeded(url string, contentLength int) {
	r.add(Event{Kind: KindPageSucceeded, URL: url, Count: contentLength})
}

func (r *Recorder) PageFailed(url string, reason string) {
	r.add(Event{Kind: KindPageFailed, URL: url, Message: reason})
}

func (r *Recorder) EngineReleaseFailed(err error) {
	r.add(Event{Kind: KindEngineRelease, Message: errString(err)})
}

func (r *Recorder) Saved(path string, pages int, failed int) {
	r.add(Event{Kind: KindSaved, Path: path, Count: pages, Message: fmt.Sprintf("failed=%d", failed)})
}

func (r *Recorder) NothingCrawled() {
	r.add(Event{Kind: KindNothingCrawled})
}

func (r *Recorder) SaveFailed(path string, err error) {
	r.add(Event{Kind: KindSaveFailed, Path: path, Message: errString(err)})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
