package interfaces

// Reporter receives progress and outcome events for a crawl run
type Reporter interface {
	// Links source
	SourceNotFound(path string)
	SourceUnreadable(path string, err error)
	SourceFailed(path string, err error)

	// Crawl
	URLsFound(count int)
	NoURLs()
	EngineStartFailed(err error)
	PageSucceeded(url string, contentLength int)
	PageFailed(url string, reason string)
	EngineReleaseFailed(err error)

	// Output
	Saved(path string, pages int, failed int)
	NothingCrawled()
	SaveFailed(path string, err error)
}
