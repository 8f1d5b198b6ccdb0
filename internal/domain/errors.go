package domain

import "errors"

var (
	// ErrResolution is returned when a random-article locator cannot be
	// resolved to a concrete article.
	ErrResolution = errors.New("resolve random article")
	// ErrFetch is returned when an article cannot be fetched or parsed.
	ErrFetch = errors.New("fetch article")
	// ErrCacheIO is returned when the path cache cannot be read or written.
	ErrCacheIO = errors.New("path cache io")
	// ErrInvalidLocator is returned for empty or unparseable article locators.
	ErrInvalidLocator = errors.New("invalid article locator")
)
