package pathfinder

import "context"

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// ArticleSource is everything the engine needs from the encyclopedia.
type ArticleSource interface {
	// ResolveRandom turns a random-article locator into a concrete article
	// locator. Failures wrap domain.ErrResolution.
	ResolveRandom(ctx context.Context, locator string) (string, error)
	// FirstValidLink returns the first qualifying link of the article, or ""
	// when it has none. Failures wrap domain.ErrFetch.
	FirstValidLink(ctx context.Context, locator string) (string, error)
	// TitleOf returns the canonical title of the article. Failures wrap domain.ErrFetch.
	TitleOf(ctx context.Context, locator string) (string, error)
}

// Observer receives traversal telemetry.
type Observer interface {
	ObserveTraversal(outcome string, hops int, seconds float64)
	ObserveCacheLookup(hit bool)
	ObserveCacheFlush(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveTraversal(string, int, float64) {}
func (nopObserver) ObserveCacheLookup(bool)               {}
func (nopObserver) ObserveCacheFlush(error)               {}
