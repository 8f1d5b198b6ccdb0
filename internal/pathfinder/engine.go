// Package pathfinder follows first links from a start article until it
// reaches the target, a dead end, a loop or the hop limit, reusing and
// extending the path cache as it goes.
package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
)

const (
	// DefaultMaxHops bounds the number of links followed in one traversal.
	DefaultMaxHops = 100
	// DefaultRandomMarker identifies locators that must be resolved to a random article.
	DefaultRandomMarker = "Special:Random"
)

// Config tunes the engine.
type Config struct {
	// MaxHops is the number of links followed before giving up. Zero or
	// negative means no limit.
	MaxHops int
	// RandomMarker is the substring that marks a random-article locator.
	RandomMarker string
}

// EngineParams holds the dependencies of an Engine.
type EngineParams struct {
	Config   Config
	Source   ArticleSource
	Cache    *pathcache.Cache
	Logger   infralogger.Logger
	Observer Observer
}

// Result is the outcome of one traversal.
type Result struct {
	Path domain.Path `json:"path"`
	// Locators holds the locators of the nodes fetched in this traversal, in
	// path order. Spliced cache suffixes have no locators.
	Locators []string       `json:"-"`
	Outcome  domain.Outcome `json:"outcome"`
	// Cached is set when any part of the path came from the cache.
	Cached bool `json:"cached"`
	// Hops counts the links followed through the source.
	Hops int `json:"hops"`
}

// Engine finds first-link paths. It is safe for concurrent use; traversals
// share the cache handle.
type Engine struct {
	cfg      Config
	source   ArticleSource
	cache    *pathcache.Cache
	log      infralogger.Logger
	observer Observer

	targetMu     sync.Mutex
	targetTitles map[string]string
}

// NewEngine creates an engine. Source and Cache are required.
func NewEngine(p EngineParams) *Engine {
	cfg := p.Config
	if cfg.RandomMarker == "" {
		cfg.RandomMarker = DefaultRandomMarker
	}
	log := p.Logger
	if log == nil {
		log = infralogger.NewNop()
	}
	var observer Observer = nopObserver{}
	if p.Observer != nil {
		observer = p.Observer
	}

	return &Engine{
		cfg:          cfg,
		source:       p.Source,
		cache:        p.Cache,
		log:          log,
		observer:     observer,
		targetTitles: make(map[string]string),
	}
}

// traversal is the mutable state of one FindPath call.
type traversal struct {
	target      string
	targetTitle string
	visited     domain.Path
	locators    []string
	hops        int
}

// FindPath follows first links from start until the target or a terminal
// article. Every terminal outcome stores the newly proven suffixes in the
// cache and flushes it. On a source failure the partial path is returned
// together with the error.
func (e *Engine) FindPath(ctx context.Context, start, target string) (*Result, error) {
	begin := time.Now()

	res, err := e.findPath(ctx, start, target)
	if res == nil {
		res = &Result{Outcome: domain.OutcomeError}
	}

	e.observer.ObserveTraversal(string(res.Outcome), res.Hops, time.Since(begin).Seconds())
	return res, err
}

func (e *Engine) findPath(ctx context.Context, start, target string) (*Result, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: start and target are required", domain.ErrInvalidLocator)
	}

	locator := start
	if strings.Contains(start, e.cfg.RandomMarker) {
		resolved, err := e.source.ResolveRandom(ctx, start)
		if err != nil {
			return nil, fmt.Errorf("resolve start %s: %w", start, err)
		}
		e.log.Debug("Random article resolved", infralogger.String("locator", resolved))
		locator = resolved
	}

	title, err := e.source.TitleOf(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("title start %s: %w", locator, err)
	}
	e.log.Debug("Starting traversal", infralogger.String("title", title))

	if cached, ok := e.lookup(title); ok {
		path, outcome := e.fromCache(target, cached)
		e.log.Debug("Start article answered from cache", infralogger.String("title", title))
		return &Result{
			Path:     path,
			Locators: []string{locator},
			Outcome:  outcome,
			Cached:   true,
		}, nil
	}

	t := &traversal{
		target:   target,
		visited:  domain.Path{title},
		locators: []string{locator},
	}

	t.targetTitle, err = e.TargetTitle(ctx, target)
	if err != nil {
		return e.abort(ctx, t, fmt.Errorf("title target %s: %w", target, err))
	}

	if t.isTarget(locator, title) {
		return e.conclude(ctx, t, nil, domain.OutcomeSuccess, nil)
	}

	return e.walk(ctx, t, locator)
}

// walk runs the link-following loop from current.
func (e *Engine) walk(ctx context.Context, t *traversal, current string) (*Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return e.abort(ctx, t, err)
		}
		if e.cfg.MaxHops > 0 && t.hops >= e.cfg.MaxHops {
			e.log.Warn("Hop limit reached",
				infralogger.String("start", t.visited.Head()),
				infralogger.Int("max_hops", e.cfg.MaxHops),
			)
			return e.conclude(ctx, t, nil, domain.OutcomeExceeded, nil)
		}

		next, err := e.source.FirstValidLink(ctx, current)
		if err != nil {
			return e.abort(ctx, t, fmt.Errorf("first link of %s: %w", current, err))
		}
		if next == "" {
			e.log.Debug("No next link, path terminated", infralogger.String("title", t.visited.Last()))
			return e.conclude(ctx, t, nil, domain.OutcomeDeadEnd, nil)
		}
		t.hops++

		nextTitle, err := e.source.TitleOf(ctx, next)
		if err != nil {
			return e.abort(ctx, t, fmt.Errorf("title %s: %w", next, err))
		}
		e.log.Debug("Next link", infralogger.String("title", nextTitle), infralogger.String("locator", next))

		if t.isTarget(next, nextTitle) {
			t.visited = append(t.visited, nextTitle)
			t.locators = append(t.locators, next)
			e.log.Debug("Reached target article", infralogger.Int("hops", t.hops))
			return e.conclude(ctx, t, nil, domain.OutcomeSuccess, nil)
		}

		if cached, ok := e.lookup(nextTitle); ok {
			e.log.Debug("Found cached path to destination", infralogger.String("title", nextTitle))
			return e.splice(ctx, t, cached)
		}

		if t.visited.Contains(nextTitle) {
			e.log.Debug("Loop detected, path terminated", infralogger.String("title", nextTitle))
			return e.conclude(ctx, t, nil, domain.OutcomeLoop, nil)
		}

		t.visited = append(t.visited, nextTitle)
		t.locators = append(t.locators, next)
		current = next
	}
}

// splice completes the traversal with a cached suffix whose head is the next
// node. The suffix is cut at the target so a path recorded for another target
// never runs past this one.
func (e *Engine) splice(ctx context.Context, t *traversal, cached domain.Path) (*Result, error) {
	suffix := cached
	outcome := domain.OutcomeDeadEnd
	for i, title := range cached {
		if title == t.targetTitle {
			suffix = cached[:i+1]
			outcome = domain.OutcomeSuccess
			break
		}
		if t.visited.Contains(title) {
			// A stale entry leads back into this traversal; stop before the repeat.
			suffix = cached[:i]
			outcome = domain.OutcomeLoop
			break
		}
	}
	if len(suffix) == 0 {
		return e.conclude(ctx, t, nil, domain.OutcomeLoop, nil)
	}

	res, err := e.conclude(ctx, t, suffix, outcome, nil)
	res.Cached = true
	return res, err
}

// conclude builds the result for visited ++ suffix, stores its proven
// suffixes when the outcome is terminal and flushes the cache. Unfinished
// traversals prove nothing but still flush suffixes stored by others.
func (e *Engine) conclude(ctx context.Context, t *traversal, suffix domain.Path, outcome domain.Outcome, cause error) (*Result, error) {
	full := make(domain.Path, 0, len(t.visited)+len(suffix))
	full = append(full, t.visited...)
	full = append(full, suffix...)

	res := &Result{
		Path:     full,
		Locators: t.locators,
		Outcome:  outcome,
		Hops:     t.hops,
	}

	if outcome.Terminal() {
		e.cache.Put(discoveredSuffixes(full, len(t.visited)))
	}

	flushCtx := ctx
	if ctx.Err() != nil {
		flushCtx = context.WithoutCancel(ctx)
	}
	if err := e.flush(flushCtx); err != nil {
		if cause == nil {
			return res, err
		}
		return res, errors.Join(cause, err)
	}
	return res, cause
}

// abort ends a traversal on a source failure or cancellation.
func (e *Engine) abort(ctx context.Context, t *traversal, cause error) (*Result, error) {
	e.log.Warn("Traversal aborted",
		infralogger.String("start", t.visited.Head()),
		infralogger.Int("hops", t.hops),
		infralogger.Error(cause),
	)
	return e.conclude(ctx, t, nil, domain.OutcomeError, cause)
}

func (e *Engine) flush(ctx context.Context) error {
	err := e.cache.Flush(ctx)
	e.observer.ObserveCacheFlush(err)
	if err != nil {
		e.log.Error("Failed to persist path cache", infralogger.Error(err))
	}
	return err
}

func (e *Engine) lookup(title string) (domain.Path, bool) {
	path, ok := e.cache.Get(title)
	e.observer.ObserveCacheLookup(ok)
	return path, ok
}

// fromCache labels a path answered wholly from the cache. Once the target
// title is known the path is cut at the target.
func (e *Engine) fromCache(target string, path domain.Path) (domain.Path, domain.Outcome) {
	e.targetMu.Lock()
	targetTitle, known := e.targetTitles[target]
	e.targetMu.Unlock()

	if !known {
		return path, domain.OutcomeCached
	}
	if i := slices.Index(path, targetTitle); i >= 0 {
		return path[:i+1], domain.OutcomeSuccess
	}
	return path, domain.OutcomeDeadEnd
}

// TargetTitle returns the canonical title of target, fetching it once per engine.
func (e *Engine) TargetTitle(ctx context.Context, target string) (string, error) {
	e.targetMu.Lock()
	title, ok := e.targetTitles[target]
	e.targetMu.Unlock()
	if ok {
		return title, nil
	}

	title, err := e.source.TitleOf(ctx, target)
	if err != nil {
		return "", err
	}

	e.targetMu.Lock()
	e.targetTitles[target] = title
	e.targetMu.Unlock()
	return title, nil
}

func (t *traversal) isTarget(locator, title string) bool {
	return locator == t.target || title == t.targetTitle
}

// discoveredSuffixes returns full[i:] keyed by full[i] for every visited
// index whose suffix has more than one title.
func discoveredSuffixes(full domain.Path, visited int) map[string]domain.Path {
	suffixes := make(map[string]domain.Path, visited)
	for i := range min(visited, len(full)) {
		if len(full)-i > 1 {
			suffixes[full[i]] = full[i:].Clone()
		}
	}
	return suffixes
}
