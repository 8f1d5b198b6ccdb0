package pathfinder_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder/mocks"
)

const target = "https://en.wikipedia.org/wiki/Target"

func wikiURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + title
}

type fixture struct {
	source *mocks.MockArticleSource
	store  *pathcache.MemoryStore
	cache  *pathcache.Cache
	engine *pathfinder.Engine
}

func newFixture(t *testing.T, seed map[string]domain.Path, cfg pathfinder.Config) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockArticleSource(ctrl)
	store := pathcache.NewMemoryStore(seed)
	cache := pathcache.New(store, infralogger.NewNop())
	cache.Load(context.Background())

	return &fixture{
		source: source,
		store:  store,
		cache:  cache,
		engine: pathfinder.NewEngine(pathfinder.EngineParams{
			Config: cfg,
			Source: source,
			Cache:  cache,
			Logger: infralogger.NewNop(),
		}),
	}
}

// titled registers TitleOf for each title's canonical locator.
func (f *fixture) titled(titles ...string) {
	for _, title := range titles {
		f.source.EXPECT().TitleOf(gomock.Any(), wikiURL(title)).Return(title, nil).AnyTimes()
	}
}

// link registers FirstValidLink from -> to ("" for a dead end).
func (f *fixture) link(from, to string) {
	next := ""
	if to != "" {
		next = wikiURL(to)
	}
	f.source.EXPECT().FirstValidLink(gomock.Any(), wikiURL(from)).Return(next, nil).Times(1)
}

func TestFindPath_TargetReachability(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("Start", "Mid", "Target")
	f.link("Start", "Mid")
	f.link("Mid", "Target")

	res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Mid", "Target"}, res.Path)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, res.Hops)
	assert.False(t, res.Cached)
	assert.Equal(t, []string{wikiURL("Start"), wikiURL("Mid"), target}, res.Locators)

	persisted, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Path{
		"Start": {"Start", "Mid", "Target"},
		"Mid":   {"Mid", "Target"},
	}, persisted)
	assert.NotContains(t, persisted, "Target")
}

func TestFindPath_SpliceCorrectness(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]domain.Path{"Mid": {"Mid", "Target"}}, pathfinder.Config{})
	f.titled("Start", "Mid", "Target")
	f.link("Start", "Mid")
	// No FirstValidLink expectation for Mid: gomock fails the test if it is asked.

	res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Mid", "Target"}, res.Path)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, res.Hops)

	got, ok := f.cache.Get("Start")
	require.True(t, ok)
	assert.Equal(t, domain.Path{"Start", "Mid", "Target"}, got)
}

func TestFindPath_CacheHitIsIdempotent(t *testing.T) {
	t.Parallel()

	cached := domain.Path{"Start", "Mid", "Target"}
	f := newFixture(t, map[string]domain.Path{"Start": cached}, pathfinder.Config{})
	f.source.EXPECT().TitleOf(gomock.Any(), wikiURL("Start")).Return("Start", nil).Times(2)

	for range 2 {
		res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)
		require.NoError(t, err)
		assert.Equal(t, cached, res.Path)
		assert.True(t, res.Cached)
		assert.Equal(t, domain.OutcomeCached, res.Outcome)
		assert.Zero(t, res.Hops)
	}
	assert.Zero(t, f.store.Saves())
}

func TestFindPath_CacheHitClassifiedOnceTargetKnown(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]domain.Path{"Start": {"Start", "Mid", "Target"}}, pathfinder.Config{})
	f.titled("Start", "Target")

	title, err := f.engine.TargetTitle(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, "Target", title)

	res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
}

func TestFindPath_CachedPathIsCutAtTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		seed       map[string]domain.Path
		links      [][2]string
		wantPath   domain.Path
		wantCached bool
	}{
		{
			name:       "splice through target",
			seed:       map[string]domain.Path{"Mid": {"Mid", "Target", "Beyond"}},
			links:      [][2]string{{"Start", "Mid"}},
			wantPath:   domain.Path{"Start", "Mid", "Target"},
			wantCached: true,
		},
		{
			name:     "target has its own cached path",
			seed:     map[string]domain.Path{"Target": {"Target", "Beyond"}},
			links:    [][2]string{{"Start", "Target"}},
			wantPath: domain.Path{"Start", "Target"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.seed, pathfinder.Config{})
			f.titled("Start", "Mid", "Target")
			for _, l := range tt.links {
				f.link(l[0], l[1])
			}

			res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)

			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
			assert.Equal(t, tt.wantPath, res.Path)
			assert.Equal(t, tt.wantCached, res.Cached)

			got, ok := f.cache.Get("Start")
			require.True(t, ok)
			assert.Equal(t, tt.wantPath, got)
		})
	}
}

func TestFindPath_StartCacheHitIsCutAtKnownTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]domain.Path{"Start": {"Start", "Target", "Beyond"}}, pathfinder.Config{})
	f.titled("Start", "Target")

	_, err := f.engine.TargetTitle(context.Background(), target)
	require.NoError(t, err)

	res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
	assert.Equal(t, domain.Path{"Start", "Target"}, res.Path)
	assert.True(t, res.Cached)
}

func TestFindPath_LoopTermination(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("A", "B", "C", "Target")
	f.link("A", "B")
	f.link("B", "C")
	f.link("C", "B")

	res, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"A", "B", "C"}, res.Path)
	assert.Equal(t, domain.OutcomeLoop, res.Outcome)

	snapshot := f.cache.Snapshot()
	assert.Equal(t, domain.Path{"A", "B", "C"}, snapshot["A"])
	assert.Equal(t, domain.Path{"B", "C"}, snapshot["B"])
	assert.NotContains(t, snapshot, "C")
}

func TestFindPath_DeadEndIsCachedAndReused(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("A", "B", "Target")
	f.link("A", "B")
	f.link("B", "")

	res, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"A", "B"}, res.Path)
	assert.Equal(t, domain.OutcomeDeadEnd, res.Outcome)

	again, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)
	require.NoError(t, err)
	assert.Equal(t, domain.Path{"A", "B"}, again.Path)
	assert.True(t, again.Cached)
	assert.Equal(t, domain.OutcomeDeadEnd, again.Outcome)
}

func TestFindPath_SingleNodeDeadEndIsNotStored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("Orphan", "Target")
	f.link("Orphan", "")

	res, err := f.engine.FindPath(context.Background(), wikiURL("Orphan"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Orphan"}, res.Path)
	assert.Zero(t, f.cache.Len())
	assert.Zero(t, f.store.Saves())
}

func TestFindPath_SuffixConsistency(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]domain.Path{"D": {"D", "Target"}}, pathfinder.Config{})
	f.titled("A", "B", "C", "D", "Target", "X")
	f.link("A", "B")
	f.link("B", "C")
	f.link("C", "D")
	f.link("X", "B")

	_, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)
	require.NoError(t, err)
	res, err := f.engine.FindPath(context.Background(), wikiURL("X"), target)
	require.NoError(t, err)
	assert.Equal(t, domain.Path{"X", "B", "C", "D", "Target"}, res.Path)

	snapshot := f.cache.Snapshot()
	for title, path := range snapshot {
		assert.Equal(t, title, path.Head())
		for i := 1; i < len(path)-1; i++ {
			assert.Equal(t, path[i:], snapshot[path[i]], "suffix of %s at %d", title, i)
		}
	}
}

func TestFindPath_TargetMatchedByTitle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("Start", "Target")
	redirect := "https://en.wikipedia.org/wiki/Target_(redirect)"
	f.source.EXPECT().FirstValidLink(gomock.Any(), wikiURL("Start")).Return(redirect, nil)
	f.source.EXPECT().TitleOf(gomock.Any(), redirect).Return("Target", nil)

	res, err := f.engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Target"}, res.Path)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
}

func TestFindPath_StartIsTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("Target")

	res, err := f.engine.FindPath(context.Background(), target, target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Target"}, res.Path)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
	assert.Zero(t, f.cache.Len())
}

func TestFindPath_RandomStart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("Start", "Target")
	random := "https://en.wikipedia.org/wiki/Special:Random"
	f.source.EXPECT().ResolveRandom(gomock.Any(), random).Return(wikiURL("Start"), nil)
	f.link("Start", "Target")

	res, err := f.engine.FindPath(context.Background(), random, target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Target"}, res.Path)
}

func TestFindPath_ResolutionFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	random := "https://en.wikipedia.org/wiki/Special:Random"
	f.source.EXPECT().ResolveRandom(gomock.Any(), random).
		Return("", fmt.Errorf("%w: no Location header", domain.ErrResolution))

	res, err := f.engine.FindPath(context.Background(), random, target)

	require.ErrorIs(t, err, domain.ErrResolution)
	require.NotNil(t, res)
	assert.Equal(t, domain.OutcomeError, res.Outcome)
	assert.Empty(t, res.Path)
}

func TestFindPath_FetchFailureReturnsPartialPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]domain.Path{"Other": {"Other", "Target"}}, pathfinder.Config{})
	f.titled("A", "B", "Target")
	f.link("A", "B")
	f.source.EXPECT().FirstValidLink(gomock.Any(), wikiURL("B")).
		Return("", fmt.Errorf("%w: status 503", domain.ErrFetch))

	res, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)

	require.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, domain.OutcomeError, res.Outcome)
	assert.Equal(t, domain.Path{"A", "B"}, res.Path)
	assert.Equal(t, []string{"Other"}, f.cache.Titles(), "unfinished prefix is not stored")
}

func TestFindPath_HopLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{MaxHops: 2})
	f.titled("A", "B", "C", "Target")
	f.link("A", "B")
	f.link("B", "C")

	res, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeExceeded, res.Outcome)
	assert.Equal(t, domain.Path{"A", "B", "C"}, res.Path)
	assert.Equal(t, 2, res.Hops)
	assert.Zero(t, f.cache.Len())
}

func TestFindPath_StaleSpliceStopsAtRepeat(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]domain.Path{"C": {"C", "A", "X"}}, pathfinder.Config{})
	f.titled("A", "B", "C", "Target")
	f.link("A", "B")
	f.link("B", "C")

	res, err := f.engine.FindPath(context.Background(), wikiURL("A"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"A", "B", "C"}, res.Path)
	assert.Equal(t, domain.OutcomeLoop, res.Outcome)
	assert.True(t, res.Path.Valid())
}

func TestFindPath_CacheSaveFailureIsSurfaced(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockArticleSource(ctrl)
	cache := pathcache.New(brokenStore{}, nil)
	cache.Load(context.Background())
	engine := pathfinder.NewEngine(pathfinder.EngineParams{Source: source, Cache: cache})

	source.EXPECT().TitleOf(gomock.Any(), wikiURL("Start")).Return("Start", nil)
	source.EXPECT().TitleOf(gomock.Any(), target).Return("Target", nil).Times(2)
	source.EXPECT().FirstValidLink(gomock.Any(), wikiURL("Start")).Return(target, nil)

	res, err := engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.ErrorIs(t, err, domain.ErrCacheIO)
	assert.Equal(t, domain.Path{"Start", "Target"}, res.Path)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
}

func TestFindPath_CorruptCacheFileRecovers(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "wiki_paths_cache.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"Start": [`), 0o600))

	ctrl := gomock.NewController(t)
	source := mocks.NewMockArticleSource(ctrl)
	store := pathcache.NewFileStore(file)
	cache := pathcache.New(store, nil)
	assert.Zero(t, cache.Load(context.Background()))
	engine := pathfinder.NewEngine(pathfinder.EngineParams{Source: source, Cache: cache})

	source.EXPECT().TitleOf(gomock.Any(), wikiURL("Start")).Return("Start", nil)
	source.EXPECT().TitleOf(gomock.Any(), target).Return("Target", nil).Times(2)
	source.EXPECT().FirstValidLink(gomock.Any(), wikiURL("Start")).Return(target, nil)

	res, err := engine.FindPath(context.Background(), wikiURL("Start"), target)

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Target"}, res.Path)

	persisted, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Target"}, persisted["Start"])
}

func TestFindPath_ConcurrentTraversalsKeepAllSuffixes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	const starts = 16
	titles := make([]string, 0, starts)
	for i := range starts {
		title := fmt.Sprintf("Start%d", i)
		titles = append(titles, title)
		f.link(title, "Target")
	}
	f.titled(append(titles, "Target")...)

	var wg sync.WaitGroup
	for _, title := range titles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.FindPath(context.Background(), wikiURL(title), target)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	persisted, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, starts)
}

func TestFindPath_CancelledContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})
	f.titled("A", "Target")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.engine.FindPath(ctx, wikiURL("A"), target)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.OutcomeError, res.Outcome)
	assert.Equal(t, domain.Path{"A"}, res.Path)
}

func TestFindPath_InvalidLocator(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, pathfinder.Config{})

	_, err := f.engine.FindPath(context.Background(), "  ", target)

	require.ErrorIs(t, err, domain.ErrInvalidLocator)
}

func TestFindPath_ReportsToObserver(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockArticleSource(ctrl)
	observer := mocks.NewMockObserver(ctrl)
	cache := pathcache.New(pathcache.NewMemoryStore(nil), nil)
	engine := pathfinder.NewEngine(pathfinder.EngineParams{
		Source:   source,
		Cache:    cache,
		Observer: observer,
	})

	source.EXPECT().TitleOf(gomock.Any(), wikiURL("Start")).Return("Start", nil)
	source.EXPECT().TitleOf(gomock.Any(), target).Return("Target", nil).Times(2)
	source.EXPECT().FirstValidLink(gomock.Any(), wikiURL("Start")).Return(target, nil)

	observer.EXPECT().ObserveCacheLookup(false)
	observer.EXPECT().ObserveCacheFlush(nil)
	observer.EXPECT().ObserveTraversal("success", 1, gomock.Any())

	_, err := engine.FindPath(context.Background(), wikiURL("Start"), target)
	require.NoError(t, err)
}

// brokenStore loads nothing and refuses every save.
type brokenStore struct{}

func (brokenStore) Load(context.Context) (map[string]domain.Path, error) {
	return map[string]domain.Path{}, nil
}

func (brokenStore) Save(context.Context, map[string]domain.Path) error {
	return errors.New("read-only filesystem")
}

func (brokenStore) Close() error { return nil }
