package collection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver serves canned details. Lookups for gated IDs block until the
// gate is closed.
type fakeResolver struct {
	mu      sync.Mutex
	calls   map[int]int
	fail    map[int]error
	gates   map[int]chan struct{}
	started chan int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		calls: make(map[int]int),
		fail:  make(map[int]error),
		gates: make(map[int]chan struct{}),
	}
}

func (f *fakeResolver) GetMovieDetails(ctx context.Context, id int) (*domain.MovieDetail, error) {
	f.mu.Lock()
	f.calls[id]++
	gate := f.gates[id]
	err := f.fail[id]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- id
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.MovieDetail{
		ID:         id,
		Title:      "Movie",
		Runtime:    id * 10,
		Popularity: float64(id),
		Budget:     int64(id) * 1000,
		Genres:     []string{"Genre"},
	}, nil
}

func (f *fakeResolver) gate(id int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[id] = ch
	return ch
}

func (f *fakeResolver) setFail(id int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, id)
		return
	}
	f.fail[id] = err
}

func (f *fakeResolver) callCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine builds an engine over a memory store seeded with lists
func newTestEngine(t *testing.T, lists ...listSeed) (*Engine, *fakeResolver) {
	t.Helper()
	s := store.NewMemoryStore()
	for _, l := range lists {
		stubs := make([]domain.MovieStub, len(l.ids))
		for i, id := range l.ids {
			stubs[i] = domain.MovieStub{ID: id, Title: l.name + " movie"}
		}
		require.NoError(t, s.SetList(l.name, stubs))
	}
	resolver := newFakeResolver()
	return NewEngine(s, resolver, Options{PassTimeout: 5 * time.Second}, testLogger()), resolver
}

type listSeed struct {
	name string
	ids  []int
}

func seed(name string, ids ...int) listSeed {
	return listSeed{name: name, ids: ids}
}

func detailIDs(details []*domain.MovieDetail) []int {
	ids := make([]int, len(details))
	for i, d := range details {
		ids[i] = d.ID
	}
	return ids
}

func runAndApply(t *testing.T, e *Engine, p *Pass) bool {
	t.Helper()
	require.NotNil(t, p)
	return e.Apply(p.Run(context.Background()))
}

func TestEngine_StartResolvesEachDistinctIDOnce(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1, 2), seed("B", 2, 3))

	pass := e.Start()
	require.NotNil(t, pass)
	assert.Equal(t, []int{1, 2, 3}, pass.IDs)
	assert.True(t, e.Snapshot().Loading)

	assert.True(t, runAndApply(t, e, pass))

	snap := e.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Resolved)
	assert.Equal(t, []int{1, 2, 3}, detailIDs(snap.Details))
	assert.Equal(t, 60, snap.Summary.TotalRuntime)
	assert.Equal(t, 3, snap.TopPicks.MostPopular.ID)
	for _, id := range []int{1, 2, 3} {
		assert.Equal(t, 1, resolver.callCount(id), "id %d", id)
	}

	assert.Nil(t, e.Start(), "already resolved")
}

func TestEngine_StartWithEmptyCollection(t *testing.T) {
	e, _ := newTestEngine(t, seed("A"))

	assert.Nil(t, e.Start())

	snap := e.Snapshot()
	assert.Zero(t, snap.Summary.TotalRuntime)
	assert.Empty(t, snap.Summary.Genres)
	assert.Nil(t, snap.TopPicks.MostPopular)
	assert.Nil(t, snap.TopPicks.Newest)
}

func TestEngine_AddMovieOnlyFetchesNewIDs(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1, 2))
	runAndApply(t, e, e.Start())

	pass, err := e.AddMovie("A", domain.MovieStub{ID: 3, Title: "Third"})
	require.NoError(t, err)
	require.NotNil(t, pass)
	assert.Equal(t, []int{3}, pass.Missing())

	res := pass.Run(context.Background())
	assert.Equal(t, 1, res.Fetched)
	assert.True(t, e.Apply(res))

	assert.Equal(t, []int{1, 2, 3}, detailIDs(e.Snapshot().Details))
	assert.Equal(t, 1, resolver.callCount(1))
	assert.Equal(t, 1, resolver.callCount(3))
	assert.Equal(t, []int{1, 2, 3}, idsOf(e.List("A")))
}

func TestEngine_AddMovieErrors(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1))

	_, err := e.AddMovie("missing", domain.MovieStub{ID: 2})
	assert.ErrorIs(t, err, domain.ErrListNotFound)

	_, err = e.AddMovie("A", domain.MovieStub{ID: 1})
	assert.ErrorIs(t, err, domain.ErrMovieAlreadyListed)

	_, err = e.AddMovie("A", domain.MovieStub{ID: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidMovieID)

	assert.Equal(t, []int{1}, idsOf(e.List("A")))
}

func TestEngine_CreateList(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1))

	_, err := e.CreateList("  Weekend  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Weekend"}, e.ListNames())
	assert.Empty(t, e.List("Weekend"))

	pass, err := e.CreateList("A")
	require.NoError(t, err)
	assert.Nil(t, pass)
	assert.Equal(t, []int{1}, idsOf(e.List("A")), "existing list untouched")

	_, err = e.CreateList("   ")
	assert.ErrorIs(t, err, domain.ErrInvalidListName)
	assert.Len(t, e.ListNames(), 2)
}

func TestEngine_MutatorsNormalizeListNames(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.CreateList(" A ")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, e.ListNames())

	_, err = e.AddMovie(" A ", domain.MovieStub{ID: 5})
	require.NoError(t, err)
	_, err = e.AddMovie("A\t", domain.MovieStub{ID: 6})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, idsOf(e.List("A")))

	_, err = e.DeleteMovie(" A", 5)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, idsOf(e.List("A")))

	_, err = e.DeleteList(" A ")
	require.NoError(t, err)
	assert.Empty(t, e.ListNames())
}

func TestEngine_DeleteMovieGuardsLastMovie(t *testing.T) {
	e, _ := newTestEngine(t, seed("solo", 7), seed("other", 7, 8))
	runAndApply(t, e, e.Start())
	before := e.Snapshot()

	pass, err := e.DeleteMovie("solo", 7)

	assert.Nil(t, pass)
	assert.ErrorIs(t, err, domain.ErrLastMovieInList)
	assert.Equal(t, []int{7}, idsOf(e.List("solo")))
	assert.Equal(t, before.Version, e.Snapshot().Version)
	assert.Equal(t, before.Collection, e.Snapshot().Collection)
}

func TestEngine_DeleteMovie(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1, 2, 3), seed("B", 3))
	runAndApply(t, e, e.Start())

	pass, err := e.DeleteMovie("A", 2)
	require.NoError(t, err)
	assert.Nil(t, pass, "remaining ids are already resolved")

	assert.Equal(t, []int{1, 3}, idsOf(e.List("A")))
	assert.Equal(t, []int{1, 3}, detailIDs(e.Snapshot().Details))
	assert.Equal(t, 1, resolver.callCount(1))

	_, err = e.DeleteMovie("A", 42)
	assert.ErrorIs(t, err, domain.ErrMovieNotInList)

	_, err = e.DeleteMovie("missing", 1)
	assert.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestEngine_DeleteListCascades(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1, 2), seed("B", 2, 3))
	runAndApply(t, e, e.Start())

	var seen []Snapshot
	e.Subscribe(ObserverFunc(func(s Snapshot) { seen = append(seen, s) }))

	pass, err := e.DeleteList("A")
	require.NoError(t, err)
	assert.Nil(t, pass)

	assert.Equal(t, []string{"B"}, e.ListNames())
	assert.Equal(t, []int{2, 3}, DistinctIDs(e.Snapshot().Collection))
	assert.Equal(t, []int{2, 3}, detailIDs(e.Snapshot().Details))
	assert.Equal(t, 50, e.Snapshot().Summary.TotalRuntime)

	require.NotEmpty(t, seen)
	assert.Equal(t, []int{2, 3}, detailIDs(seen[0].Details), "filtered before the next pass")

	_, err = e.DeleteList("A")
	assert.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestEngine_DeleteListWhileResolving(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1, 2), seed("B", 2, 3))
	runAndApply(t, e, e.Start())

	gate := resolver.gate(4)
	addPass, err := e.AddMovie("B", domain.MovieStub{ID: 4})
	require.NoError(t, err)

	done := make(chan PassResult, 1)
	go func() { done <- addPass.Run(context.Background()) }()

	deletePass, err := e.DeleteList("A")
	require.NoError(t, err)
	require.NotNil(t, deletePass, "id 4 is still unresolved")
	assert.Equal(t, []int{2, 3}, detailIDs(e.Snapshot().Details))

	close(gate)
	assert.False(t, e.Apply(<-done), "superseded by the delete")
	assert.True(t, runAndApply(t, e, deletePass))

	assert.Equal(t, []int{2, 3, 4}, detailIDs(e.Snapshot().Details))
}

func TestEngine_StalePassIsDiscarded(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1))

	gate := resolver.gate(1)
	first := e.Start()
	require.NotNil(t, first)

	done := make(chan PassResult, 1)
	go func() { done <- first.Run(context.Background()) }()

	second, err := e.AddMovie("A", domain.MovieStub{ID: 2})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Greater(t, second.Token, first.Token)

	close(gate)
	assert.True(t, runAndApply(t, e, second))
	assert.False(t, e.Apply(<-done))

	snap := e.Snapshot()
	assert.Equal(t, []int{1, 2}, detailIDs(snap.Details))
	assert.False(t, snap.Loading)
}

func TestEngine_StalePassFinishingFirstIsDiscarded(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1))

	first := e.Start()
	second, err := e.AddMovie("A", domain.MovieStub{ID: 2})
	require.NoError(t, err)

	assert.False(t, runAndApply(t, e, first))
	assert.True(t, e.Snapshot().Loading, "latest pass still outstanding")
	assert.Empty(t, e.Snapshot().Details)

	assert.True(t, runAndApply(t, e, second))
	assert.Equal(t, []int{1, 2}, detailIDs(e.Snapshot().Details))
}

func TestEngine_InflightPassSurvivesUnrelatedChange(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1, 2))

	pass := e.Start()
	created, err := e.CreateList("B")
	require.NoError(t, err)
	assert.Nil(t, created, "ids unchanged, in-flight pass still applies")

	assert.True(t, runAndApply(t, e, pass))
	assert.Equal(t, []int{1, 2}, detailIDs(e.Snapshot().Details))
}

func TestEngine_FailedPassKeepsPreviousDetails(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1))
	runAndApply(t, e, e.Start())

	resolver.setFail(2, domain.ErrServerOffline)
	pass, err := e.AddMovie("A", domain.MovieStub{ID: 2})
	require.NoError(t, err)

	assert.False(t, runAndApply(t, e, pass))

	snap := e.Snapshot()
	assert.Equal(t, []int{1}, detailIDs(snap.Details))
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, snap.LastError, domain.ErrServerOffline)
	var lookupErr *LookupError
	require.True(t, errors.As(snap.LastError, &lookupErr))
	assert.Equal(t, 2, lookupErr.MovieID)

	resolver.setFail(2, nil)
	assert.True(t, runAndApply(t, e, e.Reload()))
	assert.Equal(t, []int{1, 2}, detailIDs(e.Snapshot().Details))
	assert.NoError(t, e.Snapshot().LastError)
	assert.Equal(t, 2, resolver.callCount(1), "reload refetches everything")
}

func TestEngine_FailedInitialPassCanBeRetried(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1, 2))
	resolver.setFail(2, domain.ErrRateLimited)

	assert.False(t, runAndApply(t, e, e.Start()))
	assert.False(t, e.Snapshot().Resolved)
	assert.Empty(t, e.Snapshot().Details)

	resolver.setFail(2, nil)
	assert.True(t, runAndApply(t, e, e.Start()))
	assert.Equal(t, []int{1, 2}, detailIDs(e.Snapshot().Details))
}

func TestPass_RunIssuesLookupsConcurrently(t *testing.T) {
	e, resolver := newTestEngine(t, seed("A", 1, 2, 3))
	resolver.started = make(chan int, 3)
	gates := []chan struct{}{resolver.gate(1), resolver.gate(2), resolver.gate(3)}

	pass := e.Start()
	done := make(chan PassResult, 1)
	go func() { done <- pass.Run(context.Background()) }()

	// All three lookups are in flight before any of them completes.
	for i := 0; i < 3; i++ {
		select {
		case <-resolver.started:
		case <-time.After(2 * time.Second):
			t.Fatal("lookups were not issued concurrently")
		}
	}
	for _, g := range gates {
		close(g)
	}

	assert.True(t, e.Apply(<-done))
	assert.Equal(t, []int{1, 2, 3}, detailIDs(e.Snapshot().Details))
}

func TestPass_RunTimeout(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.SetList("A", []domain.MovieStub{{ID: 1}}))
	resolver := newFakeResolver()
	resolver.gate(1)
	e := NewEngine(s, resolver, Options{PassTimeout: 20 * time.Millisecond}, testLogger())

	res := e.Start().Run(context.Background())

	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Nil(t, res.Details)
}

func TestEngine_Refresh(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1, 2))

	require.NoError(t, e.Refresh(context.Background()))
	assert.Equal(t, []int{1, 2}, detailIDs(e.Snapshot().Details))
	require.NoError(t, e.Refresh(context.Background()), "nothing left to resolve")

	failing, resolver := newTestEngine(t, seed("A", 1))
	resolver.setFail(1, domain.ErrMovieNotFound)
	assert.ErrorIs(t, failing.Refresh(context.Background()), domain.ErrMovieNotFound)
}

func TestEngine_DeletingEverythingEmptiesAggregates(t *testing.T) {
	e, _ := newTestEngine(t, seed("A", 1, 2))
	runAndApply(t, e, e.Start())

	_, err := e.DeleteList("A")
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.Empty(t, snap.Details)
	assert.Zero(t, snap.Summary.TotalRuntime)
	assert.Empty(t, snap.Summary.Genres)
	assert.Equal(t, domain.TopPicks{}, snap.TopPicks)
}

func TestEngine_MovieListsAndFilter(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.SetList("Sci-Fi", []domain.MovieStub{{ID: 603, Title: "The Matrix"}, {ID: 78, Title: "Blade Runner"}}))
	require.NoError(t, s.SetList("Favorites", []domain.MovieStub{{ID: 603, Title: "The Matrix"}}))
	e := NewEngine(s, newFakeResolver(), Options{}, testLogger())

	assert.Equal(t, []string{"Sci-Fi", "Favorites"}, e.MovieLists(603))
	assert.Empty(t, e.MovieLists(1))

	matches := e.Filter("matrix")
	require.Len(t, matches, 2)
	for _, m := range matches {
		require.NotNil(t, m.Stub)
		assert.Equal(t, 603, m.Stub.ID)
	}

	matches = e.Filter("favs")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Favorites", matches[0].List)
	assert.Nil(t, matches[0].Stub)

	assert.Nil(t, e.Filter("  "))
}

func idsOf(stubs []domain.MovieStub) []int {
	ids := make([]int, len(stubs))
	for i, s := range stubs {
		ids[i] = s.ID
	}
	return ids
}
