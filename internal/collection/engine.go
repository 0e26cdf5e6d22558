package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/validation"
)

// Options tunes the resolution pipeline
type Options struct {
	PassTimeout    time.Duration // per-pass deadline (0 = none)
	MaxConcurrency int           // concurrent lookups per pass (0 = unbounded)
}

// Snapshot is everything the presentation layer reads.
type Snapshot struct {
	Version    uint64
	Collection domain.Collection
	Details    []*domain.MovieDetail // the resolved detail set
	Summary    domain.SummaryStatistics
	TopPicks   domain.TopPicks
	Loading    bool  // a pass for the current collection is in flight
	Resolved   bool  // at least one pass has published
	LastError  error // failure of the latest pass; previous details were kept
}

// Observer receives a snapshot after every state change.
type Observer interface {
	OnSnapshot(snap Snapshot)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnSnapshot(snap Snapshot) { f(snap) }

// Queries is the read capability handed to presentation code.
type Queries interface {
	domain.CollectionQueries
	Snapshot() Snapshot
	Filter(query string) []Match
}

// Mutator is the write capability. Each operation leaves the store
// consistent and returns the resolution pass to schedule (nil if none).
type Mutator interface {
	CreateList(name string) (*Pass, error)
	DeleteList(name string) (*Pass, error)
	AddMovie(name string, stub domain.MovieStub) (*Pass, error)
	DeleteMovie(name string, id int) (*Pass, error)
	Reload() *Pass
}

// Engine owns the collection store and every value derived from it.
//
// The engine is single-threaded: all methods must be called from one
// goroutine (the TUI update loop, or main). Only Pass.Run may execute
// elsewhere; its result comes back through Apply, which publishes it only
// if no newer pass has been issued since.
type Engine struct {
	store    domain.CollectionStore
	resolver domain.MetadataRepository
	opts     Options
	validate *validation.Validator
	logger   *slog.Logger

	generation  uint64 // bumped on every issued pass and synchronous publish
	loading     bool
	inflightIDs []int

	details  []*domain.MovieDetail
	summary  domain.SummaryStatistics
	picks    domain.TopPicks
	resolved bool
	lastErr  error

	observers map[int]Observer
	nextObs   int
}

var (
	_ Queries = (*Engine)(nil)
	_ Mutator = (*Engine)(nil)
)

// NewEngine creates an engine over an already rehydrated store.
func NewEngine(store domain.CollectionStore, resolver domain.MetadataRepository, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	summary, picks := Aggregate(nil)
	return &Engine{
		store:     store,
		resolver:  resolver,
		opts:      opts,
		validate:  validation.New(),
		logger:    logger,
		summary:   summary,
		picks:     picks,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer and returns its cancel func
func (e *Engine) Subscribe(o Observer) func() {
	id := e.nextObs
	e.nextObs++
	e.observers[id] = o
	return func() { delete(e.observers, id) }
}

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.Snapshot()
	keys := make([]int, 0, len(e.observers))
	for k := range e.observers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		e.observers[k].OnSnapshot(snap)
	}
}

// === Queries ===

func (e *Engine) ListNames() []string {
	return e.store.ListNames()
}

func (e *Engine) List(name string) []domain.MovieStub {
	return e.store.GetList(name)
}

// MovieLists returns the names of the lists containing a movie
func (e *Engine) MovieLists(id int) []string {
	var names []string
	for _, name := range e.store.ListNames() {
		if slices.ContainsFunc(e.store.GetList(name), func(s domain.MovieStub) bool { return s.ID == id }) {
			names = append(names, name)
		}
	}
	return names
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Version:    e.generation,
		Collection: e.store.Collection(),
		Details:    slices.Clone(e.details),
		Summary: domain.SummaryStatistics{
			TotalRuntime: e.summary.TotalRuntime,
			Countries:    slices.Clone(e.summary.Countries),
			Genres:       slices.Clone(e.summary.Genres),
			Languages:    slices.Clone(e.summary.Languages),
		},
		TopPicks:  e.picks,
		Loading:   e.loading,
		Resolved:  e.resolved,
		LastError: e.lastErr,
	}
}

// Detail returns the resolved detail for a movie, if present
func (e *Engine) Detail(id int) (*domain.MovieDetail, bool) {
	for _, d := range e.details {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// === Mutator ===

// normalizeListName is applied by every mutator so lookups match creation
func normalizeListName(name string) string {
	return strings.TrimSpace(name)
}

// CreateList adds an empty list. Existing names are left untouched.
func (e *Engine) CreateList(name string) (*Pass, error) {
	name = normalizeListName(name)
	if err := e.validate.Var("list name", name, "required,max=100"); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidListName, err)
	}
	if e.store.HasList(name) {
		return nil, nil
	}
	if err := e.store.SetList(name, nil); err != nil {
		return nil, err
	}
	e.logger.Info("created list", "list", name)
	return e.schedule(true), nil
}

// DeleteList removes a list. Details of movies no longer referenced by any
// list are dropped from the resolved set immediately.
func (e *Engine) DeleteList(name string) (*Pass, error) {
	name = normalizeListName(name)
	if !e.store.HasList(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrListNotFound, name)
	}
	if err := e.store.RemoveList(name); err != nil {
		return nil, err
	}
	e.logger.Info("deleted list", "list", name)

	remaining := make(map[int]bool)
	for _, id := range DistinctIDs(e.store.Collection()) {
		remaining[id] = true
	}
	kept := slices.DeleteFunc(slices.Clone(e.details), func(d *domain.MovieDetail) bool { return !remaining[d.ID] })
	if len(kept) != len(e.details) {
		e.setDetails(kept)
		e.notify()
	}

	return e.schedule(true), nil
}

// AddMovie appends a movie to an existing list
func (e *Engine) AddMovie(name string, stub domain.MovieStub) (*Pass, error) {
	name = normalizeListName(name)
	if stub.ID <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMovieID, stub.ID)
	}
	if !e.store.HasList(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrListNotFound, name)
	}
	list := e.store.GetList(name)
	if slices.ContainsFunc(list, func(s domain.MovieStub) bool { return s.ID == stub.ID }) {
		return nil, fmt.Errorf("%w: %q", domain.ErrMovieAlreadyListed, name)
	}
	if err := e.store.SetList(name, append(list, stub)); err != nil {
		return nil, err
	}
	e.logger.Info("added movie", "list", name, "movieID", stub.ID)
	return e.schedule(true), nil
}

// DeleteMovie removes a movie from a list. A list holding a single movie
// refuses the deletion with domain.ErrLastMovieInList and is left unchanged.
func (e *Engine) DeleteMovie(name string, id int) (*Pass, error) {
	name = normalizeListName(name)
	if !e.store.HasList(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrListNotFound, name)
	}
	list := e.store.GetList(name)
	if len(list) == 1 {
		return nil, domain.ErrLastMovieInList
	}
	idx := slices.IndexFunc(list, func(s domain.MovieStub) bool { return s.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d in %q", domain.ErrMovieNotInList, id, name)
	}
	if err := e.store.SetList(name, slices.Delete(list, idx, idx+1)); err != nil {
		return nil, err
	}
	e.logger.Info("deleted movie", "list", name, "movieID", id)
	return e.schedule(true), nil
}

// === Pipeline ===

// Start returns the initial pass when the collection references movies and
// nothing has been resolved yet.
func (e *Engine) Start() *Pass {
	if e.resolved || e.loading {
		return nil
	}
	if len(DistinctIDs(e.store.Collection())) == 0 {
		return nil
	}
	return e.schedule(true)
}

// Reload re-resolves every referenced movie, ignoring the current details.
func (e *Engine) Reload() *Pass {
	e.inflightIDs = nil
	return e.schedule(false)
}

// schedule derives the distinct IDs of the current collection and issues a
// pass for them. When every ID is already resolved the new set is
// published synchronously and no pass is returned. When an in-flight pass
// covers exactly the same IDs it stays authoritative and nil is returned.
func (e *Engine) schedule(reuse bool) *Pass {
	ids := DistinctIDs(e.store.Collection())

	if reuse && e.loading && slices.Equal(ids, e.inflightIDs) {
		return nil
	}

	e.generation++

	known := make(map[int]*domain.MovieDetail)
	if reuse {
		for _, d := range e.details {
			known[d.ID] = d
		}
	}

	pass := &Pass{
		Token:          e.generation,
		IDs:            ids,
		known:          known,
		resolver:       e.resolver,
		timeout:        e.opts.PassTimeout,
		maxConcurrency: e.opts.MaxConcurrency,
		logger:         e.logger,
	}

	if len(pass.Missing()) == 0 {
		details := make([]*domain.MovieDetail, len(ids))
		for i, id := range ids {
			details[i] = known[id]
		}
		e.loading = false
		e.inflightIDs = nil
		e.publish(details)
		return nil
	}

	e.loading = true
	e.inflightIDs = ids
	e.logger.Debug("issued resolution pass", "token", pass.Token, "ids", len(ids), "missing", len(pass.Missing()))
	e.notify()
	return pass
}

// Apply publishes a pass result if it belongs to the latest issued pass.
// Results of superseded passes are discarded. A failed pass keeps the
// previous details and records the error. Reports whether it published.
func (e *Engine) Apply(res PassResult) bool {
	if res.Token != e.generation {
		e.logger.Debug("discarding stale resolution pass", "token", res.Token, "current", e.generation)
		return false
	}

	e.loading = false
	e.inflightIDs = nil

	if res.Err != nil {
		e.lastErr = res.Err
		e.logger.Error("keeping previous details after failed pass", "token", res.Token, "error", res.Err)
		e.notify()
		return false
	}

	e.publish(res.Details)
	return true
}

// Refresh runs the initial pass synchronously. Used by non-interactive callers.
func (e *Engine) Refresh(ctx context.Context) error {
	pass := e.Start()
	if pass == nil {
		return e.lastErr
	}
	res := pass.Run(ctx)
	if !e.Apply(res) && res.Err == nil {
		return errors.New("resolution pass was superseded")
	}
	return res.Err
}

func (e *Engine) publish(details []*domain.MovieDetail) {
	e.setDetails(details)
	e.resolved = true
	e.lastErr = nil
	e.notify()
}

func (e *Engine) setDetails(details []*domain.MovieDetail) {
	e.details = details
	e.summary, e.picks = Aggregate(details)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
