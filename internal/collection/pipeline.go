package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Pass is one resolution pass over the distinct IDs of a collection state.
// Run is the only method that may be called off the engine's goroutine.
type Pass struct {
	Token uint64 // engine generation that issued the pass
	IDs   []int  // distinct IDs in discovery order

	known          map[int]*domain.MovieDetail
	resolver       domain.MetadataRepository
	timeout        time.Duration
	maxConcurrency int
	logger         *slog.Logger
}

// PassResult is the outcome of Pass.Run, handed back to Engine.Apply.
type PassResult struct {
	Token   uint64
	Details []*domain.MovieDetail // one per ID, in Pass.IDs order; nil on error
	Fetched int                   // lookups issued (IDs not reused from the previous set)
	Err     error
}

// LookupError reports the lookup that aborted a pass.
type LookupError struct {
	MovieID int
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("resolve movie %d: %v", e.MovieID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Missing returns the IDs this pass will look up
func (p *Pass) Missing() []int {
	var ids []int
	for _, id := range p.IDs {
		if _, ok := p.known[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Run issues every missing lookup concurrently and waits for all of them.
// The first failure aborts the pass: no partial result is returned.
func (p *Pass) Run(ctx context.Context) PassResult {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	details := make([]*domain.MovieDetail, len(p.IDs))
	fetched := 0

	g, gctx := errgroup.WithContext(ctx)
	if p.maxConcurrency > 0 {
		g.SetLimit(p.maxConcurrency)
	}

	for i, id := range p.IDs {
		if d, ok := p.known[id]; ok {
			details[i] = d
			continue
		}
		fetched++
		i, id := i, id
		g.Go(func() error {
			d, err := p.resolver.GetMovieDetails(gctx, id)
			if err != nil {
				return &LookupError{MovieID: id, Err: err}
			}
			if d == nil {
				return &LookupError{MovieID: id, Err: domain.ErrMovieNotFound}
			}
			details[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var lookupErr *LookupError
		if errors.As(err, &lookupErr) {
			p.logger.Error("resolution pass failed", "token", p.Token, "id", lookupErr.MovieID, "error", lookupErr.Err)
		} else {
			p.logger.Error("resolution pass failed", "token", p.Token, "error", err)
		}
		return PassResult{Token: p.Token, Fetched: fetched, Err: err}
	}

	p.logger.Debug("resolution pass complete", "token", p.Token, "ids", len(p.IDs), "fetched", fetched)
	return PassResult{Token: p.Token, Details: details, Fetched: fetched}
}
