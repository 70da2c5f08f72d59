package revgraph

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/etnz/revgraph/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session answers the window queries of a presentation layer.
//
// Queries run one at a time. A query that is superseded by a newer one
// before it completes is dropped, its result is never published.
type Session struct {
	engine *Engine
	mu     sync.Mutex    // one query at a time
	gen    atomic.Uint64 // id of the latest query
}

// NewSession returns a session on e.
func NewSession(e *Engine) *Session { return &Session{engine: e} }

// Query returns the view of window r. It returns false if a newer query was
// issued in the meantime, or if ctx is done.
func (s *Session) Query(ctx context.Context, r date.Range) (View, bool) {
	gen := s.gen.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || s.gen.Load() != gen {
		return View{}, false
	}
	v := s.engine.Window(r)
	v.ID = uuid.NewString()
	if ctx.Err() != nil || s.gen.Load() != gen {
		log.Debug().Str("id", v.ID).Stringer("window", r).Msg("stale window query dropped")
		return View{}, false
	}
	log.Debug().Str("id", v.ID).Stringer("window", r).Int("capital", len(v.Capital)).Int("revenue", len(v.Revenue)).Msg("window query")
	return v, true
}

// Watch publishes a view each time the window changes, until ctx is done or
// windows is closed.
//
// Windows received within debounce of each other are coalesced, only the
// last one is queried. A window equal to the last published one is ignored.
func (s *Session) Watch(ctx context.Context, windows <-chan date.Range, debounce time.Duration, publish func(View)) error {
	var (
		current   date.Range
		published bool
	)
	for {
		var r date.Range
		select {
		case <-ctx.Done():
			return ctx.Err()
		case w, ok := <-windows:
			if !ok {
				return nil
			}
			r = w
		}

		// coalesce the burst
		timer := time.NewTimer(debounce)
	burst:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case w, ok := <-windows:
				if !ok {
					timer.Stop()
					break burst
				}
				r = w
				timer.Reset(debounce)
			case <-timer.C:
				break burst
			}
		}

		if published && r == current {
			continue
		}
		if v, ok := s.Query(ctx, r); ok {
			current, published = r, true
			publish(v)
		}
	}
}
