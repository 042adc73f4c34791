package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"feed_workspace/internal/cache"
)

// ErrConflictingMutation rejects a second dispatch for the same
// (entity, kind) pair while the first is still in flight. Callers reuse the
// outcome of the in-flight call instead of re-issuing it.
var ErrConflictingMutation = errors.New("dispatch: conflicting mutation in flight")

// Kind names one logical user action so in-flight tracking can tell a like
// toggle from a comment on the same entity.
type Kind string

const (
	KindPostCreate    Kind = "post-create"
	KindPostUpdate    Kind = "post-update"
	KindPostDelete    Kind = "post-delete"
	KindLikeToggle    Kind = "like-toggle"
	KindCommentCreate Kind = "comment-create"
)

// Mutation wraps one logical write: the optimistic cache patch, the network
// call that makes it real, and the scopes that go stale once it commits.
type Mutation struct {
	// Key and Patch describe the optimistic update. A nil Patch skips the
	// optimistic step (used by creations, where no cached value exists yet).
	Key   cache.Key
	Patch cache.PatchFunc
	// Call performs the actual network work and may return the
	// server-confirmed value.
	Call func(ctx context.Context) (any, error)
	// UseServerValue replaces the optimistic value with Call's result on
	// commit. Server truth always wins when supplied.
	UseServerValue bool
	// Invalidates lists scopes dropped after a successful settle.
	Invalidates []cache.Scope
}

type flightKey struct {
	entityID string
	kind     Kind
}

// Dispatcher enforces the optimistic-update contract: at most one in-flight
// mutation per (entity, kind), patch before the call, settle or roll back
// after. The cache is back in its pre-mutation state whenever an error is
// returned.
type Dispatcher struct {
	cache *cache.Store
	log   *slog.Logger

	mu       sync.Mutex
	inflight map[flightKey]struct{}
}

func New(store *cache.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cache:    store,
		log:      logger,
		inflight: make(map[flightKey]struct{}),
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, entityID string, m Mutation) (any, error) {
	fk := flightKey{entityID: entityID, kind: kind}

	d.mu.Lock()
	if _, busy := d.inflight[fk]; busy {
		d.mu.Unlock()
		return nil, ErrConflictingMutation
	}
	d.inflight[fk] = struct{}{}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inflight, fk)
		d.mu.Unlock()
	}()

	var token *cache.PendingMutation
	if m.Patch != nil {
		token = d.cache.ApplyOptimistic(m.Key, m.Patch)
	}

	out, err := m.Call(ctx)
	if err != nil {
		if token != nil {
			if serr := d.cache.Settle(token, cache.RolledBack); serr != nil {
				d.log.Error("optimistic rollback failed",
					"kind", string(kind), "entity", entityID, "err", serr)
			}
		}
		return nil, err
	}

	if token != nil {
		var serr error
		if m.UseServerValue {
			serr = d.cache.SettleWith(token, out)
		} else {
			serr = d.cache.Settle(token, cache.Committed)
		}
		if serr != nil {
			d.log.Error("optimistic commit failed",
				"kind", string(kind), "entity", entityID, "err", serr)
		}
	}
	for _, sc := range m.Invalidates {
		d.cache.Invalidate(sc)
	}
	return out, nil
}
