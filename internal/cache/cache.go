package cache

import (
	"errors"
	"sync"
)

// ErrCacheInconsistency signals a broken settle invariant, e.g. settling a
// token twice. It marks a programming defect, not a recoverable condition.
var ErrCacheInconsistency = errors.New("cache: inconsistent settle")

// Key identifies one cached query result, e.g. "post:66c6..." or "feed:page:2".
type Key string

// Scope labels entries for bulk invalidation, e.g. "post-list".
type Scope string

// PatchFunc produces the optimistic next value from the current one. It must
// not mutate its argument: the store hands the same value back out on
// rollback and relies on it being untouched.
type PatchFunc func(value any) any

type Outcome int

const (
	Committed Outcome = iota
	RolledBack
)

// PendingMutation is the token returned by ApplyOptimistic. It stays valid
// until settled exactly once.
type PendingMutation struct {
	key         Key
	patch       PatchFunc
	settled     bool
	committed   bool
	serverValue any
	hasServer   bool
}

func (t *PendingMutation) Key() Key { return t.key }

type entry struct {
	base    any  // last durably known value
	hasBase bool // false when the entry only exists for pending patches
	current any  // base with every pending patch applied, in order
	version uint64
	scopes  map[Scope]struct{}
	pending []*PendingMutation
}

func (e *entry) recompute() {
	if !e.hasBase {
		// absent values are never served, so there is nothing to patch
		e.current = nil
		return
	}
	v := e.base
	for _, t := range e.pending {
		v = t.patch(v)
	}
	e.current = v
}

// Fold every leading committed token into the base so commits become durable
// in application order. Out-of-order commits wait for their predecessors.
func (e *entry) fold() {
	for len(e.pending) > 0 && e.pending[0].committed {
		t := e.pending[0]
		switch {
		case t.hasServer:
			e.base = t.serverValue
			e.hasBase = true
		case e.hasBase:
			e.base = t.patch(e.base)
		default:
			// value was invalidated mid-flight and the server sent nothing
			// back: stay absent and let the next read refetch
		}
		e.pending = e.pending[1:]
	}
}

// Store is a keyed, versioned in-memory cache shared by the feed, post detail
// and mutation paths. All access is key-scoped under one lock; readers never
// observe a half-applied patch.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	// versions survive entry drops so a rewritten key never reuses a version
	versions map[Key]uint64
}

func New() *Store {
	return &Store{
		entries:  make(map[Key]*entry),
		versions: make(map[Key]uint64),
	}
}

// Read returns the current value for key. Invalidated or never-written keys
// report ok=false; stale data is dropped, never served.
func (s *Store) Read(key Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !e.hasBase {
		return nil, false
	}
	return e.current, true
}

// Write replaces the durable value for key, bumps the version and records
// scope membership. Pending optimistic patches stay queued on top of the new
// value.
func (s *Store) Write(key Key, value any, scopes ...Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensure(key)
	e.base = value
	e.hasBase = true
	e.scopes = make(map[Scope]struct{}, len(scopes))
	for _, sc := range scopes {
		e.scopes[sc] = struct{}{}
	}
	e.recompute()
	s.bump(key, e)
}

// Invalidate drops every entry whose scope set contains scope and returns how
// many were dropped.
func (s *Store) Invalidate(scope Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if _, ok := e.scopes[scope]; !ok {
			continue
		}
		// keep the entry shell while mutations are still in flight so their
		// settle has somewhere to land, but stop serving the value
		if len(e.pending) > 0 {
			e.base = nil
			e.hasBase = false
			e.recompute()
		} else {
			delete(s.entries, key)
		}
		s.versions[key]++
		n++
	}
	return n
}

// ApplyOptimistic queues patch for key and returns the token that its settle
// call must present. A second optimistic write for the same key queues behind
// the first and is applied against the pending, not yet settled, value.
func (s *Store) ApplyOptimistic(key Key, patch PatchFunc) *PendingMutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensure(key)
	t := &PendingMutation{key: key, patch: patch}
	e.pending = append(e.pending, t)
	e.recompute()
	s.bump(key, e)
	return t
}

// Settle resolves one optimistic token. Committed retains the patched value;
// RolledBack removes the patch so the pre-patch payload is restored verbatim.
// Either way the version is bumped, so a reader holding a stale reference
// observes the transition. Settling a token twice returns
// ErrCacheInconsistency.
func (s *Store) Settle(token *PendingMutation, outcome Outcome) error {
	return s.settle(token, outcome, nil, false)
}

// SettleWith commits the token and replaces the optimistic value with the
// server-confirmed one. Server truth always wins over the local patch.
func (s *Store) SettleWith(token *PendingMutation, serverValue any) error {
	return s.settle(token, Committed, serverValue, true)
}

func (s *Store) settle(token *PendingMutation, outcome Outcome, serverValue any, hasServer bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == nil || token.settled {
		return ErrCacheInconsistency
	}
	token.settled = true

	e, ok := s.entries[token.key]
	if !ok {
		// entry was invalidated while the mutation was in flight; the next
		// read refetches, nothing to restore
		s.versions[token.key]++
		return nil
	}

	switch outcome {
	case Committed:
		token.committed = true
		token.serverValue = serverValue
		token.hasServer = hasServer
		e.fold()
	case RolledBack:
		for i, t := range e.pending {
			if t == token {
				e.pending = append(e.pending[:i], e.pending[i+1:]...)
				break
			}
		}
		e.fold()
	default:
		return ErrCacheInconsistency
	}

	e.recompute()
	s.bump(token.key, e)
	if !e.hasBase && len(e.pending) == 0 {
		delete(s.entries, token.key)
	}
	return nil
}

// Version reports the strictly increasing version counter for key. Zero means
// the key was never touched.
func (s *Store) Version(key Key) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[key]
}

func (s *Store) ensure(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{scopes: make(map[Scope]struct{})}
		s.entries[key] = e
	}
	return e
}

func (s *Store) bump(key Key, e *entry) {
	s.versions[key]++
	e.version = s.versions[key]
}
