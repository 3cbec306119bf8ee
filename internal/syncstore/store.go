// Package syncstore keeps a local, read-consistent copy of a remote record
// collection. Every change to server-owned fields goes through the remote
// endpoint and is followed by a full re-fetch; the cached collection is
// replaced wholesale and never patched in place.
package syncstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tgienger/organizer/internal/logger"
	"github.com/tgienger/organizer/internal/models"
)

// Remote is the collection endpoint a store mirrors
type Remote interface {
	List(ctx context.Context) ([]byte, error)
	Create(ctx context.Context, payload any) error
	Update(ctx context.Context, payload any) error
}

// Kind binds a local record type R and its draft type D to the wire format
type Kind[R, D any] interface {
	Name() string
	Decode(body []byte) ([]R, error)
	CreatePayload(draft D) any
	UpdatePayload(record R) (any, error)
	ID(record R) string
	Clone(record R) R
}

// Ordering decides which of several overlapping refreshes ends up cached
type Ordering int

const (
	// IssueOrder applies a refresh only if it was issued after the one
	// currently cached; late responses of older refreshes are dropped.
	IssueOrder Ordering = iota
	// LastResolvedWins applies every refresh as it resolves.
	LastResolvedWins
)

type options struct {
	ordering Ordering
	timeout  time.Duration
	log      *logger.Logger
}

// Option configures a store
type Option func(*options)

// WithOrdering selects how overlapping refreshes are resolved
func WithOrdering(o Ordering) Option {
	return func(opts *options) { opts.ordering = o }
}

// WithTimeout bounds every remote request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(opts *options) { opts.timeout = d }
}

// WithLogger sets where failures are reported
func WithLogger(l *logger.Logger) Option {
	return func(opts *options) { opts.log = l }
}

// Store mirrors one remote collection. It is safe for concurrent use.
type Store[R, D any] struct {
	kind     Kind[R, D]
	remote   Remote
	log      *logger.Logger
	ordering Ordering
	timeout  time.Duration

	issued atomic.Uint64

	mu      sync.Mutex
	records []R // published snapshot, never modified after publication
	applied uint64
	// reconcile runs under mu on every fetched snapshot before it is published
	reconcile func([]R) []R
}

// New creates an empty store for the given kind
func New[R, D any](kind Kind[R, D], remote Remote, opts ...Option) *Store[R, D] {
	o := options{ordering: IssueOrder}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}

	return &Store[R, D]{
		kind:     kind,
		remote:   remote,
		log:      o.log.WithFields("collection", kind.Name()),
		ordering: o.ordering,
		timeout:  o.timeout,
		records:  []R{},
	}
}

// Name returns the collection name
func (s *Store[R, D]) Name() string {
	return s.kind.Name()
}

// List returns the records of the last applied refresh, in server order.
// It never touches the network.
func (s *Store[R, D]) List() []R {
	s.mu.Lock()
	snapshot := s.records
	s.mu.Unlock()

	out := make([]R, len(snapshot))
	for i, r := range snapshot {
		out[i] = s.kind.Clone(r)
	}
	return out
}

// Find looks a record up by id in the cached collection
func (s *Store[R, D]) Find(id string) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if s.kind.ID(r) == id {
			return s.kind.Clone(r), true
		}
	}
	var zero R
	return zero, false
}

// Refresh fetches the whole collection and replaces the cache. On failure the
// cache is left untouched.
func (s *Store[R, D]) Refresh(ctx context.Context) error {
	seq := s.issued.Add(1)

	reqCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	body, err := s.remote.List(reqCtx)
	if err != nil {
		return s.fail(OpRefresh, ErrNetwork, err)
	}

	records, err := s.kind.Decode(body)
	if err != nil {
		return s.fail(OpRefresh, ErrDecode, err)
	}

	s.publish(seq, records)
	return nil
}

func (s *Store[R, D]) publish(seq uint64, records []R) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ordering == IssueOrder && seq <= s.applied {
		s.log.Debugw("Dropping stale refresh", "seq", seq, "applied", s.applied)
		return
	}
	if seq > s.applied {
		s.applied = seq
	}

	if records == nil {
		records = []R{}
	}
	if s.reconcile != nil {
		records = s.reconcile(records)
	}
	s.records = records
	s.log.Debugw("Collection refreshed", "seq", seq, "records", len(records))
}

// Create validates the draft, sends it, and re-fetches the collection so the
// server-assigned id and timestamps become visible. A blank title fails with
// ErrValidation before any request is made.
func (s *Store[R, D]) Create(ctx context.Context, draft D) error {
	if err := models.ValidateDraft(draft); err != nil {
		return s.fail(OpCreate, ErrValidation, err)
	}

	reqCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.remote.Create(reqCtx, s.kind.CreatePayload(draft)); err != nil {
		return s.fail(OpCreate, ErrNetwork, err)
	}

	return s.refreshAfterWrite(ctx)
}

// Update applies mutate to a copy of the cached record, sends the complete
// record, and re-fetches the collection. An unknown id fails with ErrNotFound
// before any request is made.
func (s *Store[R, D]) Update(ctx context.Context, id string, mutate func(*R)) error {
	record, ok := s.Find(id)
	if !ok {
		return s.fail(OpUpdate, ErrNotFound, fmt.Errorf("no record with id %q", id))
	}
	mutate(&record)

	payload, err := s.kind.UpdatePayload(record)
	if err != nil {
		return s.fail(OpUpdate, ErrValidation, err)
	}
	if err := models.ValidateDraft(payload); err != nil {
		return s.fail(OpUpdate, ErrValidation, err)
	}

	reqCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.remote.Update(reqCtx, payload); err != nil {
		return s.fail(OpUpdate, ErrNetwork, err)
	}

	return s.refreshAfterWrite(ctx)
}

// refreshAfterWrite re-fetches after an accepted write and marks a failure
// as Stored so callers do not send the write again.
func (s *Store[R, D]) refreshAfterWrite(ctx context.Context) error {
	err := s.Refresh(ctx)
	var e *Error
	if errors.As(err, &e) {
		e.Stored = true
	}
	return err
}

// mutateLocal replaces one cached record with fn's result without contacting
// the remote. fn receives a copy and reports whether it changed anything.
func (s *Store[R, D]) mutateLocal(id string, fn func(R) (R, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if s.kind.ID(r) != id {
			continue
		}
		updated, changed := fn(s.kind.Clone(r))
		if !changed {
			return false
		}
		next := make([]R, len(s.records))
		copy(next, s.records)
		next[i] = updated
		s.records = next
		return true
	}
	return false
}

func (s *Store[R, D]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store[R, D]) fail(op string, kind, err error) error {
	e := &Error{Op: op, Collection: s.kind.Name(), Kind: kind, Err: err}
	switch kind {
	case ErrNetwork, ErrDecode:
		s.log.Warnw("Sync failed", "op", op, "error", e.Error())
	default:
		s.log.Debugw("Operation rejected", "op", op, "error", e.Error())
	}
	return e
}
