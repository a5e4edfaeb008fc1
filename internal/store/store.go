package store

import (
	"io"
	"log/slog"

	"github.com/roach88/reducto/internal/ir"
)

// InitActionType tags the bootstrap action sent at construction. No real
// reducer case matches it.
const InitActionType = "@@reducto/INIT"

// InitAction returns the bootstrap action.
func InitAction() ir.Action {
	return ir.Action{Type: InitActionType, Payload: ir.IRObject{}}
}

// Reducer computes the next state from the current state and an action.
//
// A reducer must be pure: no I/O, no randomness, no clock, no ambient
// mutable state. Given the zero value of S it returns its default. Given an
// action it does not own it returns its input unchanged. An error aborts
// the enclosing dispatch.
type Reducer[S any] func(state S, action ir.Action) (S, error)

// Listener is called with no arguments after every successful dispatch.
// Listeners read the new state through GetState.
type Listener func()

// Unsubscribe removes one registration. Calls after the first are no-ops.
type Unsubscribe func()

// NestedDispatch selects how Dispatch behaves when called from a listener.
type NestedDispatch int

const (
	// AllowNested runs a nested dispatch to completion before the outer
	// notification loop resumes.
	AllowNested NestedDispatch = iota

	// RejectNested makes a nested dispatch return ErrNestedDispatch.
	RejectNested
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
	nested NestedDispatch
}

// WithLogger sets the logger for dispatch diagnostics. Records carry action
// tags and counters, never state.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNestedDispatch sets the nested dispatch policy. Default: AllowNested.
func WithNestedDispatch(p NestedDispatch) Option {
	return func(o *options) {
		o.nested = p
	}
}

// subscription is one registration. Its pointer is its identity, so the
// same func subscribed twice is two registrations.
type subscription struct {
	listener Listener
}

// Store holds the current state and the listener registry.
//
// INVARIANTS:
//   - state is replaced, never mutated, and only by Dispatch
//   - listeners is never modified in place; each change installs a new slice
//   - depth counts notification loops currently on the stack
type Store[S any] struct {
	reducer   Reducer[S]
	state     S
	listeners []*subscription
	depth     int
	seq       int64

	nested NestedDispatch
	logger *slog.Logger
}

// New creates a Store and computes its initial state by calling
// reducer(zero, InitAction()).
//
// Returns ErrNilReducer for a nil reducer and a *ReducerError if the
// bootstrap call fails.
func New[S any](reducer Reducer[S], opts ...Option) (*Store[S], error) {
	if reducer == nil {
		return nil, ErrNilReducer
	}

	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		nested: AllowNested,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var unset S
	initial, err := reducer(unset, InitAction())
	if err != nil {
		return nil, &ReducerError{ActionType: InitActionType, Err: err}
	}

	return &Store[S]{
		reducer: reducer,
		state:   initial,
		nested:  o.nested,
		logger:  o.logger,
	}, nil
}

// GetState returns the current state.
func (s *Store[S]) GetState() S {
	return s.state
}

// Subscribe registers a listener at the end of the registry.
//
// Returns ErrInvalidListener for a nil listener. A registration made while
// a notification loop is running is first called on the next dispatch.
func (s *Store[S]) Subscribe(listener Listener) (Unsubscribe, error) {
	if listener == nil {
		return nil, ErrInvalidListener
	}

	sub := &subscription{listener: listener}

	// Full slice expression forces a fresh backing array, so a snapshot
	// held by a running loop never sees the new entry.
	n := len(s.listeners)
	s.listeners = append(s.listeners[:n:n], sub)

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		s.remove(sub)
	}, nil
}

// remove installs a new registry without sub.
func (s *Store[S]) remove(sub *subscription) {
	next := make([]*subscription, 0, len(s.listeners))
	for _, existing := range s.listeners {
		if existing != sub {
			next = append(next, existing)
		}
	}
	s.listeners = next
}

// Dispatch applies an action.
//
// The reducer runs against the current state. On error the state is left
// unchanged, no listener is called and a *ReducerError is returned. On
// success the state is replaced and then every listener registered when
// the notification phase begins is called once, in subscription order.
//
// A reducer panic propagates to the caller; the state is still unchanged
// because replacement happens only after the reducer returns.
func (s *Store[S]) Dispatch(action ir.Action) error {
	if s.depth > 0 && s.nested == RejectNested {
		s.logger.Debug("nested dispatch rejected", "type", action.Type, "depth", s.depth)
		return ErrNestedDispatch
	}

	next, err := s.reducer(s.state, action)
	if err != nil {
		s.logger.Debug("reducer failed", "type", action.Type, "error", err)
		return &ReducerError{ActionType: action.Type, Err: err}
	}

	s.state = next
	s.seq++

	snapshot := s.listeners
	s.logger.Debug("action dispatched",
		"type", action.Type,
		"seq", s.seq,
		"listeners", len(snapshot),
		"depth", s.depth,
	)

	s.depth++
	defer func() { s.depth-- }()

	for _, sub := range snapshot {
		sub.listener()
	}
	return nil
}

// Listeners returns the number of current registrations.
func (s *Store[S]) Listeners() int {
	return len(s.listeners)
}

// Dispatches returns the number of successful dispatches so far. It is the
// sequence number of the most recent state.
func (s *Store[S]) Dispatches() int64 {
	return s.seq
}
