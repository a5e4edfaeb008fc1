package store

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/reducto/internal/ir"
)

// State is the root record of a combined store, keyed by slice name.
// Each value is owned by exactly one child reducer.
type State map[string]any

// SliceOf reads a typed slice from a combined state. The bool is false if
// the slice is absent or has a different type.
func SliceOf[T any](state State, name string) (T, bool) {
	v, ok := state[name].(T)
	return v, ok
}

type sliceEntry struct {
	name   string
	reduce Reducer[any]
}

// Combine returns a reducer over a State keyed by the names in children.
//
// Every call invokes each child with (state[name], action), passing nil for
// a slice that has never been initialized, and assembles a new State from
// the results. A new top-level record is produced on every call even when
// no slice changed; there is no whole-state short-circuit. Children run in
// sorted name order so the first reported failure is deterministic.
//
// The mapping is copied; later changes to children have no effect. A nil
// child makes every call fail with ErrNilReducer.
func Combine(children map[string]Reducer[any]) Reducer[State] {
	entries := make([]sliceEntry, 0, len(children))
	for name, r := range children {
		entries = append(entries, sliceEntry{name: name, reduce: r})
	}
	sortEntries(entries)

	return func(state State, action ir.Action) (State, error) {
		next := make(State, len(entries))
		for _, e := range entries {
			if e.reduce == nil {
				return state, &SliceError{Slice: e.name, Err: ErrNilReducer}
			}
			v, err := e.reduce(state[e.name], action)
			if err != nil {
				return state, &SliceError{Slice: e.name, Err: err}
			}
			next[e.name] = v
		}
		return next, nil
	}
}

func sortEntries(entries []sliceEntry) {
	slices.SortFunc(entries, func(a, b sliceEntry) int {
		return cmp.Compare(a.name, b.name)
	})
}

// Slice adapts a typed reducer for use in Combine. A nil slice value is
// passed to r as the zero T. A value of any other type is an error.
func Slice[T any](r Reducer[T]) Reducer[any] {
	if r == nil {
		return nil
	}
	return func(state any, action ir.Action) (any, error) {
		var current T
		if state != nil {
			v, ok := state.(T)
			if !ok {
				return state, fmt.Errorf("slice state has type %T, want %T", state, current)
			}
			current = v
		}
		return r(current, action)
	}
}
