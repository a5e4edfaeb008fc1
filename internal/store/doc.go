// Package store implements the reducto state container.
//
// A Store holds one state value, accepts actions through Dispatch, computes
// the next state with a pure Reducer, and notifies listeners after every
// successful transition.
//
// # Contract
//
//   - Construction calls reducer(zero, InitAction()) so every reducer
//     supplies its own default. There is no separate initializer.
//   - GetState is O(1) and side-effect free.
//   - Dispatch either fails (state untouched, no listener called, the error
//     is returned as *ReducerError) or replaces the state and then calls
//     every listener registered at the start of its notification phase, in
//     subscription order, before returning.
//   - The listener registry is copy-on-write. A notification loop iterates
//     the snapshot it took, so Subscribe and Unsubscribe calls made from a
//     listener only affect later dispatches.
//   - Unsubscribe is idempotent.
//
// # Nested dispatch
//
// By default a listener may call Dispatch. The nested dispatch runs its
// reducer, state replacement and full notification before control returns
// to the outer loop, whose remaining listeners then observe the advanced
// state. WithNestedDispatch(RejectNested) selects the guarded policy where
// a nested Dispatch returns ErrNestedDispatch and changes nothing.
//
// # Composition
//
// Combine builds a root reducer over a State record keyed by slice name.
// Each child owns its slice. Slice adapts a typed child reducer.
//
// # Concurrency
//
// A Store is single-threaded. Dispatch, reducer evaluation and
// notification all run on the caller's goroutine with no suspension
// point, so a Store must be driven from exactly one goroutine.
package store
