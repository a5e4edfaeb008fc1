package domain

import (
	"github.com/roach88/reducto/internal/ir"
	"github.com/roach88/reducto/internal/store"
)

// RootReducer combines every Kind's reducer into one reducer over the root
// state {todos, goals}.
func RootReducer() store.Reducer[store.State] {
	children := make(map[string]store.Reducer[any], len(Kinds))
	for _, k := range Kinds {
		children[k.Slice] = store.Slice(k.Reducer())
	}
	return store.Combine(children)
}

// NewStore creates a store over the root state.
func NewStore(opts ...store.Option) (*store.Store[store.State], error) {
	return store.New(RootReducer(), opts...)
}

// TodosOf returns the todos slice of a root state.
func TodosOf(state store.State) List {
	return Todos.Of(state)
}

// GoalsOf returns the goals slice of a root state.
func GoalsOf(state store.State) List {
	return Goals.Of(state)
}

// Of returns this Kind's slice of a root state, or nil if absent.
func (k Kind) Of(state store.State) List {
	l, _ := store.SliceOf[List](state, k.Slice)
	return l
}

// Snapshot converts a root state to IR for hashing and output.
// Absent slices render as empty arrays.
func Snapshot(state store.State) ir.IRObject {
	obj := make(ir.IRObject, len(Kinds))
	for _, k := range Kinds {
		obj[k.Slice] = k.Of(state).ToIR()
	}
	return obj
}
