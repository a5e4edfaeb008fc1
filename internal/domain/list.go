package domain

import (
	"fmt"

	"github.com/roach88/reducto/internal/ir"
	"github.com/roach88/reducto/internal/store"
)

// Kind describes one entity domain: the slice it owns, its three action
// tags and the payload key that carries a new entity.
type Kind struct {
	Slice      string
	Add        string
	Toggle     string
	Remove     string
	PayloadKey string
}

// Todos owns the "todos" slice.
var Todos = Kind{
	Slice:      "todos",
	Add:        ActionAddTodo,
	Toggle:     ActionToggleTodo,
	Remove:     ActionRemoveTodo,
	PayloadKey: "todo",
}

// Goals owns the "goals" slice.
var Goals = Kind{
	Slice:      "goals",
	Add:        ActionAddGoal,
	Toggle:     ActionToggleGoal,
	Remove:     ActionRemoveGoal,
	PayloadKey: "goal",
}

// Kinds lists every domain combined into the root state.
var Kinds = []Kind{Todos, Goals}

// op is the closed set of list transitions a Kind understands.
type op interface {
	apply(List) List
}

type addOp struct{ entity Entity }

type toggleOp struct{ id int64 }

type removeOp struct{ id int64 }

// apply returns a new list with the entity at the tail. Existing entries
// keep their pointers and order.
func (o addOp) apply(l List) List {
	next := make(List, len(l), len(l)+1)
	copy(next, l)
	e := o.entity
	return append(next, &e)
}

// apply returns a new list where the matching entry is replaced by a copy
// with Completed inverted. Every other entry is passed through by pointer.
func (o toggleOp) apply(l List) List {
	next := make(List, len(l))
	for i, e := range l {
		if e.ID != o.id {
			next[i] = e
			continue
		}
		flipped := *e
		flipped.Completed = !flipped.Completed
		next[i] = &flipped
	}
	return next
}

// apply returns a new list without the matching entry. Survivors keep
// their order.
func (o removeOp) apply(l List) List {
	next := make(List, 0, len(l))
	for _, e := range l {
		if e.ID != o.id {
			next = append(next, e)
		}
	}
	return next
}

// decode maps an action onto this Kind's op set. A nil op with a nil error
// means the tag is not owned by this Kind.
func (k Kind) decode(action ir.Action) (op, error) {
	switch action.Type {
	case k.Add:
		obj, err := action.Object(k.PayloadKey)
		if err != nil {
			return nil, err
		}
		e, err := EntityFromIR(obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.PayloadKey, err)
		}
		return addOp{entity: e}, nil
	case k.Toggle:
		id, err := action.Int("id")
		if err != nil {
			return nil, err
		}
		return toggleOp{id: id}, nil
	case k.Remove:
		id, err := action.Int("id")
		if err != nil {
			return nil, err
		}
		return removeOp{id: id}, nil
	default:
		return nil, nil
	}
}

// Reducer returns the pure reducer for this Kind's slice.
//
// An unset list becomes an empty list. An action this Kind does not own
// returns the input list itself. A malformed payload for an owned tag is
// an error and aborts the dispatch.
func (k Kind) Reducer() store.Reducer[List] {
	return func(state List, action ir.Action) (List, error) {
		if state == nil {
			state = List{}
		}

		o, err := k.decode(action)
		if err != nil {
			return state, fmt.Errorf("%s: %w", action.Type, err)
		}
		if o == nil {
			return state, nil
		}
		return o.apply(state), nil
	}
}
