package domain

import "github.com/roach88/reducto/internal/ir"

// Action tags of the todo and goal domains.
const (
	ActionAddTodo    = "ADD_TODO"
	ActionToggleTodo = "TOGGLE_TODO"
	ActionRemoveTodo = "REMOVE_TODO"
	ActionAddGoal    = "ADD_GOAL"
	ActionToggleGoal = "TOGGLE_GOAL"
	ActionRemoveGoal = "REMOVE_GOAL"
)

// AddTodo builds ADD_TODO{todo}.
func AddTodo(e Entity) ir.Action { return Todos.AddAction(e) }

// ToggleTodo builds TOGGLE_TODO{id}.
func ToggleTodo(id int64) ir.Action { return Todos.ToggleAction(id) }

// RemoveTodo builds REMOVE_TODO{id}.
func RemoveTodo(id int64) ir.Action { return Todos.RemoveAction(id) }

// AddGoal builds ADD_GOAL{goal}.
func AddGoal(e Entity) ir.Action { return Goals.AddAction(e) }

// ToggleGoal builds TOGGLE_GOAL{id}.
func ToggleGoal(id int64) ir.Action { return Goals.ToggleAction(id) }

// RemoveGoal builds REMOVE_GOAL{id}.
func RemoveGoal(id int64) ir.Action { return Goals.RemoveAction(id) }

// AddAction builds the kind's add action carrying e under its payload key.
func (k Kind) AddAction(e Entity) ir.Action {
	return ir.NewAction(k.Add, ir.O(k.PayloadKey, e.ToIR()))
}

// ToggleAction builds the kind's toggle action for id.
func (k Kind) ToggleAction(id int64) ir.Action {
	return ir.NewAction(k.Toggle, ir.O("id", ir.IRInt(id)))
}

// RemoveAction builds the kind's remove action for id.
func (k Kind) RemoveAction(id int64) ir.Action {
	return ir.NewAction(k.Remove, ir.O("id", ir.IRInt(id)))
}
