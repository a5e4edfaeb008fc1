package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reducto/internal/ir"
	"github.com/roach88/reducto/internal/store"
)

func reduce(t *testing.T, k Kind, state List, action ir.Action) List {
	t.Helper()
	next, err := k.Reducer()(state, action)
	require.NoError(t, err)
	return next
}

func listOf(es ...Entity) List {
	l := make(List, len(es))
	for i := range es {
		e := es[i]
		l[i] = &e
	}
	return l
}

func TestReducer_UnsetBecomesEmpty(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.Slice, func(t *testing.T) {
			got := reduce(t, k, nil, store.InitAction())
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestReducer_Add(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.Slice, func(t *testing.T) {
			before := listOf(Entity{ID: 0, Text: "a"})
			e := Entity{ID: 7, Text: "Task 7", Completed: true}

			after := reduce(t, k, before, k.AddAction(e))

			require.Len(t, after, 2)
			assert.Equal(t, e, *after[1])
			assert.Same(t, before[0], after[0], "existing entries keep their pointers")
			assert.False(t, before.Same(after))
			assert.Len(t, before, 1, "input list is untouched")
		})
	}
}

func TestReducer_AddDoesNotAliasInput(t *testing.T) {
	before := make(List, 1, 4)
	before[0] = &Entity{ID: 0, Text: "a"}

	a := reduce(t, Todos, before, AddTodo(Entity{ID: 1, Text: "b"}))
	b := reduce(t, Todos, before, AddTodo(Entity{ID: 2, Text: "c"}))

	assert.Equal(t, int64(1), a[1].ID, "a later add on the same input must not overwrite an earlier result")
	assert.Equal(t, int64(2), b[1].ID)
}

func TestReducer_AddDuplicateID(t *testing.T) {
	before := listOf(Entity{ID: 1, Text: "Task 1"})
	after := reduce(t, Todos, before, AddTodo(Entity{ID: 1, Text: "Task 1"}))
	assert.Len(t, after, 2, "duplicate ids are not rejected")
}

func TestReducer_Toggle(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.Slice, func(t *testing.T) {
			before := listOf(
				Entity{ID: 0, Text: "a"},
				Entity{ID: 1, Text: "b"},
				Entity{ID: 2, Text: "c", Completed: true},
			)

			after := reduce(t, k, before, k.ToggleAction(1))

			require.Len(t, after, 3)
			assert.True(t, after[1].Completed)
			assert.False(t, before[1].Completed, "the stored entity is not mutated")
			assert.NotSame(t, before[1], after[1])
			assert.Same(t, before[0], after[0])
			assert.Same(t, before[2], after[2])
			assert.Equal(t, "b", after[1].Text)

			back := reduce(t, k, after, k.ToggleAction(1))
			assert.Equal(t, before.Values(), back.Values(), "toggle is an involution on values")
		})
	}
}

func TestReducer_ToggleMissingID(t *testing.T) {
	before := listOf(Entity{ID: 0, Text: "a"}, Entity{ID: 1, Text: "b"})
	after := reduce(t, Goals, before, ToggleGoal(99))

	assert.Equal(t, before.Values(), after.Values())
	assert.Same(t, before[0], after[0])
	assert.Same(t, before[1], after[1])
}

func TestReducer_Remove(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.Slice, func(t *testing.T) {
			before := listOf(
				Entity{ID: 0, Text: "a"},
				Entity{ID: 1, Text: "b"},
				Entity{ID: 2, Text: "c"},
			)

			after := reduce(t, k, before, k.RemoveAction(1))

			require.Len(t, after, 2)
			assert.Same(t, before[0], after[0])
			assert.Same(t, before[2], after[2])
			assert.Len(t, before, 3)
		})
	}
}

func TestReducer_RemoveMissingID(t *testing.T) {
	before := listOf(Entity{ID: 0, Text: "a"})
	after := reduce(t, Todos, before, RemoveTodo(5))
	assert.Equal(t, before.Values(), after.Values())
}

func TestReducer_ForeignActionReturnsSameList(t *testing.T) {
	before := listOf(Entity{ID: 0, Text: "a"})

	cases := []struct {
		name   string
		kind   Kind
		action ir.Action
	}{
		{"todos ignores goal add", Todos, AddGoal(Entity{ID: 1, Text: "g"})},
		{"todos ignores goal toggle", Todos, ToggleGoal(0)},
		{"goals ignores todo remove", Goals, RemoveTodo(0)},
		{"goals ignores init", Goals, store.InitAction()},
		{"todos ignores unknown", Todos, ir.NewAction("SOMETHING_ELSE")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			after := reduce(t, tc.kind, before, tc.action)
			assert.True(t, before.Same(after))
		})
	}
}

func TestReducer_MalformedPayload(t *testing.T) {
	before := listOf(Entity{ID: 0, Text: "a"})

	cases := []struct {
		name    string
		action  ir.Action
		wantErr string
	}{
		{
			name:    "add without payload",
			action:  ir.NewAction(ActionAddTodo),
			wantErr: "todo",
		},
		{
			name:    "add with text missing",
			action:  ir.NewAction(ActionAddTodo, ir.O("todo", ir.IRObject{"id": ir.IRInt(1)})),
			wantErr: "text",
		},
		{
			name:    "toggle with string id",
			action:  ir.NewAction(ActionToggleTodo, ir.O("id", ir.IRString("1"))),
			wantErr: "id",
		},
		{
			name:    "remove without id",
			action:  ir.NewAction(ActionRemoveTodo),
			wantErr: "id",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			after, err := Todos.Reducer()(before, tc.action)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Contains(t, err.Error(), tc.action.Type)
			assert.True(t, before.Same(after))
		})
	}
}

func TestReducer_Deterministic(t *testing.T) {
	before := listOf(Entity{ID: 0, Text: "a"}, Entity{ID: 1, Text: "b"})
	actions := []ir.Action{
		AddTodo(Entity{ID: 2, Text: "c"}),
		ToggleTodo(0),
		RemoveTodo(1),
	}
	for _, a := range actions {
		x := reduce(t, Todos, before, a)
		y := reduce(t, Todos, before, a)
		assert.Equal(t, x.Values(), y.Values(), a.Type)
	}
}

func TestEntityFromIR_CompletedOptional(t *testing.T) {
	e, err := EntityFromIR(ir.IRObject{"id": ir.IRInt(3), "text": ir.IRString("x")})
	require.NoError(t, err)
	assert.Equal(t, Entity{ID: 3, Text: "x"}, e)

	_, err = EntityFromIR(ir.IRObject{"id": ir.IRInt(3), "text": ir.IRString("x"), "completed": ir.IRString("yes")})
	require.Error(t, err)
}

func TestListFromIR_RoundTrip(t *testing.T) {
	l := listOf(Entity{ID: 0, Text: "a", Completed: true}, Entity{ID: 1, Text: "b"})

	got, err := ListFromIR(l.ToIR())
	require.NoError(t, err)
	assert.Equal(t, l.Values(), got.Values())

	_, err = ListFromIR(ir.IRArray{ir.IRInt(1)})
	require.Error(t, err)
}
