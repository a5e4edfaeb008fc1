package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reducto/internal/domain"
)

const minimalScenario = `
name: minimal
description: "one add"
steps:
  - action: { type: ADD_TODO, todo: { id: 7, text: "x" } }
assertions:
  - type: final_state
    slice: todos
    expect:
      - { id: 7, text: "x", completed: false }
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Steps, 1)
	action, err := s.Steps[0].action()
	require.NoError(t, err)
	assert.Equal(t, domain.AddTodo(domain.Entity{ID: 7, Text: "x"}), action)

	require.Len(t, s.Assertions, 1)
	assert.Equal(t, []domain.Entity{{ID: 7, Text: "x"}}, s.Assertions[0].Expect)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: y\nstep: []\n",
			wantErr: "field step not found",
		},
		{
			name:    "missing name",
			yaml:    "description: y\nsteps: [{action: {type: A}}]\nassertions: [{type: notifications}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nsteps: [{action: {type: A}}]\nassertions: [{type: notifications}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: y\nassertions: [{type: notifications}]\n",
			wantErr: "steps list is required",
		},
		{
			name:    "no assertions",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "step without type",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {id: 1}}]\nassertions: [{type: notifications}]\n",
			wantErr: "steps[0]: type: action type is required",
		},
		{
			name:    "step with float",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A, id: 1.5}}]\nassertions: [{type: notifications}]\n",
			wantErr: "floats are not allowed",
		},
		{
			name:    "step without action",
			yaml:    "name: x\ndescription: y\nsteps: [{expect_error: boom}]\nassertions: [{type: notifications}]\n",
			wantErr: "action is required",
		},
		{
			name:    "final_state without slice",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\nassertions: [{type: final_state, expect: []}]\n",
			wantErr: "slice is required",
		},
		{
			name:    "final_state without expect",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\nassertions: [{type: final_state, slice: todos}]\n",
			wantErr: "expect is required",
		},
		{
			name:    "trace_order without actions",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\nassertions: [{type: trace_order}]\n",
			wantErr: "actions list is required",
		},
		{
			name:    "trace_count without action",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\nassertions: [{type: trace_count, count: 1}]\n",
			wantErr: "action is required for trace_count",
		},
		{
			name:    "negative notifications",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\nassertions: [{type: notifications, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: y\nsteps: [{action: {type: A}}]\nassertions: [{type: trace_contains}]\n",
			wantErr: "unknown assertion type",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestDiscoverScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(minimalScenario), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	paths, err := DiscoverScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, paths)
}

func TestDiscoverScenarios_Errors(t *testing.T) {
	var dirErr *ScenarioDirError

	_, err := DiscoverScenarios(filepath.Join(t.TempDir(), "missing"))
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "does not exist", dirErr.Reason)

	_, err = DiscoverScenarios(t.TempDir())
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "no scenario files found", dirErr.Reason)

	file := filepath.Join(t.TempDir(), "f.yaml")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = DiscoverScenarios(file)
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "not a directory", dirErr.Reason)
}
