// Package harness runs conformance scenarios against the todo/goal store.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - action: { type: ADD_TODO, todo: { id: 0, text: "Task 1", completed: false } }
//	  - action: { type: TOGGLE_TODO }
//	    expect_error: "id: is required"
//	assertions:
//	  - type: final_state
//	    slice: todos
//	    expect:
//	      - { id: 0, text: "Task 1", completed: false }
//	  - type: trace_count
//	    action: ADD_TODO
//	    count: 1
//
// # Assertion Types
//
//   - final_state: a slice of the final state equals the expected list
//   - trace_order: tags appear in order among successful dispatches
//   - trace_count: a tag was dispatched successfully exactly N times
//   - notifications: listeners were called exactly N times in total
//
// # Deterministic Testing
//
// Every run builds a fresh store, and each trace event carries the state
// hash after its step, so identical scenarios produce byte-identical
// snapshots for golden comparison.
package harness
