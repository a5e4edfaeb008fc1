package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reducto/internal/domain"
	"github.com/roach88/reducto/internal/ir"
)

// Scenario defines a conformance scenario: a sequence of actions dispatched
// into a fresh root store, followed by assertions over the resulting trace
// and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are dispatched in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: final_state, trace_order, trace_count, notifications
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one dispatch.
type Step struct {
	// Action is the flat wire record, e.g. {type: TOGGLE_TODO, id: 0}.
	Action map[string]any `yaml:"action"`

	// ExpectError, if set, requires the dispatch to fail with an error
	// whose message contains this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": Slice equals Expect, entry by entry
	// - "trace_order": Actions appear in order among successful dispatches
	// - "trace_count": Action was dispatched successfully exactly Count times
	// - "notifications": listeners were called exactly Count times in total
	Type string `yaml:"type"`

	// Slice is the root state key (used by final_state).
	Slice string `yaml:"slice,omitempty"`

	// Expect is the expected entity list (used by final_state).
	Expect []domain.Entity `yaml:"expect,omitempty"`

	// Action is an action tag (used by trace_count).
	Action string `yaml:"action,omitempty"`

	// Actions is the expected tag order (used by trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number (used by trace_count and notifications).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState    = "final_state"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertNotifications = "notifications"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if _, err := step.action(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// action converts the step's wire record into an ir.Action.
func (s Step) action() (ir.Action, error) {
	if s.Action == nil {
		return ir.Action{}, fmt.Errorf("action is required")
	}
	v, err := ir.FromAny(s.Action)
	if err != nil {
		return ir.Action{}, fmt.Errorf("action: %w", err)
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return ir.Action{}, fmt.Errorf("action must be a mapping")
	}
	return ir.ActionFromObject(obj)
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Slice == "" {
			return fmt.Errorf("assertions[%d]: slice is required for final_state", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_state (use [] for empty)", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertNotifications:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notifications", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
