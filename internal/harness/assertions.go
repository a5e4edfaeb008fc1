package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reducto/internal/domain"
	"github.com/roach88/reducto/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Action, event.Outcome)
		}
	}

	return buf.String()
}

// dispatched returns the action tags of successful steps, in order.
func dispatched(trace []TraceEvent) []string {
	var tags []string
	for _, event := range trace {
		if event.Outcome == OutcomeOK {
			tags = append(tags, event.Action)
		}
	}
	return tags
}

// assertTraceOrder checks that actions appear in the specified order among
// successful dispatches. Intervening actions are allowed, and each expected
// tag matches a later occurrence than the one before it.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	tags := dispatched(trace)

	pos := 0
	for _, want := range assertion.Actions {
		idx := slices.Index(tags[pos:], want)
		if idx < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual:   fmt.Sprintf("no %s after position %d", want, pos),
				Trace:    trace,
			}
		}
		pos += idx + 1
	}

	return nil
}

// assertTraceCount checks that the action was dispatched successfully
// exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, tag := range dispatched(trace) {
		if tag == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertNotifications checks the total number of listener calls.
func assertNotifications(result *Result, assertion Assertion) error {
	if result.Notifications != assertion.Count {
		return &AssertionError{
			Type:     AssertNotifications,
			Expected: fmt.Sprintf("%d listener calls", assertion.Count),
			Actual:   fmt.Sprintf("%d listener calls", result.Notifications),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertFinalState checks that a slice of the final root state equals the
// expected entity list, in order.
func assertFinalState(state store.State, assertion Assertion) error {
	raw, ok := state[assertion.Slice]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("slice %q to exist", assertion.Slice),
			Actual:   fmt.Sprintf("slices present: %v", sortedKeys(state)),
		}
	}

	list, ok := raw.(domain.List)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("slice %q to hold an entity list", assertion.Slice),
			Actual:   fmt.Sprintf("%T", raw),
		}
	}

	actual := list.Values()
	if !slices.Equal(actual, assertion.Expect) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", assertion.Slice, formatEntities(assertion.Expect)),
			Actual:   fmt.Sprintf("%s = %s", assertion.Slice, formatEntities(actual)),
		}
	}

	return nil
}

func sortedKeys(state store.State) []string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func formatEntities(es []domain.Entity) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = fmt.Sprintf("{%d %q %t}", e.ID, e.Text, e.Completed)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// EvaluateAssertions evaluates all assertions against the result and the
// final root state. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, state store.State) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalState:
			err = assertFinalState(state, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertNotifications:
			err = assertNotifications(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
