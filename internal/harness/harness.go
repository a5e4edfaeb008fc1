package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/reducto/internal/domain"
	"github.com/roach88/reducto/internal/ir"
	"github.com/roach88/reducto/internal/store"
)

// Harness runs one scenario against a fresh root store.
type Harness struct {
	store         *store.Store[store.State]
	logger        *slog.Logger
	notifications int
}

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, nil)
}

// RunWithLogger executes a scenario and returns the result.
//
// Execution flow:
// 1. Create a fresh root store and subscribe a counting listener
// 2. Dispatch each step, checking expect_error and recording a trace event
// 3. Evaluate assertions against the trace and final state
//
// A returned error means the scenario could not be executed at all; step
// and assertion failures are reported in the Result.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st, err := domain.NewStore(store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	h := &Harness{store: st, logger: logger}
	if _, err := st.Subscribe(func() { h.notifications++ }); err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	result := NewResult()
	if err := h.executeSteps(scenario.Steps, result); err != nil {
		return nil, err
	}

	result.Notifications = h.notifications
	result.State = domain.Snapshot(st.GetState())

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, st.GetState()) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSteps dispatches every step, recording a trace event for each.
// Steps continue after a failure so the trace stays complete.
func (h *Harness) executeSteps(steps []Step, result *Result) error {
	for i, step := range steps {
		action, err := step.action()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		event := TraceEvent{
			Seq:     int64(i + 1),
			Action:  action.Type,
			Outcome: OutcomeOK,
		}

		dispatchErr := h.store.Dispatch(action)
		if dispatchErr != nil {
			event.Outcome = OutcomeError
			event.Error = dispatchErr.Error()
		}

		hash, err := ir.StateHash(domain.Snapshot(h.store.GetState()))
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		event.StateHash = hash
		result.AddTrace(event)

		switch {
		case step.ExpectError == "" && dispatchErr != nil:
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", i, action.Type, dispatchErr))
		case step.ExpectError != "" && dispatchErr == nil:
			result.AddError(fmt.Sprintf("step %d (%s): expected error containing %q, dispatch succeeded",
				i, action.Type, step.ExpectError))
		case step.ExpectError != "" && !strings.Contains(dispatchErr.Error(), step.ExpectError):
			result.AddError(fmt.Sprintf("step %d (%s): expected error containing %q, got: %v",
				i, action.Type, step.ExpectError, dispatchErr))
		}

		h.logger.Debug("step executed",
			"step", i,
			"type", action.Type,
			"outcome", event.Outcome,
		)
	}
	return nil
}
