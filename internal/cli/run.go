package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reducto/internal/domain"
	"github.com/roach88/reducto/internal/ir"
	"github.com/roach88/reducto/internal/journal"
	"github.com/roach88/reducto/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string

	// SessionGenerator allows overriding the journal session generator
	// (for testing). If nil, defaults to UUIDv7Generator.
	SessionGenerator journal.SessionGenerator
}

// RunReport is the result of a run.
type RunReport struct {
	Session    string      `json:"session,omitempty"`
	Dispatched int         `json:"dispatched"`
	State      ir.IRObject `json:"state"`
}

// RunFailure describes the action that stopped a run.
type RunFailure struct {
	Line       int         `json:"line"`
	Action     string      `json:"action"`
	Error      string      `json:"error"`
	Dispatched int         `json:"dispatched"`
	State      ir.IRObject `json:"state"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <actions-file>",
		Short: "Dispatch a file of actions and print the final state",
		Long: `Dispatch actions through a fresh todo/goal store.

The actions file holds one JSON action per line in wire shape, e.g.
  {"type":"ADD_TODO","todo":{"id":0,"text":"Task 1","completed":false}}
  {"type":"TOGGLE_TODO","id":0}
Blank lines and lines starting with # are skipped. "-" reads stdin.

The run stops at the first action the reducer rejects.

With --journal (or journal in the config file), every successful dispatch
is recorded in a SQLite journal under a new session.

Exit codes:
  0 - All actions dispatched
  1 - An action was rejected, or could not be journaled
  2 - Command error (unreadable file, malformed JSON, etc.)

Examples:
  reducto run actions.jsonl
  reducto run actions.jsonl --journal ./reducto.db
  reducto run - --format json < actions.jsonl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActions(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (optional)")

	return cmd
}

// lineAction is an action with its source line number.
type lineAction struct {
	line   int
	action ir.Action
}

func runActions(opts *RunOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger()
	out := opts.formatter(cmd)

	actions, err := loadActions(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read actions", err)
	}
	logger.Debug("actions loaded", "path", path, "count", len(actions))

	st, err := domain.NewStore(store.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create store", err)
	}

	dispatch := func(_ context.Context, a ir.Action) error { return st.Dispatch(a) }

	report := RunReport{}
	journalPath := opts.Journal
	if journalPath == "" && opts.Config != nil {
		journalPath = opts.Config.Journal
	}
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		gen := opts.SessionGenerator
		if gen == nil {
			gen = journal.UUIDv7Generator{}
		}
		snapshot := func() ir.IRValue { return domain.Snapshot(st.GetState()) }
		rec := journal.NewRecorder(j, st, snapshot, gen, logger)
		dispatch = rec.Dispatch
		report.Session = rec.Session()
		logger.Info("journaling", "path", journalPath, "session", report.Session)
	}

	for _, la := range actions {
		if err := dispatch(ctx, la.action); err != nil {
			report.Dispatched = int(st.Dispatches())
			failure := RunFailure{
				Line:       la.line,
				Action:     la.action.Type,
				Error:      err.Error(),
				Dispatched: report.Dispatched,
				State:      domain.Snapshot(st.GetState()),
			}
			code, msg := classifyDispatchError(la, err)
			if opts.Format == "json" {
				_ = out.Error(code, msg, failure)
			} else {
				writeRunText(out.Writer, report, st.GetState())
			}
			return WrapExitError(ExitFailure, msg, err)
		}
	}

	report.Dispatched = int(st.Dispatches())
	report.State = domain.Snapshot(st.GetState())
	if opts.Format == "json" {
		return out.Success(report)
	}
	writeRunText(out.Writer, report, st.GetState())
	return nil
}

// classifyDispatchError separates a reducer rejection, which left the
// store untouched, from a journal failure after the store advanced.
func classifyDispatchError(la lineAction, err error) (code, msg string) {
	if store.IsReducerError(err) {
		return "E_DISPATCH", fmt.Sprintf("line %d: %s rejected", la.line, la.action.Type)
	}
	return "E_JOURNAL", fmt.Sprintf("line %d: %s applied but not journaled", la.line, la.action.Type)
}

// loadActions reads a JSON-lines actions file. "-" reads from stdin.
func loadActions(path string, stdin io.Reader) ([]lineAction, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseActions(r)
}

func parseActions(r io.Reader) ([]lineAction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var actions []lineAction
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var a ir.Action
		if err := a.UnmarshalJSON([]byte(text)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		actions = append(actions, lineAction{line: line, action: a})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan actions: %w", err)
	}
	return actions, nil
}

// writeRunText prints a run summary followed by every slice.
func writeRunText(w io.Writer, report RunReport, state store.State) {
	fmt.Fprintf(w, "Dispatched %d action(s)\n", report.Dispatched)
	if report.Session != "" {
		fmt.Fprintf(w, "Session: %s\n", report.Session)
	}
	for _, k := range domain.Kinds {
		writeList(w, k.Slice, k.Of(state))
	}
}

func writeList(w io.Writer, name string, l domain.List) {
	fmt.Fprintf(w, "%s (%d):\n", name, len(l))
	for _, e := range l {
		mark := "[ ]"
		if e.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(w, "  %s %d %s\n", mark, e.ID, e.Text)
	}
}
