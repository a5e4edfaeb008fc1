package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reducto/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
	Action   string // optional - filter to one action type
}

// SessionSummary describes one journaled session.
type SessionSummary struct {
	Session string `json:"session"`
	Entries int64  `json:"entries"`
}

// TraceResult holds the trace output. Sessions is set when listing,
// Entries otherwise.
type TraceResult struct {
	Session  string           `json:"session,omitempty"`
	Action   string           `json:"action,omitempty"`
	Sessions []SessionSummary `json:"sessions,omitempty"`
	Entries  []journal.Entry  `json:"entries,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query the dispatch journal",
		Long: `Query a SQLite dispatch journal written by "reducto run --journal".

Without --session, lists every session with its entry count.
With --session, shows that session's dispatches in seq order.
With --action, keeps only dispatches of that action type, across all
sessions unless --session narrows it.

Examples:
  reducto trace --db ./reducto.db
  reducto trace --db ./reducto.db --session 0190b6c4-...
  reducto trace --db ./reducto.db --action TOGGLE_TODO
  reducto trace --db ./reducto.db --session 0190b6c4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to show")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to one action type")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	result := TraceResult{Session: opts.Session, Action: opts.Action}

	switch {
	case opts.Session != "":
		entries, err := j.ReadSession(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		result.Entries = filterEntries(entries, opts.Action)
	case opts.Action != "":
		entries, err := j.ReadByType(ctx, opts.Action)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read entries", err)
		}
		result.Entries = entries
	default:
		sessions, err := summarizeSessions(ctx, j)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		result.Sessions = sessions
	}

	opts.Logger().Debug("trace",
		"db", opts.Database,
		"session", opts.Session,
		"action", opts.Action,
		"entries", len(result.Entries),
		"sessions", len(result.Sessions),
	)

	if opts.Format == "json" {
		if result.Sessions == nil && result.Entries == nil {
			result.Entries = []journal.Entry{}
		}
		return opts.formatter(cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.Session == "" && opts.Action == "" {
		writeSessions(w, result.Sessions)
		return nil
	}
	writeEntries(w, result)
	return nil
}

// openExistingJournal opens a journal that must already exist, so a typo
// in --db does not silently create an empty database.
func openExistingJournal(path string) (*journal.Journal, error) {
	if !fileExists(path) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

func summarizeSessions(ctx context.Context, j *journal.Journal) ([]SessionSummary, error) {
	tokens, err := j.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]SessionSummary, 0, len(tokens))
	for _, s := range tokens {
		last, err := j.LastSeq(ctx, s)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, SessionSummary{Session: s, Entries: last})
	}
	return summaries, nil
}

func filterEntries(entries []journal.Entry, actionType string) []journal.Entry {
	if actionType == "" {
		return entries
	}
	kept := []journal.Entry{}
	for _, e := range entries {
		if e.Action.Type == actionType {
			kept = append(kept, e)
		}
	}
	return kept
}

func writeSessions(w io.Writer, sessions []SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}
	fmt.Fprintf(w, "Sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s  %d entries\n", s.Session, s.Entries)
	}
}

func writeEntries(w io.Writer, result TraceResult) {
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	showSession := result.Session == ""
	for _, e := range result.Entries {
		payload, err := e.Action.Payload.MarshalJSON()
		if err != nil {
			payload = []byte("?")
		}
		if showSession {
			fmt.Fprintf(w, "%s ", dimLabel(e.Session))
		}
		actionHash := shortHash(e.ActionHash)
		if actionHash == "" {
			actionHash = "-"
		}
		fmt.Fprintf(w, "%4d  %-12s %s  %s\n", e.Seq, e.Action.Type,
			dimLabel("action="+actionHash+" state="+shortHash(e.StateHash)), payload)
	}
}

// shortHash trims a state hash for text output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
