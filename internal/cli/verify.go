package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reducto/internal/domain"
	"github.com/roach88/reducto/internal/ir"
	"github.com/roach88/reducto/internal/journal"
	"github.com/roach88/reducto/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// Divergence is the first point where a re-dispatch disagreed with the
// journal.
type Divergence struct {
	Seq    int64  `json:"seq"`
	Action string `json:"action"`
	Reason string `json:"reason"`
	Want   string `json:"want,omitempty"`
	Got    string `json:"got,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Divergence reasons.
const (
	ReasonActionHash = "action_hash"
	ReasonRejected   = "rejected"
	ReasonStateHash  = "state_hash"
)

// SessionVerification holds the verify result for a single session.
type SessionVerification struct {
	Session       string      `json:"session"`
	Entries       int         `json:"entries"`
	Deterministic bool        `json:"deterministic"`
	Divergence    *Divergence `json:"divergence,omitempty"`
}

// VerifyResult holds the overall verify result.
type VerifyResult struct {
	Sessions         []SessionVerification `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-dispatch journaled sessions and check state hashes",
		Long: `Re-dispatch every journaled action into a fresh store and compare the
resulting state hash with the one recorded at each step.

A session verifies when every stored action matches its recorded action
hash and every step reproduces its recorded state hash. The first
mismatch or rejected action is reported as a divergence.

Exit codes:
  0 - All sessions reproduce their recorded hashes
  1 - At least one session diverged
  2 - Command error (journal not found, etc.)

Examples:
  reducto verify --db ./reducto.db
  reducto verify --db ./reducto.db --session 0190b6c4-...
  reducto verify --db ./reducto.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "verify specific session only")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger()

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		sessions, err = j.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := VerifyResult{
		Sessions:         make([]SessionVerification, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	for _, s := range sessions {
		entries, err := j.ReadSession(ctx, s)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read session %s", s), err)
		}
		if opts.Session != "" && len(entries) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", s))
		}

		sv, err := verifySession(s, entries, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to verify session %s", s), err)
		}
		result.Sessions = append(result.Sessions, sv)
		if !sv.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputVerifyJSON(opts.formatter(cmd), result)
	}
	return outputVerifyText(cmd.OutOrStdout(), result)
}

// verifySession replays entries into a fresh store. The returned error is
// reserved for setup failures; divergence is reported in the result.
func verifySession(session string, entries []journal.Entry, logger *slog.Logger) (SessionVerification, error) {
	sv := SessionVerification{Session: session, Entries: len(entries), Deterministic: true}

	st, err := domain.NewStore()
	if err != nil {
		return sv, err
	}

	for _, e := range entries {
		if d := replayEntry(st, e); d != nil {
			sv.Deterministic = false
			sv.Divergence = d
			logger.Debug("session diverged", "session", session, "seq", e.Seq, "action", e.Action.Type)
			return sv, nil
		}
	}
	logger.Debug("session verified", "session", session, "entries", len(entries))
	return sv, nil
}

// replayEntry checks the stored action against its recorded hash, then
// re-dispatches it and compares the resulting state hash. Entries without
// an action hash predate schema v2 and skip the first check.
func replayEntry(st *store.Store[store.State], e journal.Entry) *Divergence {
	d := &Divergence{Seq: e.Seq, Action: e.Action.Type}
	if e.ActionHash != "" {
		got, err := ir.ActionHash(e.Action)
		if err != nil {
			d.Reason = ReasonActionHash
			d.Error = err.Error()
			return d
		}
		if got != e.ActionHash {
			d.Reason = ReasonActionHash
			d.Want, d.Got = e.ActionHash, got
			return d
		}
	}

	d.Want = e.StateHash
	if err := st.Dispatch(e.Action); err != nil {
		d.Reason = ReasonRejected
		d.Error = err.Error()
		return d
	}
	got, err := ir.StateHash(domain.Snapshot(st.GetState()))
	if err != nil {
		d.Reason = ReasonStateHash
		d.Error = err.Error()
		return d
	}
	if got != e.StateHash {
		d.Reason = ReasonStateHash
		d.Got = got
		return d
	}
	return nil
}

// outputVerifyJSON outputs the verify result as JSON.
func outputVerifyJSON(out *OutputFormatter, result VerifyResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DIVERGED",
			Message: "journal verification failed",
		}
	}

	if err := out.JSON(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "journal verification failed")
	}
	return nil
}

// outputVerifyText outputs the verify result as text.
func outputVerifyText(w io.Writer, result VerifyResult) error {
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}

	fmt.Fprintf(w, "Verify Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		label := passLabel("OK  ")
		if !s.Deterministic {
			label = failLabel("FAIL")
		}
		fmt.Fprintf(w, "%s %s (%d entries)\n", label, s.Session, s.Entries)

		if d := s.Divergence; d != nil {
			fmt.Fprintf(w, "  diverged at seq %d (%s): %s\n", d.Seq, d.Action, strings.ReplaceAll(d.Reason, "_", " "))
			if d.Error != "" {
				fmt.Fprintf(w, "  error: %s\n", d.Error)
			} else {
				fmt.Fprintf(w, "  want %s\n  got  %s\n", shortHash(d.Want), shortHash(d.Got))
			}
		}
	}
	fmt.Fprintln(w)

	if result.AllDeterministic {
		fmt.Fprintln(w, passLabel("All sessions verified"))
		return nil
	}

	fmt.Fprintln(w, failLabel("Journal verification failed"))
	return NewExitError(ExitFailure, "journal verification failed")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
