package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/reducto/internal/ir"
)

// Dispatcher is the part of a store a Recorder drives.
type Dispatcher interface {
	Dispatch(action ir.Action) error
}

// SnapshotFunc returns the IR form of the state after a dispatch.
type SnapshotFunc func() ir.IRValue

// Recorder dispatches actions into a store and journals each one that
// succeeds under a single session.
//
// Recorder is not safe for concurrent use; neither is the store it wraps.
type Recorder struct {
	journal  *Journal
	target   Dispatcher
	snapshot SnapshotFunc
	session  string
	seq      int64
	logger   *slog.Logger
}

// NewRecorder creates a recorder for a fresh session drawn from gen.
// A nil logger discards output.
func NewRecorder(j *Journal, target Dispatcher, snapshot SnapshotFunc, gen SessionGenerator, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{
		journal:  j,
		target:   target,
		snapshot: snapshot,
		session:  gen.Generate(),
		logger:   logger,
	}
}

// Session returns the recorder's session token.
func (r *Recorder) Session() string {
	return r.session
}

// Seq returns the seq of the last journaled entry.
func (r *Recorder) Seq() int64 {
	return r.seq
}

// Dispatch forwards action to the store. A failed dispatch is returned
// unchanged and writes nothing. A successful one is journaled with the
// hash of the resulting state; a journal failure is returned wrapped, with
// the store already advanced.
func (r *Recorder) Dispatch(ctx context.Context, action ir.Action) error {
	if err := r.target.Dispatch(action); err != nil {
		return err
	}

	hash, err := ir.StateHash(r.snapshot())
	if err != nil {
		return fmt.Errorf("journal %s: %w", action.Type, err)
	}

	entry := Entry{
		Session:   r.session,
		Seq:       r.seq + 1,
		Action:    action,
		StateHash: hash,
	}
	if _, err := r.journal.WriteEntry(ctx, entry); err != nil {
		return fmt.Errorf("journal %s: %w", action.Type, err)
	}
	r.seq = entry.Seq

	r.logger.Debug("dispatch journaled",
		"session", r.session,
		"seq", entry.Seq,
		"type", action.Type,
		"state_hash", hash,
	)
	return nil
}
