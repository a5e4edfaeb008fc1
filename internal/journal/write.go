package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/reducto/internal/ir"
)

// WriteEntry inserts a dispatch record, storing the action's canonical
// JSON and its ActionHash.
// Uses ON CONFLICT(session, seq) DO NOTHING for idempotency: writing the
// same (session, seq) twice keeps the first row and reports inserted=false.
func (j *Journal) WriteEntry(ctx context.Context, e Entry) (inserted bool, err error) {
	if e.Session == "" {
		return false, errors.New("write entry: session is required")
	}
	if e.Seq < 1 {
		return false, fmt.Errorf("write entry: seq must be positive, got %d", e.Seq)
	}

	actionJSON, err := marshalAction(e.Action)
	if err != nil {
		return false, fmt.Errorf("write entry: %w", err)
	}
	actionHash, err := ir.ActionHash(e.Action)
	if err != nil {
		return false, fmt.Errorf("write entry: %w", err)
	}

	result, err := j.db.ExecContext(ctx, `
		INSERT INTO dispatches
		(session, seq, action_type, action, action_hash, state_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		e.Session,
		e.Seq,
		e.Action.Type,
		actionJSON,
		actionHash,
		e.StateHash,
	)
	if err != nil {
		return false, fmt.Errorf("write entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write entry: rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
