package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadSession returns every entry of a session ordered by seq ASC.
//
// Returns an empty slice (not nil) if the session has no entries.
func (j *Journal) ReadSession(ctx context.Context, session string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, action, action_hash, state_hash
		FROM dispatches
		WHERE session = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ReadByType returns every entry with the given action type, ordered by
// session then seq.
func (j *Journal) ReadByType(ctx context.Context, actionType string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, action, action_hash, state_hash
		FROM dispatches
		WHERE action_type = ?
		ORDER BY session COLLATE BINARY ASC, seq ASC
	`, actionType)
	if err != nil {
		return nil, fmt.Errorf("query action type: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Sessions returns every session token in the journal, sorted.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT DISTINCT session
		FROM dispatches
		ORDER BY session COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LastSeq returns the highest seq recorded for a session, or 0.
func (j *Journal) LastSeq(ctx context.Context, session string) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM dispatches WHERE session = ?
	`, session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			actionJSON string
		)
		if err := rows.Scan(&e.Session, &e.Seq, &actionJSON, &e.ActionHash, &e.StateHash); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		a, err := unmarshalAction(actionJSON)
		if err != nil {
			return nil, fmt.Errorf("entry %s/%d: %w", e.Session, e.Seq, err)
		}
		e.Action = a
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
