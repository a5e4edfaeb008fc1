package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reducto/internal/ir"
)

// openTestJournal opens a file-backed journal in a temp dir.
func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testEntry(session string, seq int64, action ir.Action) Entry {
	return Entry{
		Session:   session,
		Seq:       seq,
		Action:    action,
		StateHash: ir.MustStateHash(ir.IRObject{"seq": ir.IRInt(seq)}),
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist")

	version, err := j.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, j.Close())
	}

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	var name string
	err = j.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?",
		"idx_dispatches_action_type").Scan(&name)
	require.NoError(t, err, "migration index should exist")
}

func TestOpen_Memory(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	inserted, err := j.WriteEntry(ctx, testEntry("s", 1, ir.NewAction("A")))
	require.NoError(t, err)
	assert.True(t, inserted)

	entries, err := j.ReadSession(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClose_Nil(t *testing.T) {
	j := &Journal{}
	assert.NoError(t, j.Close())
}

func TestWriteEntry_RoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	action := ir.NewAction("ADD_TODO", ir.O("todo", ir.IRObject{
		"id":        ir.IRInt(9007199254740993),
		"text":      ir.IRString("Task é"),
		"completed": ir.IRBool(false),
	}))
	e := testEntry("session-1", 1, action)

	inserted, err := j.WriteEntry(ctx, e)
	require.NoError(t, err)
	assert.True(t, inserted)

	got, err := j.ReadSession(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	e.ActionHash, err = ir.ActionHash(action)
	require.NoError(t, err)
	assert.Equal(t, e, got[0], "large integers and unicode survive storage")
}

func TestWriteEntry_StoresCanonicalJSON(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	_, err := j.WriteEntry(ctx, testEntry("s", 1, ir.NewAction("T", ir.O("b", ir.IRInt(2)), ir.O("a", ir.IRInt(1)))))
	require.NoError(t, err)

	var raw, actionType string
	err = j.db.QueryRow("SELECT action, action_type FROM dispatches").Scan(&raw, &actionType)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"type":"T"}`, raw)
	assert.Equal(t, "T", actionType)
}

func TestWriteEntry_Idempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	first := testEntry("s", 1, ir.NewAction("FIRST"))
	second := testEntry("s", 1, ir.NewAction("SECOND"))

	inserted, err := j.WriteEntry(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = j.WriteEntry(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := j.ReadSession(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "FIRST", got[0].Action.Type, "first write wins")
}

func TestWriteEntry_Validation(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	_, err := j.WriteEntry(ctx, testEntry("", 1, ir.NewAction("A")))
	assert.ErrorContains(t, err, "session is required")

	_, err = j.WriteEntry(ctx, testEntry("s", 0, ir.NewAction("A")))
	assert.ErrorContains(t, err, "seq must be positive")

	bad := testEntry("s", 1, ir.NewAction("A", ir.O("x", ir.IRNull{})))
	_, err = j.WriteEntry(ctx, bad)
	assert.Error(t, err, "null payload values are not canonicalizable")
}

func TestReadSession_OrderedBySeq(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for _, seq := range []int64{3, 1, 2} {
		_, err := j.WriteEntry(ctx, testEntry("s", seq, ir.NewAction("A")))
		require.NoError(t, err)
	}
	_, err := j.WriteEntry(ctx, testEntry("other", 1, ir.NewAction("A")))
	require.NoError(t, err)

	got, err := j.ReadSession(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, "s", e.Session)
	}
}

func TestReadSession_EmptyNotNil(t *testing.T) {
	j := openTestJournal(t)

	got, err := j.ReadSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadByType(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	writes := []Entry{
		testEntry("b", 1, ir.NewAction("ADD")),
		testEntry("a", 2, ir.NewAction("ADD")),
		testEntry("a", 1, ir.NewAction("REMOVE")),
		testEntry("a", 3, ir.NewAction("ADD")),
	}
	for _, e := range writes {
		_, err := j.WriteEntry(ctx, e)
		require.NoError(t, err)
	}

	got, err := j.ReadByType(ctx, "ADD")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, [][2]any{{"a", int64(2)}, {"a", int64(3)}, {"b", int64(1)}}, [][2]any{
		{got[0].Session, got[0].Seq},
		{got[1].Session, got[1].Seq},
		{got[2].Session, got[2].Seq},
	})
}

func TestSessions_AndLastSeq(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	for _, e := range []Entry{
		testEntry("run-2", 1, ir.NewAction("A")),
		testEntry("run-1", 1, ir.NewAction("A")),
		testEntry("run-1", 2, ir.NewAction("A")),
	} {
		_, err := j.WriteEntry(ctx, e)
		require.NoError(t, err)
	}

	sessions, err = j.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, sessions)

	last, err := j.LastSeq(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)

	last, err = j.LastSeq(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestWriteEntry_ComputesActionHash(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	action := ir.NewAction("TOGGLE_TODO", ir.O("id", ir.IRInt(3)))
	e := testEntry("s", 1, action)
	e.ActionHash = "caller-supplied"
	_, err := j.WriteEntry(ctx, e)
	require.NoError(t, err)

	want, err := ir.ActionHash(action)
	require.NoError(t, err)

	var raw string
	require.NoError(t, j.db.QueryRow("SELECT action_hash FROM dispatches").Scan(&raw))
	assert.Equal(t, want, raw)

	got, err := j.ReadByType(ctx, "TOGGLE_TODO")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0].ActionHash)
}

func TestOpen_MigratesV1Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	old, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = old.Exec(`
		CREATE TABLE dispatches (
			session     TEXT    NOT NULL,
			seq         INTEGER NOT NULL,
			action_type TEXT    NOT NULL,
			action      TEXT    NOT NULL,
			state_hash  TEXT    NOT NULL,
			UNIQUE(session, seq)
		);
		INSERT INTO dispatches VALUES ('old', 1, 'A', '{"type":"A"}', 'h1');
		PRAGMA user_version = 1;
	`)
	require.NoError(t, err)
	require.NoError(t, old.Close())

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	version, err := j.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	ctx := context.Background()
	legacy, err := j.ReadSession(ctx, "old")
	require.NoError(t, err)
	require.Len(t, legacy, 1)
	assert.Empty(t, legacy[0].ActionHash, "rows from v1 carry no action hash")
	assert.Equal(t, "h1", legacy[0].StateHash)

	_, err = j.WriteEntry(ctx, testEntry("old", 2, ir.NewAction("B")))
	require.NoError(t, err)
	entries, err := j.ReadSession(ctx, "old")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Len(t, entries[1].ActionHash, 64)
}
