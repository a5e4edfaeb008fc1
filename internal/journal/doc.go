// Package journal records dispatched actions in a SQLite log.
//
// The journal is an audit trail, not persistence: a store is never
// rebuilt from it. Each successful dispatch becomes one row keyed by
// (session, seq), holding the action's canonical JSON and the hash of the
// state it produced. A failed dispatch writes nothing.
//
// # Ordering
//
//   - seq is a per-session logical counter starting at 1
//   - every query orders by seq ASC, never by wall time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Actions are stored as RFC 8785 canonical JSON and state hashes come from
// ir.StateHash, so two runs of the same action sequence produce identical
// rows apart from the session token.
package journal
