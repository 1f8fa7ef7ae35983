// Package history provides SQLite-backed durable storage for session
// event journals.
//
// A session is one run of the editor against a project: it records the
// project path and document hash at open, every coordinator event in
// sequence order while live, and the final document hash at close. The
// event rows are exactly the coordinator's journal records, so a
// journal folded back through the coordinator reproduces the session's
// final timeline.
//
// Invariants the schema enforces:
//   - Ordering uses seq (the session's logical clock), never wall time
//   - Appends are idempotent: ON CONFLICT(session_id, seq) DO NOTHING,
//     so a crashed writer can safely re-append its tail
//   - Events cascade away with their session
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package history
