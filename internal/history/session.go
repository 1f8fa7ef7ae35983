package history

import (
	"context"
	"fmt"

	"github.com/halvard/kinocut/internal/coordinator"
)

// Session is one open journal stream. It implements
// coordinator.Recorder, so attaching it via WithRecorder is all the
// wiring a journaled session needs.
type Session struct {
	j  *Journal
	id int64
}

// BeginSession opens a new journal stream. projectPath and
// documentHash describe what the session started from; both may be
// empty for a session that starts on a blank timeline.
func (j *Journal) BeginSession(ctx context.Context, projectPath, documentHash string) (*Session, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (project_path, document_hash)
		VALUES (?, ?)
	`, projectPath, documentHash)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{j: j, id: id}, nil
}

// ID returns the journal's id for this session.
func (s *Session) ID() int64 {
	return s.id
}

// Append writes one event record. ON CONFLICT DO NOTHING makes the
// write idempotent on (session, seq): a writer that crashed after the
// insert but before acknowledging can re-append its tail safely.
//
// No context parameter: the coordinator calls this inline from the
// session loop, which owns cancellation at the loop level.
func (s *Session) Append(rec coordinator.Record) error {
	_, err := s.j.db.Exec(`
		INSERT INTO events (session_id, seq, source, name, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, s.id, rec.Seq, rec.Source, rec.Name, string(rec.Payload))
	if err != nil {
		return fmt.Errorf("append event %d: %w", rec.Seq, err)
	}
	return nil
}

// CloseSession stamps a session closed and records the final document
// hash. Closing an unknown session is an error; closing twice just
// refreshes the stamp.
func (j *Journal) CloseSession(ctx context.Context, id int64, finalHash string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE sessions
		SET closed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'),
		    final_hash = ?
		WHERE id = ?
	`, finalHash, id)
	if err != nil {
		return fmt.Errorf("close session %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("close session %d: %w", id, ErrNotFound)
	}
	return nil
}
