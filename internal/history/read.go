package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/halvard/kinocut/internal/coordinator"
)

// SessionInfo summarizes one journaled session.
type SessionInfo struct {
	ID           int64
	OpenedAt     string
	ClosedAt     string // empty while the session is live
	ProjectPath  string
	DocumentHash string
	FinalHash    string
	EventCount   int64
}

const sessionColumns = `
	s.id, s.opened_at, COALESCE(s.closed_at, ''),
	s.project_path, s.document_hash, s.final_hash,
	COUNT(e.seq)
`

// ListSessions returns every session, oldest first.
func (j *Journal) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions s
		LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		si, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns one session's summary. Wraps ErrNotFound for
// unknown ids.
func (j *Journal) GetSession(ctx context.Context, id int64) (SessionInfo, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions s
		LEFT JOIN events e ON e.session_id = s.id
		WHERE s.id = ?
		GROUP BY s.id
	`, id)

	si, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return SessionInfo{}, fmt.Errorf("get session %d: %w", id, err)
	}
	return si, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionInfo, error) {
	var si SessionInfo
	err := row.Scan(
		&si.ID, &si.OpenedAt, &si.ClosedAt,
		&si.ProjectPath, &si.DocumentHash, &si.FinalHash,
		&si.EventCount,
	)
	return si, err
}

// ReadEvents returns a session's records in sequence order, ready to
// fold through the coordinator's ApplyRecord.
func (j *Journal) ReadEvents(ctx context.Context, sessionID int64) ([]coordinator.Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, source, name, payload
		FROM events
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	records := []coordinator.Record{}
	for rows.Next() {
		var rec coordinator.Record
		var payload string
		if err := rows.Scan(&rec.Seq, &rec.Source, &rec.Name, &payload); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		if payload != "" {
			rec.Payload = json.RawMessage(payload)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest journaled sequence number for a session,
// 0 when nothing is journaled yet. Resuming a session constructs its
// coordinator with NewClockAt(LastSeq+1) so fresh events extend the
// journal instead of colliding with it.
func (j *Journal) LastSeq(ctx context.Context, sessionID int64) (int64, error) {
	var seq int64
	err := j.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0)
		FROM events
		WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
