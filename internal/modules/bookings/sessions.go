package bookings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Session statuses.
const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// StartSession creates a new scrape session row and returns its id.
func (r *Repository) StartSession(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scrape_sessions (session_id, started_at, status) VALUES (?, ?, ?)`,
		id, nowStamp(), SessionRunning,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start scrape session: %w", err)
	}
	r.log.Info().Str("session_id", id).Msg("Scrape session started")
	return id, nil
}

// UpdateSessionProgress records where a running session currently is.
func (r *Repository) UpdateSessionProgress(ctx context.Context, sessionID, state string, bookingID, mjrID *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scrape_sessions SET
			last_state = ?,
			current_booking_id = COALESCE(?, current_booking_id),
			current_mjr_id = COALESCE(?, current_mjr_id)
		WHERE session_id = ?`,
		state, bookingID, mjrID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}
	return nil
}

// BumpSessionCounters adds to a session's scraped/error tallies.
func (r *Repository) BumpSessionCounters(ctx context.Context, sessionID string, scraped, errors int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scrape_sessions SET
			bookings_scraped = bookings_scraped + ?,
			errors = errors + ?
		WHERE session_id = ?`,
		scraped, errors, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump counters for session %s: %w", sessionID, err)
	}
	return nil
}

// FinishSession closes a session with a final status and optional error.
func (r *Repository) FinishSession(ctx context.Context, sessionID, status string, errMessage *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scrape_sessions SET ended_at = ?, status = ?, error_message = ? WHERE session_id = ?`,
		nowStamp(), status, errMessage, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish session %s: %w", sessionID, err)
	}
	return nil
}

// GetSession returns one session row, nil when absent.
func (r *Repository) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT session_id, started_at, ended_at, status, last_state,
		       current_booking_id, current_mjr_id, bookings_scraped, errors, error_message
		FROM scrape_sessions WHERE session_id = ?`, sessionID)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	return s, nil
}

// RecentSessions returns the latest sessions, newest first.
func (r *Repository) RecentSessions(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, started_at, ended_at, status, last_state,
		       current_booking_id, current_mjr_id, bookings_scraped, errors, error_message
		FROM scrape_sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(s scanner) (*Session, error) {
	var sess Session
	err := s.Scan(
		&sess.SessionID, &sess.StartedAt, &sess.EndedAt, &sess.Status, &sess.LastState,
		&sess.CurrentBookingID, &sess.CurrentMJRID, &sess.BookingsScraped, &sess.Errors, &sess.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
