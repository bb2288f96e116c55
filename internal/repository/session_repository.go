package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studytimer/backend/internal/model"
)

// SessionRepository stores completed study sessions. The table is
// append-only; nothing in the app updates or deletes a session.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) InsertSession(ctx context.Context, session *model.StudySession) error {
	var taskLabel interface{}
	if session.TaskLabel != nil {
		taskLabel = *session.TaskLabel
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO study_sessions (
			id, user_id, mode, duration_minutes, task_label, day_of_week, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Mode,
		session.DurationMinutes,
		taskLabel,
		session.DayOfWeek,
		session.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListBetween returns the user's sessions completed in [from, to),
// oldest first.
func (r *SessionRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]model.StudySession, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, mode, duration_minutes, task_label, day_of_week, completed_at
		 FROM study_sessions
		 WHERE user_id = ? AND completed_at >= ? AND completed_at < ?
		 ORDER BY completed_at ASC`,
		userID,
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.StudySession
	for rows.Next() {
		var session model.StudySession
		var taskLabel sql.NullString
		var completedAt string
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Mode,
			&session.DurationMinutes,
			&taskLabel,
			&session.DayOfWeek,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if taskLabel.Valid {
			value := taskLabel.String
			session.TaskLabel = &value
		}
		parsed, err := parseTime(completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse session completed_at: %w", err)
		}
		session.CompletedAt = parsed
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CountFocusByDay counts the user's completed focus sessions in
// [from, to) grouped by day_of_week.
func (r *SessionRepository) CountFocusByDay(ctx context.Context, userID string, from, to time.Time) (map[int]int, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT day_of_week, COUNT(1)
		 FROM study_sessions
		 WHERE user_id = ? AND mode = ? AND completed_at >= ? AND completed_at < ?
		 GROUP BY day_of_week`,
		userID,
		model.ModeFocus,
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var day, count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan session count: %w", err)
		}
		counts[day] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session counts: %w", err)
	}
	return counts, nil
}
