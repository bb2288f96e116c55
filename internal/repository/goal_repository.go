package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studytimer/backend/internal/model"
)

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]model.WeeklyGoal, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT user_id, day_of_week, target_count, subject_label, updated_at
		 FROM weekly_goals
		 WHERE user_id = ?
		 ORDER BY day_of_week ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.WeeklyGoal
	for rows.Next() {
		var goal model.WeeklyGoal
		var updatedAt string
		if err := rows.Scan(
			&goal.UserID,
			&goal.DayOfWeek,
			&goal.TargetCount,
			&goal.SubjectLabel,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		parsed, err := parseTime(updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse goal updated_at: %w", err)
		}
		goal.UpdatedAt = parsed
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// Upsert inserts or replaces the goal for (user, weekday).
func (r *GoalRepository) Upsert(ctx context.Context, goal *model.WeeklyGoal) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO weekly_goals (user_id, day_of_week, target_count, subject_label, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, day_of_week) DO UPDATE SET
		 	target_count = excluded.target_count,
			subject_label = excluded.subject_label,
			updated_at = excluded.updated_at`,
		goal.UserID,
		goal.DayOfWeek,
		goal.TargetCount,
		goal.SubjectLabel,
		goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}
