package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "studytimer/backend/internal/errors"
	"studytimer/backend/internal/model"
	"studytimer/backend/internal/repository"
)

// TaskService manages the per-day task list shown next to the timer.
type TaskService struct {
	tasks *repository.TaskRepository
	clock func() time.Time
}

func NewTaskService(tasks *repository.TaskRepository, clock func() time.Time) *TaskService {
	if clock == nil {
		clock = time.Now
	}
	return &TaskService{tasks: tasks, clock: clock}
}

func (s *TaskService) Create(ctx context.Context, userID, day, label string) (*model.Task, *apperrors.APIError) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperrors.BadRequest("invalid_label", "label is required")
	}

	normalizedDay, apiErr := s.normalizeDay(day)
	if apiErr != nil {
		return nil, apiErr
	}

	now := s.clock().UTC()
	task := model.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Day:       normalizedDay,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) ListDay(ctx context.Context, userID, day string) ([]model.Task, *apperrors.APIError) {
	normalizedDay, apiErr := s.normalizeDay(day)
	if apiErr != nil {
		return nil, apiErr
	}

	tasks, err := s.tasks.ListByDay(ctx, userID, normalizedDay)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Toggle(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	err := s.tasks.ToggleDone(ctx, userID, id, s.clock())
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to toggle task")
	}

	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.tasks.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete task")
	}
	return nil
}

// normalizeDay validates a YYYY-MM-DD day, defaulting to today.
func (s *TaskService) normalizeDay(day string) (string, *apperrors.APIError) {
	if day == "" {
		return s.clock().Local().Format(dateLayout), nil
	}
	if _, err := time.ParseInLocation(dateLayout, day, time.Local); err != nil {
		return "", apperrors.BadRequest("invalid_day", "day must be a YYYY-MM-DD date")
	}
	return day, nil
}
