package service

import (
	"context"
	"fmt"
	"time"

	apperrors "studytimer/backend/internal/errors"
	"studytimer/backend/internal/model"
	"studytimer/backend/internal/repository"
)

// ReportService aggregates completed focus sessions against weekly
// goals. It only counts and compares thresholds; the timer core is the
// sole source of what counts as a completed session.
type ReportService struct {
	sessions *repository.SessionRepository
	goals    *repository.GoalRepository
	clock    func() time.Time
}

func NewReportService(sessions *repository.SessionRepository, goals *repository.GoalRepository, clock func() time.Time) *ReportService {
	if clock == nil {
		clock = time.Now
	}
	return &ReportService{sessions: sessions, goals: goals, clock: clock}
}

type DaySummary struct {
	Date           string `json:"date"`
	DayOfWeek      int    `json:"dayOfWeek"`
	CompletedCount int    `json:"completedCount"`
	TargetCount    int    `json:"targetCount"`
	SubjectLabel   string `json:"subjectLabel,omitempty"`
}

type WeeklyReport struct {
	WeekStart      string       `json:"weekStart"`
	Days           []DaySummary `json:"days"`
	TotalCompleted int          `json:"totalCompleted"`
	Suggestions    []string     `json:"suggestions"`
}

type GoalInput struct {
	DayOfWeek    int    `json:"dayOfWeek"`
	TargetCount  int    `json:"targetCount"`
	SubjectLabel string `json:"subjectLabel"`
}

const dateLayout = "2006-01-02"

// Week builds the report for the seven days starting at startRaw
// (YYYY-MM-DD, local). An empty startRaw means the Monday of the
// current week.
func (s *ReportService) Week(ctx context.Context, userID, startRaw string) (*WeeklyReport, *apperrors.APIError) {
	var start time.Time
	if startRaw == "" {
		start = mondayOf(s.clock().Local())
	} else {
		parsed, err := time.ParseInLocation(dateLayout, startRaw, time.Local)
		if err != nil {
			return nil, apperrors.BadRequest("invalid_week_start", "start must be a YYYY-MM-DD date")
		}
		start = parsed
	}
	end := start.AddDate(0, 0, 7)

	counts, err := s.sessions.CountFocusByDay(ctx, userID, start, end)
	if err != nil {
		return nil, apperrors.Internal("failed to count sessions")
	}

	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load goals")
	}
	goalByDay := make(map[int]model.WeeklyGoal, len(goals))
	for _, goal := range goals {
		goalByDay[goal.DayOfWeek] = goal
	}

	report := WeeklyReport{
		WeekStart: start.Format(dateLayout),
		Days:      make([]DaySummary, 0, 7),
	}
	for offset := 0; offset < 7; offset++ {
		date := start.AddDate(0, 0, offset)
		day := int(date.Weekday())
		summary := DaySummary{
			Date:           date.Format(dateLayout),
			DayOfWeek:      day,
			CompletedCount: counts[day],
		}
		if goal, ok := goalByDay[day]; ok {
			summary.TargetCount = goal.TargetCount
			summary.SubjectLabel = goal.SubjectLabel
		}
		report.TotalCompleted += summary.CompletedCount
		report.Days = append(report.Days, summary)
	}

	report.Suggestions = s.suggestions(report.Days, start)
	return &report, nil
}

// suggestions applies a handful of fixed thresholds; nothing here is
// smarter than counting.
func (s *ReportService) suggestions(days []DaySummary, weekStart time.Time) []string {
	now := s.clock().Local()
	suggestions := make([]string, 0, 4)

	hasTargets := false
	allTargetsMet := true
	for offset, day := range days {
		if day.TargetCount > 0 {
			hasTargets = true
			if day.CompletedCount < day.TargetCount {
				allTargetsMet = false
			}
		}

		date := weekStart.AddDate(0, 0, offset)
		dayOver := !now.Before(date.AddDate(0, 0, 1))
		if dayOver && day.TargetCount > 0 && day.CompletedCount < day.TargetCount {
			subject := day.SubjectLabel
			if subject == "" {
				subject = "your goal"
			}
			suggestions = append(suggestions, fmt.Sprintf(
				"%s fell short of %s (%d of %d sessions). Try scheduling the first session earlier in the day.",
				date.Weekday(), subject, day.CompletedCount, day.TargetCount,
			))
		}

		if day.CompletedCount >= 8 {
			suggestions = append(suggestions, fmt.Sprintf(
				"%d sessions on %s is a heavy load. Make sure the long breaks actually happen.",
				day.CompletedCount, date.Weekday(),
			))
		}
	}

	total := 0
	for _, day := range days {
		total += day.CompletedCount
	}
	if total == 0 && hasTargets {
		suggestions = append(suggestions, "No focus sessions recorded this week yet. A single 25 minute session gets the streak going.")
	}
	if hasTargets && allTargetsMet && total > 0 {
		suggestions = append(suggestions, "Every goal for this week is met. Consider raising a target.")
	}

	return suggestions
}

func (s *ReportService) Goals(ctx context.Context, userID string) ([]model.WeeklyGoal, *apperrors.APIError) {
	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load goals")
	}
	if goals == nil {
		goals = []model.WeeklyGoal{}
	}
	return goals, nil
}

func (s *ReportService) UpsertGoal(ctx context.Context, userID string, input GoalInput) (*model.WeeklyGoal, *apperrors.APIError) {
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return nil, apperrors.BadRequest("invalid_day_of_week", "dayOfWeek must be between 0 and 6")
	}
	if input.TargetCount < 0 {
		return nil, apperrors.BadRequest("invalid_target_count", "targetCount must not be negative")
	}

	goal := model.WeeklyGoal{
		UserID:       userID,
		DayOfWeek:    input.DayOfWeek,
		TargetCount:  input.TargetCount,
		SubjectLabel: input.SubjectLabel,
		UpdatedAt:    s.clock().UTC(),
	}
	if err := s.goals.Upsert(ctx, &goal); err != nil {
		return nil, apperrors.Internal("failed to save goal")
	}
	return &goal, nil
}

// mondayOf returns local midnight of the Monday on or before t.
func mondayOf(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}
