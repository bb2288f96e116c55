package model

import "time"

// WeeklyGoal is a per-weekday target of completed focus sessions.
// DayOfWeek follows time.Weekday numbering: 0 = Sunday .. 6 = Saturday.
type WeeklyGoal struct {
	UserID       string    `json:"userId"`
	DayOfWeek    int       `json:"dayOfWeek"`
	TargetCount  int       `json:"targetCount"`
	SubjectLabel string    `json:"subjectLabel,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
