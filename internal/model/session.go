package model

import "time"

const (
	ModeFocus      = "focus"
	ModeShortBreak = "short_break"
	ModeLongBreak  = "long_break"
)

const (
	DefaultFocusDurationSeconds      = 25 * 60
	DefaultShortBreakDurationSeconds = 5 * 60
	DefaultLongBreakDurationSeconds  = 15 * 60
)

// StudySession is one completed focus interval, the unit counted by the
// weekly report. Break completions are never recorded.
type StudySession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Mode            string    `json:"mode"`
	DurationMinutes int       `json:"durationMinutes"`
	TaskLabel       *string   `json:"taskLabel,omitempty"`
	DayOfWeek       int       `json:"dayOfWeek"`
	CompletedAt     time.Time `json:"completedAt"`
}

func ValidMode(mode string) bool {
	return mode == ModeFocus || mode == ModeShortBreak || mode == ModeLongBreak
}
