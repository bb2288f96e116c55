package model

import "time"

// Task is an entry on the per-day task list. Day is a local calendar
// date in YYYY-MM-DD form.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Day       string    `json:"day"`
	Label     string    `json:"label"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
