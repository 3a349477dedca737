package model

import "time"

type DailyID string

// DailyReport is a per-day snapshot of a task's state. At most one
// report exists per (task, date); the daily sync either updates
// today's report or creates it.
type DailyReport struct {
	ID       DailyID      `json:"id"`
	TaskID   TaskID       `json:"taskId"`
	Project  string       `json:"project"`
	Task     string       `json:"task"`
	Date     string       `json:"date"` // YYYY-MM-DD, server-local day
	Status   DailyStatus  `json:"status"`
	Priority TaskPriority `json:"priority"`
	Hours    float64      `json:"hours"`
	Progress int          `json:"progress"`
	Engineer string       `json:"engineer,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
