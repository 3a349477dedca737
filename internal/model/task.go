package model

import "time"

type TaskID string

// Task is one trackable unit of field work, generated from a project's
// activity selection. The task name is the subcategory of the group
// that produced it; status, priority, hours and assignees are edited
// by users afterwards and survive re-synchronization.
type Task struct {
	ID         TaskID   `json:"id"`
	Project    string   `json:"project"`
	Task       string   `json:"task"`
	Desc       string   `json:"desc,omitempty"`
	Activities []string `json:"activities,omitempty"`

	LinkedActivity LinkedActivity `json:"linkedActivity"`

	Status     TaskStatus   `json:"status"`
	Priority   TaskPriority `json:"priority"`
	AssignedTo []string     `json:"assignedTo,omitempty"`
	Hours      float64      `json:"hours"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
