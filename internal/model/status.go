package model

// Status and priority values travel as strings in the API but are
// typed here so the task→daily translation lives in exactly one place.

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskStuck      TaskStatus = "stuck"
	TaskDone       TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityPending TaskPriority = "pending"
	PriorityLow     TaskPriority = "low"
	PriorityMedium  TaskPriority = "medium"
	PriorityHigh    TaskPriority = "high"
)

type DailyStatus string

const (
	DailyPending    DailyStatus = "pending"
	DailyInProgress DailyStatus = "in_progress"
	DailyStuck      DailyStatus = "stuck"
	DailyCompleted  DailyStatus = "completed"
)

// DailyStatusFor maps a task status onto the daily report vocabulary.
// Anything unrecognized lands on pending.
func DailyStatusFor(s TaskStatus) DailyStatus {
	switch s {
	case TaskDone:
		return DailyCompleted
	case TaskStuck:
		return DailyStuck
	case TaskInProgress:
		return DailyInProgress
	default:
		return DailyPending
	}
}

// DailyPriorityFor passes known priorities through and defaults the
// rest to pending.
func DailyPriorityFor(p TaskPriority) TaskPriority {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityPending
	}
}

// ProgressFor converts a task status into a completion percentage for
// the daily report.
func ProgressFor(s TaskStatus) int {
	switch s {
	case TaskDone:
		return 100
	case TaskInProgress:
		return 50
	case TaskStuck:
		return 25
	default:
		return 0
	}
}
