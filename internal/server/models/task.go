package models

import "time"

// Task status labels as displayed by the Hebrew UI.
const (
	TaskStatusTodo       = "לביצוע"
	TaskStatusInProgress = "בתהליך"
	TaskStatusDone       = "הושלם"
)

// Task priority labels.
const (
	TaskPriorityLow    = "נמוכה"
	TaskPriorityMedium = "בינונית"
	TaskPriorityHigh   = "גבוהה"
)

// TaskStatuses lists the allowed status labels in board order.
var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// TaskPriorities lists the allowed priority labels.
var TaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Assignees   []string   `json:"assignees"`
	ProjectID   string     `json:"projectId,omitempty"`
	Repeat      string     `json:"repeat,omitempty"`
	Urgent      bool       `json:"urgent,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ValidTaskStatus reports whether s is one of the allowed status labels.
func ValidTaskStatus(s string) bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidTaskPriority reports whether p is one of the allowed priority labels.
func ValidTaskPriority(p string) bool {
	for _, v := range TaskPriorities {
		if v == p {
			return true
		}
	}
	return false
}
