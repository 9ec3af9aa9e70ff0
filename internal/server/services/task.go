package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
)

// TaskFilter is a conjunction of predicates over the in-memory task list.
// An empty value for a dimension means no constraint on that dimension.
type TaskFilter struct {
	Statuses   []string
	Priorities []string
	Assignees  []string
	DueFrom    *time.Time
	DueTo      *time.Time
	Search     string
}

// Match reports whether the task passes every active dimension.
func (f TaskFilter) Match(t *models.Task) bool {
	if len(f.Statuses) > 0 && !containsString(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsString(f.Priorities, t.Priority) {
		return false
	}
	if len(f.Assignees) > 0 && !intersects(f.Assignees, t.Assignees) {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && t.DueDate.After(*f.DueTo) {
			return false
		}
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// FilterTasks applies the filter to a snapshot. The result is always a
// subset of the input; a filter with no active dimensions returns the
// input unchanged in order.
func FilterTasks(snapshot []*models.Task, f TaskFilter) []*models.Task {
	var result []*models.Task
	for _, t := range snapshot {
		if f.Match(t) {
			result = append(result, t)
		}
	}
	return result
}

// Task sort keys.
const (
	TaskSortTitle     = "title"
	TaskSortStatus    = "status"
	TaskSortPriority  = "priority"
	TaskSortDueDate   = "dueDate"
	TaskSortCreatedAt = "createdAt"
	TaskSortAssignees = "assignees"
)

// SortTasks orders tasks by a single key. String fields compare
// lexicographically; the assignee list compares by length; ties keep their
// snapshot order.
func SortTasks(tasks []*models.Task, key string, descending bool) {
	less := func(a, b *models.Task) bool {
		switch key {
		case TaskSortStatus:
			return a.Status < b.Status
		case TaskSortPriority:
			return a.Priority < b.Priority
		case TaskSortDueDate:
			return dueTime(a).Before(dueTime(b))
		case TaskSortCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case TaskSortAssignees:
			return len(a.Assignees) < len(b.Assignees)
		default:
			return a.Title < b.Title
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if descending {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func dueTime(t *models.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(set, values []string) bool {
	for _, v := range values {
		if containsString(set, v) {
			return true
		}
	}
	return false
}

// TaskService implements task CRUD plus the in-memory filter/sort used by
// list and board views.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// Create validates required fields and stores a new task. Status and
// priority default to the leftmost board column and medium priority.
func (s *TaskService) Create(ctx context.Context, userID string, task *models.Task) (*models.Task, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if strings.TrimSpace(task.Title) == "" {
		return nil, common.ErrorValidation
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskStatus(task.Status) || !models.ValidTaskPriority(task.Priority) {
		return nil, common.ErrorValidation
	}
	if task.Assignees == nil {
		task.Assignees = []string{}
	}

	task.ID = uuid.New().String()
	task.CreatedBy = userID

	created, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %v", err)
	}
	return created, nil
}

// Update overwrites a task unconditionally; the last writer wins.
func (s *TaskService) Update(ctx context.Context, task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return common.ErrorValidation
	}
	if !models.ValidTaskStatus(task.Status) || !models.ValidTaskPriority(task.Priority) {
		return common.ErrorValidation
	}
	return s.repomanager.Tasks(s.db).Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Tasks(s.db).Delete(ctx, id)
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, id)
}

// List fetches the full task set and applies filter and sort in memory.
func (s *TaskService) List(ctx context.Context, filter TaskFilter, sortKey string, descending bool) ([]*models.Task, error) {
	snapshot, err := s.repomanager.Tasks(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	result := FilterTasks(snapshot, filter)
	if sortKey != "" {
		SortTasks(result, sortKey, descending)
	}
	return result, nil
}

// Snapshot returns the unfiltered task list for live subscribers.
func (s *TaskService) Snapshot(ctx context.Context) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx)
}
