package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+tasks\s+SET\b`

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Task{
		ID: "missing", Title: "x", Status: models.TaskStatusTodo, Priority: models.TaskPriorityLow,
	})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_ScansNullDueDate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"id", "title", "description", "status", "priority", "due_date", "assignees", "project_id", "repeat", "urgent", "created_by", "created_at", "updated_at"}).
		AddRow("t1", "Fix login", "", models.TaskStatusTodo, models.TaskPriorityMedium,
			nil, []byte(`["u1"]`), "", "", false, "u1", time.Now(), time.Now())

	mock.ExpectQuery(q).WithArgs("t1").WillReturnRows(rows)

	task, err := repo.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.DueDate != nil {
		t.Fatalf("null due_date should stay nil, got %v", task.DueDate)
	}
	if len(task.Assignees) != 1 || task.Assignees[0] != "u1" {
		t.Fatalf("assignees not unmarshaled: %v", task.Assignees)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1`

	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_ScansDueDate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+tasks\s+ORDER\s+BY\s+created_at\s+DESC`

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "status", "priority", "due_date", "assignees", "project_id", "repeat", "urgent", "created_by", "created_at", "updated_at"}).
		AddRow("t1", "a", "", models.TaskStatusTodo, models.TaskPriorityLow, due, []byte(`[]`), "", "", false, "u1", time.Now(), time.Now())

	mock.ExpectQuery(q).WillReturnRows(rows)

	tasks, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].DueDate == nil || !tasks[0].DueDate.Equal(due) {
		t.Fatalf("due_date not scanned: %+v", tasks[0])
	}
}
