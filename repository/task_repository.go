package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskManager/models"
)

const taskColumns = "id, title, description, category, status, assigned_to, created_by, due_date, tags, created_at, version"

// TaskRepository is the core repository for Task entities.
// Writes are versioned: Update only succeeds against the version it was given.
type TaskRepository struct {
	db      *sqlx.DB
	dialect dialect
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db, dialect: dialectOf(db)}
}

// taskRow adds the JSON-encoded tags column to models.Task for scanning.
type taskRow struct {
	models.Task
	TagsJSON string `db:"tags"`
}

func (row *taskRow) toModel() (*models.Task, error) {
	t := row.Task
	t.Tags = []string{}
	if row.TagsJSON != "" {
		if err := json.Unmarshal([]byte(row.TagsJSON), &t.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of task %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

// Create inserts a new task. Status defaults to pending if empty.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if t == nil {
		return nil, errors.New("task is nil")
	}
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return nil, err
	}
	t.ID = uuid.Must(uuid.NewV7()).String()
	t.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	t.DueDate = t.DueDate.UTC().Truncate(time.Microsecond)
	t.Version = 1

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.dialect.builder.Insert("tasks").
		Columns("id", "title", "description", "category", "status", "assigned_to", "created_by", "due_date", "tags", "created_at", "version").
		Values(t.ID, t.Title, t.Description, string(t.Category), string(t.Status), t.AssignedTo, t.CreatedBy, t.DueDate, tags, t.CreatedAt, t.Version).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	created, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created task not found: id=%s", t.ID)
	}
	return created, nil
}

// GetByID fetches a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.dialect.builder.Select(taskColumns).From("tasks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel()
}

// Update writes every mutable field of t if the stored version still equals
// t.Version, then returns the stored task with its incremented version.
// Returns sql.ErrNoRows if the task is gone and ErrConflict if it changed.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	if t == nil {
		return nil, errors.New("task is nil")
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.dialect.builder.Update("tasks").
		SetMap(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"category":    string(t.Category),
			"status":      string(t.Status),
			"assigned_to": t.AssignedTo,
			"due_date":    t.DueDate.UTC().Truncate(time.Microsecond),
			"tags":        tags,
			"version":     t.Version + 1,
		}).
		Where(squirrel.Eq{"id": t.ID, "version": t.Version}).
		ToSql()
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if err := expectOneRow(res); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		current, gerr := r.GetByID(ctx, t.ID)
		if gerr != nil {
			return nil, gerr
		}
		if current == nil {
			return nil, sql.ErrNoRows
		}
		return nil, ErrConflict
	}
	updated, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, sql.ErrNoRows
	}
	return updated, nil
}

// Delete removes a task. Returns sql.ErrNoRows if it does not exist.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.dialect.builder.Delete("tasks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return expectOneRow(res)
}

// CountByUser counts tasks assigned to or created by userID.
func (r *TaskRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.dialect.builder.Select("COUNT(*)").From("tasks").
		Where(squirrel.Or{squirrel.Eq{"assigned_to": userID}, squirrel.Eq{"created_by": userID}}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
