package repository

import (
	"context"
	"math"
	"time"

	"github.com/Masterminds/squirrel"

	"taskManager/models"
)

// TaskFilter represents filters and pagination for List and Search.
// An empty AssignedTo means tasks of every assignee. A zero Limit returns
// every matching row.
type TaskFilter struct {
	AssignedTo string
	Status     models.TaskStatus
	Category   models.TaskCategory
	Limit      int
	Offset     int
}

func (f TaskFilter) apply(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	where := squirrel.Eq{}
	if f.AssignedTo != "" {
		where["assigned_to"] = f.AssignedTo
	}
	if f.Status != "" {
		where["status"] = string(f.Status)
	}
	if f.Category != "" {
		where["category"] = string(f.Category)
	}
	if len(where) > 0 {
		b = b.Where(where)
	}
	switch {
	case f.Limit > 0:
		b = b.Limit(uint64(f.Limit))
	case f.Offset > 0:
		// sqlite only accepts OFFSET after a LIMIT.
		b = b.Limit(math.MaxInt64)
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return b.OrderBy("created_at DESC", "id DESC")
}

// List returns tasks matching f, newest first.
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	return r.query(ctx, f.apply(r.dialect.builder.Select(taskColumns).From("tasks")))
}

// Search returns tasks whose title matches any word of query, intersected with f.
func (r *TaskRepository) Search(ctx context.Context, query string, f TaskFilter) ([]models.Task, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return []models.Task{}, nil
	}
	b := r.dialect.builder.Select(taskColumns).From("tasks").Where(r.dialect.titleMatch(terms))
	return r.query(ctx, f.apply(b))
}

func (r *TaskRepository) query(ctx context.Context, b squirrel.SelectBuilder) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}
