package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/access"
	"taskManager/models"
	"taskManager/repository"
)

// TaskService runs task operations on behalf of an actor.
type TaskService struct {
	tasks repository.TaskStore
	users repository.UserStore
}

func NewTaskService(tasks repository.TaskStore, users repository.UserStore) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// NewTask carries the fields a superadmin supplies when creating a task.
type NewTask struct {
	Title       string
	Description string
	Category    models.TaskCategory
	Status      models.TaskStatus
	AssignedTo  string
	DueDate     time.Time
	Tags        []string
}

// ListOptions narrows a list beyond the actor's scope.
type ListOptions struct {
	Status   models.TaskStatus
	Category models.TaskCategory
	Limit    int
	Offset   int
}

func (s *TaskService) Create(ctx context.Context, actor access.Actor, in NewTask) (*models.Task, error) {
	if err := access.AuthorizeCreate(actor); err != nil {
		return nil, err
	}
	t := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   actor.ID,
		DueDate:     in.DueDate,
		Tags:        in.Tags,
	}
	if err := access.ValidateNewTask(t); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, t.AssignedTo); err != nil {
		return nil, err
	}
	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, actor access.Actor, id string) (*models.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeView(actor, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the tasks visible to actor, newest first.
func (s *TaskService) List(ctx context.Context, actor access.Actor, opts ListOptions) ([]models.Task, error) {
	f, ok, err := s.filter(actor, opts)
	if err != nil || !ok {
		return []models.Task{}, err
	}
	return s.tasks.List(ctx, f)
}

// Search matches query against task titles within the actor's scope.
func (s *TaskService) Search(ctx context.Context, actor access.Actor, query string) ([]models.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, access.Invalid("search query is required")
	}
	f, ok, err := s.filter(actor, ListOptions{})
	if err != nil || !ok {
		return []models.Task{}, err
	}
	return s.tasks.Search(ctx, query, f)
}

// Update applies patch to the task if the engine permits it, guarded by the
// version the task was read at.
func (s *TaskService) Update(ctx context.Context, actor access.Actor, id string, patch access.TaskPatch) (*models.Task, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := access.AuthorizeAndApplyUpdate(actor, existing, patch)
	if err != nil {
		return nil, err
	}
	if next.AssignedTo != existing.AssignedTo {
		if err := s.requireUser(ctx, next.AssignedTo); err != nil {
			return nil, err
		}
	}
	updated, err := s.tasks.Update(ctx, &next)
	if err != nil {
		return nil, storeErr(err, ErrTaskNotFound)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := access.AuthorizeDelete(actor); err != nil {
		return err
	}
	return storeErr(s.tasks.Delete(ctx, id), ErrTaskNotFound)
}

func (s *TaskService) load(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *TaskService) requireUser(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return access.Invalid("assigned user %s does not exist", id)
	}
	return nil
}

// filter combines the actor's scope with opts. ok is false when the scope
// matches nothing.
func (s *TaskService) filter(actor access.Actor, opts ListOptions) (repository.TaskFilter, bool, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return repository.TaskFilter{}, false, access.Invalid("status must be one of pending, completed")
	}
	if opts.Category != "" && !opts.Category.Valid() {
		return repository.TaskFilter{}, false, access.Invalid("category must be one of work, personal, shopping, others")
	}
	scope := access.ScopeListQuery(actor)
	if scope.MatchesNothing() {
		return repository.TaskFilter{}, false, nil
	}
	return repository.TaskFilter{
		AssignedTo: scope.AssignedTo,
		Status:     opts.Status,
		Category:   opts.Category,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}, true, nil
}
