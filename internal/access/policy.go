// Package access decides who may do what to tasks and users, and computes
// the resulting task state for permitted updates. It is pure: it performs
// no I/O, keeps no state and never logs. Callers load entities, ask this
// package, and persist what it returns.
package access

import (
	"strings"

	"taskManager/models"
)

// Actor is the authenticated identity attempting an operation.
type Actor struct {
	ID   string
	Role models.Role
}

// IsSuperadmin reports whether a has unrestricted rights.
func (a Actor) IsSuperadmin() bool {
	return a.Role == models.RoleSuperadmin
}

// QueryFilter restricts which tasks an actor can list or search.
// All means no restriction. Otherwise only tasks assigned to AssignedTo
// match; a zero QueryFilter matches nothing.
type QueryFilter struct {
	All        bool
	AssignedTo string
}

// MatchesNothing reports whether f cannot match any task.
func (f QueryFilter) MatchesNothing() bool {
	return !f.All && f.AssignedTo == ""
}

// Matches reports whether t is visible under f.
func (f QueryFilter) Matches(t models.Task) bool {
	if f.All {
		return true
	}
	return f.AssignedTo != "" && t.AssignedTo == f.AssignedTo
}

var errUnknownRole = Forbidden("role is not permitted to perform this action")

// AuthorizeAndApplyUpdate decides whether actor may apply patch to existing
// and returns the updated copy. existing is never modified. Either every
// field in patch is applied or none is.
func AuthorizeAndApplyUpdate(actor Actor, existing *models.Task, patch TaskPatch) (models.Task, error) {
	if existing == nil {
		return models.Task{}, Forbidden("not authorized to update this task")
	}
	switch actor.Role {
	case models.RoleSuperadmin:
		return applyPatch(*existing, patch)
	case models.RoleEmployee:
		if patch.Len() != 1 || patch.Status == nil {
			return models.Task{}, Forbidden("employees can only update task status")
		}
		if actor.ID == "" || existing.AssignedTo != actor.ID {
			return models.Task{}, Forbidden("not authorized to update this task")
		}
		if !patch.Status.Valid() {
			return models.Task{}, Invalid("status must be one of pending, completed")
		}
		out := existing.Clone()
		out.Status = *patch.Status
		return out, nil
	default:
		return models.Task{}, errUnknownRole
	}
}

// AuthorizeCreate permits task creation for superadmins only.
func AuthorizeCreate(actor Actor) error {
	switch actor.Role {
	case models.RoleSuperadmin:
		return nil
	case models.RoleEmployee:
		return Forbidden("only superadmin can create tasks")
	default:
		return errUnknownRole
	}
}

// AuthorizeDelete permits task deletion for superadmins only.
func AuthorizeDelete(actor Actor) error {
	switch actor.Role {
	case models.RoleSuperadmin:
		return nil
	case models.RoleEmployee:
		return Forbidden("only superadmin can delete tasks")
	default:
		return errUnknownRole
	}
}

// AuthorizeView permits superadmins and the task's assignee.
func AuthorizeView(actor Actor, task models.Task) error {
	switch actor.Role {
	case models.RoleSuperadmin:
		return nil
	case models.RoleEmployee:
		if actor.ID != "" && task.AssignedTo == actor.ID {
			return nil
		}
		return Forbidden("not authorized to view this task")
	default:
		return errUnknownRole
	}
}

// AuthorizeUserAdmin guards user management (list, view, update, delete).
func AuthorizeUserAdmin(actor Actor) error {
	switch actor.Role {
	case models.RoleSuperadmin:
		return nil
	case models.RoleEmployee:
		return Forbidden("only superadmin can manage users")
	default:
		return errUnknownRole
	}
}

// ScopeListQuery returns the filter applied to listing and searching.
func ScopeListQuery(actor Actor) QueryFilter {
	switch actor.Role {
	case models.RoleSuperadmin:
		return QueryFilter{All: true}
	case models.RoleEmployee:
		return QueryFilter{AssignedTo: actor.ID}
	default:
		return QueryFilter{}
	}
}

// ValidateNewTask normalizes t in place and checks the fields required at
// creation. Status defaults to pending.
func ValidateNewTask(t *models.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	t.Tags = normalizeTags(t.Tags)
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	switch {
	case t.Title == "":
		return Invalid("title is required")
	case strings.TrimSpace(t.Description) == "":
		return Invalid("description is required")
	case !t.Category.Valid():
		return Invalid("category must be one of work, personal, shopping, others")
	case !t.Status.Valid():
		return Invalid("status must be one of pending, completed")
	case strings.TrimSpace(t.AssignedTo) == "":
		return Invalid("assignedTo is required")
	case t.DueDate.IsZero():
		return Invalid("dueDate is required")
	}
	return nil
}

func applyPatch(existing models.Task, p TaskPatch) (models.Task, error) {
	out := existing.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
		if out.Title == "" {
			return models.Task{}, Invalid("title must not be empty")
		}
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return models.Task{}, Invalid("description must not be empty")
		}
		out.Description = *p.Description
	}
	if p.Category != nil {
		if !p.Category.Valid() {
			return models.Task{}, Invalid("category must be one of work, personal, shopping, others")
		}
		out.Category = *p.Category
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return models.Task{}, Invalid("status must be one of pending, completed")
		}
		out.Status = *p.Status
	}
	if p.AssignedTo != nil {
		if strings.TrimSpace(*p.AssignedTo) == "" {
			return models.Task{}, Invalid("assignedTo must not be empty")
		}
		out.AssignedTo = *p.AssignedTo
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			return models.Task{}, Invalid("dueDate must not be empty")
		}
		out.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		out.Tags = normalizeTags(*p.Tags)
	}
	return out, nil
}

// normalizeTags trims each tag and drops empty ones, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
