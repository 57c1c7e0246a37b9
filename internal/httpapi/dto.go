package httpapi

import (
	"time"

	"taskManager/models"
)

// registerRequest is the body of POST /api/auth/register.
type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=superadmin employee"`
}

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// createTaskRequest is the body of POST /api/tasks.
type createTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required,oneof=work personal shopping others"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending completed"`
	AssignedTo  string     `json:"assignedTo" validate:"required"`
	DueDate     *time.Time `json:"dueDate" validate:"required"`
	Tags        []string   `json:"tags"`
}

// updateUserRequest is the body of PATCH /api/users/:id. Absent fields stay unchanged.
type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=superadmin employee"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

type response struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func ok(data any) response {
	return response{Success: true, Data: data}
}

func okList[T any](items []T) response {
	n := len(items)
	return response{Success: true, Count: &n, Data: items}
}
