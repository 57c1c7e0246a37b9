// Package service orchestrates the store and the access engine for the
// HTTP and gRPC surfaces. It never logs; callers decide how to report.
package service

import (
	"database/sql"
	"errors"
	"fmt"

	"taskManager/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrConflict means the task changed between read and write.
	ErrConflict = errors.New("task was modified by another request, reload and retry")

	// ErrUserReferenced means the user is still an assignee or creator of a task.
	ErrUserReferenced = errors.New("user is still referenced by tasks")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = repository.ErrDuplicateEmail
)

// storeErr translates repository sentinels into service errors.
func storeErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrReferenced):
		return ErrUserReferenced
	default:
		return err
	}
}
