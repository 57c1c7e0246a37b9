package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskManager/models"
)

const userColumns = "id, name, email, password_hash, role, created_at"

type UserRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db, sb: dialectOf(db).builder}
}

// Create inserts a new user and returns it with its generated ID.
// Role defaults to employee. Email is stored lowercased.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	if u.Role == "" {
		u.Role = models.RoleEmployee
	}
	u.ID = uuid.Must(uuid.NewV7()).String()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.sb.Insert("users").
		Columns("id", "name", "email", "password_hash", "role", "created_at").
		Values(u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail looks a user up by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": normalizeEmail(email)})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.sb.Select(userColumns).From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args, err := r.sb.Select(userColumns).From("users").
		OrderBy("created_at", "id").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	out := []models.User{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes name, email, role and password hash for u.ID.
// Returns sql.ErrNoRows if the user does not exist.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	u.Email = normalizeEmail(u.Email)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.sb.Update("users").
		SetMap(map[string]any{
			"name":          u.Name,
			"email":         u.Email,
			"role":          string(u.Role),
			"password_hash": u.PasswordHash,
		}).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a user. Returns sql.ErrNoRows if the user does not exist and
// ErrReferenced if tasks still point at it.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := r.sb.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOneRow(res)
}

// UpdateRoleByEmail sets the role for the given email. It backs the
// `user set-role` command.
func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email string, role models.Role) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	query, args, err := r.sb.Update("users").
		Set("role", string(role)).
		Where(squirrel.Eq{"email": normalizeEmail(email)}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
