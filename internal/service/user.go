package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"taskManager/internal/access"
	"taskManager/internal/auth"
	"taskManager/models"
	"taskManager/repository"
)

// UserService covers registration, login and superadmin user management.
type UserService struct {
	users                 repository.UserStore
	tasks                 repository.TaskStore
	secret                string
	tokenTTL              time.Duration
	allowSuperadminSignup bool
}

// TokenSettings configures token issuing and self-registration.
type TokenSettings struct {
	Secret                string
	TTL                   time.Duration
	AllowSuperadminSignup bool
}

func NewUserService(users repository.UserStore, tasks repository.TaskStore, ts TokenSettings) *UserService {
	return &UserService{
		users:                 users,
		tasks:                 tasks,
		secret:                ts.Secret,
		tokenTTL:              ts.TTL,
		allowSuperadminSignup: ts.AllowSuperadminSignup,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserPatch holds the user fields a superadmin may change. Nil means unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Role     *string
	Password *string
}

// Register creates an account and returns it with a token for the new user.
// caller is the authenticated actor if any; a superadmin caller may create
// superadmins even when self-registration of that role is closed.
func (s *UserService) Register(ctx context.Context, caller *access.Actor, in RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", access.Invalid("name is required")
	}
	email, err := parseEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	role, ok := models.ParseRole(strings.TrimSpace(in.Role))
	if !ok {
		return nil, "", access.Invalid("role must be one of superadmin, employee")
	}
	if role == models.RoleSuperadmin && !s.allowSuperadminSignup && (caller == nil || !caller.IsSuperadmin()) {
		return nil, "", access.Invalid("superadmin registration is disabled")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrDuplicateEmail
	}
	u, err := s.users.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		return nil, "", err
	}
	tok, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Login checks credentials and returns the user with a fresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	tok, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Me returns the actor's own account.
func (s *UserService) Me(ctx context.Context, actor access.Actor) (*models.User, error) {
	return s.load(ctx, actor.ID)
}

func (s *UserService) List(ctx context.Context, actor access.Actor, limit, offset int) ([]models.User, error) {
	if err := access.AuthorizeUserAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, limit, offset)
}

func (s *UserService) Get(ctx context.Context, actor access.Actor, id string) (*models.User, error) {
	if err := access.AuthorizeUserAdmin(actor); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *UserService) Update(ctx context.Context, actor access.Actor, id string, p UserPatch) (*models.User, error) {
	if err := access.AuthorizeUserAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, access.Invalid("name must not be empty")
		}
		u.Name = name
	}
	if p.Email != nil {
		email, err := parseEmail(*p.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if p.Role != nil {
		role := models.Role(strings.TrimSpace(*p.Role))
		if !role.Valid() {
			return nil, access.Invalid("role must be one of superadmin, employee")
		}
		u.Role = role
	}
	if p.Password != nil {
		hash, err := hashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	return u, nil
}

// Delete removes a user that no task references. A superadmin cannot
// delete their own account.
func (s *UserService) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := access.AuthorizeUserAdmin(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return access.Forbidden("cannot delete your own account")
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	n, err := s.tasks.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrUserReferenced
	}
	return storeErr(s.users.Delete(ctx, id), ErrUserNotFound)
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) issue(u *models.User) (string, error) {
	tok, err := auth.IssueToken(s.secret, access.Actor{ID: u.ID, Role: u.Role}, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

func parseEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", access.Invalid("please include a valid email")
	}
	return strings.ToLower(addr.Address), nil
}

func hashPassword(pw string) (string, error) {
	if len(pw) < auth.MinPasswordLength {
		return "", access.Invalid("password must be at least %d characters", auth.MinPasswordLength)
	}
	return auth.HashPassword(pw)
}
