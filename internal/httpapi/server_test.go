package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskManager/internal/auth"
	"taskManager/internal/logging"
	"taskManager/internal/service"
	"taskManager/internal/testutil"
	"taskManager/models"
	"taskManager/repository"
)

const testSecret = "http-secret"

type apiFixture struct {
	t        *testing.T
	handler  http.Handler
	users    *repository.UserRepository
	rootTok  string
	rootUser *models.User
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
}

func newAPI(t *testing.T, name string) *apiFixture {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	users := repository.NewUserRepository(d)
	tasks := repository.NewTaskRepository(d)

	hash, err := auth.HashPassword("rootpass")
	require.NoError(t, err)
	root, err := users.Create(context.Background(), &models.User{
		Name: "Root", Email: "root@example.com", PasswordHash: hash, Role: models.RoleSuperadmin,
	})
	require.NoError(t, err)

	srv := New(Deps{
		Tasks:  service.NewTaskService(tasks, users),
		Users:  service.NewUserService(users, tasks, service.TokenSettings{Secret: testSecret, TTL: time.Hour}),
		Lookup: users,
		Secret: testSecret,
		Logger: logging.Discard(),
	})
	f := &apiFixture{t: t, handler: srv.Handler(), users: users, rootUser: root}
	f.rootTok = f.login("root@example.com", "rootpass")
	return f
}

func (f *apiFixture) do(method, path, token string, body any) (int, envelope) {
	f.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(f.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (f *apiFixture) login(email, password string) string {
	f.t.Helper()
	code, env := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(f.t, http.StatusOK, code, env.Message)
	require.NotEmpty(f.t, env.Token)
	return env.Token
}

func (f *apiFixture) register(name string) (*models.User, string) {
	f.t.Helper()
	code, env := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": name + "@example.com", "password": "password1",
	})
	require.Equal(f.t, http.StatusOK, code, env.Message)
	require.True(f.t, env.Success)
	require.NotNil(f.t, env.User)
	return env.User, env.Token
}

func (f *apiFixture) createTask(assignee, title string) models.Task {
	f.t.Helper()
	code, env := f.do(http.MethodPost, "/api/tasks", f.rootTok, map[string]any{
		"title":       title,
		"description": "Quarterly numbers",
		"category":    "work",
		"assignedTo":  assignee,
		"dueDate":     "2026-12-01T09:00:00Z",
		"tags":        []string{"finance", " q4 "},
	})
	require.Equal(f.t, http.StatusCreated, code, env.Message)
	var t models.Task
	require.NoError(f.t, json.Unmarshal(env.Data, &t))
	return t
}

func TestHealth(t *testing.T) {
	f := newAPI(t, "httphealth")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	f := newAPI(t, "httpauth")

	u, tok := f.register("erin")
	assert.Equal(t, models.RoleEmployee, u.Role)
	assert.NotEmpty(t, tok)

	code, env := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "erin", "email": "erin@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already exists", env.Message)
	assert.False(t, env.Success)

	code, env = f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "x", "email": "bad", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please include a valid email", env.Message)

	code, env = f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "boss", "email": "boss@example.com", "password": "password1", "role": "superadmin",
	})
	assert.Equal(t, http.StatusBadRequest, code, "self-registration as superadmin is closed")

	code, env = f.do(http.MethodPost, "/api/auth/register", f.rootTok, map[string]string{
		"name": "boss", "email": "boss@example.com", "password": "password1", "role": "superadmin",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, models.RoleSuperadmin, env.User.Role)

	code, env = f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "erin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Message)

	code, env = f.do(http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, u.ID, me.ID)
	assert.NotContains(t, string(env.Data), "password")
}

func TestTasksRequireToken(t *testing.T) {
	f := newAPI(t, "httpnotoken")

	code, env := f.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authorized, no token", env.Message)

	code, _ = f.do(http.MethodGet, "/api/tasks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	ghost := testutil.GenerateJWTHS256(t, testSecret, "ghost", "superadmin")
	code, env = f.do(http.MethodGet, "/api/tasks", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authorized, user not found", env.Message)
}

func TestTaskLifecycle(t *testing.T) {
	f := newAPI(t, "httptasks")
	alice, aliceTok := f.register("alice")
	bob, bobTok := f.register("bob")

	// Employees cannot create.
	code, env := f.do(http.MethodPost, "/api/tasks", aliceTok, map[string]any{
		"title": "x", "description": "y", "category": "work", "assignedTo": alice.ID, "dueDate": "2026-12-01T09:00:00Z",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "only superadmin can create tasks", env.Message)

	// Missing title.
	code, env = f.do(http.MethodPost, "/api/tasks", f.rootTok, map[string]any{
		"description": "y", "category": "work", "assignedTo": alice.ID, "dueDate": "2026-12-01T09:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Title is required", env.Message)

	task := f.createTask(alice.ID, "Prepare report")
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, f.rootUser.ID, task.CreatedBy)
	assert.Equal(t, []string{"finance", "q4"}, task.Tags)
	f.createTask(bob.ID, "Bob's errand")

	// Scoped listing.
	code, env = f.do(http.MethodGet, "/api/tasks", aliceTok, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	code, env = f.do(http.MethodGet, "/api/tasks?status=pending", f.rootTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, *env.Count)

	code, _ = f.do(http.MethodGet, "/api/tasks?limit=abc", f.rootTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// Viewing someone else's task.
	code, env = f.do(http.MethodGet, "/api/tasks/"+task.ID, bobTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not authorized to view this task", env.Message)

	// Employee may only touch status.
	code, env = f.do(http.MethodPatch, "/api/tasks/"+task.ID, aliceTok, `{"status":"completed","title":"Hacked"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "employees can only update task status", env.Message)

	code, _ = f.do(http.MethodPatch, "/api/tasks/"+task.ID, bobTok, `{"status":"completed"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(http.MethodPatch, "/api/tasks/"+task.ID, aliceTok, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = f.do(http.MethodPatch, "/api/tasks/"+task.ID, aliceTok, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated models.Task
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Prepare report", updated.Title)

	// Unknown and null fields are rejected before the engine runs.
	code, _ = f.do(http.MethodPatch, "/api/tasks/"+task.ID, f.rootTok, `{"createdBy":"someone"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.do(http.MethodPatch, "/api/tasks/"+task.ID, f.rootTok, `{"title":null}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = f.do(http.MethodPatch, "/api/tasks/"+task.ID, f.rootTok, `{"title":"Final report","category":"personal"}`)
	require.Equal(t, http.StatusOK, code, env.Message)

	// Search stays inside the caller's scope.
	code, env = f.do(http.MethodGet, "/api/tasks/search/report", bobTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, *env.Count)
	code, env = f.do(http.MethodGet, "/api/tasks/search/report", aliceTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)
	// An escaped slash in the path is decoded before the terms are split.
	code, env = f.do(http.MethodGet, "/api/tasks/search/%2Freport", aliceTok, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, 1, *env.Count)

	// Deletion.
	code, _ = f.do(http.MethodDelete, "/api/tasks/"+task.ID, aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = f.do(http.MethodDelete, "/api/tasks/"+task.ID, f.rootTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	code, env = f.do(http.MethodGet, "/api/tasks/"+task.ID, f.rootTok, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task not found", env.Message)
}

func TestUserAdministration(t *testing.T) {
	f := newAPI(t, "httpusers")
	alice, aliceTok := f.register("alice")

	code, _ := f.do(http.MethodGet, "/api/users", aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := f.do(http.MethodGet, "/api/users", f.rootTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, *env.Count)

	code, env = f.do(http.MethodPatch, "/api/users/"+alice.ID, f.rootTok, map[string]string{"role": "superadmin"})
	require.Equal(t, http.StatusOK, code, env.Message)

	// The stored role wins over the stale token claim.
	code, _ = f.do(http.MethodGet, "/api/users", aliceTok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = f.do(http.MethodPatch, "/api/users/"+alice.ID, f.rootTok, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Role must be either superadmin or employee", env.Message)

	task := f.createTask(alice.ID, "Pin alice")
	code, env = f.do(http.MethodDelete, "/api/users/"+alice.ID, f.rootTok, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User is still referenced by tasks", env.Message)

	code, _ = f.do(http.MethodDelete, "/api/tasks/"+task.ID, f.rootTok, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = f.do(http.MethodDelete, "/api/users/"+alice.ID, f.rootTok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = f.do(http.MethodGet, "/api/users/"+alice.ID, f.rootTok, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", env.Message)

	// Token of a deleted user no longer authenticates.
	code, _ = f.do(http.MethodGet, "/api/tasks", aliceTok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrConflict, http.StatusConflict},
		{service.ErrTaskNotFound, http.StatusNotFound},
		{service.ErrDuplicateEmail, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, c := range cases {
		code, msg := errorStatus(c.err)
		assert.Equal(t, c.code, code, c.err.Error())
		if code == http.StatusInternalServerError {
			assert.Equal(t, "Server Error", msg)
		}
	}
}
