package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"taskManager/internal/access"
	"taskManager/internal/auth"
	"taskManager/internal/logging"
	"taskManager/internal/service"
	"taskManager/internal/testutil"
	"taskManager/models"
	"taskManager/repository"
)

const testSecret = "grpc-secret"

type testEnv struct {
	conn  *grpc.ClientConn
	tasks *TaskServiceClient
	root  *models.User
	alice *models.User
	bob   *models.User
}

func newTestEnv(t *testing.T, name string) *testEnv {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	users := repository.NewUserRepository(d)
	taskRepo := repository.NewTaskRepository(d)

	env := &testEnv{
		root:  testutil.SeedUser(t, users, "root", models.RoleSuperadmin),
		alice: testutil.SeedUser(t, users, "alice", models.RoleEmployee),
		bob:   testutil.SeedUser(t, users, "bob", models.RoleEmployee),
	}

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(testSecret, users, service.NewTaskService(taskRepo, users), logging.Discard())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	env.conn = conn
	env.tasks = NewTaskServiceClient(conn)
	return env
}

func (e *testEnv) ctxAs(t *testing.T, u *models.User) context.Context {
	t.Helper()
	tok, err := auth.IssueToken(testSecret, access.Actor{ID: u.ID, Role: u.Role}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("new struct: %v", err)
	}
	return s
}

func (e *testEnv) createTask(t *testing.T, assignee *models.User, title string) string {
	t.Helper()
	out, err := e.tasks.CreateTask(e.ctxAs(t, e.root), mustStruct(t, map[string]any{
		"title":       title,
		"description": "via grpc",
		"category":    "work",
		"assignedTo":  assignee.ID,
		"dueDate":     "2026-11-30T17:00:00Z",
		"tags":        []any{"rpc"},
	}))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	task := out.GetFields()["task"].GetStructValue()
	if task.GetFields()["createdBy"].GetStringValue() != e.root.ID {
		t.Fatalf("createdBy mismatch: %v", task)
	}
	return task.GetFields()["id"].GetStringValue()
}

func TestHealthCheckIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t, "grpchealth")
	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: TaskServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v", resp.GetStatus())
	}
}

func TestTaskService_RequiresToken(t *testing.T) {
	env := newTestEnv(t, "grpcnotoken")
	_, err := env.tasks.ListTasks(context.Background(), &structpb.Struct{})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestTaskService_EmployeeFlow(t *testing.T) {
	env := newTestEnv(t, "grpcflow")
	id := env.createTask(t, env.alice, "Deploy release")

	// Employees cannot create.
	_, err := env.tasks.CreateTask(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{"title": "x"}))
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}

	// Status-only update by the assignee.
	out, err := env.tasks.UpdateTask(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{
		"id":    id,
		"patch": map[string]any{"status": "completed"},
	}))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got := out.GetFields()["task"].GetStructValue().GetFields()["status"].GetStringValue(); got != "completed" {
		t.Fatalf("status = %q", got)
	}

	// Any other field is forbidden for employees.
	_, err = env.tasks.UpdateTask(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{
		"id":    id,
		"patch": map[string]any{"status": "pending", "title": "renamed"},
	}))
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}

	// Non-assignees are rejected.
	_, err = env.tasks.GetTask(env.ctxAs(t, env.bob), mustStruct(t, map[string]any{"id": id}))
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied for bob, got %v", err)
	}

	// Invalid status value.
	_, err = env.tasks.UpdateTask(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{
		"id":    id,
		"patch": map[string]any{"status": "blocked"},
	}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	// Missing task.
	_, err = env.tasks.GetTask(env.ctxAs(t, env.root), mustStruct(t, map[string]any{"id": "missing"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	if _, err := env.tasks.DeleteTask(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{"id": id})); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied on delete, got %v", err)
	}
	if _, err := env.tasks.DeleteTask(env.ctxAs(t, env.root), mustStruct(t, map[string]any{"id": id})); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestTaskService_ListPagingAndSearch(t *testing.T) {
	env := newTestEnv(t, "grpclist")
	for _, title := range []string{"Alpha audit", "Beta audit", "Gamma"} {
		env.createTask(t, env.alice, title)
	}
	env.createTask(t, env.bob, "Bob audit")

	// Page through alice's tasks two at a time.
	seen := 0
	token := ""
	for page := 0; page < 5; page++ {
		out, err := env.tasks.ListTasks(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{"pageSize": 2, "pageToken": token}))
		if err != nil {
			t.Fatalf("ListTasks page=%d: %v", page, err)
		}
		for _, v := range out.GetFields()["tasks"].GetListValue().GetValues() {
			if v.GetStructValue().GetFields()["assignedTo"].GetStringValue() != env.alice.ID {
				t.Fatalf("task outside scope: %v", v)
			}
			seen++
		}
		token = out.GetFields()["nextPageToken"].GetStringValue()
		if token == "" {
			break
		}
	}
	if seen != 3 {
		t.Fatalf("seen %d tasks, want 3", seen)
	}

	if _, err := env.tasks.ListTasks(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{"pageToken": "!!"})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for bad token, got %v", err)
	}

	out, err := env.tasks.SearchTasks(env.ctxAs(t, env.alice), mustStruct(t, map[string]any{"query": "audit"}))
	if err != nil {
		t.Fatalf("SearchTasks: %v", err)
	}
	if n := out.GetFields()["count"].GetNumberValue(); n != 2 {
		t.Fatalf("alice search count = %v, want 2", n)
	}
	out, err = env.tasks.SearchTasks(env.ctxAs(t, env.root), mustStruct(t, map[string]any{"query": "audit"}))
	if err != nil {
		t.Fatalf("SearchTasks root: %v", err)
	}
	if n := out.GetFields()["count"].GetNumberValue(); n != 3 {
		t.Fatalf("root search count = %v, want 3", n)
	}

	if _, err := env.tasks.SearchTasks(env.ctxAs(t, env.root), mustStruct(t, map[string]any{"query": " "})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for empty query, got %v", err)
	}
}

func TestPageToken(t *testing.T) {
	n, err := decodePageToken(encodePageToken(40))
	if err != nil || n != 40 {
		t.Fatalf("round trip = %d, %v", n, err)
	}
	if _, err := decodePageToken(encodePageToken(-1)); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}
