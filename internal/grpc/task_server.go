package grpcserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"taskManager/internal/access"
	"taskManager/internal/auth"
	"taskManager/internal/service"
	"taskManager/models"
)

// TaskServer implements TaskServiceServer on top of service.TaskService.
type TaskServer struct {
	Tasks  *service.TaskService
	Logger *slog.Logger
}

var _ TaskServiceServer = (*TaskServer)(nil)

const (
	maxPageSize     = 100 // Maximum allowed page size for list operations.
	defaultPageSize = 20  // Default page size for list operations.
	pageTokenPrefix = "o:"
)

type listTasksRequest struct {
	Status    string `json:"status"`
	Category  string `json:"category"`
	PageSize  int    `json:"pageSize"`
	PageToken string `json:"pageToken"`
}

type idRequest struct {
	ID string `json:"id"`
}

type createTaskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	AssignedTo  string    `json:"assignedTo"`
	DueDate     time.Time `json:"dueDate"`
	Tags        []string  `json:"tags"`
}

type updateTaskRequest struct {
	ID    string          `json:"id"`
	Patch json.RawMessage `json:"patch"`
}

type searchTasksRequest struct {
	Query string `json:"query"`
}

// ListTasks returns one page of the caller's visible tasks. Follow
// nextPageToken until it comes back empty.
func (s *TaskServer) ListTasks(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var req listTasksRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	size := req.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	offset, err := decodePageToken(req.PageToken)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.List(ctx, actor, service.ListOptions{
		Status:   models.TaskStatus(req.Status),
		Category: models.TaskCategory(req.Category),
		Limit:    size,
		Offset:   offset,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	next := ""
	if len(tasks) == size {
		next = encodePageToken(offset + size)
	}
	return encodeStruct(map[string]any{"tasks": tasks, "count": len(tasks), "nextPageToken": next})
}

func (s *TaskServer) GetTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := decodeID(in, &req); err != nil {
		return nil, err
	}
	t, err := s.Tasks.Get(ctx, actor, req.ID)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encodeStruct(map[string]any{"task": t})
}

func (s *TaskServer) CreateTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var req createTaskRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	t, err := s.Tasks.Create(ctx, actor, service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Category:    models.TaskCategory(req.Category),
		Status:      models.TaskStatus(req.Status),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encodeStruct(map[string]any{"task": t})
}

// UpdateTask expects {"id": ..., "patch": {...}}; the patch is decoded as strictly as the REST body.
func (s *TaskServer) UpdateTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var req updateTaskRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	patch, err := access.DecodeTaskPatch(req.Patch)
	if err != nil {
		return nil, s.toStatus(err)
	}
	t, err := s.Tasks.Update(ctx, actor, req.ID, patch)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encodeStruct(map[string]any{"task": t})
}

func (s *TaskServer) DeleteTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := decodeID(in, &req); err != nil {
		return nil, err
	}
	if err := s.Tasks.Delete(ctx, actor, req.ID); err != nil {
		return nil, s.toStatus(err)
	}
	return encodeStruct(map[string]any{"success": true})
}

func (s *TaskServer) SearchTasks(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var req searchTasksRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.Search(ctx, actor, req.Query)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encodeStruct(map[string]any{"tasks": tasks, "count": len(tasks)})
}

// toStatus maps service and engine errors to gRPC status codes.
func (s *TaskServer) toStatus(err error) error {
	switch {
	case access.IsForbidden(err):
		return status.Error(codes.PermissionDenied, err.Error())
	case access.IsInvalid(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, service.ErrUserReferenced):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if s.Logger != nil {
		s.Logger.Error("grpc request failed", "err", err)
	}
	return status.Error(codes.Internal, "internal error")
}

func decodeStruct(in *structpb.Struct, v any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func decodeID(in *structpb.Struct, req *idRequest) error {
	if err := decodeStruct(in, req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ID) == "" {
		return status.Error(codes.InvalidArgument, "id is required")
	}
	return nil
}

func encodeStruct(v map[string]any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func encodePageToken(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(pageTokenPrefix + strconv.Itoa(offset)))
}

func decodePageToken(tok string) (int, error) {
	if tok == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || !strings.HasPrefix(string(raw), pageTokenPrefix) {
		return 0, status.Error(codes.InvalidArgument, "invalid page_token")
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(raw), pageTokenPrefix))
	if err != nil || n < 0 {
		return 0, status.Error(codes.InvalidArgument, "invalid page_token")
	}
	return n, nil
}
