package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// TaskServiceName is the fully-qualified gRPC service name.
const TaskServiceName = "taskmanager.v1.TaskService"

// TaskServiceServer is the server API for taskmanager.v1.TaskService. Every
// message is a google.protobuf.Struct shaped like the REST JSON bodies.
type TaskServiceServer interface {
	ListTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(TaskServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func fullMethod(name string) string {
	return "/" + TaskServiceName + "/" + name
}

// unaryHandler adapts a TaskServiceServer method to grpc.MethodDesc.Handler.
func unaryHandler(name string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	method := fullMethod(name)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TaskServiceDesc describes taskmanager.v1.TaskService for grpc.Server.RegisterService.
var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: TaskServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListTasks", Handler: unaryHandler("ListTasks", TaskServiceServer.ListTasks)},
		{MethodName: "GetTask", Handler: unaryHandler("GetTask", TaskServiceServer.GetTask)},
		{MethodName: "CreateTask", Handler: unaryHandler("CreateTask", TaskServiceServer.CreateTask)},
		{MethodName: "UpdateTask", Handler: unaryHandler("UpdateTask", TaskServiceServer.UpdateTask)},
		{MethodName: "DeleteTask", Handler: unaryHandler("DeleteTask", TaskServiceServer.DeleteTask)},
		{MethodName: "SearchTasks", Handler: unaryHandler("SearchTasks", TaskServiceServer.SearchTasks)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskmanager/v1/task.proto",
}

// RegisterTaskServiceServer registers srv on s.
func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&TaskServiceDesc, srv)
}

// TaskServiceClient is the client API for taskmanager.v1.TaskService.
type TaskServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTaskServiceClient(cc grpc.ClientConnInterface) *TaskServiceClient {
	return &TaskServiceClient{cc: cc}
}

func (c *TaskServiceClient) invoke(ctx context.Context, name string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskServiceClient) ListTasks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListTasks", in, opts)
}

func (c *TaskServiceClient) GetTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetTask", in, opts)
}

func (c *TaskServiceClient) CreateTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateTask", in, opts)
}

func (c *TaskServiceClient) UpdateTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateTask", in, opts)
}

func (c *TaskServiceClient) DeleteTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DeleteTask", in, opts)
}

func (c *TaskServiceClient) SearchTasks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SearchTasks", in, opts)
}
