package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/service"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewServer builds a gRPC server exposing TaskService and the health service
// behind the bearer-token interceptor.
func NewServer(secret string, users auth.UserLookup, tasks *service.TaskService, log *slog.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(secret, users, healthCheckMethod)))

	RegisterTaskServiceServer(srv, &TaskServer{Tasks: tasks, Logger: log})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(TaskServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on cfg.GRPC.Address and returns a shutdown function.
func StartGRPC(cfg *config.Config, users auth.UserLookup, tasks *service.TaskService, log *slog.Logger) (func(context.Context) error, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; terminate TLS in front of the process.
	srv := NewServer(cfg.Auth.JWTSecret, users, tasks, log)
	log.Info("grpc server listening", "addr", lis.Addr().String())

	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc serve", "err", err)
		}
	}()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
