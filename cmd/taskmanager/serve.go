package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskManager/internal/config"
	grpcserver "taskManager/internal/grpc"
	"taskManager/internal/httpapi"
	"taskManager/internal/service"
	"taskManager/repository"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			log.Info("configuration loaded", "config", cfg.String())
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	d, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Error("close db", "err", err)
		}
	}()

	users := repository.NewUserRepository(d)
	tasks := repository.NewTaskRepository(d)
	taskSvc := service.NewTaskService(tasks, users)
	userSvc := service.NewUserService(users, tasks, service.TokenSettings{
		Secret:                cfg.Auth.JWTSecret,
		TTL:                   cfg.Auth.TokenTTL,
		AllowSuperadminSignup: cfg.Auth.AllowSuperadminSignup,
	})

	var stopGRPC func(context.Context) error
	if cfg.GRPC.Address != "" {
		stopGRPC, err = grpcserver.StartGRPC(cfg, users, taskSvc, log)
		if err != nil {
			return err
		}
	}

	srv := httpapi.New(httpapi.Deps{
		Tasks:  taskSvc,
		Users:  userSvc,
		Lookup: users,
		Secret: cfg.Auth.JWTSecret,
		Logger: log,
	})
	errc := make(chan error, 1)
	go func() { errc <- srv.Start(cfg.HTTP.Address) }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case serveErr = <-errc:
		if serveErr != nil {
			log.Error("http server stopped", "err", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	if stopGRPC != nil {
		if err := stopGRPC(shutdownCtx); err != nil {
			log.Error("grpc shutdown", "err", err)
		}
	}
	return serveErr
}
