package main

import (
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"taskManager/internal/config"
	"taskManager/internal/db"
	"taskManager/internal/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	devSecret  bool
}

func (o *rootOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configFile, "config", "c", "", "path to a YAML config file (overrides CONFIG_FILE)")
	fs.BoolVar(&o.devSecret, "dev", false, "fall back to a development JWT secret when JWT_SECRET is unset")
}

func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.devSecret {
		cfg, err = config.LoadWithDefaults(o.configFile)
	} else {
		cfg, err = config.Load(o.configFile)
	}
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "taskmanager",
		Short: "Multi-tenant task tracker with role-based access",
		Long: `taskmanager serves a REST API and a gRPC mirror of the task API.

Superadmins manage users and tasks. Employees see the tasks assigned to
them and may only change their status.`,
		SilenceUsage: true,
	}
	opts.bind(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newUserCmd(opts))
	return cmd
}

// openStore opens the configured database and applies pending migrations.
func openStore(cfg *config.Config) (*sqlx.DB, error) {
	return db.Open(cfg.Database.Driver, cfg.Database.DSN)
}
