package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskManager/internal/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := opts.load()
				if err != nil {
					return err
				}
				d, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
				if err != nil {
					return err
				}
				defer d.Close()
				if err := db.Migrate(d); err != nil {
					return err
				}
				versions, err := db.AppliedVersions(d)
				if err != nil {
					return err
				}
				log.Info("migrations applied", "versions", versions)
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recently applied migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := opts.load()
				if err != nil {
					return err
				}
				d, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
				if err != nil {
					return err
				}
				defer d.Close()
				if err := db.RollbackLast(d); err != nil {
					return err
				}
				versions, err := db.AppliedVersions(d)
				if err != nil {
					return err
				}
				log.Info("rolled back", "remaining", versions)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied migration versions",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, _, err := opts.load()
				if err != nil {
					return err
				}
				d, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
				if err != nil {
					return err
				}
				defer d.Close()
				versions, err := db.AppliedVersions(d)
				if err != nil {
					return err
				}
				for _, v := range versions {
					fmt.Fprintf(cmd.OutOrStdout(), "%04d\n", v)
				}
				return nil
			},
		},
	)
	return cmd
}
