package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"taskManager/internal/access"
	"taskManager/internal/service"
	"taskManager/models"
	"taskManager/repository"
)

type userCreateOptions struct {
	name     string
	email    string
	password string
	role     string
}

func (o *userCreateOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.name, "name", "", "display name")
	fs.StringVar(&o.email, "email", "", "login email")
	fs.StringVar(&o.password, "password", "", "initial password (at least 6 characters)")
	fs.StringVar(&o.role, "role", string(models.RoleSuperadmin), "superadmin or employee")
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer user accounts",
	}

	create := &userCreateOptions{}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account, typically the first superadmin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if create.email == "" || create.password == "" {
				return errors.New("--email and --password are required")
			}
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			d, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			users := repository.NewUserRepository(d)
			svc := service.NewUserService(users, repository.NewTaskRepository(d), service.TokenSettings{
				Secret: cfg.Auth.JWTSecret,
				TTL:    cfg.Auth.TokenTTL,
			})
			// The operator running this command acts as a superadmin.
			operator := &access.Actor{ID: "cli", Role: models.RoleSuperadmin}
			u, _, err := svc.Register(cmd.Context(), operator, service.RegisterInput{
				Name:     create.name,
				Email:    create.email,
				Password: create.password,
				Role:     create.role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	create.bind(createCmd.Flags())
	cmd.AddCommand(createCmd, newSetRoleCmd(opts))
	return cmd
}

func newSetRoleCmd(opts *rootOptions) *cobra.Command {
	var email, rawRole string
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || rawRole == "" {
				return errors.New("--email and --role are required")
			}
			role, ok := models.ParseRole(rawRole)
			if !ok {
				return fmt.Errorf("unknown role %q", rawRole)
			}
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			d, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			err = repository.NewUserRepository(d).UpdateRoleByEmail(cmd.Context(), email, role)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no account with email %s", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email of the account")
	cmd.Flags().StringVar(&rawRole, "role", "", "superadmin or employee")
	return cmd
}
