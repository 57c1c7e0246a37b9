package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CONFIG_FILE", "")
}

func TestMigrateUpDownStatus(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "migrate", "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	out, err := run(t, "migrate", "status")
	if err != nil {
		t.Fatalf("migrate status: %v", err)
	}
	if strings.Fields(out)[len(strings.Fields(out))-1] != "0002" {
		t.Fatalf("status output = %q", out)
	}

	if _, err := run(t, "migrate", "down"); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	out, _ = run(t, "migrate", "status")
	if strings.TrimSpace(out) != "0001" {
		t.Fatalf("after down status = %q", out)
	}
}

func TestUserCreate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "user", "create", "--name", "Root", "--email", "root@example.com", "--password", "changeme")
	if err != nil {
		t.Fatalf("user create: %v", err)
	}
	if !strings.Contains(out, "created superadmin root@example.com") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "user", "create", "--name", "Root", "--email", "root@example.com", "--password", "changeme"); err == nil {
		t.Fatalf("expected duplicate email error")
	}
	if _, err := run(t, "user", "create", "--email", "x@example.com"); err == nil {
		t.Fatalf("expected missing password error")
	}
}

func TestUserSetRole(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "user", "create", "--name", "Dana", "--email", "dana@example.com", "--password", "changeme", "--role", "employee"); err != nil {
		t.Fatalf("user create: %v", err)
	}
	out, err := run(t, "user", "set-role", "--email", "Dana@Example.com", "--role", "superadmin")
	if err != nil {
		t.Fatalf("set-role: %v", err)
	}
	if !strings.Contains(out, "is now superadmin") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "user", "set-role", "--email", "nobody@example.com", "--role", "employee"); err == nil {
		t.Fatalf("expected error for unknown account")
	}
	if _, err := run(t, "user", "set-role", "--email", "dana@example.com", "--role", "owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	setupEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := run(t, "migrate", "status"); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
	if _, err := run(t, "--dev", "migrate", "status"); err != nil {
		t.Fatalf("--dev should fall back to a development secret: %v", err)
	}
}
