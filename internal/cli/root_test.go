package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/cli/commands"
	"github.com/skillbridge-dev/skillbridge/internal/cli/config"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

// anonymousApp points every command at a backend that rejects all sessions
func anonymousApp(t *testing.T) *commands.App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	t.Cleanup(srv.Close)

	return &commands.App{Load: func(*cobra.Command) (*commands.Env, error) {
		client := api.New(srv.URL, api.WithCredentials(api.NewMemoryCredentials()))
		return &commands.Env{
			Server:   &config.Server{Alias: "production", URL: srv.URL},
			Client:   client,
			Resolver: session.NewResolver(session.NewMemoryStore(), client, zerolog.Nop()),
			Logger:   zerolog.Nop(),
		}, nil
	}}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd("1.2.3", anonymousApp(t))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := out.String(); got != "skillbridge version 1.2.3\n" {
		t.Errorf("output = %q", got)
	}
}

func TestGatedCommandsRequireLogin(t *testing.T) {
	for _, args := range [][]string{
		{"whoami"},
		{"batches", "ls"},
		{"batches", "create", "--name", "Go"},
		{"feedback", "top-trainers"},
		{"progress", "update"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			root := NewRootCmd("test", anonymousApp(t))
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(args)

			err := root.Execute()
			if err == nil || !strings.Contains(err.Error(), "not logged in to production") {
				t.Errorf("Execute() error = %v, want not logged in", err)
			}
		})
	}
}

func TestCommandTreeAnnotations(t *testing.T) {
	root := NewRootCmd("test", anonymousApp(t))

	want := map[string]string{
		"whoami":                 "*",
		"batches ls":             "*",
		"batches create":         "ADMIN",
		"batches assign-trainer": "ADMIN",
		"students profile":       "STUDENT",
		"feedback give-trainer":  "STUDENT",
		"feedback give-student":  "TRAINER",
		"feedback summary":       "ADMIN",
		"progress update":        "TRAINER",
	}
	for path, role := range want {
		cmd, _, err := root.Find(strings.Fields(path))
		if err != nil {
			t.Fatalf("Find(%q) error = %v", path, err)
		}
		if got := cmd.Annotations[commands.RoleAnnotation]; got != role {
			t.Errorf("%s: role = %q, want %q", path, got, role)
		}
	}

	for _, path := range []string{"login", "logout", "init", "select-server", "register student", "colleges ls"} {
		cmd, _, err := root.Find(strings.Fields(path))
		if err != nil {
			t.Fatalf("Find(%q) error = %v", path, err)
		}
		if _, ok := cmd.Annotations[commands.RoleAnnotation]; ok {
			t.Errorf("%s should not be gated", path)
		}
	}
}
