package serverselect

import (
	"errors"
	"testing"

	"github.com/skillbridge-dev/skillbridge/internal/cli/config"
	"github.com/skillbridge-dev/skillbridge/internal/cli/userconfig"
)

var twoServers = &config.Config{Servers: []config.Server{
	{Alias: "production", URL: "https://skillbridge.example.com/api/v1"},
	{Alias: "local", URL: "http://localhost:8080/api/v1"},
}}

func failPrompt(t *testing.T) Prompter {
	return func(*config.Config) (*config.Server, error) {
		t.Fatal("prompt should not be shown")
		return nil, nil
	}
}

func TestResolveServer_AliasWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := userconfig.SetSelectedServer("https://skillbridge.example.com/api/v1"); err != nil {
		t.Fatalf("failed to seed user config: %v", err)
	}

	server, err := ResolveServer(twoServers, "local", failPrompt(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "local" {
		t.Errorf("expected local, got %s", server.Alias)
	}
}

func TestResolveServer_SelectedServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := userconfig.SetSelectedServer("http://localhost:8080/api/v1"); err != nil {
		t.Fatalf("failed to seed user config: %v", err)
	}

	server, err := ResolveServer(twoServers, "", failPrompt(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "local" {
		t.Errorf("expected local, got %s", server.Alias)
	}
}

func TestResolveServer_StaleSelectionPrompts(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := userconfig.SetSelectedServer("https://gone.example.com/api/v1"); err != nil {
		t.Fatalf("failed to seed user config: %v", err)
	}

	prompted := false
	server, err := ResolveServer(twoServers, "", func(cfg *config.Config) (*config.Server, error) {
		prompted = true
		return &cfg.Servers[0], nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !prompted {
		t.Error("expected prompt when selection is stale")
	}

	selected, _ := userconfig.GetSelectedServer()
	if selected != server.URL {
		t.Errorf("expected selection to be saved as %s, got %s", server.URL, selected)
	}
}

func TestResolveServer_SingleServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := &config.Config{Servers: twoServers.Servers[:1]}

	server, err := ResolveServer(cfg, "", failPrompt(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "production" {
		t.Errorf("expected production, got %s", server.Alias)
	}
}

func TestResolveServer_PromptCancelled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := ResolveServer(twoServers, "", func(*config.Config) (*config.Server, error) {
		return nil, errors.New("server selection cancelled: ^C")
	})
	if err == nil {
		t.Fatal("expected error when prompt is cancelled")
	}
}

func TestResolveServer_NoServers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := ResolveServer(&config.Config{}, "", failPrompt(t)); err == nil {
		t.Fatal("expected error with no servers")
	}
}
