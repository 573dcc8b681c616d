package auth

import (
	"context"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

func TestKeyringCredentials_PerServer(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	prod := NewKeyringCredentials("https://skillbridge.example.com/api/v1")
	local := NewKeyringCredentials("http://localhost:8080/api/v1")

	tokens, err := prod.LoadTokens(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tokens.Empty() {
		t.Errorf("expected no tokens, got %+v", tokens)
	}

	if err := prod.SaveTokens(ctx, api.Tokens{Access: "a1", Refresh: "r1"}); err != nil {
		t.Fatalf("failed to save tokens: %v", err)
	}

	got, err := prod.LoadTokens(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Access != "a1" || got.Refresh != "r1" {
		t.Errorf("unexpected tokens %+v", got)
	}

	other, err := local.LoadTokens(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !other.Empty() {
		t.Errorf("expected servers to be isolated, got %+v", other)
	}
}

func TestKeyringCredentials_Delete(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	creds := NewKeyringCredentials("http://localhost:8080/api/v1")

	// deleting nothing is fine
	if err := creds.DeleteTokens(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := creds.SaveTokens(ctx, api.Tokens{Access: "a1"}); err != nil {
		t.Fatalf("failed to save tokens: %v", err)
	}
	if err := creds.SaveTokens(ctx, api.Tokens{}); err != nil {
		t.Fatalf("failed to clear tokens: %v", err)
	}

	got, err := creds.LoadTokens(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected tokens to be cleared, got %+v", got)
	}
}
