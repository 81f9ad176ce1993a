package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/jwt"
)

func stateFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	if err != nil {
		t.Fatal(err)
	}
	return u.Query().Get("state")
}

func TestOAuthNotConfigured(t *testing.T) {
	svc := NewOAuthService(nil, []string{"maintex.com"}, "secret", time.Minute)
	if svc.Configured() {
		t.Fatal("service without provider reports configured")
	}
	if _, err := svc.Begin(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Begin err = %v, want configuration error", err)
	}
	if _, err := svc.Complete(context.Background(), CallbackInput{Code: "c"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Complete err = %v, want configuration error", err)
	}
}

func TestOAuthHappyPath(t *testing.T) {
	provider := &fakeProvider{email: "Alice@Maintex.com"}
	svc := NewOAuthService(provider, []string{"maintex.com"}, "secret", time.Minute)

	begin, err := svc.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	state := stateFrom(t, begin.URL)
	if state == "" || begin.Nonce == "" {
		t.Fatalf("Begin returned %+v", begin)
	}

	id, err := svc.Complete(context.Background(), CallbackInput{Code: "xyz", State: state, SessionNonce: begin.Nonce})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if id.Email != "alice@maintex.com" {
		t.Fatalf("email = %q", id.Email)
	}
	if id.Tokens == nil || id.Tokens.AccessToken != "at-xyz" || id.Tokens.RefreshToken != "rt" {
		t.Fatalf("tokens = %+v", id.Tokens)
	}
}

func TestOAuthCallbackFailures(t *testing.T) {
	provider := &fakeProvider{email: "alice@maintex.com"}
	svc := NewOAuthService(provider, []string{"maintex.com"}, "secret", time.Minute)
	begin, _ := svc.Begin()
	state := stateFrom(t, begin.URL)
	foreignState, _ := jwt.GenerateStateToken(begin.Nonce, "other-secret", time.Minute)

	tests := []struct {
		name  string
		in    CallbackInput
		setup func()
		kind  error
	}{
		{"provider error", CallbackInput{ProviderError: "access_denied", State: state, SessionNonce: begin.Nonce}, nil, domain.ErrAuthentication},
		{"missing code", CallbackInput{State: state, SessionNonce: begin.Nonce}, nil, domain.ErrAuthentication},
		{"nonce mismatch", CallbackInput{Code: "c", State: state, SessionNonce: "other"}, nil, domain.ErrAuthentication},
		{"no session nonce", CallbackInput{Code: "c", State: state}, nil, domain.ErrAuthentication},
		{"forged state", CallbackInput{Code: "c", State: foreignState, SessionNonce: begin.Nonce}, nil, domain.ErrAuthentication},
		{"exchange fails", CallbackInput{Code: "c", State: state, SessionNonce: begin.Nonce}, func() { provider.exchangeErr = errors.New("invalid_grant") }, domain.ErrUpstream},
		{"unverified email", CallbackInput{Code: "c", State: state, SessionNonce: begin.Nonce}, func() { provider.emailErr = domain.ErrUnverifiedEmail }, domain.ErrAuthentication},
		{"empty email", CallbackInput{Code: "c", State: state, SessionNonce: begin.Nonce}, func() { provider.email = "" }, domain.ErrAuthentication},
		{"foreign domain", CallbackInput{Code: "c", State: state, SessionNonce: begin.Nonce}, func() { provider.email = "eve@evil.com" }, domain.ErrAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*provider = fakeProvider{email: "alice@maintex.com"}
			if tt.setup != nil {
				tt.setup()
			}
			id, err := svc.Complete(context.Background(), tt.in)
			if id != nil || !errors.Is(err, tt.kind) {
				t.Fatalf("Complete = %+v, %v; want %v", id, err, tt.kind)
			}
		})
	}
}

func TestEmailAllowed(t *testing.T) {
	svc := NewOAuthService(&fakeProvider{}, []string{"maintex.com", "partner.org"}, "s", 0)

	for email, want := range map[string]bool{
		"alice@maintex.com":    true,
		"bob@MAINTEX.COM":      true,
		"ops@eu.maintex.com":   true,
		"x@partner.org":        true,
		"eve@notmaintex.com":   false,
		"eve@maintex.com.evil": false,
		"maintex.com":          false,
		"@maintex.com":         false,
		"alice@":               false,
	} {
		if got := svc.EmailAllowed(email); got != want {
			t.Errorf("EmailAllowed(%q) = %v, want %v", email, got, want)
		}
	}

	closed := NewOAuthService(&fakeProvider{}, nil, "s", 0)
	if closed.EmailAllowed("alice@maintex.com") {
		t.Error("empty allow-list must admit nobody")
	}
}
