package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"maintex-gateway/internal/core/domain"
)

func TestDefaultsLocalMode(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFromMap: %v", err)
	}

	if cfg.Auth.Mode != domain.AuthModeLocal {
		t.Errorf("mode = %q, want local", cfg.Auth.Mode)
	}
	if cfg.Schedule.Source != domain.SourcePublicExport {
		t.Errorf("source = %q, want public-export", cfg.Schedule.Source)
	}
	if cfg.Schedule.CacheTTL != 60*time.Second {
		t.Errorf("cache ttl = %v, want 60s", cfg.Schedule.CacheTTL)
	}
	if cfg.Session.MaxAge != 12*time.Hour || cfg.Session.CookieName != "maintex.sid" {
		t.Errorf("session = %+v", cfg.Session)
	}
	if !cfg.Session.SecretGenerated || len(cfg.Session.Secret) != 64 {
		t.Errorf("expected a generated 32-byte secret, got %+v", cfg.Session)
	}
	if cfg.Session.Secure {
		t.Error("cookies must not be Secure outside production")
	}
	if cfg.LoginLimit.Max != 25 || cfg.LoginLimit.Window != 15*time.Minute {
		t.Errorf("login limit = %+v", cfg.LoginLimit)
	}
	if !cfg.Network.AllowList.Empty() {
		t.Error("allow-list should be empty by default")
	}
	if !cfg.SwaggerEnabled {
		t.Error("swagger should be on in development")
	}
}

func TestGoogleModeDefaults(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{
		"AUTH_MODE":             "google",
		"NODE_ENV":              "production",
		"ALLOWED_EMAIL_DOMAINS": " Maintex.com ,@example.org,,maintex.com",
	})
	if err != nil {
		t.Fatalf("LoadFromMap: %v", err)
	}
	if cfg.Schedule.Source != domain.SourceDelegatedUser {
		t.Errorf("source = %q, want delegated-user", cfg.Schedule.Source)
	}
	if cfg.Schedule.CacheTTL != 0 {
		t.Errorf("delegated cache ttl = %v, want disabled", cfg.Schedule.CacheTTL)
	}
	if !cfg.Session.Secure || cfg.SwaggerEnabled {
		t.Errorf("production flags wrong: secure=%v swagger=%v", cfg.Session.Secure, cfg.SwaggerEnabled)
	}
	want := []string{"maintex.com", "example.org"}
	if len(cfg.Auth.AllowedEmailDomains) != len(want) {
		t.Fatalf("domains = %v, want %v", cfg.Auth.AllowedEmailDomains, want)
	}
	for i := range want {
		if cfg.Auth.AllowedEmailDomains[i] != want[i] {
			t.Fatalf("domains = %v, want %v", cfg.Auth.AllowedEmailDomains, want)
		}
	}
	if cfg.Google.OAuthConfigured() {
		t.Error("OAuth should not be configured without client credentials")
	}
}

func TestExplicitCacheForDelegated(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{
		"AUTH_MODE":         "google",
		"SCHEDULE_SOURCE":   "user_oauth",
		"SCHEDULE_CACHE_MS": "15000",
	})
	if err != nil {
		t.Fatalf("LoadFromMap: %v", err)
	}
	if cfg.Schedule.CacheTTL != 15*time.Second {
		t.Fatalf("cache ttl = %v, want 15s", cfg.Schedule.CacheTTL)
	}
}

func TestConfigurationErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"malformed network":           {"ALLOWED_NETWORKS": "10.0.0.0/8,10.1.0.0/40"},
		"unknown auth mode":           {"AUTH_MODE": "ldap"},
		"unknown source":              {"SCHEDULE_SOURCE": "ftp"},
		"delegated without oauth":     {"SCHEDULE_SOURCE": "delegated-user"},
		"service without credentials": {"SCHEDULE_SOURCE": "service_account"},
		"negative cache":              {"SCHEDULE_CACHE_MS": "-5"},
		"bad store":                   {"SESSION_STORE": "etcd"},
		"zero rate limit":             {"LOGIN_RATE_LIMIT": "0"},
		"missing credentials file":    {"GOOGLE_SERVICE_ACCOUNT_JSON": "/nonexistent/sa.json"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromMap(vars)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestServiceAccountFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromMap(map[string]string{
		"SCHEDULE_SOURCE":             "service-credential",
		"GOOGLE_SERVICE_ACCOUNT_JSON": path,
	})
	if err != nil {
		t.Fatalf("LoadFromMap: %v", err)
	}
	if string(cfg.Google.ServiceAccountJSON) != `{"type":"service_account"}` {
		t.Fatalf("service account = %q", cfg.Google.ServiceAccountJSON)
	}
}

func TestDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ScheduleConfig
		want    string
		wantErr bool
	}{
		{"explicit id wins", ScheduleConfig{SpreadsheetID: "abc", SheetURL: "https://docs.google.com/spreadsheets/d/zzz/edit"}, "abc", false},
		{"parsed from url", ScheduleConfig{SheetURL: "https://docs.google.com/spreadsheets/d/1AbC_d-9/edit#gid=0"}, "1AbC_d-9", false},
		{"url without id", ScheduleConfig{SheetURL: "https://example.com/sheet"}, "", true},
		{"nothing configured", ScheduleConfig{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.DocumentID()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrConfiguration) {
					t.Fatalf("err = %v, want configuration error", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("DocumentID = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}
