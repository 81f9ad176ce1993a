package domain

import (
	"strings"
	"time"
)

// TokenBundle is the delegated credential captured at OAuth login.
// It is stored once in the session and never refreshed.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Expired reports whether the access token is past its expiry at now.
// A zero expiry never expires.
func (t *TokenBundle) Expired(now time.Time) bool {
	if t == nil || t.Expiry.IsZero() {
		return false
	}
	return !now.Before(t.Expiry)
}

// ExportSource selects where the schedule workbook comes from.
type ExportSource string

const (
	SourceDelegatedUser     ExportSource = "delegated-user"
	SourceServiceCredential ExportSource = "service-credential"
	SourcePublicExport      ExportSource = "public-export"
)

// ParseExportSource accepts the canonical names and the legacy aliases.
func ParseExportSource(raw string) (ExportSource, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delegated-user", "delegated", "user_oauth", "user-oauth":
		return SourceDelegatedUser, true
	case "service-credential", "service_account", "service-account":
		return SourceServiceCredential, true
	case "public-export", "public_export", "public":
		return SourcePublicExport, true
	}
	return "", false
}

// PerCaller reports whether exports from this source depend on who asks.
func (s ExportSource) PerCaller() bool {
	return s == SourceDelegatedUser
}

// ExportEntry is one cached workbook.
type ExportEntry struct {
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Caller is the authenticated principal behind an export request.
type Caller struct {
	Identity string
	Tokens   *TokenBundle
}

// AuthMode selects the login mechanism.
type AuthMode string

const (
	AuthModeLocal  AuthMode = "local"
	AuthModeGoogle AuthMode = "google"
)
