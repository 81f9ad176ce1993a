package services

import (
	"context"
	"time"

	"maintex-gateway/internal/core/domain"
)

// CredentialStore resolves a local username to its bcrypt hash.
type CredentialStore interface {
	LookupHash(username string) (hash string, ok bool)
}

// IdentityProvider is the federated login backend.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.TokenBundle, error)
	VerifiedEmail(ctx context.Context, tokens *domain.TokenBundle) (string, error)
}

// ScheduleSource produces the XLSX export of a spreadsheet.
type ScheduleSource interface {
	Name() domain.ExportSource
	Export(ctx context.Context, documentID string, caller domain.Caller) ([]byte, error)
}

// ExportCache stores fetched workbooks. Implementations may evict early;
// freshness is decided by the caller from ExportEntry.FetchedAt.
type ExportCache interface {
	Get(ctx context.Context, key string) (*domain.ExportEntry, bool, error)
	Set(ctx context.Context, key string, entry *domain.ExportEntry, ttl time.Duration) error
}
