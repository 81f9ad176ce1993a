package domain

import "errors"

// Error kinds. Every error leaving a service wraps exactly one of these so
// the HTTP boundary can translate it without inspecting messages.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrUpstream       = errors.New("upstream error")
	ErrValidation     = errors.New("validation error")
)

// Configuration errors
var (
	ErrDocumentNotConfigured = kind(ErrConfiguration, "schedule spreadsheet id is not configured")
	ErrOAuthNotConfigured    = kind(ErrConfiguration, "google oauth client is not configured")
	ErrServiceAccountMissing = kind(ErrConfiguration, "service account credentials are not configured")
)

// Authentication errors
var (
	ErrInvalidCredentials = kind(ErrAuthentication, "invalid credentials")
	ErrInvalidState       = kind(ErrAuthentication, "invalid oauth state")
	ErrMissingCode        = kind(ErrAuthentication, "missing authorization code")
	ErrUnverifiedEmail    = kind(ErrAuthentication, "email missing or unverified")
	ErrNotAuthenticated   = kind(ErrAuthentication, "not authenticated")
	ErrTokenMissing       = kind(ErrAuthentication, "no delegated token in session")
)

// Authorization errors
var (
	ErrDomainNotAllowed = kind(ErrAuthorization, "email domain not allowed")
	ErrNetworkDenied    = kind(ErrAuthorization, "client network not allowed")
	ErrDocumentDenied   = kind(ErrAuthorization, "access to schedule document denied")
)

// Upstream errors
var (
	ErrUpstreamFetch  = kind(ErrUpstream, "schedule export failed")
	ErrUpstreamOpen   = kind(ErrUpstream, "schedule export temporarily disabled")
	ErrIdentityLookup = kind(ErrUpstream, "identity lookup failed")
	ErrTokenExchange  = kind(ErrUpstream, "authorization code exchange failed")
	ErrTokenExpired   = kind(ErrUpstream, "delegated token expired")
)

// Validation errors
var (
	ErrInvalidQuantity = kind(ErrValidation, "quantity is not a finite number")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

// KindOf returns the error kind wrapped by err, or nil when err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrConfiguration, ErrAuthentication, ErrAuthorization, ErrUpstream, ErrValidation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
