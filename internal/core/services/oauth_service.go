package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/jwt"

	"github.com/google/uuid"
)

// OAuthService sequences the federated login: state issuance, code
// exchange, email verification and the domain allow-list.
type OAuthService struct {
	provider IdentityProvider
	domains  []string
	secret   string
	stateTTL time.Duration
}

// NewOAuthService creates a new OAuth service. A nil provider means the
// OAuth client is not configured; every login attempt then fails with a
// configuration error.
func NewOAuthService(provider IdentityProvider, allowedDomains []string, stateSecret string, stateTTL time.Duration) *OAuthService {
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &OAuthService{
		provider: provider,
		domains:  allowedDomains,
		secret:   stateSecret,
		stateTTL: stateTTL,
	}
}

// Configured reports whether a provider is available
func (s *OAuthService) Configured() bool {
	return s.provider != nil
}

// LoginRedirect is the outcome of Begin.
type LoginRedirect struct {
	URL   string
	Nonce string
}

// Begin issues a signed state and returns the provider URL to redirect to.
// The nonce must be stored in the caller's session.
func (s *OAuthService) Begin() (*LoginRedirect, error) {
	if s.provider == nil {
		return nil, domain.ErrOAuthNotConfigured
	}

	nonce := uuid.NewString()
	state, err := jwt.GenerateStateToken(nonce, s.secret, s.stateTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign state: %v", domain.ErrConfiguration, err)
	}

	return &LoginRedirect{URL: s.provider.AuthCodeURL(state), Nonce: nonce}, nil
}

// CallbackInput carries the provider callback parameters.
type CallbackInput struct {
	Code          string
	State         string
	ProviderError string
	SessionNonce  string
}

// Identity is an accepted federated login.
type Identity struct {
	Email  string
	Tokens *domain.TokenBundle
}

// Complete validates the callback and returns the accepted identity.
func (s *OAuthService) Complete(ctx context.Context, in CallbackInput) (*Identity, error) {
	if s.provider == nil {
		return nil, domain.ErrOAuthNotConfigured
	}
	if in.ProviderError != "" {
		return nil, fmt.Errorf("%w: provider returned %q", domain.ErrAuthentication, in.ProviderError)
	}
	if in.Code == "" {
		return nil, domain.ErrMissingCode
	}

	claims, err := jwt.ValidateStateToken(in.State, s.secret)
	if err != nil || in.SessionNonce == "" || claims.Nonce != in.SessionNonce {
		return nil, domain.ErrInvalidState
	}

	tokens, err := s.provider.Exchange(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchange, err)
	}

	email, err := s.provider.VerifiedEmail(ctx, tokens)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.ErrUnverifiedEmail
	}

	if !s.EmailAllowed(email) {
		return nil, domain.ErrDomainNotAllowed
	}

	return &Identity{Email: email, Tokens: tokens}, nil
}

// EmailAllowed reports whether the email's domain equals an allowed domain
// or is a subdomain of one. An empty allow-list admits nobody.
func (s *OAuthService) EmailAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	host := strings.ToLower(email[at+1:])
	for _, d := range s.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
