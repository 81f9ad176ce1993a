package services

import (
	"strings"

	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/password"
)

// AuthService handles local username/password authentication
type AuthService struct {
	creds CredentialStore
}

// NewAuthService creates a new auth service
func NewAuthService(creds CredentialStore) *AuthService {
	return &AuthService{creds: creds}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

// Authenticate returns the session identity for valid credentials.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(input LoginInput) (string, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		password.Burn(input.Password)
		return "", domain.ErrInvalidCredentials
	}

	hash, ok := s.creds.LookupHash(username)
	if !ok {
		password.Burn(input.Password)
		return "", domain.ErrInvalidCredentials
	}

	if !password.Verify(input.Password, hash) {
		return "", domain.ErrInvalidCredentials
	}

	return username, nil
}
