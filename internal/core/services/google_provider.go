package services

import (
	"context"
	"fmt"
	"net/http"

	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleScopes is the fixed scope set requested at login: identity, profile
// and read-only access to Drive for delegated exports.
var GoogleScopes = []string{
	oauth2api.OpenIDScope,
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	drive.DriveReadonlyScope,
}

// GoogleIdentityProvider implements IdentityProvider against Google.
type GoogleIdentityProvider struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewGoogleIdentityProvider returns nil when the OAuth client is not fully
// configured.
func NewGoogleIdentityProvider(cfg config.GoogleConfig, httpClient *http.Client) *GoogleIdentityProvider {
	if !cfg.OAuthConfigured() {
		return nil
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleIdentityProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       GoogleScopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: httpClient,
	}
}

// AuthCodeURL asks for offline access so the bundle carries a refresh token.
func (p *GoogleIdentityProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

func (p *GoogleIdentityProvider) Exchange(ctx context.Context, code string) (*domain.TokenBundle, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	bundle := &domain.TokenBundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		bundle.Scope = scope
	}
	return bundle, nil
}

func (p *GoogleIdentityProvider) VerifiedEmail(ctx context.Context, tokens *domain.TokenBundle) (string, error) {
	svc, err := oauth2api.NewService(ctx,
		option.WithHTTPClient(bearerClient(p.httpClient, tokens)),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityLookup, err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityLookup, err)
	}
	if info.Email == "" || info.VerifiedEmail == nil || !*info.VerifiedEmail {
		return "", domain.ErrUnverifiedEmail
	}
	return info.Email, nil
}

// bearerClient wraps base so every request carries the delegated token.
func bearerClient(base *http.Client, tokens *domain.TokenBundle) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: tokens.AccessToken,
		TokenType:   tokens.TokenType,
		Expiry:      tokens.Expiry,
	})
	return tokenClient(base, ts)
}

func tokenClient(base *http.Client, ts oauth2.TokenSource) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Timeout:   base.Timeout,
		Transport: &oauth2.Transport{Source: ts, Base: base.Transport},
	}
}
