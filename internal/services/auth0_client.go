package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var ErrAuth0NotConfigured = errors.New("auth0 is not configured")

// UserInfo is the subset of the Auth0 /userinfo payload the gateway stores.
type UserInfo struct {
	Sub           string
	Name          string
	Nickname      string
	Email         string
	EmailVerified bool
	Picture       string
	Claims        map[string]any
}

// IdentityProvider exchanges an access token for the caller's profile.
type IdentityProvider interface {
	UserInfo(ctx context.Context, domain, accessToken string) (*UserInfo, error)
}

type Auth0Option func(*Auth0Client)

// WithScheme overrides https, used against local test servers.
func WithScheme(scheme string) Auth0Option {
	return func(c *Auth0Client) { c.scheme = scheme }
}

func WithHTTPClient(hc *http.Client) Auth0Option {
	return func(c *Auth0Client) { c.httpClient = hc }
}

type Auth0Client struct {
	cfg        *config.Config
	httpClient *http.Client
	scheme     string
}

func NewAuth0Client(cfg *config.Config, opts ...Auth0Option) *Auth0Client {
	c := &Auth0Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Auth0UserInfoTimeout},
		scheme:     "https",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Auth0Client) baseURL(domain string) string {
	domain = strings.TrimSuffix(domain, "/")
	if strings.Contains(domain, "://") {
		return domain
	}
	return c.scheme + "://" + domain
}

// UserInfo calls https://<domain>/userinfo with the bearer token.
func (c *Auth0Client) UserInfo(ctx context.Context, domain, accessToken string) (*UserInfo, error) {
	if domain == "" {
		return nil, ErrAuth0NotConfigured
	}
	if c.cfg.Auth0UserInfoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Auth0UserInfoTimeout)
		defer cancel()
	}
	ctx = oidc.ClientContext(ctx, c.httpClient)

	base := c.baseURL(domain)
	provider := (&oidc.ProviderConfig{
		IssuerURL:   base + "/",
		AuthURL:     base + "/authorize",
		TokenURL:    base + "/oauth/token",
		UserInfoURL: base + "/userinfo",
	}).NewProvider(ctx)

	info, err := provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return nil, fmt.Errorf("auth0 userinfo: %w", err)
	}

	var profile struct {
		Name     string `json:"name"`
		Nickname string `json:"nickname"`
		Picture  string `json:"picture"`
	}
	if err := info.Claims(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo claims: %w", err)
	}
	claims := map[string]any{}
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode userinfo claims: %w", err)
	}

	return &UserInfo{
		Sub:           info.Subject,
		Name:          profile.Name,
		Nickname:      profile.Nickname,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Picture:       profile.Picture,
		Claims:        claims,
	}, nil
}

func (c *Auth0Client) oauthConfig() (*oauth2.Config, error) {
	if c.cfg.Auth0Domain == "" || c.cfg.Auth0ClientID == "" {
		return nil, ErrAuth0NotConfigured
	}
	base := c.baseURL(c.cfg.Auth0Domain)
	return &oauth2.Config{
		ClientID:     c.cfg.Auth0ClientID,
		ClientSecret: c.cfg.Auth0ClientSecret,
		RedirectURL:  c.cfg.Auth0RedirectURI,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/authorize",
			TokenURL:  base + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, nil
}

// AuthCodeURL builds the Auth0 authorize redirect for state.
func (c *Auth0Client) AuthCodeURL(state string) (string, error) {
	oc, err := c.oauthConfig()
	if err != nil {
		return "", err
	}
	return oc.AuthCodeURL(state), nil
}

// Exchange trades an authorization code at /oauth/token.
func (c *Auth0Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	oc, err := c.oauthConfig()
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth0 code exchange: %w", err)
	}
	return token, nil
}

// IDToken returns the id_token issued alongside t, if any.
func IDToken(t *oauth2.Token) string {
	if s, ok := t.Extra("id_token").(string); ok {
		return s
	}
	return ""
}
