package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claim names shared by token issuing and principal resolution.
const (
	ClaimSubject  = "sub"
	ClaimAuth0Sub = "auth0_sub"
	ClaimAppID    = "app_id"
	ClaimUsername = "username"
	ClaimRole     = "role"
	ClaimEmail    = "email"
	ClaimName     = "name"
)

type TokenService struct {
	secret   []byte
	localTTL time.Duration
	auth0TTL time.Duration
	now      func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.JWTSecret),
		localTTL: cfg.JWTExpiresIn,
		auth0TTL: cfg.Auth0TokenExpiresIn,
		now:      time.Now,
	}
}

// IssueForUser signs a session token for a local user.
func (s *TokenService) IssueForUser(u *models.User) (string, error) {
	now := s.now()
	return s.sign(jwt.MapClaims{
		ClaimSubject:  strconv.FormatUint(uint64(u.ID), 10),
		ClaimUsername: u.Username,
		ClaimEmail:    u.Email,
		ClaimRole:     u.Role,
		"iat":         now.Unix(),
		"exp":         now.Add(s.localTTL).Unix(),
	})
}

// IssueForAccount signs a session token for an Auth0-backed account.
func (s *TokenService) IssueForAccount(a *models.Account) (string, error) {
	now := s.now()
	return s.sign(jwt.MapClaims{
		ClaimSubject:  strconv.FormatUint(uint64(a.ID), 10),
		ClaimAuth0Sub: a.Auth0Sub,
		ClaimName:     deref(a.Name),
		ClaimEmail:    deref(a.Email),
		ClaimAppID:    a.AppID,
		"iat":         now.Unix(),
		"exp":         now.Add(s.auth0TTL).Unix(),
	})
}

func (s *TokenService) sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
