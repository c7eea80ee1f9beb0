package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/golang-jwt/jwt/v5"
)

// PrincipalService loads the user or account behind verified claims.
type PrincipalService struct {
	users    *UserService
	accounts *AccountService
}

func NewPrincipalService(users *UserService, accounts *AccountService) *PrincipalService {
	return &PrincipalService{users: users, accounts: accounts}
}

// Resolve treats claims with an auth0_sub as an Account and everything else as
// a local User. A record deleted after the token was issued is Unauthorized.
func (s *PrincipalService) Resolve(ctx context.Context, claims jwt.MapClaims, deviceNumber string) (*tenant.Principal, error) {
	id, ok := claimUint(claims[ClaimSubject])
	if !ok {
		return nil, apperr.Unauthorized("invalid token")
	}

	if sub, _ := claims[ClaimAuth0Sub].(string); sub != "" {
		account, err := s.accounts.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return nil, apperr.Unauthorized("account not found")
			}
			return nil, apperr.Internal("resolve account", err)
		}
		if account.Auth0Sub != sub {
			return nil, apperr.Unauthorized("invalid token")
		}
		return &tenant.Principal{
			ID:                account.ID,
			Role:              "user",
			Email:             deref(account.Email),
			EmailVerified:     account.EmailVerified,
			IsExternalUser:    true,
			ExternalSubjectID: account.Auth0Sub,
			DeviceNumber:      deviceNumber,
			AppID:             account.AppID,
		}, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Internal("resolve user", err)
	}
	return &tenant.Principal{
		ID:            user.ID,
		Role:          user.Role,
		Email:         user.Email,
		EmailVerified: true,
		DeviceNumber:  deviceNumber,
	}, nil
}

// claimUint reads an id claim carried either as a string or a JSON number.
func claimUint(v any) (uint, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	case float64:
		if t <= 0 || t != float64(uint64(t)) {
			return 0, false
		}
		return uint(t), true
	default:
		return 0, false
	}
}
