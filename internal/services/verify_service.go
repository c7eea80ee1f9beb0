package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"gorm.io/gorm"
)

const responseTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// VerifyService turns an Auth0 access token into a gateway session.
type VerifyService struct {
	db       *gorm.DB
	cfg      *config.Config
	idp      IdentityProvider
	accounts *AccountService
	devices  *DeviceService
	tokens   *TokenService
}

func NewVerifyService(db *gorm.DB, cfg *config.Config, idp IdentityProvider, accounts *AccountService, devices *DeviceService, tokens *TokenService) *VerifyService {
	return &VerifyService{
		db:       db,
		cfg:      cfg,
		idp:      idp,
		accounts: accounts,
		devices:  devices,
		tokens:   tokens,
	}
}

// Verify validates the request, resolves the tenant domain, fetches the
// Auth0 profile, resolves or creates the account, binds the device and
// issues a session token.
func (s *VerifyService) Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.VerifyResponse, error) {
	if req.AccessToken == "" {
		return nil, apperr.Validation("access_token is required")
	}

	loginType := models.LoginTypeApple
	if req.LoginType.Invalid {
		return nil, apperr.Validation("loginType must be a number")
	}
	if req.LoginType.Set {
		loginType = int(req.LoginType.Value)
	}

	appID, domain, err := s.resolveDomain(ctx, req.ResolvedAppID())
	if err != nil {
		return nil, err
	}

	info, err := s.idp.UserInfo(ctx, domain, req.AccessToken)
	if err != nil {
		slog.Warn("auth0 userinfo rejected", "app_id", appID, "error", err.Error())
		return nil, apperr.Upstream(http.StatusUnauthorized, "upstream auth failed", err)
	}
	if info.Sub == "" {
		return nil, apperr.Upstream(http.StatusUnauthorized, "upstream auth failed")
	}

	verified := info.EmailVerified
	account, created, err := s.accounts.ResolveOrCreate(ctx, AccountProfile{
		Sub:           info.Sub,
		Name:          info.Name,
		Nickname:      info.Nickname,
		Email:         info.Email,
		EmailVerified: &verified,
		Picture:       info.Picture,
		LoginType:     loginType,
	}, appID)
	if err != nil {
		return nil, wrapInternal("resolve account", err)
	}

	if req.DeviceNumber != "" {
		device, err := s.devices.CreateOrUpdate(ctx, DeviceInfo{
			DeviceNumber: req.DeviceNumber,
			PhoneModel:   req.PhoneModel,
			CountryCode:  req.CountryCode,
			Version:      req.Version,
			LoginType:    loginType,
		})
		if err != nil {
			return nil, wrapInternal("bind device", err)
		}
		if _, err := s.devices.LinkToAccount(ctx, device.ID, account.ID); err != nil {
			return nil, wrapInternal("bind device", err)
		}
	}

	token, err := s.tokens.IssueForAccount(account)
	if err != nil {
		return nil, wrapInternal("issue token", err)
	}

	slog.Info("auth0 verify succeeded",
		"action", "auth0_verify",
		"account_id", account.ID,
		"app_id", appID,
		"created", created,
		"device", req.DeviceNumber != "",
	)

	return &dto.VerifyResponse{
		Token: token,
		User: dto.VerifyUser{
			Sub:     info.Sub,
			Name:    info.Name,
			Email:   info.Email,
			Picture: info.Picture,
		},
		Account: SanitizeAccount(account, s.cfg.ResponseLocation()),
	}, nil
}

// resolveDomain maps the optional app id to the Auth0 domain. Without an app
// id the configured default domain is used with app id 0.
func (s *VerifyService) resolveDomain(ctx context.Context, opt dto.OptionalInt) (uint, string, error) {
	if !opt.Set {
		if s.cfg.Auth0Domain == "" {
			return 0, "", apperr.Validation("appId is required")
		}
		return 0, s.cfg.Auth0Domain, nil
	}
	if opt.Invalid || opt.Value <= 0 {
		return 0, "", apperr.Validation("appId is invalid")
	}

	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, uint(opt.Value)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", apperr.Validation("appId is invalid: application not found")
		}
		return 0, "", apperr.Internal("load application", err)
	}
	if app.Domain == "" {
		return 0, "", apperr.Validation("application has no auth domain")
	}
	return app.ID, app.Domain, nil
}

// SanitizeAccount renders nullable fields as "" and timestamps in loc.
func SanitizeAccount(a *models.Account, loc *time.Location) dto.AccountResponse {
	userID := ""
	if a.UserID != nil {
		userID = strconv.FormatUint(uint64(*a.UserID), 10)
	}
	return dto.AccountResponse{
		ID:            a.ID,
		Auth0Sub:      a.Auth0Sub,
		UserID:        userID,
		Name:          deref(a.Name),
		Nickname:      deref(a.Nickname),
		Email:         deref(a.Email),
		EmailVerified: a.EmailVerified,
		Picture:       deref(a.Picture),
		AppID:         a.AppID,
		LoginType:     a.LoginType,
		CreatedAt:     FormatTime(a.CreatedAt, loc),
		UpdatedAt:     FormatTime(a.UpdatedAt, loc),
	}
}

// FormatTime renders t in loc with millisecond precision, or "" when zero.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(responseTimeLayout)
}

func wrapInternal(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(op, fmt.Errorf("%s: %w", op, err))
}
