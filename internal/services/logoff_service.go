package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
)

const localOnlyMessage = "local account deleted (upstream timeout)"

// LogoffOutcome is what the logoff endpoint replies with.
type LogoffOutcome struct {
	Status    int
	Body      dto.Response
	LocalOnly bool
}

// LogoffService deregisters the caller upstream and removes the local account.
type LogoffService struct {
	proxy    *ProxyService
	accounts *AccountService
}

func NewLogoffService(proxy *ProxyService, accounts *AccountService) *LogoffService {
	return &LogoffService{proxy: proxy, accounts: accounts}
}

// Logoff calls the tenant's logoff endpoint. On success the local account is
// deleted as well. If the upstream deadline elapses the local account is
// deleted anyway and the outcome is marked LocalOnly.
func (s *LogoffService) Logoff(ctx context.Context, p *tenant.Principal, appName string, h ProxyHeaders) (*LogoffOutcome, error) {
	if p == nil || !p.IsExternalUser || p.ExternalSubjectID == "" {
		return nil, apperr.Unauthorized("account information unavailable, sign in again")
	}

	reply, err := s.proxy.Logoff(ctx, appName, h)
	if errors.Is(err, ErrUpstreamTimeout) {
		slog.Warn("logoff upstream timed out, deleting local account",
			"action", "logoff",
			"app_id", p.AppID,
			"account_id", p.ID,
		)
		deleted, err := s.deleteLocal(ctx, p)
		if err != nil {
			return nil, apperr.Internal("delete local account", err)
		}
		if !deleted {
			return &LogoffOutcome{
				Status: http.StatusNotFound,
				Body:   dto.Response{Code: dto.CodeNotFound, Message: ErrAccountNotFound.Error()},
			}, nil
		}
		return &LogoffOutcome{
			Status:    http.StatusOK,
			Body:      dto.Response{Code: dto.CodeSuccess, Message: localOnlyMessage, Data: map[string]bool{"localOnly": true}},
			LocalOnly: true,
		}, nil
	}
	if err != nil {
		return nil, apperr.Upstream(http.StatusInternalServerError, "upstream request failed", err)
	}

	if reply.Status >= 200 && reply.Status < 300 {
		if _, err := s.deleteLocal(ctx, p); err != nil {
			slog.Error("failed to delete local account after logoff",
				"action", "logoff",
				"account_id", p.ID,
				"error", err.Error(),
			)
		}
	}
	return &LogoffOutcome{Status: reply.Status, Body: reply.Body}, nil
}

// deleteLocal unbinds the caller's device and deletes the account. Without a
// device link it deletes the account directly.
func (s *LogoffService) deleteLocal(ctx context.Context, p *tenant.Principal) (bool, error) {
	if p.DeviceNumber != "" {
		result, err := s.accounts.UnbindDeviceAndDeleteAccount(ctx, p.ExternalSubjectID, p.AppID, p.DeviceNumber)
		if err != nil {
			return false, err
		}
		if result.Success {
			return true, nil
		}
		if result.Reason == ErrAccountNotFound.Error() {
			return false, nil
		}
	}

	account, err := s.accounts.FindByAuth0SubAndAppID(ctx, p.ExternalSubjectID, p.AppID)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := s.accounts.DeleteAccount(ctx, account.ID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
