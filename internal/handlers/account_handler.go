package handlers

import (
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	accounts *services.AccountService
	devices  *services.DeviceService
	cfg      *config.Config
}

func NewAccountHandler(accounts *services.AccountService, devices *services.DeviceService, cfg *config.Config) *AccountHandler {
	return &AccountHandler{accounts: accounts, devices: devices, cfg: cfg}
}

// MyDevices lists the devices linked to the calling Auth0 account.
func (h *AccountHandler) MyDevices(c *fiber.Ctx) error {
	p, ok := tenant.GetPrincipal(c)
	if !ok || !p.IsExternalUser {
		return response.BadRequest(c, "only auth0 accounts have devices")
	}

	links, err := h.devices.DevicesForAccount(c.UserContext(), p.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	loc := h.cfg.ResponseLocation()
	out := make([]dto.DeviceLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, dto.DeviceLinkResponse{
			ID:           l.ID,
			DeviceNumber: l.DeviceNumber,
			PhoneModel:   deref(l.PhoneModel),
			CountryCode:  deref(l.CountryCode),
			Version:      deref(l.Version),
			LastLogin:    services.FormatTime(l.LastLogin, loc),
			IsActive:     l.IsActive,
		})
	}
	return response.Success(c, out)
}

// DeviceAccounts lists every account that has signed in on a device.
func (h *AccountHandler) DeviceAccounts(c *fiber.Ctx) error {
	links, err := h.devices.AccountsForDevice(c.UserContext(), c.Params("deviceNumber"))
	if err != nil {
		return response.FromError(c, err)
	}
	loc := h.cfg.ResponseLocation()
	out := make([]dto.AccountLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, dto.AccountLinkResponse{
			ID:        l.ID,
			Auth0Sub:  l.Auth0Sub,
			Name:      deref(l.Name),
			Email:     deref(l.Email),
			AppID:     l.AppID,
			LastLogin: services.FormatTime(l.LastLogin, loc),
			IsActive:  l.IsActive,
		})
	}
	return response.Success(c, out)
}

// BySubject lists the per-tenant accounts of one Auth0 identity.
func (h *AccountHandler) BySubject(c *fiber.Ctx) error {
	sub := c.Query("auth0_sub")
	if sub == "" {
		return response.BadRequest(c, "auth0_sub is required")
	}
	accounts, err := h.accounts.FindByAuth0Sub(c.UserContext(), sub)
	if err != nil {
		return response.FromError(c, err)
	}
	loc := h.cfg.ResponseLocation()
	out := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, services.SanitizeAccount(&accounts[i], loc))
	}
	return response.Success(c, out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
