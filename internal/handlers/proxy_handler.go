package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type ProxyHandler struct {
	proxy  *services.ProxyService
	logoff *services.LogoffService
}

func NewProxyHandler(proxy *services.ProxyService, logoff *services.LogoffService) *ProxyHandler {
	return &ProxyHandler{proxy: proxy, logoff: logoff}
}

func proxyHeaders(c *fiber.Ctx) services.ProxyHeaders {
	return services.ProxyHeaders{
		DeviceNumber: c.Get("deviceNumber"),
		PhoneModel:   c.Get("phoneModel"),
		Version:      c.Get("version"),
		Auth:         c.Get("Auth"),
	}
}

// appName reads the tenant from the appName header, then the query string.
func appName(c *fiber.Ctx) string {
	if name := c.Get("appName"); name != "" {
		return name
	}
	return c.Query("appName")
}

// FindSubscribe relays the upstream status together with the reshaped body.
func (h *ProxyHandler) FindSubscribe(c *fiber.Ctx) error {
	name := c.Query("appName", c.Get("appName"))
	reply, err := h.proxy.FindSubscribe(c.UserContext(), name, proxyHeaders(c))
	if err != nil {
		slog.Error("find-subscribe proxy failed", "action", "find_subscribe", "app", name, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Response{
			Code:    dto.CodeInternal,
			Message: "find-subscribe failed",
		})
	}
	return c.Status(reply.Status).JSON(reply.Body)
}

// Common always answers HTTP 200; failures are reported in the envelope code.
func (h *ProxyHandler) Common(c *fiber.Ctx) error {
	var req dto.CommonProxyRequest
	if err := parseBody(c, &req); err != nil {
		return commonError(c, err)
	}

	reply, err := h.proxy.Common(c.UserContext(), appName(c), &req, proxyHeaders(c))
	if err != nil {
		return commonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(reply.Body)
}

func commonError(c *fiber.Ctx, err error) error {
	body := dto.Response{Code: dto.CodeInternal, Message: "proxy request failed"}
	if e, ok := apperr.As(err); ok && e.Kind == apperr.KindValidation {
		body = dto.Response{Code: e.Code, Message: e.Message}
	} else {
		slog.Error("common proxy failed", "action", "common_proxy", "error", err.Error())
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// Logoff deregisters the caller upstream and deletes the local account.
func (h *ProxyHandler) Logoff(c *fiber.Ctx) error {
	p, _ := tenant.GetPrincipal(c)
	out, err := h.logoff.Logoff(c.UserContext(), p, appName(c), proxyHeaders(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return c.Status(out.Status).JSON(out.Body)
}
