package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/observability"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const stateCookie = "auth0_state"

type AuthHandler struct {
	users   *services.UserService
	tokens  *services.TokenService
	verify  *services.VerifyService
	auth0   *services.Auth0Client
	domain  string
	metrics *observability.Metrics
}

func NewAuthHandler(
	users *services.UserService,
	tokens *services.TokenService,
	verify *services.VerifyService,
	auth0 *services.Auth0Client,
	domain string,
	metrics *observability.Metrics,
) *AuthHandler {
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		verify:  verify,
		auth0:   auth0,
		domain:  domain,
		metrics: metrics,
	}
}

// Login authenticates a local user by username and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.users.ValidateCredentials(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Unauthorized(c, "invalid username or password")
		}
		return response.FromError(c, err)
	}

	token, err := h.tokens.IssueForUser(user)
	if err != nil {
		return response.FromError(c, apperr.Internal("issue token", err))
	}

	slog.Info("local login succeeded", "action", "login", "user_id", user.ID)
	return response.Success(c, dto.LoginResponse{
		Token: token,
		User: dto.LoginUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	}, "login succeeded")
}

// Auth0Login redirects the browser to the Auth0 authorize page.
func (h *AuthHandler) Auth0Login(c *fiber.Ctx) error {
	state := uuid.NewString()
	target, err := h.auth0.AuthCodeURL(state)
	if err != nil {
		return response.FromError(c, apperr.Internal("auth0 login is not configured", err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(target, fiber.StatusFound)
}

// Callback exchanges the authorization code and returns the Auth0 tokens
// with the caller's profile.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return response.BadRequest(c, "code is required")
	}
	if expected := c.Cookies(stateCookie); expected != "" && c.Query("state") != expected {
		return response.BadRequest(c, "state mismatch")
	}
	c.ClearCookie(stateCookie)

	token, err := h.auth0.Exchange(c.UserContext(), code)
	if err != nil {
		if errors.Is(err, services.ErrAuth0NotConfigured) {
			return response.FromError(c, apperr.Internal("auth0 is not configured", err))
		}
		slog.Warn("auth0 code exchange failed", "action", "auth0_callback", "error", err.Error())
		return response.Unauthorized(c, "authorization code rejected")
	}

	info, err := h.auth0.UserInfo(c.UserContext(), h.domain, token.AccessToken)
	if err != nil {
		slog.Error("auth0 userinfo failed", "action", "auth0_callback", "error", err.Error())
		return response.Error(c, dto.CodeInternal, "failed to fetch user info")
	}

	return response.Success(c, dto.CallbackResponse{
		AccessToken: token.AccessToken,
		IDToken:     services.IDToken(token),
		User:        info.Claims,
	}, "auth0 authorization succeeded")
}

// Verify exchanges an Auth0 access token for a gateway session token.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		h.metrics.RecordVerify("rejected")
		return response.BadRequest(c, msgInvalidBody)
	}
	req.DeviceNumber = c.Get("deviceNumber")
	req.PhoneModel = c.Get("phoneModel")
	req.CountryCode = c.Get("countryCode")
	req.Version = c.Get("version")

	resp, err := h.verify.Verify(c.UserContext(), &req)
	if err != nil {
		h.metrics.RecordVerify(verifyOutcome(err))
		return response.FromError(c, err)
	}

	h.metrics.RecordVerify("success")
	return response.Success(c, resp, "verified")
}

func verifyOutcome(err error) string {
	switch {
	case apperr.IsKind(err, apperr.KindValidation):
		return "rejected"
	case apperr.IsKind(err, apperr.KindUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}
