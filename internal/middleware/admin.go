package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired admits principals with the admin role and callers whose
// verified email is listed in ADMIN_EMAILS. Local user emails count as verified.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		p, ok := tenant.GetPrincipal(c)
		if !ok {
			return response.Unauthorized(c, msgNoAuthorization)
		}

		if p.Role == "admin" {
			return c.Next()
		}
		if p.Email != "" && p.EmailVerified && contains(adminEmails, strings.ToLower(p.Email)) {
			return c.Next()
		}

		return response.Error(c, dto.CodeForbidden, "admin access required")
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
