package middleware

import (
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// Principal resolves the verified claims into a User or Account record and
// stores the normalized principal for handlers. Requests without claims
// (whitelisted paths) pass through.
func Principal(principals *services.PrincipalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := tenant.GetClaims(c)
		if !ok {
			return c.Next()
		}

		p, err := principals.Resolve(c.UserContext(), claims, c.Get("deviceNumber"))
		if err != nil {
			return response.FromError(c, err)
		}
		tenant.SetPrincipal(c, p)
		return c.Next()
	}
}

// RequirePrincipal rejects requests that reached a protected route without
// a resolved principal.
func RequirePrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := tenant.GetPrincipal(c); !ok {
			return response.Unauthorized(c, msgNoAuthorization)
		}
		return c.Next()
	}
}
