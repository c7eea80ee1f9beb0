package tenant

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Principal is the resolved caller: a local User or an Auth0-backed Account.
type Principal struct {
	ID                uint
	Role              string
	Email             string
	EmailVerified     bool
	IsExternalUser    bool
	ExternalSubjectID string
	DeviceNumber      string
	AppID             uint
}

// GetClaims returns the verified JWT claims placed in locals by the JWT middleware.
func GetClaims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

func GetPrincipal(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok && p != nil
}
