package middleware

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	msgNoAuthorization = "no authorization"
	msgTokenExpired    = "token expired"
	msgInvalidToken    = "invalid token"
)

// Whitelist lists paths that skip authentication, matched exactly or by pattern.
// Paths are compared the way the router resolves them: case-insensitive and
// without a trailing slash.
type Whitelist struct {
	exact    map[string]struct{}
	patterns []*regexp.Regexp
}

func NewWhitelist(paths []string, patterns ...string) *Whitelist {
	w := &Whitelist{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		w.exact[normalizePath(p)] = struct{}{}
	}
	for _, p := range patterns {
		w.patterns = append(w.patterns, regexp.MustCompile(p))
	}
	return w
}

func (w *Whitelist) Match(path string) bool {
	if w == nil {
		return false
	}
	path = normalizePath(path)
	if _, ok := w.exact[path]; ok {
		return true
	}
	for _, re := range w.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// JWTProtected verifies the bearer token from Authorization or Auth and
// stores it in locals under "user". Whitelisted paths pass through untouched.
func JWTProtected(cfg *config.Config, whitelist *Whitelist) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return whitelist.Match(c.Path())
		},
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		TokenLookup: "header:Authorization,header:Auth",
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return response.Unauthorized(c, classifyTokenError(err))
		},
	})

	return func(c *fiber.Ctx) error {
		if !whitelist.Match(c.Path()) {
			promoteAuthHeader(c)
		}
		return verify(c)
	}
}

// promoteAuthHeader lets older clients send a bare token in the Auth header.
func promoteAuthHeader(c *fiber.Ctx) {
	if c.Get(fiber.HeaderAuthorization) != "" {
		return
	}
	token := strings.TrimSpace(c.Get("Auth"))
	if token == "" {
		return
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return
	}
	c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
}

func classifyTokenError(err error) string {
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return msgNoAuthorization
	case errors.Is(err, jwt.ErrTokenExpired):
		return msgTokenExpired
	default:
		return msgInvalidToken
	}
}
