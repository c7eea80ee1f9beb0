package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups every endpoint handler mounted by Setup. Metrics is optional.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Proxy     *handlers.ProxyHandler
	Users     *handlers.UserHandler
	Tasks     *handlers.TaskHandler
	Accounts  *handlers.AccountHandler
	Health    *handlers.HealthHandler
	Docs      *handlers.DocsHandler
	WellKnown *handlers.WellKnownHandler
	Metrics   fiber.Handler
}

// PublicPaths are reachable without a token.
func PublicPaths() *middleware.Whitelist {
	return middleware.NewWhitelist(
		[]string{
			"/",
			"/api/doc",
			"/openapi.json",
			"/openapi.yaml",
			"/metrics",
			"/api/health",
			"/api/auth/login",
			"/api/auth/auth0",
			"/api/auth/callback",
			"/api/auth/verify",
			"/api/proxy/find-subscribe",
			"/api/proxy/common",
			"/.well-known/apple-app-site-association",
		},
		`^/assets/`,
		`^/public/`,
		`^/api/public/`,
	)
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, principals *services.PrincipalService) {
	// Stage 1 verifies the token, stage 2 resolves the principal.
	app.Use(middleware.JWTProtected(cfg, PublicPaths()))
	app.Use(middleware.Principal(principals))

	app.Get("/", h.Docs.UI)
	app.Get("/openapi.json", h.Docs.OpenAPI)
	app.Get("/openapi.yaml", h.Docs.OpenAPIYAML)
	app.Get("/.well-known/apple-app-site-association", h.WellKnown.AppleAppSiteAssociation)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(newLimiter(120))

	api.Get("/health", h.Health.Check)
	api.Get("/doc", h.Docs.OpenAPI)

	// Auth-specific rate limit: 20 req/min per IP (stricter)
	auth := api.Group("/auth", newLimiter(20))
	auth.Post("/login", h.Auth.Login)
	auth.Get("/auth0", h.Auth.Auth0Login)
	auth.Get("/callback", h.Auth.Callback)
	auth.Post("/verify", h.Auth.Verify)

	proxy := api.Group("/proxy")
	proxy.Get("/find-subscribe", h.Proxy.FindSubscribe)
	proxy.Post("/common", h.Proxy.Common)
	proxy.Get("/logoff", middleware.RequirePrincipal(), h.Proxy.Logoff)

	api.Get("/me", middleware.RequirePrincipal(), h.Users.Me)
	api.Get("/accounts/me/devices", middleware.RequirePrincipal(), h.Accounts.MyDevices)

	tasks := api.Group("/tasks", middleware.RequirePrincipal())
	tasks.Get("/", h.Tasks.List)
	tasks.Post("/", h.Tasks.Create)
	tasks.Get("/:id", h.Tasks.Get)
	tasks.Put("/:id", h.Tasks.Update)
	tasks.Delete("/:id", h.Tasks.Delete)

	// Admin (principal with the admin role or a listed email)
	admin := middleware.AdminRequired(cfg)
	api.Get("/accounts", admin, h.Accounts.BySubject)
	api.Get("/devices/:deviceNumber/accounts", admin, h.Accounts.DeviceAccounts)

	users := api.Group("/users", admin)
	users.Get("/", h.Users.List)
	users.Post("/", h.Users.Create)
	users.Get("/:id", h.Users.Get)
}

func newLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Response{
				Code:    fiber.StatusTooManyRequests,
				Message: "too many requests",
			})
		},
	})
}
