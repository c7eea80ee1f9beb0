package middleware

import (
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func CORS(cfg *config.Config) fiber.Handler {
	origins := cfg.CORSOrigins
	credentials := cfg.CORSCredentials
	// fiber refuses credentials with a wildcard origin.
	if origins == "*" {
		credentials = false
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     cfg.CORSMethods,
		AllowHeaders:     cfg.CORSHeaders,
		ExposeHeaders:    cfg.CORSExposeHeaders,
		AllowCredentials: credentials,
		MaxAge:           cfg.CORSMaxAge,
	})
}
