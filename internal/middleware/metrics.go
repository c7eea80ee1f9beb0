package middleware

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/observability"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by route template.
func Metrics(m *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
