package middleware

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/gofiber/fiber/v2"
)

const redactedPrefixLen = 10

// RequestMonitor logs the full request (headers and, optionally, body) for
// paths matching REQUEST_MONITOR_PATHS. It is a no-op unless enabled.
func RequestMonitor(cfg *config.Config) fiber.Handler {
	patterns := splitPatterns(cfg.MonitorPaths)

	return func(c *fiber.Ctx) error {
		if !cfg.MonitorEnabled || !matchesAny(patterns, c.Path()) {
			return c.Next()
		}

		headers := make(map[string]string)
		c.Request().Header.VisitAll(func(k, v []byte) {
			headers[string(k)] = redactHeader(string(k), string(v))
		})

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"content_type", c.Get(fiber.HeaderContentType),
			"headers", headers,
		}

		if cfg.MonitorLogBody {
			body := c.Body()
			attrs = append(attrs, "body_size", len(body), "body", truncate(string(body), cfg.MonitorMaxBody))
			if cfg.MonitorParseJSON && len(body) > 0 {
				var parsed any
				if err := json.Unmarshal(body, &parsed); err != nil {
					attrs = append(attrs, "json_error", err.Error())
				} else {
					attrs = append(attrs, "json", parsed)
				}
			}
		}

		slog.Info("request monitor", attrs...)
		return c.Next()
	}
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny supports "*", "/prefix/*" and exact paths.
func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		switch {
		case p == "*":
			return true
		case strings.HasSuffix(p, "/*"):
			if strings.HasPrefix(path, strings.TrimSuffix(p, "/*")) {
				return true
			}
		case p == path:
			return true
		}
	}
	return false
}

func redactHeader(key, value string) string {
	k := strings.ToLower(key)
	if (k == "authorization" || k == "auth") && len(value) > redactedPrefixLen {
		return value[:redactedPrefixLen] + "..."
	}
	return value
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
