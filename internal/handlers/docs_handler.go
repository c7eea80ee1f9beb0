package handlers

import (
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/docs"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/gofiber/fiber/v2"
)

const swaggerUIPage = `<!DOCTYPE html>
<html><head><title>Auth Gateway API</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head><body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>window.ui = SwaggerUIBundle({url: '/api/doc', dom_id: '#swagger-ui'});</script>
</body></html>`

type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

// OpenAPI serves the API description as JSON.
func (h *DocsHandler) OpenAPI(c *fiber.Ctx) error {
	doc, err := docs.JSON()
	if err != nil {
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(doc)
}

func (h *DocsHandler) OpenAPIYAML(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(docs.YAML())
}

// UI serves the interactive documentation page.
func (h *DocsHandler) UI(c *fiber.Ctx) error {
	return c.Type("html").SendString(swaggerUIPage)
}
