package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type WellKnownHandler struct {
	appIDs []string
}

// NewWellKnownHandler takes the comma-separated TEAMID.bundle ids allowed to
// open universal links.
func NewWellKnownHandler(appleAppIDs string) *WellKnownHandler {
	var ids []string
	for _, id := range strings.Split(appleAppIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return &WellKnownHandler{appIDs: ids}
}

type appLinkDetail struct {
	AppIDs     []string `json:"appIDs"`
	Components []any    `json:"components"`
}

// AppleAppSiteAssociation serves the iOS universal links file.
func (h *WellKnownHandler) AppleAppSiteAssociation(c *fiber.Ctx) error {
	details := []appLinkDetail{}
	if len(h.appIDs) > 0 {
		details = append(details, appLinkDetail{
			AppIDs:     h.appIDs,
			Components: []any{fiber.Map{"/": "/*"}},
		})
	}
	return c.JSON(fiber.Map{
		"applinks": fiber.Map{"details": details},
		"webcredentials": fiber.Map{
			"apps": h.appIDs,
		},
	})
}
