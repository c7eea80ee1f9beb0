package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	registry *tenant.Registry
}

func NewHealthHandler(db *gorm.DB, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Upstreams: len(h.registry.All()),
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err == nil {
		err = h.db.WithContext(c.UserContext()).Model(&models.Application{}).Count(&resp.Applications).Error
	}
	if err != nil {
		resp.Status = "degraded"
		resp.DB = "unhealthy: " + err.Error()
	}

	return response.Success(c, resp)
}
