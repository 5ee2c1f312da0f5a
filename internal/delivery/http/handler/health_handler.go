package handler

import (
	"context"

	"fluentpro/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
}

func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"status": "up"})
}

func (h *HealthHandler) Readyz(c fiber.Ctx) error {
	checks := fiber.Map{"database": "up", "cache": "up"}
	status := fiber.StatusOK

	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			checks["database"] = "down"
			status = fiber.StatusServiceUnavailable
		}
	}
	// Cache is optional; a down cache does not fail readiness.
	if h.cache != nil {
		if err := h.cache.Ping(c.Context()); err != nil {
			checks["cache"] = "down"
		}
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, "not ready", checks)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, checks)
}
