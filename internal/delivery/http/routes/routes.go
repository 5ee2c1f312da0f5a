package routes

import (
	"fluentpro/internal/delivery/http/handler"
	"fluentpro/internal/delivery/http/middleware"
	"fluentpro/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	Health     *handler.HealthHandler
	Catalog    *handler.CatalogHandler
	Onboarding *handler.OnboardingHandler
	Roles      *handler.RoleHandler
	WS         *ws.Handler

	Auth      *middleware.AuthMiddleware
	ErrorMW   *middleware.ErrorMiddleware
	AccessLog *middleware.AccessLogMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.AccessLog != nil {
		app.Use(r.AccessLog.Middleware())
	}
	if r.ErrorMW != nil {
		app.Use(r.ErrorMW.Middleware())
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}

	api := app.Group("/api")
	registerV1(api.Group("/v1"), r)
}
