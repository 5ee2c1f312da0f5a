package app

import (
	"fmt"
	"strings"

	"fluentpro/internal/delivery/http/handler"
	"fluentpro/internal/delivery/http/middleware"
	"fluentpro/internal/delivery/http/routes"
	"fluentpro/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func Bootstrap(c *Container) (*App, error) {
	if c == nil {
		return nil, fmt.Errorf("nil container")
	}

	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	reg := &routes.Registry{
		Health:     handler.NewHealthHandler(c.DB, c.Cache),
		Catalog:    handler.NewCatalogHandler(c.Catalog),
		Onboarding: handler.NewOnboardingHandler(c.Onboarding),
		Roles:      handler.NewRoleHandler(c.RoleMatching),
		WS:         ws.NewHandler(c.Hub, c.Log),

		Auth:      middleware.NewAuthMiddleware(c.JWT),
		ErrorMW:   middleware.NewErrorMiddleware(c.Log),
		AccessLog: middleware.NewAccessLogMiddleware(c.Log),
	}
	reg.Register(f)

	go c.Hub.Run()

	return &App{Fiber: f, Container: c}, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
