package routes

import "github.com/gofiber/fiber/v3"

func registerV1(r fiber.Router, reg *Registry) {
	if r == nil || reg == nil {
		return
	}

	if reg.Catalog != nil {
		reg.Catalog.RegisterRoutes(r)
	}

	protected := r
	if reg.Auth != nil {
		protected = r.Group("", reg.Auth.Middleware())
	}

	if reg.Onboarding != nil {
		reg.Onboarding.RegisterRoutes(protected)
	}
	if reg.Roles != nil {
		reg.Roles.RegisterRoutes(protected)
	}
	if reg.WS != nil {
		protected.Get("/onboarding/progress/ws", reg.WS.HandleProgressWS)
	}
}
