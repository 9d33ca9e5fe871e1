package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-admin-api/internal/config"
	"github.com/noah-isme/campus-admin-api/internal/handler"
	"github.com/noah-isme/campus-admin-api/internal/middleware"
	"github.com/noah-isme/campus-admin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	VisitHandler      *handler.VisitHandler
	SectionHandler    *handler.SectionHandler
	PortalHandler     *handler.PortalHandler
	GatePassHandler   *handler.GatePassHandler
	LetterHandler     *handler.LetterHandler
	AttendanceHandler *handler.AttendanceHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)

		// account listings require a session; seeding is guarded by its own token
		deps.AuthHandler.RegisterAdmin(api, jwtMiddleware)
		deps.AuthHandler.RegisterSeed(api.Group("/seed"))
	}

	if deps.VisitHandler != nil {
		deps.VisitHandler.Register(api.Group("/visits", jwtMiddleware))
	}

	if deps.SectionHandler != nil {
		deps.SectionHandler.Register(api.Group("/sections", jwtMiddleware))
	}

	if deps.PortalHandler != nil {
		deps.PortalHandler.Register(api.Group("/portals", jwtMiddleware))
	}

	if deps.GatePassHandler != nil {
		deps.GatePassHandler.Register(api.Group("/gatepasses", jwtMiddleware))
	}

	if deps.LetterHandler != nil {
		deps.LetterHandler.Register(api.Group("/letters", jwtMiddleware))
	}

	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(api.Group("/attendance", jwtMiddleware))
	}
}
