package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mathieu-neron/vidsource/internal/handler"
	"github.com/mathieu-neron/vidsource/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Page   *handler.PageHandler
	Health *handler.HealthHandler
}

// Limiters holds the rate limiters applied to route groups. Nil entries
// disable limiting for that group.
type Limiters struct {
	API    *middleware.RateLimiter
	Select *middleware.RateLimiter
}

// Setup configures the middleware stack and all routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, l Limiters, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	// Server-rendered page
	app.Get("/", limiter(l.API), h.Page.Show)
	sel := app.Group("/select", limiter(l.Select))
	sel.Post("/source", h.Page.SelectSourceForm)
	sel.Post("/category", h.Page.SelectCategoryForm)

	// JSON page API
	api := app.Group("/api", middleware.NewCORS(corsOrigins), limiter(l.API))
	api.Get("/page", h.Page.View)
	api.Post("/page/source", limiter(l.Select), h.Page.SelectSource)
	api.Post("/page/category", limiter(l.Select), h.Page.SelectCategory)
}

func limiter(rl *middleware.RateLimiter) fiber.Handler {
	if rl == nil {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	return rl.Handler()
}
