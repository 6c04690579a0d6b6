package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflex/internal/api/http/handlers"
	"github.com/spec-kit/ticketflex/internal/app"
	"github.com/spec-kit/ticketflex/internal/auth"
)

// NewServer builds the Fiber app for a wired container.
func NewServer(c *app.Container) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               c.Config.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(server, c.Logger, c.Metrics, c.Config.App.RequestTimeout())

	RegisterRoutes(server, RouteConfig{
		Health:    handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.Config.Store.Driver, c.Store),
		Auth:      handlers.NewAuthHandler(c.Auth),
		Tickets:   handlers.NewTicketsHandler(c.Tickets),
		Dashboard: handlers.NewDashboardHandler(c.Dashboard),
		Guard:     auth.NewSessionGuard(c.Sessions, c.Logger),
		Metrics:   c.Metrics,
	})
	return server
}
