package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/telesdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/telesdesk/helpdesk-service/internal/auth"
	"github.com/telesdesk/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authed.Post("/auth/password/change", cfg.Users.ChangePassword)

	tickets := authed.Group("/api/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/accept", triageOnly(), cfg.Tickets.AcceptTicket)
	tickets.Post("/:id/reject", triageOnly(), cfg.Tickets.RejectTicket)
	tickets.Post("/:id/complete", triageOnly(), cfg.Tickets.CompleteTicket)

	authed.Get("/api/dashboard", triageOnly(), cfg.Dashboard.Snapshot)

	admin := authed.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Users.ListUsers)
	admin.Post("/users", cfg.Users.ManageUser)
}

func triageOnly() fiber.Handler {
	return auth.RequireRole(domain.RoleAgent, domain.RoleAdmin)
}
