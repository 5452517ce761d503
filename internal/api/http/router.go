package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rail-complaints/internal/api/http/handlers"
	"github.com/spec-kit/rail-complaints/internal/auth"
	"github.com/spec-kit/rail-complaints/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Complaints      *handlers.ComplaintsHandler
	Auth            *handlers.AuthHandler
	AdminComplaints *handlers.AdminComplaintsHandler
	Dashboard       *handlers.DashboardHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/api/v1")

	complaints := v1.Group("/complaints")
	complaints.Post("", cfg.AuthMiddleware.OptionalHandle, cfg.Complaints.Submit)
	complaints.Get("/track/:complaintId", cfg.Complaints.Track)

	authGroup := v1.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	admin := v1.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/complaints", cfg.AdminComplaints.List)
	admin.Get("/complaints/:id", cfg.AdminComplaints.Get)
	admin.Patch("/complaints/:id", cfg.AdminComplaints.Update)
	admin.Delete("/complaints/:id", cfg.AdminComplaints.Delete)
	admin.Get("/dashboard/metrics", cfg.Dashboard.Metrics)
	admin.Get("/dashboard/charts", cfg.Dashboard.Charts)
}
