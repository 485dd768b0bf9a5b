package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/complaint-service/internal/api/http/handlers"
	"github.com/campusdesk/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Insights       *handlers.InsightsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Post("/classify", cfg.Complaints.Classify)

	operator := auth.RequireOperator()
	complaints := protected.Group("/complaints")
	complaints.Post("", cfg.Complaints.Create)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id/status", operator, cfg.Complaints.UpdateStatus)
	complaints.Patch("/:id/assign", operator, cfg.Complaints.Assign)
	complaints.Post("/:id/feedback", cfg.Complaints.Feedback)
	complaints.Post("/:id/comments", cfg.Complaints.AddComment)
	complaints.Get("/:id/comments", cfg.Complaints.ListComments)

	protected.Get("/reports/summary", operator, cfg.Insights.Summary)
	protected.Get("/sla/statistics", operator, cfg.Insights.SLAStatistics)
	protected.Get("/leaderboard", operator, cfg.Insights.Leaderboard)
	protected.Get("/leaderboard/me", operator, cfg.Insights.MyStats)
	protected.Get("/notifications", operator, cfg.Insights.Notifications)
	protected.Post("/notifications/:id/read", operator, cfg.Insights.MarkNotificationRead)
}
