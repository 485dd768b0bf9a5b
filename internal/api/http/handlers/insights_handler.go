package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/complaint-service/internal/api/dto"
	"github.com/campusdesk/complaint-service/internal/auth"
	"github.com/campusdesk/complaint-service/internal/service"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

// InsightsHandler serves reports, the leaderboard and the notification feed.
type InsightsHandler struct {
	reports       *service.ReportService
	leaderboard   *service.LeaderboardService
	notifications *service.NotificationService
}

// NewInsightsHandler constructs handler.
func NewInsightsHandler(reports *service.ReportService, leaderboard *service.LeaderboardService, notifications *service.NotificationService) *InsightsHandler {
	return &InsightsHandler{reports: reports, leaderboard: leaderboard, notifications: notifications}
}

// Summary GET /reports/summary.
func (h *InsightsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSummaryResponse(summary)})
}

// SLAStatistics GET /sla/statistics.
func (h *InsightsHandler) SLAStatistics(c *fiber.Ctx) error {
	stats, err := h.reports.SLAStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSLAStatisticsResponse(stats)})
}

// Leaderboard GET /leaderboard?limit=N.
func (h *InsightsHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.leaderboard.Leaderboard(c.UserContext(), parseInt(c.Query("limit"), 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeaderboardResponse(entries)})
}

// MyStats GET /leaderboard/me.
func (h *InsightsHandler) MyStats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.leaderboard.Stats(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffStatsResponse(stats)})
}

// Notifications GET /notifications.
func (h *InsightsHandler) Notifications(c *fiber.Ctx) error {
	list, err := h.notifications.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewNotificationResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkNotificationRead POST /notifications/:id/read.
func (h *InsightsHandler) MarkNotificationRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
