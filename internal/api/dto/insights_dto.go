package dto

import (
	"time"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/service"
	"github.com/campusdesk/complaint-service/internal/sla"
)

// LeaderboardEntryResponse is one ranked staff member.
type LeaderboardEntryResponse struct {
	Rank          int      `json:"rank"`
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Points        int      `json:"points"`
	Resolved      int      `json:"resolved"`
	AverageRating float64  `json:"average_rating"`
	Badges        []string `json:"badges"`
}

// NewLeaderboardResponse maps ranked entries.
func NewLeaderboardResponse(entries []service.LeaderboardEntry) []LeaderboardEntryResponse {
	out := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		badges := e.Badges
		if badges == nil {
			badges = []string{}
		}
		out = append(out, LeaderboardEntryResponse{
			Rank:          e.Rank,
			UserID:        e.UserID,
			Name:          e.Name,
			Points:        e.Points,
			Resolved:      e.Resolved,
			AverageRating: e.AverageRating,
			Badges:        badges,
		})
	}
	return out
}

// StaffStatsResponse is one operator's standing.
type StaffStatsResponse struct {
	LeaderboardEntryResponse
	TotalStaff    int                `json:"total_staff"`
	BadgeProgress map[string]float64 `json:"badge_progress"`
}

// NewStaffStatsResponse maps an operator's stats.
func NewStaffStatsResponse(s *service.StaffStats) StaffStatsResponse {
	return StaffStatsResponse{
		LeaderboardEntryResponse: NewLeaderboardResponse([]service.LeaderboardEntry{s.LeaderboardEntry})[0],
		TotalStaff:               s.TotalStaff,
		BadgeProgress:            s.BadgeProgress,
	}
}

// SLAStatisticsResponse summarises active complaints by SLA health.
type SLAStatisticsResponse struct {
	TotalActive    int     `json:"total_active"`
	OnTrack        int     `json:"on_track"`
	NearBreach     int     `json:"near_breach"`
	Breached       int     `json:"breached"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// NewSLAStatisticsResponse maps statistics.
func NewSLAStatisticsResponse(s sla.Statistics) SLAStatisticsResponse {
	return SLAStatisticsResponse{
		TotalActive:    s.TotalActive,
		OnTrack:        s.OnTrack,
		NearBreach:     s.NearBreach,
		Breached:       s.Breached,
		ComplianceRate: s.ComplianceRate,
	}
}

// SummaryResponse is the dashboard report.
type SummaryResponse struct {
	Total                  int                            `json:"total"`
	ByStatus               map[domain.ComplaintStatus]int `json:"by_status"`
	ByPriority             map[domain.Priority]int        `json:"by_priority"`
	ByCategory             map[domain.Category]int        `json:"by_category"`
	BySentiment            map[domain.Sentiment]int       `json:"by_sentiment"`
	Settled                int                            `json:"settled"`
	Breached               int                            `json:"breached"`
	ResolvedWithinSLA      int                            `json:"resolved_within_sla"`
	AverageResolutionHours float64                        `json:"average_resolution_hours"`
	AverageRating          float64                        `json:"average_rating"`
	SLA                    SLAStatisticsResponse          `json:"sla"`
}

// NewSummaryResponse maps a report summary.
func NewSummaryResponse(s *service.Summary) SummaryResponse {
	return SummaryResponse{
		Total:                  s.Total,
		ByStatus:               s.ByStatus,
		ByPriority:             s.ByPriority,
		ByCategory:             s.ByCategory,
		BySentiment:            s.BySentiment,
		Settled:                s.Settled,
		Breached:               s.Breached,
		ResolvedWithinSLA:      s.ResolvedWithinSLA,
		AverageResolutionHours: s.AverageResolutionHours,
		AverageRating:          s.AverageRating,
		SLA:                    NewSLAStatisticsResponse(s.SLA),
	}
}

// NotificationResponse is one feed item.
type NotificationResponse struct {
	ID          string                  `json:"id"`
	ComplaintID string                  `json:"complaint_id"`
	Message     string                  `json:"message"`
	Type        domain.NotificationType `json:"type"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		ComplaintID: n.ComplaintID,
		Message:     n.Message,
		Type:        n.Type,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
}
