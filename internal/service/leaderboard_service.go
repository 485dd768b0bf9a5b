package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/events"
	"github.com/campusdesk/complaint-service/internal/repository"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

// Points and badge thresholds for staff gamification.
const (
	PointsCritical    = 100
	PointsHigh        = 50
	PointsMedium      = 30
	PointsLow         = 10
	PointsWithinSLA   = 25
	PointsFiveStar    = 40
	PointsFourStar    = 20
	BadgeCenturyClub  = "Century Club"
	BadgeQuickResolve = "Quick Resolver"
	BadgeQualityExp   = "Quality Expert"
	BadgeChampion     = "Customer Champion"
)

// LeaderboardEntry is one ranked staff member.
type LeaderboardEntry struct {
	Rank          int
	UserID        string
	Name          string
	Points        int
	Resolved      int
	AverageRating float64
	Badges        []string
}

// StaffStats is one operator's standing and progress toward unearned badges.
type StaffStats struct {
	LeaderboardEntry
	TotalStaff int
	// BadgeProgress maps each unearned count-based badge to percent complete.
	BadgeProgress map[string]float64
}

// LeaderboardService awards points to assignees and ranks operators.
type LeaderboardService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewLeaderboardService creates the service.
func NewLeaderboardService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{users: users, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to resolution and feedback events.
func (l *LeaderboardService) RegisterHandlers() {
	if l.dispatcher == nil {
		return
	}
	l.dispatcher.Subscribe(events.EventComplaintResolved, l.handleResolved)
	l.dispatcher.Subscribe(events.EventFeedbackSubmitted, l.handleFeedback)
}

// ResolutionPoints returns the award for resolving a complaint of priority p.
func ResolutionPoints(p domain.Priority, withinSLA bool) int {
	var points int
	switch p {
	case domain.PriorityCritical:
		points = PointsCritical
	case domain.PriorityHigh:
		points = PointsHigh
	case domain.PriorityMedium:
		points = PointsMedium
	default:
		points = PointsLow
	}
	if withinSLA {
		points += PointsWithinSLA
	}
	return points
}

// RatingPoints returns the award for a feedback rating.
func RatingPoints(rating int) int {
	switch rating {
	case 5:
		return PointsFiveStar
	case 4:
		return PointsFourStar
	}
	return 0
}

// Leaderboard ranks operators by points, then resolutions, then name.
func (l *LeaderboardService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	users, err := l.users.List(ctx)
	if err != nil {
		return nil, err
	}
	staff := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.IsOperator() {
			staff = append(staff, u)
		}
	}
	sort.SliceStable(staff, func(i, j int) bool {
		if staff[i].Points != staff[j].Points {
			return staff[i].Points > staff[j].Points
		}
		if staff[i].Resolved != staff[j].Resolved {
			return staff[i].Resolved > staff[j].Resolved
		}
		return staff[i].Name < staff[j].Name
	})
	if limit > 0 && len(staff) > limit {
		staff = staff[:limit]
	}

	entries := make([]LeaderboardEntry, 0, len(staff))
	for i := range staff {
		u := &staff[i]
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			UserID:        u.ID,
			Name:          u.Name,
			Points:        u.Points,
			Resolved:      u.Resolved,
			AverageRating: u.AverageRating(),
			Badges:        append([]string{}, u.Badges...),
		})
	}
	return entries, nil
}

func (l *LeaderboardService) handleResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintResolvedPayload)
	if !ok || payload.AssigneeID == "" {
		return nil
	}
	return l.award(ctx, payload.AssigneeID, func(u *domain.User) {
		u.Points += ResolutionPoints(payload.Priority, payload.WithinSLA)
		u.Resolved++
		if payload.WithinSLA {
			u.ResolvedWithinSLA++
		}
	})
}

func (l *LeaderboardService) handleFeedback(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FeedbackSubmittedPayload)
	if !ok || payload.AssigneeID == "" {
		return nil
	}
	return l.award(ctx, payload.AssigneeID, func(u *domain.User) {
		u.Points += RatingPoints(payload.Rating)
		u.RatingSum += payload.Rating
		u.RatingCount++
	})
}

// Stats returns userID's rank among operators and its badge progress.
func (l *LeaderboardService) Stats(ctx context.Context, userID string) (*StaffStats, error) {
	entries, err := l.Leaderboard(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		user, err := l.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &StaffStats{
			LeaderboardEntry: e,
			TotalStaff:       len(entries),
			BadgeProgress:    badgeProgress(user),
		}, nil
	}
	return nil, apperrors.NewNotFound("staff member", map[string]any{"id": userID})
}

func (l *LeaderboardService) award(ctx context.Context, userID string, apply func(*domain.User)) error {
	var earned []string
	_, err := l.users.Mutate(ctx, userID, func(u *domain.User) error {
		apply(u)
		earned = earnedBadges(u)
		u.Badges = append(u.Badges, earned...)
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		l.logger.Warn("assignee missing; no points awarded", zap.String("user_id", userID))
		return nil
	}
	if err != nil {
		return err
	}
	for _, badge := range earned {
		l.logger.Info("badge awarded", zap.String("user_id", userID), zap.String("badge", badge))
	}
	return nil
}

func earnedBadges(u *domain.User) []string {
	var earned []string
	if u.Resolved >= 100 && !u.HasBadge(BadgeCenturyClub) {
		earned = append(earned, BadgeCenturyClub)
	}
	if u.ResolvedWithinSLA >= 10 && !u.HasBadge(BadgeQuickResolve) {
		earned = append(earned, BadgeQuickResolve)
	}
	if u.Resolved >= 10 && u.RatingCount > 0 && u.AverageRating() >= 4.5 && !u.HasBadge(BadgeQualityExp) {
		earned = append(earned, BadgeQualityExp)
	}
	if u.Resolved >= 20 && u.RatingCount > 0 && u.AverageRating() >= 4.8 && !u.HasBadge(BadgeChampion) {
		earned = append(earned, BadgeChampion)
	}
	return earned
}

// badgeProgress covers the badges that depend only on counts.
func badgeProgress(u *domain.User) map[string]float64 {
	progress := map[string]float64{}
	if !u.HasBadge(BadgeCenturyClub) {
		progress[BadgeCenturyClub] = percentOf(u.Resolved, 100)
	}
	if !u.HasBadge(BadgeQuickResolve) {
		progress[BadgeQuickResolve] = percentOf(u.ResolvedWithinSLA, 10)
	}
	return progress
}

func percentOf(n, target int) float64 {
	return math.Min(100, float64(n)*100/float64(target))
}
