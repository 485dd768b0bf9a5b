package service

import (
	"context"
	"time"

	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/repository"
	"github.com/campusdesk/complaint-service/internal/sla"
)

// Summary aggregates the complaint store for dashboards.
type Summary struct {
	Total                  int
	ByStatus               map[domain.ComplaintStatus]int
	ByPriority             map[domain.Priority]int
	ByCategory             map[domain.Category]int
	BySentiment            map[domain.Sentiment]int
	Settled                int
	Breached               int
	ResolvedWithinSLA      int
	AverageResolutionHours float64
	AverageRating          float64
	SLA                    sla.Statistics
}

// ReportService computes summaries from the complaint store.
type ReportService struct {
	complaints repository.ComplaintRepository
	clock      clock.Clock
}

// NewReportService creates the service.
func NewReportService(complaints repository.ComplaintRepository, clk clock.Clock) *ReportService {
	if clk == nil {
		clk = clock.System()
	}
	return &ReportService{complaints: complaints, clock: clk}
}

// Summary aggregates every complaint as of now.
func (r *ReportService) Summary(ctx context.Context) (*Summary, error) {
	all, err := r.complaints.All(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(all, r.clock.Now()), nil
}

// SLAStatistics reports active complaints by SLA health.
func (r *ReportService) SLAStatistics(ctx context.Context) (sla.Statistics, error) {
	all, err := r.complaints.All(ctx)
	if err != nil {
		return sla.Statistics{}, err
	}
	return sla.Summarize(all, r.clock.Now()), nil
}

// Summarize is the pure aggregation behind Summary.
func Summarize(complaints []domain.Complaint, now time.Time) *Summary {
	s := &Summary{
		Total:       len(complaints),
		ByStatus:    make(map[domain.ComplaintStatus]int, len(domain.Statuses)),
		ByPriority:  make(map[domain.Priority]int, len(domain.Priorities)),
		ByCategory:  make(map[domain.Category]int, len(domain.Categories)),
		BySentiment: make(map[domain.Sentiment]int, len(domain.Sentiments)),
		SLA:         sla.Summarize(complaints, now),
	}
	for _, st := range domain.Statuses {
		s.ByStatus[st] = 0
	}
	for _, p := range domain.Priorities {
		s.ByPriority[p] = 0
	}

	var resolutionHours float64
	var resolvedTimed, ratingSum, ratingCount int
	for i := range complaints {
		c := &complaints[i]
		s.ByStatus[c.Status]++
		s.ByPriority[c.Priority]++
		s.ByCategory[c.Category]++
		s.BySentiment[c.Sentiment]++
		if sla.IsTerminal(c.Status) {
			s.Settled++
		}
		if sla.IsBreached(c, now) {
			s.Breached++
		}
		if c.ResolvedAt != nil {
			resolvedTimed++
			resolutionHours += c.ResolvedAt.Sub(c.CreatedAt).Hours()
			if !c.ResolvedAt.After(c.SLADeadline) {
				s.ResolvedWithinSLA++
			}
		}
		if c.Feedback != nil {
			ratingSum += c.Feedback.Rating
			ratingCount++
		}
	}
	if resolvedTimed > 0 {
		s.AverageResolutionHours = resolutionHours / float64(resolvedTimed)
	}
	if ratingCount > 0 {
		s.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	return s
}
