package service

import (
	"context"
	"time"

	"github.com/campusdesk/complaint-service/internal/classifier"
	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/repository"
	"github.com/campusdesk/complaint-service/internal/sla"
)

type seedComplaint struct {
	title       string
	description string
	priority    domain.Priority
	status      domain.ComplaintStatus
	age         time.Duration
	customerID  string
	assignee    string
}

var demoComplaints = []seedComplaint{
	{"Hostel wifi down for three days", "The wifi in block C is broken and support is slow. This is unacceptable.", domain.PriorityHigh, domain.StatusInProgress, 30 * time.Hour, "student-1", "staff-1"},
	{"Canteen food quality", "The food in the canteen is dirty and the staff was unhygienic", domain.PriorityMedium, domain.StatusNew, 5 * time.Hour, "student-2", ""},
	{"Seniors ragging in hostel", "Seniors keep bullying juniors at night in the hostel corridor.", domain.PriorityCritical, domain.StatusAssigned, 90 * time.Minute, "student-1", "staff-2"},
	{"Exam timetable clash", "Two exam papers are scheduled at the same time for the third semester.", domain.PriorityMedium, domain.StatusResolved, 50 * time.Hour, "student-2", "staff-2"},
	{"Library hours reduced", "Library now closes at 6pm, which is too early during exams.", domain.PriorityLow, domain.StatusClosed, 10 * 24 * time.Hour, "student-1", "staff-1"},
	{"Broken fan in classroom", "The fan in room 204 has been broken for a week.", domain.PriorityLow, domain.StatusNew, 8 * 24 * time.Hour, "student-2", ""},
}

// SeedDemoComplaints fills an empty store with a fixed set of complaints aged
// relative to clk. It is a no-op when the store already has data.
func SeedDemoComplaints(ctx context.Context, complaints repository.ComplaintRepository, users repository.UserRepository, clk clock.Clock) (int, error) {
	if n, err := complaints.Count(ctx); err != nil || n > 0 {
		return 0, err
	}
	now := clk.Now()
	local := classifier.NewLocal()
	for _, seed := range demoComplaints {
		created := now.Add(-seed.age)
		res, _ := local.Classify(ctx, seed.title+"\n"+seed.description)
		c := &domain.Complaint{
			Title:           seed.title,
			Description:     seed.description,
			Category:        res.Category,
			CategoryOrigin:  res.CategoryOrigin,
			Priority:        seed.priority,
			Status:          seed.status,
			Sentiment:       res.Sentiment,
			SentimentOrigin: res.SentimentOrigin,
			CreatedAt:       created,
			UpdatedAt:       created,
			SLADeadline:     sla.Deadline(seed.priority, created),
			CustomerID:      seed.customerID,
		}
		if owner, err := users.GetByID(ctx, seed.customerID); err == nil {
			c.CustomerName = owner.Name
		}
		if seed.assignee != "" {
			assignee := seed.assignee
			c.AssignedTo = &assignee
		}
		if sla.IsTerminal(seed.status) {
			resolved := created.Add(sla.Offset(seed.priority) / 2)
			c.ResolvedAt = &resolved
			c.UpdatedAt = resolved
		}
		if err := complaints.Create(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(demoComplaints), nil
}
