// Package sla maps priorities to resolution deadlines and evaluates breach state.
package sla

import (
	"time"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// WarningThreshold is the elapsed fraction of the SLA window after which a
// complaint counts as nearing breach.
const WarningThreshold = 0.75

// Offset returns the resolution window for a priority. Unknown priorities get
// the Low window.
func Offset(priority domain.Priority) time.Duration {
	switch priority {
	case domain.PriorityCritical:
		return 2 * time.Hour
	case domain.PriorityHigh:
		return 24 * time.Hour
	case domain.PriorityMedium:
		return 3 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Deadline computes the absolute SLA deadline for a complaint created at createdAt.
func Deadline(priority domain.Priority, createdAt time.Time) time.Time {
	return createdAt.Add(Offset(priority))
}

// IsTerminal reports whether a status stops the SLA clock.
func IsTerminal(status domain.ComplaintStatus) bool {
	return status == domain.StatusResolved || status == domain.StatusClosed
}

// IsBreached reports whether now is past the deadline of an unsettled complaint.
func IsBreached(c *domain.Complaint, now time.Time) bool {
	if c == nil || IsTerminal(c.Status) {
		return false
	}
	return now.After(c.SLADeadline)
}

// IsNearBreach reports whether an unsettled, not yet breached complaint has used
// at least WarningThreshold of its window.
func IsNearBreach(c *domain.Complaint, now time.Time) bool {
	if c == nil || IsTerminal(c.Status) || !now.Before(c.SLADeadline) {
		return false
	}
	total := c.SLADeadline.Sub(c.CreatedAt)
	if total <= 0 {
		return false
	}
	elapsed := now.Sub(c.CreatedAt)
	return float64(elapsed)/float64(total) >= WarningThreshold
}

// TimeRemaining returns the time left before the deadline, never negative.
func TimeRemaining(c *domain.Complaint, now time.Time) time.Duration {
	if c == nil || now.After(c.SLADeadline) {
		return 0
	}
	return c.SLADeadline.Sub(now)
}

// Statistics summarises SLA compliance across active complaints.
type Statistics struct {
	TotalActive    int
	OnTrack        int
	NearBreach     int
	Breached       int
	ComplianceRate float64
}

// Summarize computes Statistics over the given complaints at time now.
// Only complaints outside terminal states count as active.
func Summarize(complaints []domain.Complaint, now time.Time) Statistics {
	var stats Statistics
	for i := range complaints {
		c := &complaints[i]
		if IsTerminal(c.Status) {
			continue
		}
		stats.TotalActive++
		switch {
		case IsBreached(c, now):
			stats.Breached++
		case IsNearBreach(c, now):
			stats.NearBreach++
		default:
			stats.OnTrack++
		}
	}
	stats.ComplianceRate = 100
	if stats.TotalActive > 0 {
		stats.ComplianceRate = float64(stats.OnTrack) / float64(stats.TotalActive) * 100
	}
	return stats
}
