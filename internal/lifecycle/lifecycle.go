// Package lifecycle holds the complaint status state machine.
//
// Complaints move forward along NEW -> ASSIGNED -> IN_PROGRESS -> RESOLVED -> CLOSED.
// Any unsettled complaint may jump straight to RESOLVED ("Mark Resolved"), and a
// complaint nobody has started on may be closed early. Nothing moves backwards.
package lifecycle

import (
	"fmt"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	From domain.ComplaintStatus
	To   domain.ComplaintStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.StatusNew:        {domain.StatusAssigned, domain.StatusInProgress, domain.StatusResolved, domain.StatusClosed},
	domain.StatusAssigned:   {domain.StatusInProgress, domain.StatusResolved, domain.StatusClosed},
	domain.StatusInProgress: {domain.StatusResolved},
	domain.StatusResolved:   {domain.StatusClosed},
	domain.StatusClosed:     {},
}

// Allowed returns the statuses reachable from current in one step.
func Allowed(current domain.ComplaintStatus) []domain.ComplaintStatus {
	next := allowedTransitions[current]
	out := make([]domain.ComplaintStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether current -> next is permitted.
func CanTransition(current, next domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition validates current -> next and returns a *TransitionError when rejected.
func Transition(current, next domain.ComplaintStatus) error {
	if !next.Valid() || !CanTransition(current, next) {
		return &TransitionError{From: current, To: next}
	}
	return nil
}

// Effect returns the notification raised on entering status, if any.
func Effect(status domain.ComplaintStatus) (domain.NotificationType, bool) {
	switch status {
	case domain.StatusNew:
		return domain.NotificationInfo, true
	case domain.StatusResolved:
		return domain.NotificationSuccess, true
	}
	return "", false
}

// Progress returns the zero-based step of status on the NEW..RESOLVED track,
// used by progress widgets. CLOSED reports the final step.
func Progress(status domain.ComplaintStatus) int {
	switch status {
	case domain.StatusNew:
		return 0
	case domain.StatusAssigned:
		return 1
	case domain.StatusInProgress:
		return 2
	default:
		return 3
	}
}
