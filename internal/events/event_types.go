package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated  EventType = "complaint.created"
	EventComplaintAssigned EventType = "complaint.assigned"
	EventStatusChanged     EventType = "complaint.status_changed"
	EventComplaintResolved EventType = "complaint.resolved"
	EventFeedbackSubmitted EventType = "complaint.feedback_submitted"
	EventCommentAdded      EventType = "complaint.comment_added"
	EventSLAWarning        EventType = "complaint.sla_warning"
	EventSLABreached       EventType = "complaint.sla_breached"
)

// AllTypes lists every event type, for subscribers that want everything.
var AllTypes = []EventType{
	EventComplaintCreated,
	EventComplaintAssigned,
	EventStatusChanged,
	EventComplaintResolved,
	EventFeedbackSubmitted,
	EventCommentAdded,
	EventSLAWarning,
	EventSLABreached,
}

// Actor identifies who caused an event. Empty for system events.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaint_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// New builds an event with a fresh id.
func New(t EventType, complaintID string, actor Actor, at time.Time, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		ComplaintID: complaintID,
		Actor:       actor,
		Timestamp:   at,
		Payload:     payload,
	}
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Title          string           `json:"title"`
	Category       domain.Category  `json:"category"`
	Priority       domain.Priority  `json:"priority"`
	Sentiment      domain.Sentiment `json:"sentiment"`
	CustomerID     string           `json:"customer_id"`
	SLADeadline    time.Time        `json:"sla_deadline"`
	CategoryOrigin domain.Origin    `json:"category_origin"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// ComplaintResolvedPayload payload.
type ComplaintResolvedPayload struct {
	Priority   domain.Priority `json:"priority"`
	AssigneeID string          `json:"assignee_id,omitempty"`
	WithinSLA  bool            `json:"within_sla"`
	ResolvedAt time.Time       `json:"resolved_at"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	Rating     int    `json:"rating"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	Internal    bool   `json:"internal"`
	BodyPreview string `json:"body_preview"`
}

// SLAPayload is carried by warning and breach events.
type SLAPayload struct {
	Priority    domain.Priority `json:"priority"`
	SLADeadline time.Time       `json:"sla_deadline"`
	Remaining   time.Duration   `json:"remaining"`
}
