package dto

import (
	"time"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/lifecycle"
	"github.com/campusdesk/complaint-service/internal/sla"
)

// IncidentDetails is optional descriptive metadata.
type IncidentDetails struct {
	StudentID     string     `json:"student_id,omitempty"`
	Department    string     `json:"department,omitempty"`
	Location      string     `json:"location,omitempty"`
	ContactNumber string     `json:"contact_number,omitempty"`
	IncidentDate  *time.Time `json:"incident_date,omitempty"`
}

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    domain.Category `json:"category"`
	Priority    domain.Priority `json:"priority"`
	Incident    IncidentDetails `json:"incident"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ComplaintStatus `json:"status"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// FeedbackResponse is the stored rating.
type FeedbackResponse struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ComplaintResponse includes SLA state derived at response time.
type ComplaintResponse struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Category        domain.Category          `json:"category"`
	CategoryOrigin  domain.Origin            `json:"category_origin"`
	Priority        domain.Priority          `json:"priority"`
	Status          domain.ComplaintStatus   `json:"status"`
	Sentiment       domain.Sentiment         `json:"sentiment"`
	SentimentOrigin domain.Origin            `json:"sentiment_origin"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	SLADeadline     time.Time                `json:"sla_deadline"`
	ResolvedAt      *time.Time               `json:"resolved_at,omitempty"`
	CustomerID      string                   `json:"customer_id"`
	CustomerName    string                   `json:"customer_name"`
	AssignedTo      *string                  `json:"assigned_to,omitempty"`
	Incident        IncidentDetails          `json:"incident"`
	Feedback        *FeedbackResponse        `json:"feedback,omitempty"`
	Breached        bool                     `json:"sla_breached"`
	NearBreach      bool                     `json:"sla_near_breach"`
	RemainingSecs   int64                    `json:"sla_remaining_seconds"`
	Progress        int                      `json:"progress"`
	NextStatuses    []domain.ComplaintStatus `json:"next_statuses"`
}

// ComplaintListResponse is one page of complaints.
type ComplaintListResponse struct {
	Items      []ComplaintResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// NewComplaintResponse maps a complaint as seen at now.
func NewComplaintResponse(c *domain.Complaint, now time.Time) ComplaintResponse {
	resp := ComplaintResponse{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		CategoryOrigin:  c.CategoryOrigin,
		Priority:        c.Priority,
		Status:          c.Status,
		Sentiment:       c.Sentiment,
		SentimentOrigin: c.SentimentOrigin,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		SLADeadline:     c.SLADeadline,
		ResolvedAt:      c.ResolvedAt,
		CustomerID:      c.CustomerID,
		CustomerName:    c.CustomerName,
		AssignedTo:      c.AssignedTo,
		Incident: IncidentDetails{
			StudentID:     c.Incident.StudentID,
			Department:    c.Incident.Department,
			Location:      c.Incident.Location,
			ContactNumber: c.Incident.ContactNumber,
			IncidentDate:  c.Incident.IncidentDate,
		},
		Breached:      sla.IsBreached(c, now),
		NearBreach:    sla.IsNearBreach(c, now),
		RemainingSecs: int64(sla.TimeRemaining(c, now) / time.Second),
		Progress:      lifecycle.Progress(c.Status),
		NextStatuses:  lifecycle.Allowed(c.Status),
	}
	if c.Feedback != nil {
		resp.Feedback = &FeedbackResponse{
			Rating:      c.Feedback.Rating,
			Comment:     c.Feedback.Comment,
			SubmittedAt: c.Feedback.SubmittedAt,
		}
	}
	return resp
}

// ToIncident converts request metadata to the domain shape.
func (d IncidentDetails) ToIncident() domain.IncidentDetails {
	return domain.IncidentDetails{
		StudentID:     d.StudentID,
		Department:    d.Department,
		Location:      d.Location,
		ContactNumber: d.ContactNumber,
		IncidentDate:  d.IncidentDate,
	}
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	Internal bool   `json:"internal"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		Content:   c.Content,
		Internal:  c.Internal,
		CreatedAt: c.CreatedAt,
	}
}

// ClassifyRequest asks for a preview classification of draft text.
type ClassifyRequest struct {
	Text       string          `json:"text"`
	Category   domain.Category `json:"category"`
	Generation uint64          `json:"generation"`
}

// ClassifyResponse is the preview result. Superseded previews should be ignored.
type ClassifyResponse struct {
	Sentiment       domain.Sentiment `json:"sentiment"`
	SentimentOrigin domain.Origin    `json:"sentiment_origin"`
	Category        domain.Category  `json:"category"`
	CategoryOrigin  domain.Origin    `json:"category_origin"`
	Generation      uint64           `json:"generation"`
	Superseded      bool             `json:"superseded"`
}
