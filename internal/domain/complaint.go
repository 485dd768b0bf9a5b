package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusNew        ComplaintStatus = "NEW"
	StatusAssigned   ComplaintStatus = "ASSIGNED"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusClosed     ComplaintStatus = "CLOSED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []ComplaintStatus{StatusNew, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusNew, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority enumerates SLA urgency.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Sentiment is the coarse emotional tone attached at creation.
type Sentiment string

const (
	SentimentAngry      Sentiment = "ANGRY"
	SentimentFrustrated Sentiment = "FRUSTRATED"
	SentimentNeutral    Sentiment = "NEUTRAL"
	SentimentSatisfied  Sentiment = "SATISFIED"
)

// Sentiments lists every sentiment label.
var Sentiments = []Sentiment{SentimentAngry, SentimentFrustrated, SentimentNeutral, SentimentSatisfied}

// Valid reports whether s is a known sentiment.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentAngry, SentimentFrustrated, SentimentNeutral, SentimentSatisfied:
		return true
	}
	return false
}

// Category groups complaints by subject.
type Category string

const (
	CategorySexualHarassment Category = "Sexual Harassment"
	CategoryRagging          Category = "Ragging"
	CategoryAcademic         Category = "Academic Issues"
	CategoryInfrastructure   Category = "Infrastructure"
	CategoryCanteenHygiene   Category = "Canteen/Hygiene"
	CategoryStudentAffairs   Category = "Student Affairs"
	CategoryDiscrimination   Category = "Discrimination"
	CategoryOther            Category = "Other"
)

// Categories lists every category.
var Categories = []Category{
	CategorySexualHarassment,
	CategoryRagging,
	CategoryAcademic,
	CategoryInfrastructure,
	CategoryCanteenHygiene,
	CategoryStudentAffairs,
	CategoryDiscrimination,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Origin records where a derived field came from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
	OriginUser   Origin = "user"
)

// IncidentDetails is descriptive metadata with no invariants.
type IncidentDetails struct {
	StudentID     string
	Department    string
	Location      string
	ContactNumber string
	IncidentDate  *time.Time
}

// Feedback is the requester's rating once a complaint is settled.
type Feedback struct {
	Rating      int
	Comment     string
	SubmittedAt time.Time
}

// Complaint is the aggregate for a support ticket raised by a student.
type Complaint struct {
	ID              string
	Title           string
	Description     string
	Category        Category
	CategoryOrigin  Origin
	Priority        Priority
	Status          ComplaintStatus
	Sentiment       Sentiment
	SentimentOrigin Origin
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SLADeadline     time.Time
	ResolvedAt      *time.Time
	CustomerID      string
	CustomerName    string
	AssignedTo      *string
	Incident        IncidentDetails
	Feedback        *Feedback
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	if c.AssignedTo != nil {
		v := *c.AssignedTo
		out.AssignedTo = &v
	}
	if c.ResolvedAt != nil {
		v := *c.ResolvedAt
		out.ResolvedAt = &v
	}
	if c.Incident.IncidentDate != nil {
		v := *c.Incident.IncidentDate
		out.Incident.IncidentDate = &v
	}
	if c.Feedback != nil {
		v := *c.Feedback
		out.Feedback = &v
	}
	return &out
}
