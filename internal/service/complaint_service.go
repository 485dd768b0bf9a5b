package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/classifier"
	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/events"
	"github.com/campusdesk/complaint-service/internal/lifecycle"
	"github.com/campusdesk/complaint-service/internal/query"
	"github.com/campusdesk/complaint-service/internal/repository"
	"github.com/campusdesk/complaint-service/internal/sla"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

// Recorder receives complaint counters.
type Recorder interface {
	ComplaintCreated(priority domain.Priority, category domain.Category)
	StatusChanged(from, to domain.ComplaintStatus)
}

type noopRecorder struct{}

func (noopRecorder) ComplaintCreated(domain.Priority, domain.Category) {}
func (noopRecorder) StatusChanged(domain.ComplaintStatus, domain.ComplaintStatus) {}

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	classifier *classifier.Composite
	tracker    *classifier.Tracker
	clock      clock.Clock
	dispatcher events.Dispatcher
	recorder   Recorder
	logger     *zap.Logger

	viewsMu sync.Mutex
	views   map[string]*query.View
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	CommentRepo   repository.CommentRepository
	UserRepo      repository.UserRepository
	Classifier    *classifier.Composite
	Clock         clock.Clock
	Dispatcher    events.Dispatcher
	Recorder      Recorder
	Logger        *zap.Logger
}

// CreateComplaintInput describes a new complaint. Category is optional; when
// set it is kept as given instead of the classifier's suggestion.
type CreateComplaintInput struct {
	Title       string
	Description string
	Category    domain.Category
	Priority    domain.Priority
	Incident    domain.IncidentDetails
}

// ComplaintPage is one page of a filtered listing.
type ComplaintPage struct {
	Items      []domain.Complaint
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	s := &ComplaintService{
		complaints: deps.ComplaintRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		classifier: deps.Classifier,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		recorder:   deps.Recorder,
		logger:     deps.Logger,
		views:      make(map[string]*query.View),
	}
	if s.classifier == nil {
		s.classifier = classifier.NewComposite(nil, deps.Logger, nil)
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	if s.recorder == nil {
		s.recorder = noopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.tracker = classifier.NewTracker(s.classifier)
	return s
}

// Create files a complaint for actor.
func (s *ComplaintService) Create(ctx context.Context, actor *domain.User, in CreateComplaintInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	details := map[string]any{}
	if title == "" {
		details["title"] = "required"
	}
	if description == "" {
		details["description"] = "required"
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		details["priority"] = "must be one of Low, Medium, High, Critical"
	}
	if in.Category != "" && !in.Category.Valid() {
		details["category"] = "unknown category"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid complaint", details)
	}

	result := s.classifier.ClassifyWithCategory(ctx, title+"\n"+description, in.Category)

	now := s.clock.Now()
	complaint := &domain.Complaint{
		Title:           title,
		Description:     description,
		Category:        result.Category,
		CategoryOrigin:  result.CategoryOrigin,
		Priority:        priority,
		Status:          domain.StatusNew,
		Sentiment:       result.Sentiment,
		SentimentOrigin: result.SentimentOrigin,
		CreatedAt:       now,
		UpdatedAt:       now,
		SLADeadline:     sla.Deadline(priority, now),
		CustomerID:      actor.ID,
		CustomerName:    actor.Name,
		Incident:        in.Incident,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}
	// The draft is submitted; its preview session ends here.
	s.tracker.Forget(actor.ID)

	s.recorder.ComplaintCreated(complaint.Priority, complaint.Category)
	s.publishEvent(ctx, events.New(events.EventComplaintCreated, complaint.ID, actorOf(actor), now,
		events.ComplaintCreatedPayload{
			Title:          complaint.Title,
			Category:       complaint.Category,
			Priority:       complaint.Priority,
			Sentiment:      complaint.Sentiment,
			CustomerID:     complaint.CustomerID,
			SLADeadline:    complaint.SLADeadline,
			CategoryOrigin: complaint.CategoryOrigin,
		}))
	return complaint, nil
}

// Get returns a complaint visible to actor.
func (s *ComplaintService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Complaint, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, complaint) {
		return nil, apperrors.NewForbidden("complaint belongs to another student")
	}
	return complaint, nil
}

// List filters and paginates complaints. Students only ever see their own.
// A page number of 0 returns the page actor last viewed for the same filter;
// any change of filter or page size starts again at page 1.
func (s *ComplaintService) List(ctx context.Context, actor *domain.User, f query.Filter, p query.Page) (*ComplaintPage, error) {
	if !actor.IsOperator() {
		f.CustomerID = actor.ID
	}
	if query.IsActive(f.Status) && !domain.ComplaintStatus(strings.ToUpper(strings.TrimSpace(f.Status))).Valid() {
		return nil, apperrors.NewValidationError("unknown status filter", map[string]any{"status": f.Status})
	}
	if query.IsActive(f.Sentiment) && !domain.Sentiment(strings.ToUpper(strings.TrimSpace(f.Sentiment))).Valid() {
		return nil, apperrors.NewValidationError("unknown sentiment filter", map[string]any{"sentiment": f.Sentiment})
	}
	p = s.rememberPage(actor.ID, f, p)
	items, total, err := s.complaints.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &ComplaintPage{
		Items:      items,
		Total:      total,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: query.TotalPages(total, p.Size),
	}, nil
}

// SetStatus moves a complaint through the lifecycle. The transition is
// checked against the stored status inside the write.
func (s *ComplaintService) SetStatus(ctx context.Context, actor *domain.User, id string, next domain.ComplaintStatus) (*domain.Complaint, error) {
	if !actor.IsOperator() {
		return nil, apperrors.NewForbidden("students cannot change complaint status")
	}
	now := s.clock.Now()
	var previous domain.ComplaintStatus
	complaint, err := s.complaints.Mutate(ctx, strings.TrimSpace(id), func(c *domain.Complaint) error {
		previous = c.Status
		if err := lifecycle.Transition(previous, next); err != nil {
			return err
		}
		c.Status = next
		c.UpdatedAt = now
		if next == domain.StatusResolved {
			c.ResolvedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, s.mapMissing(err, id)
	}

	s.recorder.StatusChanged(previous, next)
	s.publishEvent(ctx, events.New(events.EventStatusChanged, complaint.ID, actorOf(actor), now,
		events.StatusChangedPayload{OldStatus: previous, NewStatus: next}))
	if next == domain.StatusResolved {
		s.publishEvent(ctx, events.New(events.EventComplaintResolved, complaint.ID, actorOf(actor), now,
			events.ComplaintResolvedPayload{
				Priority:   complaint.Priority,
				AssigneeID: deref(complaint.AssignedTo),
				WithinSLA:  !now.After(complaint.SLADeadline),
				ResolvedAt: now,
			}))
	}
	return complaint, nil
}

// Assign hands a complaint to a staff member. A NEW complaint becomes ASSIGNED.
func (s *ComplaintService) Assign(ctx context.Context, actor *domain.User, id, assigneeID string) (*domain.Complaint, error) {
	if !actor.IsOperator() {
		return nil, apperrors.NewForbidden("students cannot assign complaints")
	}
	assignee, err := s.users.GetByID(ctx, strings.TrimSpace(assigneeID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("unknown assignee", map[string]any{"assignee_id": assigneeID})
		}
		return nil, err
	}
	if !assignee.IsOperator() {
		return nil, apperrors.NewValidationError("assignee must be staff or admin", map[string]any{"assignee_id": assigneeID})
	}

	now := s.clock.Now()
	var previous domain.ComplaintStatus
	complaint, err := s.complaints.Mutate(ctx, strings.TrimSpace(id), func(c *domain.Complaint) error {
		previous = c.Status
		if sla.IsTerminal(c.Status) {
			return apperrors.NewConflict("complaint is already settled", map[string]any{"status": c.Status})
		}
		c.AssignedTo = &assignee.ID
		c.UpdatedAt = now
		if previous == domain.StatusNew {
			c.Status = domain.StatusAssigned
		}
		return nil
	})
	if err != nil {
		return nil, s.mapMissing(err, id)
	}

	s.publishEvent(ctx, events.New(events.EventComplaintAssigned, complaint.ID, actorOf(actor), now,
		events.ComplaintAssignedPayload{AssigneeID: assignee.ID}))
	if complaint.Status != previous {
		s.recorder.StatusChanged(previous, complaint.Status)
		s.publishEvent(ctx, events.New(events.EventStatusChanged, complaint.ID, actorOf(actor), now,
			events.StatusChangedPayload{OldStatus: previous, NewStatus: complaint.Status}))
	}
	return complaint, nil
}

// AttachFeedback records the owner's rating of a settled complaint. It is
// write-once: of several concurrent submissions exactly one is stored.
func (s *ComplaintService) AttachFeedback(ctx context.Context, actor *domain.User, id string, rating int, comment string) (*domain.Complaint, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	now := s.clock.Now()
	complaint, err := s.complaints.Mutate(ctx, strings.TrimSpace(id), func(c *domain.Complaint) error {
		if c.CustomerID != actor.ID {
			return apperrors.NewForbidden("only the complainant can leave feedback")
		}
		if !sla.IsTerminal(c.Status) {
			return apperrors.NewValidationError("feedback requires a resolved or closed complaint",
				map[string]any{"status": c.Status})
		}
		if c.Feedback != nil {
			return apperrors.NewConflict("feedback already submitted", map[string]any{"id": id})
		}
		c.Feedback = &domain.Feedback{
			Rating:      rating,
			Comment:     strings.TrimSpace(comment),
			SubmittedAt: now,
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.mapMissing(err, id)
	}

	s.publishEvent(ctx, events.New(events.EventFeedbackSubmitted, complaint.ID, actorOf(actor), now,
		events.FeedbackSubmittedPayload{Rating: rating, AssigneeID: deref(complaint.AssignedTo)}))
	return complaint, nil
}

// AddComment appends to a complaint thread. Only operators may post internal notes.
func (s *ComplaintService) AddComment(ctx context.Context, actor *domain.User, id, content string, internal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment cannot be empty", map[string]any{"content": "required"})
	}
	if internal && !actor.IsOperator() {
		return nil, apperrors.NewForbidden("students cannot post internal notes")
	}
	complaint, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:          uuid.NewString(),
		ComplaintID: complaint.ID,
		UserID:      actor.ID,
		UserName:    actor.Name,
		Content:     content,
		Internal:    internal,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.New(events.EventCommentAdded, complaint.ID, actorOf(actor), comment.CreatedAt,
		events.CommentAddedPayload{
			CommentID:   comment.ID,
			Internal:    comment.Internal,
			BodyPreview: stringPreview(comment.Content, 120),
		}))
	return comment, nil
}

// ListComments returns the thread; internal notes are hidden from students.
func (s *ComplaintService) ListComments(ctx context.Context, actor *domain.User, id string) ([]domain.Comment, error) {
	complaint, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}
	if actor.IsOperator() {
		return comments, nil
	}
	visible := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if !c.Internal {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// PreviewClassification classifies draft text for actor's form. A newer
// generation from the same actor supersedes older in-flight previews.
func (s *ComplaintService) PreviewClassification(ctx context.Context, actor *domain.User, generation uint64, text string, preset domain.Category) classifier.Outcome {
	return s.tracker.Classify(ctx, actor.ID, generation, text, preset)
}

// All returns every complaint; used by reports and the SLA monitor.
func (s *ComplaintService) All(ctx context.Context) ([]domain.Complaint, error) {
	return s.complaints.All(ctx)
}

func (s *ComplaintService) rememberPage(actorID string, f query.Filter, p query.Page) query.Page {
	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	view, ok := s.views[actorID]
	if !ok {
		view = query.NewView(f, p.Size)
		s.views[actorID] = view
	}
	view.SetFilter(f)
	view.SetSize(p.Size)
	if p.Number > 0 {
		view.SetPage(p.Number)
	}
	return view.Page()
}

func (s *ComplaintService) load(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, s.mapMissing(err, id)
	}
	return complaint, nil
}

func (s *ComplaintService) mapMissing(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return err
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func canView(actor *domain.User, c *domain.Complaint) bool {
	return actor.IsOperator() || c.CustomerID == actor.ID
}

func actorOf(u *domain.User) events.Actor {
	if u == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: u.ID, Role: u.Role}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stringPreview(body string, max int) string {
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	return string(runes[:max]) + "..."
}
