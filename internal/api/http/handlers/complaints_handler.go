package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/complaint-service/internal/api/dto"
	"github.com/campusdesk/complaint-service/internal/auth"
	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/query"
	"github.com/campusdesk/complaint-service/internal/service"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
	clock   clock.Clock
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService, clk clock.Clock) *ComplaintsHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &ComplaintsHandler{service: complaintService, clock: clk}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.service.Create(c.UserContext(), principal.User, service.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Incident:    req.Incident.ToIncident(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint, h.clock.Now())})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	filter := query.Filter{
		Status:     c.Query("status"),
		Sentiment:  c.Query("sentiment"),
		Assignee:   c.Query("assignee"),
		SearchTerm: c.Query("search"),
	}
	page := query.Page{
		Number: parseInt(c.Query("page"), 0),
		Size:   parseInt(c.Query("page_size"), query.DefaultPageSize),
	}

	result, err := h.service.List(c.UserContext(), principal.User, filter, page)
	if err != nil {
		return err
	}
	now := h.clock.Now()
	items := make([]dto.ComplaintResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, dto.NewComplaintResponse(&result.Items[i], now))
	}
	return c.JSON(fiber.Map{"data": dto.ComplaintListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.Get(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint, h.clock.Now())})
}

// UpdateStatus PATCH /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	complaint, err := h.service.SetStatus(c.UserContext(), principal.User, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint, h.clock.Now())})
}

// Assign PATCH /complaints/:id/assign.
func (h *ComplaintsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.Assign(c.UserContext(), principal.User, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint, h.clock.Now())})
}

// Feedback POST /complaints/:id/feedback.
func (h *ComplaintsHandler) Feedback(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.AttachFeedback(c.UserContext(), principal.User, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint, h.clock.Now())})
}

// AddComment POST /complaints/:id/comments.
func (h *ComplaintsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), principal.User, c.Params("id"), req.Content, req.Internal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// ListComments GET /complaints/:id/comments.
func (h *ComplaintsHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	comments, err := h.service.ListComments(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Classify POST /classify previews sentiment and category for draft text.
func (h *ComplaintsHandler) Classify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Category != "" && !req.Category.Valid() {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": req.Category})
	}
	out := h.service.PreviewClassification(c.UserContext(), principal.User, req.Generation, req.Text, req.Category)
	return c.JSON(fiber.Map{"data": dto.ClassifyResponse{
		Sentiment:       out.Sentiment,
		SentimentOrigin: out.SentimentOrigin,
		Category:        out.Category,
		CategoryOrigin:  out.CategoryOrigin,
		Generation:      out.Generation,
		Superseded:      out.Superseded,
	}})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
