package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/config"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/events"
	"github.com/campusdesk/complaint-service/internal/lifecycle"
	"github.com/campusdesk/complaint-service/internal/repository"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

// NotificationService turns domain events into the in-app feed and stub deliveries.
type NotificationService struct {
	dispatcher events.Dispatcher
	feed       repository.NotificationRepository
	clock      clock.Clock
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, feed repository.NotificationRepository, clk clock.Clock, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		feed:       feed,
		clock:      clk,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintResolved, n.handleComplaintResolved)
	n.dispatcher.Subscribe(events.EventComplaintAssigned, n.handleComplaintAssigned)
	n.dispatcher.Subscribe(events.EventSLAWarning, n.handleSLAWarning)
	n.dispatcher.Subscribe(events.EventSLABreached, n.handleSLABreached)
}

// List returns the feed newest first.
func (n *NotificationService) List(ctx context.Context) ([]domain.Notification, error) {
	return n.feed.List(ctx)
}

// MarkRead flags a notification as seen.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := n.feed.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	kind, _ := lifecycle.Effect(domain.StatusNew)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return n.push(ctx, event, kind, fmt.Sprintf("New complaint %s filed", event.ComplaintID))
}

func (n *NotificationService) handleComplaintResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintResolved", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	kind, _ := lifecycle.Effect(domain.StatusResolved)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return n.push(ctx, event, kind, fmt.Sprintf("Complaint %s resolved", event.ComplaintID))
}

func (n *NotificationService) handleComplaintAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintAssigned", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSLAWarning(ctx context.Context, event events.Event) error {
	n.logger.Warn("SLAWarning", zap.String("complaint_id", event.ComplaintID))
	return n.push(ctx, event, domain.NotificationAlert, fmt.Sprintf("Complaint %s is close to its SLA deadline", event.ComplaintID))
}

func (n *NotificationService) handleSLABreached(ctx context.Context, event events.Event) error {
	n.logger.Warn("SLABreached", zap.String("complaint_id", event.ComplaintID))
	n.sendWebhookNotificationStub(ctx, event)
	return n.push(ctx, event, domain.NotificationAlert, fmt.Sprintf("Complaint %s breached its SLA", event.ComplaintID))
}

func (n *NotificationService) push(ctx context.Context, event events.Event, kind domain.NotificationType, message string) error {
	if n.feed == nil {
		return nil
	}
	return n.feed.Create(ctx, &domain.Notification{
		ID:          uuid.NewString(),
		ComplaintID: event.ComplaintID,
		Message:     message,
		Type:        kind,
		CreatedAt:   n.clock.Now(),
	})
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
