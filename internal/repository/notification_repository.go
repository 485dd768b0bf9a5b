package repository

import (
	"context"
	"sync"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// NotificationRepository stores the in-app notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type memoryNotificationRepository struct {
	mu    sync.RWMutex
	items []domain.Notification
}

// NewMemoryNotificationRepository returns an in-process feed.
func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{}
}

func (r *memoryNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]domain.Notification{*n}, r.items...)
	return nil
}

// List returns notifications newest first.
func (r *memoryNotificationRepository) List(_ context.Context) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Notification{}, r.items...), nil
}

func (r *memoryNotificationRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}
