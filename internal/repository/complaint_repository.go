package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/query"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ComplaintRepository encapsulates complaint persistence. Lists are newest first.
type ComplaintRepository interface {
	// Create assigns the next complaint id and stores c.
	Create(ctx context.Context, c *domain.Complaint) error
	Get(ctx context.Context, id string) (*domain.Complaint, error)
	// Mutate applies fn to the current state of complaint id and stores the
	// result. No other write to id runs between the read and the store; when
	// fn returns an error nothing is written and the error is returned as is.
	Mutate(ctx context.Context, id string, fn func(*domain.Complaint) error) (*domain.Complaint, error)
	List(ctx context.Context, f query.Filter, p query.Page) ([]domain.Complaint, int, error)
	All(ctx context.Context) ([]domain.Complaint, error)
	Count(ctx context.Context) (int, error)
}

// ComplaintID formats the id of the seq-th complaint filed in createdAt's year.
func ComplaintID(createdAt time.Time, seq int) string {
	return fmt.Sprintf("CMP-%d-%05d", createdAt.Year(), seq)
}

type memoryComplaintRepository struct {
	mu    sync.RWMutex
	items []*domain.Complaint
	byID  map[string]*domain.Complaint
}

// NewMemoryComplaintRepository returns the default in-process store.
func NewMemoryComplaintRepository() ComplaintRepository {
	return &memoryComplaintRepository{byID: make(map[string]*domain.Complaint)}
}

func (r *memoryComplaintRepository) Create(_ context.Context, c *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = ComplaintID(c.CreatedAt, len(r.items)+1)
	if _, exists := r.byID[c.ID]; exists {
		return fmt.Errorf("complaint %s already exists", c.ID)
	}
	stored := c.Clone()
	r.items = append([]*domain.Complaint{stored}, r.items...)
	r.byID[c.ID] = stored
	return nil
}

func (r *memoryComplaintRepository) Get(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (r *memoryComplaintRepository) Mutate(_ context.Context, id string, fn func(*domain.Complaint) error) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = stored.ID
	*stored = *working.Clone()
	return working, nil
}

func (r *memoryComplaintRepository) List(_ context.Context, f query.Filter, p query.Page) ([]domain.Complaint, int, error) {
	items, total := query.Apply(r.snapshot(), f, p)
	return items, total, nil
}

func (r *memoryComplaintRepository) All(_ context.Context) ([]domain.Complaint, error) {
	return r.snapshot(), nil
}

func (r *memoryComplaintRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *memoryComplaintRepository) snapshot() []domain.Complaint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Complaint, len(r.items))
	for i, c := range r.items {
		out[i] = *c.Clone()
	}
	return out
}
