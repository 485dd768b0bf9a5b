package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// UserRepository defines access to dashboard accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// Mutate applies fn to user id under the store's write lock.
	Mutate(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMemoryUserRepository returns an in-process account store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) Mutate(_ context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := cloneUser(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	r.users[id] = cloneUser(working)
	return working, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// List returns users ordered by id.
func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.Badges = append([]string(nil), u.Badges...)
	return &out
}
