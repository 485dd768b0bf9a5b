package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/query"
)

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newComplaint(title string) *domain.Complaint {
	return &domain.Complaint{
		Title:     title,
		Status:    domain.StatusNew,
		Sentiment: domain.SentimentNeutral,
		Priority:  domain.PriorityMedium,
		CreatedAt: created,
	}
}

func TestMemoryCreateAssignsSequentialIDsNewestFirst(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()

	first := newComplaint("first")
	require.NoError(t, repo.Create(ctx, first))
	second := newComplaint("second")
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, "CMP-2024-00001", first.ID)
	assert.Equal(t, "CMP-2024-00002", second.ID)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
	assert.Equal(t, "first", all[1].Title)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryGetReturnsCopies(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	c := newComplaint("leaky tap")
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	got.Status = domain.StatusClosed
	staff := "staff-1"
	got.AssignedTo = &staff

	again, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, again.Status)
	assert.Nil(t, again.AssignedTo)
}

func TestMemoryMutateAndMissing(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	c := newComplaint("broken chair")
	require.NoError(t, repo.Create(ctx, c))

	updated, err := repo.Mutate(ctx, c.ID, func(stored *domain.Complaint) error {
		stored.Status = domain.StatusAssigned
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, updated.Status)
	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, got.Status)

	rejected := errors.New("rejected")
	_, err = repo.Mutate(ctx, c.ID, func(stored *domain.Complaint) error {
		stored.Status = domain.StatusClosed
		return rejected
	})
	assert.ErrorIs(t, err, rejected)
	got, err = repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, got.Status)

	_, err = repo.Get(ctx, "CMP-2024-99999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Mutate(ctx, "CMP-2024-99999", func(*domain.Complaint) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryMutateSerialisesWriters(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	c := newComplaint("queue at the library")
	require.NoError(t, repo.Create(ctx, c))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, c.ID, func(stored *domain.Complaint) error {
				if stored.Feedback != nil {
					stored.Feedback.Rating++
					return nil
				}
				stored.Feedback = &domain.Feedback{Rating: 1}
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, 32, got.Feedback.Rating)
}

func TestMemoryListFiltersAndPages(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		c := newComplaint("routine")
		if i%3 == 0 {
			c.Status = domain.StatusResolved
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	items, total, err := repo.List(ctx, query.Filter{Status: "RESOLVED"}, query.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 2)
	assert.Equal(t, "CMP-2024-00010", items[0].ID)

	items, total, err = repo.List(ctx, query.Filter{SearchTerm: "cmp-2024-0001"}, query.Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)
}

func TestMemoryConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newComplaint("parallel")
			if assert.NoError(t, repo.Create(ctx, c)) {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestComplaintWhereMirrorsFilter(t *testing.T) {
	where, args := complaintWhere(query.Filter{Status: "ALL", Sentiment: "angry", SearchTerm: " Wifi "})
	assert.Equal(t, "1=1 AND sentiment=$1 AND (LOWER(id) LIKE $2 OR LOWER(title) LIKE $2)", where)
	assert.Equal(t, []any{"ANGRY", "%wifi%"}, args)

	where, args = complaintWhere(query.Filter{})
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestComplaintIDUsesCreationYear(t *testing.T) {
	assert.Equal(t, "CMP-2025-00204", ComplaintID(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), 204))
}
