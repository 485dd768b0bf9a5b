package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// CommentRepository manages complaint thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Comment, error)
}

type memoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[string][]domain.Comment
}

// NewMemoryCommentRepository returns an in-process comment store.
func NewMemoryCommentRepository() CommentRepository {
	return &memoryCommentRepository{comments: make(map[string][]domain.Comment)}
}

func (r *memoryCommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[comment.ComplaintID] = append(r.comments[comment.ComplaintID], *comment)
	return nil
}

// ListByComplaint returns comments oldest first.
func (r *memoryCommentRepository) ListByComplaint(_ context.Context, complaintID string) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Comment{}, r.comments[complaintID]...), nil
}

type postgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentRepository builds a pgx-backed comment store.
func NewPostgresCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &postgresCommentRepository{pool: pool}
}

func (r *postgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO complaint_comments (id, complaint_id, user_id, user_name, content, internal, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.ComplaintID,
		comment.UserID,
		comment.UserName,
		comment.Content,
		comment.Internal,
		comment.CreatedAt,
	)
	return err
}

func (r *postgresCommentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, complaint_id, user_id, user_name, content, internal, created_at
        FROM complaint_comments WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID,
			&c.ComplaintID,
			&c.UserID,
			&c.UserName,
			&c.Content,
			&c.Internal,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
