package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/query"
)

// complaintIDLock serialises id allocation across API replicas.
const complaintIDLock = 0x434d50

const complaintColumns = `id, title, description, category, category_origin, priority, status,
        sentiment, sentiment_origin, created_at, updated_at, sla_deadline, resolved_at,
        customer_id, customer_name, assigned_to, student_id, department, location,
        contact_number, incident_date, feedback_rating, feedback_comment, feedback_submitted_at`

type postgresComplaintRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresComplaintRepository returns a pgx-backed store.
func NewPostgresComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &postgresComplaintRepository{pool: pool}
}

func (r *postgresComplaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, complaintIDLock); err != nil {
		return err
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&count); err != nil {
		return err
	}
	c.ID = ComplaintID(c.CreatedAt, count+1)

	const insert = `
        INSERT INTO complaints (` + complaintColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`
	if _, err := tx.Exec(ctx, insert, complaintArgs(c)...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresComplaintRepository) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *postgresComplaintRepository) Mutate(ctx context.Context, id string, fn func(*domain.Complaint) error) (*domain.Complaint, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1 FOR UPDATE`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}

	const update = `
        UPDATE complaints SET status=$1, updated_at=$2, resolved_at=$3, assigned_to=$4,
            feedback_rating=$5, feedback_comment=$6, feedback_submitted_at=$7
        WHERE id=$8`
	rating, comment, submitted := feedbackArgs(c.Feedback)
	if _, err := tx.Exec(ctx, update,
		c.Status,
		c.UpdatedAt,
		c.ResolvedAt,
		c.AssignedTo,
		rating,
		comment,
		submitted,
		id,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (r *postgresComplaintRepository) List(ctx context.Context, f query.Filter, p query.Page) ([]domain.Complaint, int, error) {
	where, args := complaintWhere(f)
	p = p.Normalize()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	stmt := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		complaintColumns, where, p.Size, p.Offset())
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := scanComplaints(rows)
	return items, total, err
}

func (r *postgresComplaintRepository) All(ctx context.Context) ([]domain.Complaint, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *postgresComplaintRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&n)
	return n, err
}

// complaintWhere mirrors query.Filter.Matches in SQL.
func complaintWhere(f query.Filter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if query.IsActive(f.Status) {
		args = append(args, strings.ToUpper(strings.TrimSpace(f.Status)))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if query.IsActive(f.Sentiment) {
		args = append(args, strings.ToUpper(strings.TrimSpace(f.Sentiment)))
		clauses = append(clauses, fmt.Sprintf("sentiment=$%d", len(args)))
	}
	if query.IsActive(f.Assignee) {
		args = append(args, f.Assignee)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if query.IsActive(f.CustomerID) {
		args = append(args, f.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(id) LIKE %s OR LOWER(title) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

func complaintArgs(c *domain.Complaint) []any {
	rating, comment, submitted := feedbackArgs(c.Feedback)
	return []any{
		c.ID,
		c.Title,
		c.Description,
		c.Category,
		c.CategoryOrigin,
		c.Priority,
		c.Status,
		c.Sentiment,
		c.SentimentOrigin,
		c.CreatedAt,
		c.UpdatedAt,
		c.SLADeadline,
		c.ResolvedAt,
		c.CustomerID,
		c.CustomerName,
		c.AssignedTo,
		c.Incident.StudentID,
		c.Incident.Department,
		c.Incident.Location,
		c.Incident.ContactNumber,
		c.Incident.IncidentDate,
		rating,
		comment,
		submitted,
	}
}

func feedbackArgs(fb *domain.Feedback) (*int, *string, *time.Time) {
	if fb == nil {
		return nil, nil, nil
	}
	return &fb.Rating, &fb.Comment, &fb.SubmittedAt
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var (
		c         domain.Complaint
		rating    *int
		comment   *string
		submitted *time.Time
	)
	if err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.CategoryOrigin,
		&c.Priority,
		&c.Status,
		&c.Sentiment,
		&c.SentimentOrigin,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.SLADeadline,
		&c.ResolvedAt,
		&c.CustomerID,
		&c.CustomerName,
		&c.AssignedTo,
		&c.Incident.StudentID,
		&c.Incident.Department,
		&c.Incident.Location,
		&c.Incident.ContactNumber,
		&c.Incident.IncidentDate,
		&rating,
		&comment,
		&submitted,
	); err != nil {
		return nil, err
	}
	if rating != nil && submitted != nil {
		c.Feedback = &domain.Feedback{Rating: *rating, SubmittedAt: *submitted}
		if comment != nil {
			c.Feedback.Comment = *comment
		}
	}
	return &c, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
