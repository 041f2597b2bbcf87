package quotes

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// Repository persists quotes. Insert only; quotes are never updated.
type Repository interface {
	Insert(ctx context.Context, q *Quote) error
	ListByLead(ctx context.Context, leadID string) ([]*Quote, error)
}

// PgxDB is the slice of pgxpool.Pool the repository uses.
type PgxDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores quotes in Postgres.
type PostgresRepository struct {
	db PgxDB
}

// NewPostgresRepository initializes the repo.
func NewPostgresRepository(db PgxDB) *PostgresRepository {
	if db == nil {
		panic("quotes: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Insert appends a quote row.
func (r *PostgresRepository) Insert(ctx context.Context, q *Quote) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quotes (id, lead_id, service_intent, area_sq_meters,
		    base_amount, adjustment_factor, total_amount, validity_days, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.LeadID, string(q.ServiceIntent), q.AreaSqMeters,
		q.BaseAmount, q.AdjustmentFactor, q.TotalAmount, q.ValidityDays, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("quotes: insert failed: %w", err)
	}
	return nil
}

// ListByLead returns a lead's quotes newest first.
func (r *PostgresRepository) ListByLead(ctx context.Context, leadID string) ([]*Quote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(lead_id::text, ''), service_intent, area_sq_meters,
		    base_amount, adjustment_factor, total_amount, validity_days, created_at
		FROM quotes WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("quotes: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Quote{}
	for rows.Next() {
		var q Quote
		var svc string
		if err := rows.Scan(&q.ID, &q.LeadID, &svc, &q.AreaSqMeters,
			&q.BaseAmount, &q.AdjustmentFactor, &q.TotalAmount, &q.ValidityDays, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("quotes: scan failed: %w", err)
		}
		q.ServiceIntent = intent.Parse(svc)
		out = append(out, &q)
	}
	return out, rows.Err()
}

// InMemoryRepository holds quotes in memory for tests and local runs.
type InMemoryRepository struct {
	mu     sync.Mutex
	quotes []*Quote
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Insert appends a copy of the quote.
func (r *InMemoryRepository) Insert(ctx context.Context, q *Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *q
	r.quotes = append(r.quotes, &copied)
	return nil
}

// ListByLead filters stored quotes newest first.
func (r *InMemoryRepository) ListByLead(ctx context.Context, leadID string) ([]*Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Quote{}
	for i := len(r.quotes) - 1; i >= 0; i-- {
		if r.quotes[i].LeadID == leadID {
			copied := *r.quotes[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}
