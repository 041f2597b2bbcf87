package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// uniqueViolation is the Postgres error code raised by the leads_tax_id_key
// constraint.
const uniqueViolation = "23505"

// PgxDB is the subset of pgxpool.Pool the repository needs; satisfied by
// pgxmock in tests.
type PgxDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db PgxDB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db PgxDB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row. Uniqueness of the RUC rides the database
// constraint, so concurrent submissions cannot both pass a pre-check.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO leads (id, name, tax_id, phone, email, business_type, address,
		    area_sq_meters, has_operating_license, service_intent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.TaxID,
		req.Phone,
		req.Email,
		req.BusinessType,
		req.Address,
		req.AreaSqMeters,
		req.HasOperatingLicense,
		string(req.ServiceIntent),
		string(StatusNew),
	).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateTaxID
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return &Lead{
		ID:                  id.String(),
		Name:                req.Name,
		TaxID:               req.TaxID,
		Phone:               req.Phone,
		Email:               req.Email,
		BusinessType:        req.BusinessType,
		Address:             req.Address,
		AreaSqMeters:        req.AreaSqMeters,
		HasOperatingLicense: req.HasOperatingLicense,
		ServiceIntent:       req.ServiceIntent,
		Status:              StatusNew,
		CreatedAt:           createdAt,
	}, nil
}

const leadColumns = `id, name, tax_id, phone, email, business_type, address,
	area_sq_meters, has_operating_license, service_intent, status, created_at`

// GetByID fetches a lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// GetByTaxID fetches a lead by its RUC.
func (r *PostgresRepository) GetByTaxID(ctx context.Context, taxID string) (*Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE tax_id = $1`, taxID)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Lead, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// UpdateStatus advances the pipeline status, rejecting backward moves.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(status) {
		return nil, ErrInvalidStatus
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2 AND status = $3`,
		string(status), id, string(current.Status))
	if err != nil {
		return nil, fmt.Errorf("leads: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost a race with another transition; the guard re-runs on retry.
		return nil, ErrInvalidStatus
	}
	current.Status = status
	return current, nil
}

// StatsForMonth aggregates lead counts for one calendar month with a
// single grouped scan.
func (r *PostgresRepository) StatsForMonth(ctx context.Context, year int, month time.Month) (*MonthlyStats, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := r.db.Query(ctx,
		`SELECT service_intent, status, COUNT(*) FROM leads
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY service_intent, status`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("leads: stats query failed: %w", err)
	}
	defer rows.Close()

	stats := &MonthlyStats{
		Month:     fmt.Sprintf("%04d-%02d", year, int(month)),
		ByService: make(map[string]int),
	}
	for rows.Next() {
		var svc, status string
		var count int
		if err := rows.Scan(&svc, &status, &count); err != nil {
			return nil, fmt.Errorf("leads: stats scan failed: %w", err)
		}
		stats.Total += count
		stats.ByService[svc] += count
		if Status(status) == StatusScheduled || Status(status) == StatusClosed {
			stats.Scheduled += count
		}
	}
	return stats, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	var svc, status string
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.TaxID,
		&lead.Phone,
		&lead.Email,
		&lead.BusinessType,
		&lead.Address,
		&lead.AreaSqMeters,
		&lead.HasOperatingLicense,
		&svc,
		&status,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	lead.ServiceIntent = intent.Parse(svc)
	lead.Status = Status(status)
	return &lead, nil
}
