package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// PgxDB is the subset of pgxpool.Pool the repository needs; satisfied by
// pgxmock in tests.
type PgxDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores appointments in Postgres.
type PostgresRepository struct {
	db     PgxDB
	logger *logging.Logger
}

// NewPostgresRepository initializes the repo.
func NewPostgresRepository(db PgxDB, logger *logging.Logger) *PostgresRepository {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// CreateIfFree books a slot inside one transaction. An advisory lock keyed
// by the calendar date serializes concurrent bookings for that date, so the
// conflict scan and the insert cannot interleave with another request's.
func (r *PostgresRepository) CreateIfFree(ctx context.Context, appt *Appointment, buffer time.Duration) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin failed: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Error("appointments: rollback failed", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, appt.Date); err != nil {
		return nil, fmt.Errorf("appointments: date lock failed: %w", err)
	}

	var conflicts int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE visit_date = $1
		  AND status IN ('pending', 'confirmed')
		  AND ABS(EXTRACT(EPOCH FROM (visit_time - $2::time))) < $3`,
		appt.Date, appt.Time, buffer.Seconds(),
	).Scan(&conflicts); err != nil {
		return nil, fmt.Errorf("appointments: conflict scan failed: %w", err)
	}
	if conflicts > 0 {
		return nil, ErrSlotConflict
	}

	id := uuid.New()
	var createdAt time.Time
	if err := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, lead_id, visit_date, visit_time, visit_type, urgency, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
		RETURNING created_at`,
		id, appt.LeadID, appt.Date, appt.Time, appt.VisitType, string(appt.Urgency), appt.Notes,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit failed: %w", err)
	}

	created := *appt
	created.ID = id.String()
	created.Status = StatusPending
	created.CreatedAt = createdAt
	return &created, nil
}

const apptColumns = `id, lead_id, to_char(visit_date, 'YYYY-MM-DD'),
	to_char(visit_time, 'HH24:MI'), visit_type, urgency, status, notes, created_at`

// GetByID fetches an appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// ListByDate returns a date's appointments ordered by visit time.
func (r *PostgresRepository) ListByDate(ctx context.Context, date string) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE visit_date = $1 ORDER BY visit_time`, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// UpdateStatus applies a lifecycle transition guarded by the current
// status, so a concurrent transition cannot be silently overwritten.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(status) {
		return nil, ErrInvalidTransition
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2 AND status = $3`,
		string(status), id, string(current.Status))
	if err != nil {
		return nil, fmt.Errorf("appointments: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrInvalidTransition
	}
	current.Status = status
	return current, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var urgency, status string
	if err := row.Scan(
		&appt.ID,
		&appt.LeadID,
		&appt.Date,
		&appt.Time,
		&appt.VisitType,
		&urgency,
		&status,
		&appt.Notes,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	appt.Urgency = Urgency(urgency)
	appt.Status = Status(status)
	return &appt, nil
}
