package leads

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresCreateMapsUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery("INSERT INTO leads").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "leads_tax_id_key"})

	req := validRequest()
	if _, err := repo.Create(context.Background(), &req); err != ErrDuplicateTaxID {
		t.Fatalf("expected ErrDuplicateTaxID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateReturnsLead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	createdAt := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO leads").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	req := validRequest()
	lead, err := repo.Create(context.Background(), &req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected generated id")
	}
	if !lead.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at from database, got %s", lead.CreatedAt)
	}
	if lead.Status != StatusNew {
		t.Errorf("expected new status, got %s", lead.Status)
	}
}

func TestPostgresStatsForMonth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT service_intent, status, COUNT").
		WithArgs(
			time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		).
		WillReturnRows(pgxmock.NewRows([]string{"service_intent", "status", "count"}).
			AddRow("certification-inspection", "new", 3).
			AddRow("certification-inspection", "scheduled", 2).
			AddRow("grounding-installation", "closed", 1))

	stats, err := repo.StatsForMonth(context.Background(), 2026, time.August)
	if err != nil {
		t.Fatalf("StatsForMonth returned error: %v", err)
	}
	if stats.Month != "2026-08" {
		t.Errorf("month = %q", stats.Month)
	}
	if stats.Total != 6 || stats.Scheduled != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByService["certification-inspection"] != 5 {
		t.Errorf("by_service = %+v", stats.ByService)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateValidatesBeforeInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	req := validRequest()
	req.TaxID = "short"
	if _, err := repo.Create(context.Background(), &req); err != ErrInvalidTaxID {
		t.Fatalf("expected ErrInvalidTaxID, got %v", err)
	}
	// No query should have reached the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database interaction: %v", err)
	}
}
