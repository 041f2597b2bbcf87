package appointments

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

func TestPostgresCreateIfFreeBooks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock, logging.Default())

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectCommit()
	mock.ExpectRollback()

	appt, err := repo.CreateIfFree(context.Background(), &Appointment{
		LeadID:    "c0ffee00-0000-0000-0000-000000000001",
		Date:      "2024-08-19",
		Time:      "10:00",
		VisitType: "technical-visit",
		Urgency:   UrgencyMedium,
	}, 30*time.Minute)
	if err != nil {
		t.Fatalf("CreateIfFree returned error: %v", err)
	}
	if appt.Status != StatusPending {
		t.Errorf("expected pending, got %s", appt.Status)
	}
	if appt.ID == "" {
		t.Error("expected generated id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateIfFreeConflictRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock, logging.Default())

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err = repo.CreateIfFree(context.Background(), &Appointment{
		LeadID: "c0ffee00-0000-0000-0000-000000000001",
		Date:   "2024-08-19",
		Time:   "10:15",
	}, 30*time.Minute)
	if err != ErrSlotConflict {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
