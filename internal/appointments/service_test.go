package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

func newTestScheduler(t *testing.T) (*Scheduler, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	scheduler, err := NewScheduler(repo, "08:00", "18:00", 30*time.Minute, logging.Default())
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}
	return scheduler, repo
}

func request(date, timeOfDay string) ScheduleRequest {
	return ScheduleRequest{
		LeadID:  "lead-1",
		Date:    date,
		Time:    timeOfDay,
		Urgency: UrgencyMedium,
	}
}

func TestScheduleSuccess(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	appt, err := scheduler.Schedule(context.Background(), request("2024-08-19", "10:00"))
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if appt.Status != StatusPending {
		t.Errorf("expected pending status, got %s", appt.Status)
	}
	if appt.VisitType != "technical-visit" {
		t.Errorf("expected default visit type, got %s", appt.VisitType)
	}
}

func TestScheduleRejectsWeekends(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	// 2024-08-17 is a Saturday, 2024-08-18 a Sunday.
	for _, date := range []string{"2024-08-17", "2024-08-18"} {
		if _, err := scheduler.Schedule(context.Background(), request(date, "10:00")); err != ErrWeekendNotAllowed {
			t.Errorf("date %s: expected ErrWeekendNotAllowed, got %v", date, err)
		}
	}
}

func TestScheduleBusinessHours(t *testing.T) {
	scheduler, _ := newTestScheduler(t)
	ctx := context.Background()

	for _, tc := range []struct {
		time string
		ok   bool
	}{
		{"07:59", false},
		{"08:00", true},
		{"18:00", true},
		{"18:01", false},
		{"23:30", false},
	} {
		_, err := scheduler.Schedule(ctx, request("2024-08-19", tc.time))
		if tc.ok && err != nil {
			t.Errorf("time %s: expected success, got %v", tc.time, err)
		}
		if !tc.ok && err != ErrOutsideBusinessHours {
			t.Errorf("time %s: expected ErrOutsideBusinessHours, got %v", tc.time, err)
		}
	}
}

func TestScheduleOverlapBuffer(t *testing.T) {
	scheduler, repo := newTestScheduler(t)
	ctx := context.Background()

	if _, err := scheduler.Schedule(ctx, request("2024-08-19", "10:00")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// 15 minutes away: inside the buffer, rejected.
	if _, err := scheduler.Schedule(ctx, request("2024-08-19", "10:15")); err != ErrSlotConflict {
		t.Fatalf("expected ErrSlotConflict for 15-minute gap, got %v", err)
	}

	// Conflict must leave prior state untouched.
	booked, _ := repo.ListByDate(ctx, "2024-08-19")
	if len(booked) != 1 {
		t.Fatalf("conflict should not create rows, found %d", len(booked))
	}

	// Exactly the buffer apart: accepted (exclusive boundary).
	if _, err := scheduler.Schedule(ctx, request("2024-08-19", "10:30")); err != nil {
		t.Fatalf("expected 30-minute gap to be accepted, got %v", err)
	}

	// 45 minutes from the closest booking: accepted.
	if _, err := scheduler.Schedule(ctx, request("2024-08-19", "11:15")); err != nil {
		t.Fatalf("expected 45-minute gap to be accepted, got %v", err)
	}

	// Same slot on another weekday is free.
	if _, err := scheduler.Schedule(ctx, request("2024-08-20", "10:00")); err != nil {
		t.Fatalf("expected other date to be free, got %v", err)
	}
}

func TestScheduleValidation(t *testing.T) {
	scheduler, _ := newTestScheduler(t)
	ctx := context.Background()

	if _, err := scheduler.Schedule(ctx, request("19-08-2024", "10:00")); err != ErrInvalidDate {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := scheduler.Schedule(ctx, request("2024-08-19", "10h30")); err != ErrInvalidTime {
		t.Errorf("expected ErrInvalidTime, got %v", err)
	}

	req := request("2024-08-19", "10:00")
	req.LeadID = ""
	if _, err := scheduler.Schedule(ctx, req); err != ErrMissingLead {
		t.Errorf("expected ErrMissingLead, got %v", err)
	}

	req = request("2024-08-19", "10:00")
	req.Urgency = "critical"
	if _, err := scheduler.Schedule(ctx, req); err != ErrInvalidUrgency {
		t.Errorf("expected ErrInvalidUrgency, got %v", err)
	}
}

func TestScheduleCancelledSlotReopens(t *testing.T) {
	scheduler, repo := newTestScheduler(t)
	ctx := context.Background()

	appt, err := scheduler.Schedule(ctx, request("2024-08-19", "10:00"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, appt.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := scheduler.Schedule(ctx, request("2024-08-19", "10:10")); err != nil {
		t.Fatalf("cancelled appointment should not block the slot, got %v", err)
	}
}

func TestScheduleConcurrentOverlapSingleWinner(t *testing.T) {
	scheduler, repo := newTestScheduler(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = scheduler.Schedule(context.Background(), request("2024-08-19", "10:00"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if err != ErrSlotConflict {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winner, got %d", succeeded)
	}
	booked, _ := repo.ListByDate(context.Background(), "2024-08-19")
	if len(booked) != 1 {
		t.Fatalf("expected one committed appointment, got %d", len(booked))
	}
}

func TestStatusTransitionRules(t *testing.T) {
	scheduler, repo := newTestScheduler(t)
	ctx := context.Background()

	appt, _ := scheduler.Schedule(ctx, request("2024-08-19", "10:00"))

	if _, err := repo.UpdateStatus(ctx, appt.ID, StatusCompleted); err != ErrInvalidTransition {
		t.Errorf("pending -> completed should fail, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, appt.ID, StatusConfirmed); err != nil {
		t.Errorf("pending -> confirmed should pass, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, appt.ID, StatusCompleted); err != nil {
		t.Errorf("confirmed -> completed should pass, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, appt.ID, StatusCancelled); err != ErrInvalidTransition {
		t.Errorf("completed -> cancelled should fail, got %v", err)
	}
}
