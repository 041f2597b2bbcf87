package appointments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists appointments. CreateIfFree must run the conflict
// scan and the insert as one atomic unit per date: of two concurrent
// requests for overlapping slots, exactly one may succeed.
type Repository interface {
	CreateIfFree(ctx context.Context, appt *Appointment, buffer time.Duration) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListByDate(ctx context.Context, date string) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error)
}

// InMemoryRepository is a mutex-serialized Repository for tests and local
// development. The single lock trivially gives the per-date atomicity the
// interface demands.
type InMemoryRepository struct {
	mu    sync.Mutex
	byID  map[string]*Appointment
	dates map[string][]string // date -> appointment ids
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:  make(map[string]*Appointment),
		dates: make(map[string][]string),
	}
}

// CreateIfFree books the slot unless a blocking appointment sits within
// the buffer. A gap of exactly the buffer is accepted.
func (r *InMemoryRepository) CreateIfFree(ctx context.Context, appt *Appointment, buffer time.Duration) (*Appointment, error) {
	requested, err := ParseMinutes(appt.Time)
	if err != nil {
		return nil, err
	}
	bufferMinutes := int(buffer.Minutes())

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.dates[appt.Date] {
		existing := r.byID[id]
		if !existing.Status.Blocking() {
			continue
		}
		booked, err := ParseMinutes(existing.Time)
		if err != nil {
			continue
		}
		delta := requested - booked
		if delta < 0 {
			delta = -delta
		}
		if delta < bufferMinutes {
			return nil, ErrSlotConflict
		}
	}

	created := *appt
	created.ID = uuid.NewString()
	created.Status = StatusPending
	created.CreatedAt = time.Now().UTC()
	r.byID[created.ID] = &created
	r.dates[created.Date] = append(r.dates[created.Date], created.ID)

	copied := created
	return &copied, nil
}

// GetByID retrieves an appointment.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

// ListByDate returns a date's appointments in booking order.
func (r *InMemoryRepository) ListByDate(ctx context.Context, date string) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*Appointment{}
	for _, id := range r.dates[date] {
		copied := *r.byID[id]
		out = append(out, &copied)
	}
	return out, nil
}

// UpdateStatus applies a lifecycle transition.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if !appt.Status.CanTransition(status) {
		return nil, ErrInvalidTransition
	}
	appt.Status = status
	copied := *appt
	return &copied, nil
}
