package appointments

import (
	"errors"
	"time"
)

var (
	// ErrInvalidDate is returned when the date is not YYYY-MM-DD
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidTime is returned when the time is not HH:MM
	ErrInvalidTime = errors.New("time must be HH:MM")

	// ErrInvalidUrgency is returned when urgency is outside low|medium|high
	ErrInvalidUrgency = errors.New("urgency must be low, medium or high")

	// ErrMissingLead is returned when the lead reference is absent
	ErrMissingLead = errors.New("lead id is required")

	// ErrOutsideBusinessHours is returned for times before opening or after closing
	ErrOutsideBusinessHours = errors.New("requested time is outside business hours")

	// ErrWeekendNotAllowed is returned for Saturday/Sunday dates
	ErrWeekendNotAllowed = errors.New("technical visits are scheduled Monday through Friday")

	// ErrSlotConflict is returned when another visit sits within the overlap buffer
	ErrSlotConflict = errors.New("another visit is already booked too close to that time")

	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned for status moves outside
	// pending -> confirmed -> completed|cancelled
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

// Urgency grades how soon the visit is needed.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether u is a recognized urgency.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Status is the appointment lifecycle state. Every appointment starts
// pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions holds the allowed lifecycle moves.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Blocking reports whether the appointment occupies its slot for conflict
// purposes.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment is a booked technical visit. Date is YYYY-MM-DD and Time is
// HH:MM, both in the business's local timezone.
type Appointment struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	VisitType string    `json:"visit_type"`
	Urgency   Urgency   `json:"urgency"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ParseDate validates and parses a YYYY-MM-DD date.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ParseMinutes validates an HH:MM clock time and returns minutes since
// midnight.
func ParseMinutes(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return t.Hour()*60 + t.Minute(), nil
}
