package appointments

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

var schedulerTracer = otel.Tracer("intake.internal.appointments")

// ScheduleRequest asks for a technical visit.
type ScheduleRequest struct {
	LeadID    string  `json:"lead_id"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	VisitType string  `json:"visit_type"`
	Urgency   Urgency `json:"urgency"`
	Notes     string  `json:"notes"`
}

// Scheduler validates visit requests against business rules and books them
// through the repository's atomic slot check.
type Scheduler struct {
	repo        Repository
	openMinutes int
	closeMin    int
	buffer      time.Duration
	logger      *logging.Logger
}

// NewScheduler constructs a scheduler. open and close are HH:MM; both
// boundary times are themselves bookable.
func NewScheduler(repo Repository, open, close string, buffer time.Duration, logger *logging.Logger) (*Scheduler, error) {
	if repo == nil {
		panic("appointments: repository required")
	}
	openMinutes, err := ParseMinutes(open)
	if err != nil {
		return nil, err
	}
	closeMinutes, err := ParseMinutes(close)
	if err != nil {
		return nil, err
	}
	if buffer <= 0 {
		buffer = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		repo:        repo,
		openMinutes: openMinutes,
		closeMin:    closeMinutes,
		buffer:      buffer,
		logger:      logger,
	}, nil
}

// Buffer returns the configured overlap buffer.
func (s *Scheduler) Buffer() time.Duration {
	return s.buffer
}

// Schedule validates the request and books the visit as pending. Rule
// failures are never silently corrected; the caller re-prompts. A slot
// conflict leaves all existing bookings untouched.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (*Appointment, error) {
	ctx, span := schedulerTracer.Start(ctx, "appointments.schedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("intake.lead_id", req.LeadID),
		attribute.String("intake.visit_date", req.Date),
	)

	if req.LeadID == "" {
		return nil, ErrMissingLead
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	minutes, err := ParseMinutes(req.Time)
	if err != nil {
		return nil, err
	}

	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil, ErrWeekendNotAllowed
	}
	if minutes < s.openMinutes || minutes > s.closeMin {
		return nil, ErrOutsideBusinessHours
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = UrgencyMedium
	}
	if !urgency.Valid() {
		return nil, ErrInvalidUrgency
	}

	visitType := req.VisitType
	if visitType == "" {
		visitType = "technical-visit"
	}

	appt, err := s.repo.CreateIfFree(ctx, &Appointment{
		LeadID:    req.LeadID,
		Date:      req.Date,
		Time:      req.Time,
		VisitType: visitType,
		Urgency:   urgency,
		Notes:     req.Notes,
	}, s.buffer)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("visit booked",
		"appointment_id", appt.ID,
		"lead_id", appt.LeadID,
		"date", appt.Date,
		"time", appt.Time,
	)
	return appt, nil
}
