package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// Handler handles HTTP requests for appointments.
type Handler struct {
	scheduler *Scheduler
	repo      Repository
	logger    *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(scheduler *Scheduler, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{scheduler: scheduler, repo: repo, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	appt, err := h.scheduler.Schedule(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "slot_conflict"})
		case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidTime),
			errors.Is(err, ErrInvalidUrgency), errors.Is(err, ErrMissingLead),
			errors.Is(err, ErrOutsideBusinessHours), errors.Is(err, ErrWeekendNotAllowed):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "validation"})
		default:
			h.logger.Error("failed to schedule visit", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// ListByDateResponse is the day view for the operations calendar.
type ListByDateResponse struct {
	Date         string         `json:"date"`
	Appointments []*Appointment `json:"appointments"`
}

// ListByDate handles GET /api/appointments?date=YYYY-MM-DD (admin).
func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := ParseDate(date); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD", Kind: "validation"})
		return
	}

	appts, err := h.repo.ListByDate(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "date", date)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, ListByDateResponse{Date: date, Appointments: appts})
}

// statusRequest is the body for PATCH /api/appointments/{id}/status.
type statusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /api/appointments/{id}/status (admin).
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	appt, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		case errors.Is(err, ErrInvalidTransition):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "validation"})
		default:
			h.logger.Error("failed to update appointment status", "error", err, "id", id)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, appt)
}
