package intake

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tesla-electricidad/intake-engine/internal/appointments"
	"github.com/tesla-electricidad/intake-engine/internal/catalog"
	"github.com/tesla-electricidad/intake-engine/internal/dialogue"
	"github.com/tesla-electricidad/intake-engine/internal/intent"
	"github.com/tesla-electricidad/intake-engine/internal/leads"
	"github.com/tesla-electricidad/intake-engine/internal/observability/metrics"
	"github.com/tesla-electricidad/intake-engine/internal/quotes"
	"github.com/tesla-electricidad/intake-engine/internal/session"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

var intakeTracer = otel.Tracer("intake.internal.intake")

const replyInternalError = "Lo siento, tuvimos un problema procesando tu mensaje. " +
	"Por favor inténtalo de nuevo en unos minutos."

// Notifier alerts the operations team about a new lead. Implementations
// must be safe for concurrent use; the orchestrator calls it from a
// goroutine so a slow provider never delays the chat reply.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *leads.Lead, quote *quotes.Quote)
}

// TurnRequest is one inbound visitor message.
type TurnRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	Message     string `json:"message"`
	ServiceHint string `json:"service_hint,omitempty"`
}

// TurnResult is what the chat endpoint returns for a turn.
type TurnResult struct {
	SessionID     string               `json:"session_id"`
	Stage         session.Stage        `json:"stage"`
	ServiceIntent intent.ServiceIntent `json:"service_intent"`
	Response      string               `json:"response"`
	LeadID        string               `json:"lead_id,omitempty"`
	QuoteID       string               `json:"quote_id,omitempty"`
	AppointmentID string               `json:"appointment_id,omitempty"`
}

// Orchestrator drives a conversation turn end to end: advance the state
// machine, run whatever side effect the new stage demands (quote,
// booking), and persist the session.
type Orchestrator struct {
	sessions   session.Store
	machine    *dialogue.Machine
	catalog    *catalog.Catalog
	leads      leads.Repository
	quotes     quotes.Repository
	calculator *quotes.Calculator
	scheduler  *appointments.Scheduler
	transcript *TranscriptStore
	notifier   Notifier
	metrics    *metrics.IntakeMetrics
	logger     *logging.Logger
	maxHistory int
}

// OrchestratorDeps carries the orchestrator's collaborators. Transcript,
// Notifier and Metrics are optional.
type OrchestratorDeps struct {
	Sessions   session.Store
	Catalog    *catalog.Catalog
	Leads      leads.Repository
	Quotes     quotes.Repository
	Calculator *quotes.Calculator
	Scheduler  *appointments.Scheduler
	Transcript *TranscriptStore
	Notifier   Notifier
	Metrics    *metrics.IntakeMetrics
	Logger     *logging.Logger
	MaxHistory int
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Sessions == nil {
		panic("intake: session store is required")
	}
	if deps.Catalog == nil {
		panic("intake: catalog is required")
	}
	if deps.Leads == nil || deps.Quotes == nil || deps.Calculator == nil {
		panic("intake: lead and quote dependencies are required")
	}
	if deps.Scheduler == nil {
		panic("intake: scheduler is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.New("info")
	}
	if deps.MaxHistory <= 0 {
		deps.MaxHistory = 20
	}
	return &Orchestrator{
		sessions:   deps.Sessions,
		machine:    dialogue.NewMachine(deps.Catalog),
		catalog:    deps.Catalog,
		leads:      deps.Leads,
		quotes:     deps.Quotes,
		calculator: deps.Calculator,
		scheduler:  deps.Scheduler,
		transcript: deps.Transcript,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		maxHistory: deps.MaxHistory,
	}
}

// HandleTurn processes one visitor message and returns the reply. An
// unknown or absent session ID starts a fresh conversation.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	ctx, span := intakeTracer.Start(ctx, "intake.HandleTurn")
	defer span.End()
	started := time.Now()

	sess, err := o.resolveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))

	res := o.machine.Advance(sess, req.Message, intent.Parse(req.ServiceHint))
	response := res.Response
	var appointmentID string

	switch {
	case res.LeadReady:
		response = o.produceQuote(ctx, sess)
	case res.Visit != nil:
		response, appointmentID = o.bookVisit(ctx, sess, res.Visit)
	}

	sess.AppendTurn(req.Message, response, o.maxHistory)
	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	if err := o.transcript.LogTurn(ctx, sess.ID, string(sess.Stage), string(sess.Intent), req.Message, response); err != nil {
		o.logger.Error("transcript write failed", "error", err, "session_id", sess.ID)
	}
	o.metrics.ObserveTurn(string(sess.Stage), string(sess.Intent))
	o.metrics.ObserveTurnLatency(string(sess.Stage), time.Since(started).Seconds())

	return &TurnResult{
		SessionID:     sess.ID,
		Stage:         sess.Stage,
		ServiceIntent: sess.Intent,
		Response:      response,
		LeadID:        sess.LeadID,
		QuoteID:       sess.QuoteID,
		AppointmentID: appointmentID,
	}, nil
}

func (o *Orchestrator) resolveSession(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return session.New(), nil
	}
	sess, err := o.sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		// Expired or bogus ID: start over rather than erroring the chat.
		return session.New(), nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// produceQuote creates the lead (or picks up the existing one for a
// returning RUC), prices the service, and hands the conversation to
// scheduling. The session only leaves the quoting stage once a quote is
// persisted, so any failure retries the missing side effect on the next
// message.
func (o *Orchestrator) produceQuote(ctx context.Context, sess *session.Session) string {
	entry, _ := o.catalog.Lookup(sess.Intent)

	if sess.LeadID != "" {
		// An earlier attempt created the lead. Reuse its newest quote,
		// or price again if the insert never went through.
		qs, err := o.quotes.ListByLead(ctx, sess.LeadID)
		if err != nil {
			o.logger.Error("quote lookup failed", "error", err, "session_id", sess.ID)
			return replyInternalError
		}
		if len(qs) > 0 {
			sess.QuoteID = qs[0].ID
			sess.Stage = session.StageScheduling
			return dialogue.RenderQuote(*qs[0], entry)
		}
		quote, err := o.priceLead(ctx, sess, sess.LeadID)
		if err != nil {
			return replyInternalError
		}
		sess.Stage = session.StageScheduling
		o.metrics.ObserveQuote(string(sess.Intent))
		o.notifyLead(ctx, sess.LeadID, quote)
		return dialogue.RenderQuote(*quote, entry)
	}

	lead, err := o.createLead(ctx, sess)
	if err != nil {
		o.logger.Error("lead creation failed", "error", err, "session_id", sess.ID)
		return replyInternalError
	}
	sess.LeadID = lead.ID
	quote, err := o.priceLead(ctx, sess, lead.ID)
	if err != nil {
		return replyInternalError
	}
	sess.Stage = session.StageScheduling
	o.metrics.ObserveQuote(string(sess.Intent))
	o.logger.Info("quote produced",
		"session_id", sess.ID, "lead_id", lead.ID, "quote_id", quote.ID,
		"service_intent", string(sess.Intent), "total", quote.TotalAmount)

	if o.notifier != nil {
		go o.notifier.NotifyNewLead(context.WithoutCancel(ctx), lead, quote)
	}
	return dialogue.RenderQuote(*quote, entry)
}

// priceLead computes and persists a quote for the session's service.
func (o *Orchestrator) priceLead(ctx context.Context, sess *session.Session, leadID string) (*quotes.Quote, error) {
	quote, err := o.calculator.Calculate(sess.Intent, sess.Slots.AreaSqMeters, sess.Slots.BusinessType)
	if err != nil {
		o.logger.Error("quote calculation failed", "error", err, "session_id", sess.ID)
		return nil, err
	}
	quote.LeadID = leadID
	if err := o.quotes.Insert(ctx, quote); err != nil {
		o.logger.Error("quote persistence failed", "error", err, "session_id", sess.ID)
		return nil, err
	}
	sess.QuoteID = quote.ID
	return quote, nil
}

// notifyLead fires the notifier for a lead created on a previous, failed
// attempt, now that its quote exists.
func (o *Orchestrator) notifyLead(ctx context.Context, leadID string, quote *quotes.Quote) {
	if o.notifier == nil {
		return
	}
	lead, err := o.leads.GetByID(ctx, leadID)
	if err != nil {
		o.logger.Error("lead lookup for notification failed", "error", err, "lead_id", leadID)
		return
	}
	go o.notifier.NotifyNewLead(context.WithoutCancel(ctx), lead, quote)
}

func (o *Orchestrator) createLead(ctx context.Context, sess *session.Session) (*leads.Lead, error) {
	lead, err := o.leads.Create(ctx, &leads.CreateLeadRequest{
		Name:          sess.Slots.Name,
		TaxID:         sess.Slots.TaxID,
		Phone:         sess.Slots.Phone,
		BusinessType:  sess.Slots.BusinessType,
		Address:       sess.Slots.Location,
		AreaSqMeters:  sess.Slots.AreaSqMeters,
		ServiceIntent: sess.Intent,
	})
	if errors.Is(err, leads.ErrDuplicateTaxID) {
		// Returning customer: continue the conversation on their record.
		return o.leads.GetByTaxID(ctx, sess.Slots.TaxID)
	}
	return lead, err
}

// bookVisit attempts the requested slot. A conflict or validation error
// keeps the conversation in the scheduling stage for another try.
func (o *Orchestrator) bookVisit(ctx context.Context, sess *session.Session, visit *dialogue.VisitRequest) (string, string) {
	appt, err := o.scheduler.Schedule(ctx, appointments.ScheduleRequest{
		LeadID: sess.LeadID,
		Date:   visit.Date,
		Time:   visit.Time,
	})
	if err != nil {
		outcome := "rejected"
		if errors.Is(err, appointments.ErrSlotConflict) {
			outcome = "conflict"
		}
		o.metrics.ObserveBooking(outcome)
		o.logger.Info("booking attempt failed",
			"session_id", sess.ID, "date", visit.Date, "time", visit.Time, "error", err)
		return dialogue.RenderScheduleError(err), ""
	}

	sess.Stage = session.StageClosed
	o.metrics.ObserveBooking("booked")
	if _, err := o.leads.UpdateStatus(ctx, sess.LeadID, leads.StatusScheduled); err != nil {
		o.logger.Error("lead status update failed", "error", err, "lead_id", sess.LeadID)
	}
	return dialogue.RenderBooked(*appt), appt.ID
}
