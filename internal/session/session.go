package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// Stage is the current step of the qualification dialogue. The dialogue
// only moves forward; the single exception is an explicit restart.
type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageServiceID      Stage = "service-identification"
	StageSpecification  Stage = "specification-gathering"
	StageDataCollection Stage = "data-collection"
	StageQuoting        Stage = "quoting"
	StageScheduling     Stage = "scheduling"
	StageClosed         Stage = "closed"
)

// Turn is one message/response exchange.
type Turn struct {
	Message  string    `json:"message"`
	Response string    `json:"response"`
	At       time.Time `json:"at"`
}

// Slots holds the information collected across the dialogue. Zero values
// mean "not yet collected".
type Slots struct {
	BusinessType string  `json:"business_type,omitempty"`
	AreaSqMeters float64 `json:"area_sq_meters,omitempty"`
	Location     string  `json:"location,omitempty"`
	Name         string  `json:"name,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	TaxID        string  `json:"tax_id,omitempty"`
}

// Session is the ephemeral conversation state for one visitor. It expires
// by store TTL; there is no explicit destroy.
type Session struct {
	ID        string               `json:"id"`
	Stage     Stage                `json:"stage"`
	Intent    intent.ServiceIntent `json:"service_intent"`
	Slots     Slots                `json:"slots"`
	LeadID    string               `json:"lead_id,omitempty"`
	QuoteID   string               `json:"quote_id,omitempty"`
	History   []Turn               `json:"history"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// New creates a fresh session at the greeting stage.
func New() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Stage:     StageGreeting,
		Intent:    intent.ServiceUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records an exchange, keeping at most maxHistory entries so the
// stored context stays bounded.
func (s *Session) AppendTurn(message, response string, maxHistory int) {
	s.History = append(s.History, Turn{
		Message:  message,
		Response: response,
		At:       time.Now().UTC(),
	})
	if maxHistory > 0 && len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
	s.UpdatedAt = time.Now().UTC()
}

// Restart resets the dialogue to greeting, clearing slots and any resolved
// intent while preserving the session identity.
func (s *Session) Restart() {
	s.Stage = StageGreeting
	s.Intent = intent.ServiceUnknown
	s.Slots = Slots{}
	s.LeadID = ""
	s.QuoteID = ""
	s.UpdatedAt = time.Now().UTC()
}
