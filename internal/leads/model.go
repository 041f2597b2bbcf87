package leads

import (
	"strings"
	"time"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// Status tracks a lead through the sales pipeline.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusScheduled Status = "scheduled"
	StatusClosed    Status = "closed"
)

// statusOrder drives the forward-only pipeline check.
var statusOrder = map[Status]int{
	StatusNew:       0,
	StatusContacted: 1,
	StatusScheduled: 2,
	StatusClosed:    3,
}

// CanTransition reports whether s may move to next. Skipping ahead is
// allowed (a chat booking can go new -> scheduled), moving backward is not.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// Lead is a qualified contact. TaxID (RUC) is its immutable identity:
// exactly 11 digits, unique across all leads.
type Lead struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	TaxID               string               `json:"tax_id"`
	Phone               string               `json:"phone"`
	Email               string               `json:"email,omitempty"`
	BusinessType        string               `json:"business_type,omitempty"`
	Address             string               `json:"address,omitempty"`
	AreaSqMeters        float64              `json:"area_sq_meters"`
	HasOperatingLicense bool                 `json:"has_operating_license"`
	ServiceIntent       intent.ServiceIntent `json:"service_intent"`
	Status              Status               `json:"status"`
	CreatedAt           time.Time            `json:"created_at"`
}

// MonthlyStats aggregates lead activity for one calendar month, the
// numbers the operator dashboard tracks conversion on.
type MonthlyStats struct {
	Month     string         `json:"month"`
	Total     int            `json:"total_leads"`
	Scheduled int            `json:"scheduled"`
	ByService map[string]int `json:"by_service"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name                string               `json:"name"`
	TaxID               string               `json:"tax_id"`
	Phone               string               `json:"phone"`
	Email               string               `json:"email"`
	BusinessType        string               `json:"business_type"`
	Address             string               `json:"address"`
	AreaSqMeters        float64              `json:"area_sq_meters"`
	HasOperatingLicense bool                 `json:"has_operating_license"`
	ServiceIntent       intent.ServiceIntent `json:"service_intent"`
}

// ValidTaxID reports whether raw is a well-formed RUC: exactly 11 numeric
// digits.
func ValidTaxID(raw string) bool {
	if len(raw) != 11 {
		return false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrInvalidPhone
	}
	if !ValidTaxID(r.TaxID) {
		return ErrInvalidTaxID
	}
	if r.AreaSqMeters < 0 {
		return ErrInvalidArea
	}
	// Supplies are priced flat, so no sizing is collected for them.
	if r.AreaSqMeters == 0 && r.ServiceIntent != intent.ServiceSupplies {
		return ErrInvalidArea
	}
	if !r.ServiceIntent.Known() {
		return ErrInvalidIntent
	}
	return nil
}
