package quotes

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tesla-electricidad/intake-engine/internal/catalog"
	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// ErrInvalidServiceIntent is returned when asked to price the unknown
// intent.
var ErrInvalidServiceIntent = errors.New("quotes: cannot price an unknown service intent")

// Quote is a computed price estimate. Rows are append-only: a new request
// produces a new quote, never a mutation of an old one.
type Quote struct {
	ID               string               `json:"id"`
	LeadID           string               `json:"lead_id,omitempty"`
	ServiceIntent    intent.ServiceIntent `json:"service_intent"`
	AreaSqMeters     float64              `json:"area_sq_meters"`
	BaseAmount       float64              `json:"base_amount"`
	AdjustmentFactor float64              `json:"adjustment_factor"`
	TotalAmount      float64              `json:"total_amount"`
	ValidityDays     int                  `json:"validity_days"`
	CreatedAt        time.Time            `json:"created_at"`
}

// Calculator prices services from the injected catalog. Deterministic and
// side-effect free; persistence belongs to the orchestrator.
type Calculator struct {
	catalog      *catalog.Catalog
	validityDays int
}

// NewCalculator constructs a calculator.
func NewCalculator(cat *catalog.Catalog, validityDays int) *Calculator {
	if cat == nil {
		panic("quotes: catalog required")
	}
	if validityDays <= 0 {
		validityDays = 30
	}
	return &Calculator{catalog: cat, validityDays: validityDays}
}

// Calculate prices a service for the given area and business type.
// total = round((base + rate*area) * factor, 2). Unrecognized business
// types price at factor 1.0.
func (c *Calculator) Calculate(svc intent.ServiceIntent, areaSqMeters float64, businessType string) (*Quote, error) {
	entry, ok := c.catalog.Lookup(svc)
	if !ok {
		return nil, ErrInvalidServiceIntent
	}

	base := entry.BaseAmount + entry.PerAreaRate*areaSqMeters
	factor := c.catalog.Multiplier(businessType)
	total := math.Round(base*factor*100) / 100

	return &Quote{
		ID:               uuid.NewString(),
		ServiceIntent:    svc,
		AreaSqMeters:     areaSqMeters,
		BaseAmount:       base,
		AdjustmentFactor: factor,
		TotalAmount:      total,
		ValidityDays:     c.validityDays,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
