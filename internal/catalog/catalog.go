package catalog

import (
	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// Entry describes one service offering with its pricing rule. Amounts are
// in soles (S/). PerAreaRate is 0 for flat-fee services.
type Entry struct {
	Intent         intent.ServiceIntent `json:"service_id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	BaseAmount     float64              `json:"-"`
	PerAreaRate    float64              `json:"-"`
	PriceRangeLow  float64              `json:"price_range_low"`
	PriceRangeHigh float64              `json:"price_range_high"`
	Turnaround     string               `json:"estimated_turnaround"`
}

// Catalog is an immutable, versioned pricing table shared by the quote
// calculator and the public services endpoint. Construct with Default and
// treat as read-only.
type Catalog struct {
	Version     string
	entries     map[intent.ServiceIntent]Entry
	order       []intent.ServiceIntent
	multipliers map[string]float64
}

// Default returns the current catalog. The single table replaces the
// per-variant pricing dictionaries the chatbot backends used to carry.
func Default(version string) *Catalog {
	entries := []Entry{
		{
			Intent:         intent.ServiceCertification,
			Name:           "Certificado ITSE",
			Description:    "Inspección Técnica de Seguridad en Edificaciones, gestión completa del trámite",
			BaseAmount:     500,
			PerAreaRate:    4,
			PriceRangeLow:  518,
			PriceRangeHigh: 2218,
			Turnaround:     "7-10 días hábiles",
		},
		{
			Intent:         intent.ServiceGrounding,
			Name:           "Pozo a Tierra",
			Description:    "Diseño, instalación y certificación de sistemas de puesta a tierra",
			BaseAmount:     1500,
			PerAreaRate:    5,
			PriceRangeLow:  1200,
			PriceRangeHigh: 4500,
			Turnaround:     "3-5 días hábiles",
		},
		{
			Intent:         intent.ServiceMaintenance,
			Name:           "Mantenimiento Eléctrico",
			Description:    "Mantenimiento preventivo y correctivo de instalaciones eléctricas",
			BaseAmount:     300,
			PerAreaRate:    2,
			PriceRangeLow:  200,
			PriceRangeHigh: 1200,
			Turnaround:     "1-2 días hábiles",
		},
		{
			Intent:         intent.ServiceFireProtection,
			Name:           "Sistema Contra Incendios",
			Description:    "Detección y protección contra incendios según normativa RNE A.130",
			BaseAmount:     1500,
			PerAreaRate:    8,
			PriceRangeLow:  1500,
			PriceRangeHigh: 12000,
			Turnaround:     "5-7 días hábiles",
		},
		{
			Intent:         intent.ServicePanelDesign,
			Name:           "Diseño de Tableros",
			Description:    "Diseño y armado de tableros eléctricos de distribución y control",
			BaseAmount:     800,
			PerAreaRate:    3,
			PriceRangeLow:  800,
			PriceRangeHigh: 3500,
			Turnaround:     "4-6 días hábiles",
		},
		{
			Intent:         intent.ServiceSupplies,
			Name:           "Suministros Eléctricos",
			Description:    "Venta de materiales y suministros eléctricos certificados",
			BaseAmount:     250,
			PerAreaRate:    0,
			PriceRangeLow:  250,
			PriceRangeHigh: 250,
			Turnaround:     "1-2 días hábiles",
		},
	}

	byIntent := make(map[intent.ServiceIntent]Entry, len(entries))
	order := make([]intent.ServiceIntent, 0, len(entries))
	for _, e := range entries {
		byIntent[e.Intent] = e
		order = append(order, e.Intent)
	}

	return &Catalog{
		Version: version,
		entries: byIntent,
		order:   order,
		multipliers: map[string]float64{
			"residential": 1.0,
			"commercial":  1.2,
			"industrial":  1.5,
			"office":      1.1,
		},
	}
}

// Lookup returns the entry for a known intent.
func (c *Catalog) Lookup(svc intent.ServiceIntent) (Entry, bool) {
	e, ok := c.entries[svc]
	return e, ok
}

// Multiplier returns the business-type adjustment factor. Unrecognized
// business types price at 1.0.
func (c *Catalog) Multiplier(businessType string) float64 {
	if f, ok := c.multipliers[businessType]; ok {
		return f
	}
	return 1.0
}

// Entries returns all services in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}
