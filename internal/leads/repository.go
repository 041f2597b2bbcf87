package leads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage. Create must be an
// atomic insert-if-absent on TaxID: two concurrent submissions of the same
// RUC must yield exactly one lead and one ErrDuplicateTaxID.
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	GetByTaxID(ctx context.Context, taxID string) (*Lead, error)
	List(ctx context.Context, limit, offset int) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error)
	StatsForMonth(ctx context.Context, year int, month time.Month) (*MonthlyStats, error)
}

// InMemoryRepository is an in-memory Repository for tests and local
// development.
type InMemoryRepository struct {
	mu      sync.Mutex
	leads   map[string]*Lead
	byTaxID map[string]string
	order   []string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:   make(map[string]*Lead),
		byTaxID: make(map[string]string),
	}
}

// Create inserts a new lead, enforcing TaxID uniqueness under one lock so
// the check and insert cannot interleave.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTaxID[req.TaxID]; exists {
		return nil, ErrDuplicateTaxID
	}

	lead := &Lead{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		TaxID:               req.TaxID,
		Phone:               req.Phone,
		Email:               req.Email,
		BusinessType:        req.BusinessType,
		Address:             req.Address,
		AreaSqMeters:        req.AreaSqMeters,
		HasOperatingLicense: req.HasOperatingLicense,
		ServiceIntent:       req.ServiceIntent,
		Status:              StatusNew,
		CreatedAt:           time.Now().UTC(),
	}
	r.leads[lead.ID] = lead
	r.byTaxID[lead.TaxID] = lead.ID
	r.order = append(r.order, lead.ID)

	copied := *lead
	return &copied, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// GetByTaxID retrieves a lead by its RUC.
func (r *InMemoryRepository) GetByTaxID(ctx context.Context, taxID string) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byTaxID[taxID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *r.leads[id]
	return &copied, nil
}

// List returns leads newest first.
func (r *InMemoryRepository) List(ctx context.Context, limit, offset int) ([]*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*Lead{}
	for i := len(r.order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		copied := *r.leads[r.order[i]]
		out = append(out, &copied)
	}
	return out, nil
}

// StatsForMonth aggregates lead counts for one calendar month.
func (r *InMemoryRepository) StatsForMonth(ctx context.Context, year int, month time.Month) (*MonthlyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &MonthlyStats{
		Month:     fmt.Sprintf("%04d-%02d", year, int(month)),
		ByService: make(map[string]int),
	}
	for _, lead := range r.leads {
		if lead.CreatedAt.Year() != year || lead.CreatedAt.Month() != month {
			continue
		}
		stats.Total++
		stats.ByService[string(lead.ServiceIntent)]++
		if lead.Status == StatusScheduled || lead.Status == StatusClosed {
			stats.Scheduled++
		}
	}
	return stats, nil
}

// UpdateStatus advances the pipeline status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if !lead.Status.CanTransition(status) {
		return nil, ErrInvalidStatus
	}
	lead.Status = status
	copied := *lead
	return &copied, nil
}
