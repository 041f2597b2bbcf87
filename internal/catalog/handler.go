package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// Handler serves the read-only service catalog.
type Handler struct {
	catalog *Catalog
	logger  *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(catalog *Catalog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// ListServicesResponse is the response for GET /api/services.
type ListServicesResponse struct {
	Version  string  `json:"version"`
	Services []Entry `json:"services"`
}

// ListServices handles GET /api/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	resp := ListServicesResponse{
		Version:  h.catalog.Version,
		Services: h.catalog.Entries(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode services response", "error", err)
	}
}
