package intake

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// Handler handles HTTP requests for the chat endpoint
type Handler struct {
	orchestrator *Orchestrator
	logger       *logging.Logger
}

// NewHandler creates a new chat handler
func NewHandler(o *Orchestrator, logger *logging.Logger) *Handler {
	if o == nil {
		panic("intake: orchestrator is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orchestrator: o, logger: logger}
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

// Chat handles POST /api/chat requests
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required", Kind: "validation"})
		return
	}

	result, err := h.orchestrator.HandleTurn(r.Context(), req)
	if err != nil {
		h.logger.Error("turn processing failed", "error", err, "session_id", req.SessionID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
