package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
)

// QueryHandler handles question-answering HTTP requests
type QueryHandler struct {
	assistant interfaces.AssistantService
	logger    arbor.ILogger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(assistant interfaces.AssistantService, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// QueryHandler handles POST /api/query requests
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode query request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query field is required")
		return
	}

	h.logger.Info().
		Int("query_length", len(req.Query)).
		Str("session_id", req.SessionID).
		Msg("Processing query request")

	response, err := h.assistant.Query(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to answer query")
		writeError(w, http.StatusInternalServerError, "Failed to generate response: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error envelope
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
