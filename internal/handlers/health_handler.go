package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// HealthHandler handles service health HTTP requests
type HealthHandler struct {
	assistant interfaces.AssistantService
	logger    arbor.ILogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(assistant interfaces.AssistantService, logger arbor.ILogger) *HealthHandler {
	return &HealthHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// HealthHandler handles GET /api/health requests
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.assistant.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Assistant health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"healthy": false,
			"version": common.GetVersion(),
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"healthy": true,
		"version": common.GetVersion(),
	})
}
