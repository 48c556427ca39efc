package underwriting

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/core/workflow"
)

// ConfigResponse reports the active LLM provider and the registered ones.
type ConfigResponse struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

// SwitchRequest selects a new global provider.
type SwitchRequest struct {
	Provider string `json:"provider"`
}

// HandleConfig reports the provider configuration of the agent panel.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		ActiveProvider: h.LLM.GetActiveProvider(),
		Available:      h.LLM.ProviderNames(),
	})
}

// HandleConfigSwitch switches the global provider for subsequent workflows.
func (h *Handler) HandleConfigSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err))
		return
	}
	if err := h.LLM.SetGlobalProvider(req.Provider); err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err))
		return
	}
	log.Info().Str("provider", req.Provider).Msg("provider switched via API")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "switched",
		"provider": req.Provider,
	})
}
