package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// NewLLMService creates the configured LLM service implementation.
// Provider selection happens here so callers only see the interface.
func NewLLMService(config *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch config.LLM.Provider {
	case "claude":
		return NewClaudeService(&config.Claude, logger)
	case "gemini":
		return NewGeminiService(&config.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider '%s' (expected 'claude' or 'gemini')", config.LLM.Provider)
	}
}
