package generation

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/services/tools"
)

// engineState tracks where a query is in its tool conversation
type engineState int

const (
	// stateAwaitingModel means a model call is in flight or about to be made
	stateAwaitingModel engineState = iota

	// stateToolRequested means the model asked for one or more tool calls
	stateToolRequested

	// stateExecutingTools means requested tools are being run
	stateExecutingTools
)

func (s engineState) String() string {
	switch s {
	case stateAwaitingModel:
		return "awaiting_model"
	case stateToolRequested:
		return "tool_requested"
	case stateExecutingTools:
		return "executing_tools"
	default:
		return "unknown"
	}
}

// EngineConfig configures the multi-round generation loop
type EngineConfig struct {
	// MaxRounds bounds how many tool rounds one query may use. A round is
	// one model response that requests tools plus the execution of those
	// tools. The model call after the last permitted round carries no
	// tool declarations.
	MaxRounds int
}

// DefaultEngineConfig returns sensible defaults
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxRounds: 2,
	}
}

// Engine drives the tool-augmented conversation with the model. It owns
// the round protocol only; tool semantics live in the registry and the
// provider boundary lives behind LLMService.
type Engine struct {
	llm      interfaces.LLMService
	registry *tools.Registry
	logger   arbor.ILogger
	config   *EngineConfig
}

// NewEngine creates a new generation engine
func NewEngine(llm interfaces.LLMService, registry *tools.Registry, logger arbor.ILogger, config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = DefaultEngineConfig().MaxRounds
	}

	return &Engine{
		llm:      llm,
		registry: registry,
		logger:   logger,
		config:   config,
	}
}

// Generate answers one query, optionally grounded in rendered
// conversation history. Tool rounds run until the model stops asking,
// the round limit is reached, or a tool invocation fails; model API
// errors are fatal and propagate to the caller.
func (e *Engine) Generate(ctx context.Context, query string, history string) (string, error) {
	system := systemPrompt
	if history != "" {
		system = systemPrompt + "\n\nPrevious conversation:\n" + history
	}

	catalog := e.registry.Catalog()
	messages := []interfaces.ChatMessage{
		{Role: "user", Content: query},
	}

	state := stateAwaitingModel
	round := 0

	resp, err := e.llm.Generate(ctx, &interfaces.GenerateRequest{
		System:   system,
		Messages: messages,
		Tools:    catalog,
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	for len(resp.ToolCalls) > 0 {
		state = stateToolRequested
		round++

		e.logger.Debug().
			Int("round", round).
			Str("state", state.String()).
			Int("tool_calls", len(resp.ToolCalls)).
			Msg("Model requested tools")

		messages = append(messages, interfaces.ChatMessage{
			Role:      "assistant",
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		state = stateExecutingTools
		results, failed := e.executeTools(ctx, resp.ToolCalls)
		messages = append(messages, interfaces.ChatMessage{
			Role:        "tool",
			ToolResults: results,
		})

		// A failed invocation ends the conversation with one explanatory
		// call; the model sees the in-band error text but gets no tools.
		if failed {
			return e.finalCall(ctx, system, messages)
		}

		state = stateAwaitingModel

		// Tools are withdrawn once the last permitted round has run, so
		// the model must answer from what it has.
		nextTools := catalog
		if round >= e.config.MaxRounds {
			nextTools = nil
		}

		resp, err = e.llm.Generate(ctx, &interfaces.GenerateRequest{
			System:   system,
			Messages: messages,
			Tools:    nextTools,
		})
		if err != nil {
			return "", fmt.Errorf("model call failed on round %d: %w", round, err)
		}
	}

	e.logger.Debug().
		Int("rounds", round).
		Str("state", state.String()).
		Msg("Generation complete")
	return resp.Text, nil
}

// executeTools runs every requested call in order and reports whether
// any invocation flagged a failure. Each call produces a result even on
// failure; the text is always forwarded to the model.
func (e *Engine) executeTools(ctx context.Context, calls []interfaces.ToolCall) ([]interfaces.ToolResult, bool) {
	results := make([]interfaces.ToolResult, 0, len(calls))
	failed := false

	for _, call := range calls {
		text, err := e.registry.Invoke(ctx, call.Name, call.Arguments)
		if err != nil {
			failed = true
		}
		results = append(results, interfaces.ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: text,
			IsError: err != nil,
		})
	}

	return results, failed
}

// finalCall makes one tool-less model call so the conversation always
// ends in text the caller can return.
func (e *Engine) finalCall(ctx context.Context, system string, messages []interfaces.ChatMessage) (string, error) {
	resp, err := e.llm.Generate(ctx, &interfaces.GenerateRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("final model call failed: %w", err)
	}
	return resp.Text, nil
}
