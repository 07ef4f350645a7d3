package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic
// Claude API, with native tool use.
type ClaudeService struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int
}

// NewClaudeService creates a new Claude LLM service instance
func NewClaudeService(claudeConfig *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set via ANTHROPIC_API_KEY, DOCEO_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-sonnet-4-20250514"
	}

	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if claudeConfig.RateLimit != "" {
		interval, err := time.ParseDuration(claudeConfig.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit duration '%s': %w", claudeConfig.RateLimit, err)
		}
		if interval > 0 {
			limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}

	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	client := anthropic.NewClient(
		option.WithAPIKey(claudeConfig.APIKey),
	)

	service := &ClaudeService{
		config:    claudeConfig,
		logger:    logger,
		client:    client,
		limiter:   limiter,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Dur("timeout", timeout).
		Float64("temperature", claudeConfig.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized successfully")

	return service, nil
}

// Generate issues one chat-completion call, with tool declarations when
// the request carries them.
func (s *ClaudeService) Generate(ctx context.Context, req *interfaces.GenerateRequest) (*interfaces.GenerateResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(timeoutCtx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	startTime := time.Now()
	s.logger.Debug().
		Int("message_count", len(req.Messages)).
		Int("tool_count", len(req.Tools)).
		Msg("Starting Claude chat completion")

	params, err := s.buildParams(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(req.Messages)).
			Msg("Claude chat completion failed")
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	result := parseClaudeResponse(resp)
	if result.Text == "" && len(result.ToolCalls) == 0 {
		return nil, fmt.Errorf("no response generated from Claude API")
	}

	s.logger.Debug().
		Int("response_length", len(result.Text)).
		Int("tool_calls", len(result.ToolCalls)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed successfully")

	return result, nil
}

// buildParams converts a provider-neutral request to Claude parameters
func (s *ClaudeService) buildParams(req *interfaces.GenerateRequest) (anthropic.MessageNewParams, error) {
	claudeMessages, err := convertMessagesToClaude(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.config.Model),
		MaxTokens:   int64(s.maxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(s.config.Temperature),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if len(req.Tools) > 0 {
		claudeTools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			properties := make(map[string]interface{}, len(tool.InputSchema.Properties))
			for name, prop := range tool.InputSchema.Properties {
				properties[name] = map[string]interface{}{
					"type":        prop.Type,
					"description": prop.Description,
				}
			}
			claudeTools = append(claudeTools, anthropic.ToolUnionParam{
				OfTool: &anthropic.ToolParam{
					Name:        tool.Name,
					Description: anthropic.String(tool.Description),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: properties,
						Required:   tool.InputSchema.Required,
					},
				},
			})
		}
		params.Tools = claudeTools
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}

	return params, nil
}

// convertMessagesToClaude converts provider-neutral messages to Claude
// MessageParam format. Tool results travel as user messages, matching
// the Anthropic messages protocol.
func convertMessagesToClaude(messages []interfaces.ChatMessage) ([]anthropic.MessageParam, error) {
	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: call.Arguments,
					},
				})
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(blocks...))

		case "tool":
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(result.CallID, result.Content, result.IsError))
			}
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(blocks...))

		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	if len(claudeMessages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	return claudeMessages, nil
}

// parseClaudeResponse extracts text and tool-use blocks from a Claude
// message response.
func parseClaudeResponse(resp *anthropic.Message) *interfaces.GenerateResponse {
	var text strings.Builder
	var toolCalls []interfaces.ToolCall

	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			toolCalls = append(toolCalls, interfaces.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: json.RawMessage(variant.Input),
			})
		}
	}

	return &interfaces.GenerateResponse{
		Text:      text.String(),
		ToolCalls: toolCalls,
	}
}

// HealthCheck verifies the Claude service is operational
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Claude LLM service health check")

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.Generate(healthCheckCtx, &interfaces.GenerateRequest{
		Messages: []interfaces.ChatMessage{
			{Role: "user", Content: "ping"},
		},
	})
	if err != nil {
		return fmt.Errorf("Claude health check failed: %w", err)
	}
	if len(strings.TrimSpace(resp.Text)) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Claude LLM service health check passed")

	return nil
}

// GetMode returns the current operational mode of the LLM service
func (s *ClaudeService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeCloud
}

// Close releases resources and performs cleanup operations
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude LLM service")
	return nil
}
