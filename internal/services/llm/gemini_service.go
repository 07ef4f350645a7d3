package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// GeminiService implements the LLMService interface using the Google
// Gemini API, with function calling.
type GeminiService struct {
	config    *common.GeminiConfig
	logger    arbor.ILogger
	client    *genai.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int
}

// NewGeminiService creates a new Gemini LLM service instance
func NewGeminiService(geminiConfig *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini service (set via GEMINI_API_KEY, DOCEO_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	if geminiConfig.Model == "" {
		geminiConfig.Model = "gemini-2.0-flash"
	}

	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if geminiConfig.RateLimit != "" {
		interval, err := time.ParseDuration(geminiConfig.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit duration '%s': %w", geminiConfig.RateLimit, err)
		}
		if interval > 0 {
			limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}

	maxTokens := geminiConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:    geminiConfig,
		logger:    logger,
		client:    client,
		limiter:   limiter,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", geminiConfig.Model).
		Dur("timeout", timeout).
		Float64("temperature", geminiConfig.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Gemini LLM service initialized successfully")

	return service, nil
}

// Generate issues one chat-completion call, with function declarations
// when the request carries tools.
func (s *GeminiService) Generate(ctx context.Context, req *interfaces.GenerateRequest) (*interfaces.GenerateResponse, error) {
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
		Msg("Starting Gemini chat completion")

	contents, err := convertMessagesToGemini(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(s.config.Temperature)),
		MaxOutputTokens: int32(s.maxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{
			{FunctionDeclarations: convertToolsToGemini(req.Tools)},
		}
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(req.Messages)).
			Msg("Gemini chat completion failed")
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	result, err := parseGeminiResponse(resp)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("response_length", len(result.Text)).
		Int("tool_calls", len(result.ToolCalls)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini chat completion completed successfully")

	return result, nil
}

// convertToolsToGemini converts tool declarations to Gemini function
// declarations.
func convertToolsToGemini(tools []interfaces.ToolDeclaration) []*genai.FunctionDeclaration {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]*genai.Schema, len(tool.InputSchema.Properties))
		for name, prop := range tool.InputSchema.Properties {
			properties[name] = &genai.Schema{
				Type:        geminiSchemaType(prop.Type),
				Description: prop.Description,
			}
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   tool.InputSchema.Required,
			},
		})
	}
	return declarations
}

// geminiSchemaType maps JSON schema type names to Gemini schema types
func geminiSchemaType(jsonType string) genai.Type {
	switch jsonType {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// convertMessagesToGemini converts provider-neutral messages to Gemini
// Content format. Tool results travel as function-response parts with
// the user role.
func convertMessagesToGemini(messages []interfaces.ChatMessage) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				var args map[string]any
				if len(call.Arguments) > 0 {
					if err := json.Unmarshal(call.Arguments, &args); err != nil {
						return nil, fmt.Errorf("invalid function call arguments for %s: %w", call.Name, err)
					}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: args,
					},
				})
			}
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: parts,
			})

		case "tool":
			parts := make([]*genai.Part, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:   result.CallID,
						Name: result.Name,
						Response: map[string]any{
							"result":   result.Content,
							"is_error": result.IsError,
						},
					},
				})
			}
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: parts,
			})

		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}

	if len(contents) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	return contents, nil
}

// parseGeminiResponse extracts text and function calls from a Gemini
// response. Function call IDs fall back to the function name when the
// API omits them.
func parseGeminiResponse(resp *genai.GenerateContentResponse) (*interfaces.GenerateResponse, error) {
	var text strings.Builder
	var toolCalls []interfaces.ToolCall

	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
				if part.FunctionCall != nil {
					args, err := json.Marshal(part.FunctionCall.Args)
					if err != nil {
						return nil, fmt.Errorf("failed to encode function call arguments: %w", err)
					}
					id := part.FunctionCall.ID
					if id == "" {
						id = part.FunctionCall.Name
					}
					toolCalls = append(toolCalls, interfaces.ToolCall{
						ID:        id,
						Name:      part.FunctionCall.Name,
						Arguments: args,
					})
				}
			}
			if text.Len() > 0 || len(toolCalls) > 0 {
				break
			}
		}
	}

	if text.Len() == 0 && len(toolCalls) == 0 {
		return nil, fmt.Errorf("no response generated from Gemini API")
	}

	return &interfaces.GenerateResponse{
		Text:      text.String(),
		ToolCalls: toolCalls,
	}, nil
}

// HealthCheck verifies the Gemini service is operational
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Gemini LLM service health check")

	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.Generate(healthCheckCtx, &interfaces.GenerateRequest{
		Messages: []interfaces.ChatMessage{
			{Role: "user", Content: "ping"},
		},
	})
	if err != nil {
		return fmt.Errorf("Gemini health check failed: %w", err)
	}
	if len(strings.TrimSpace(resp.Text)) == 0 {
		return fmt.Errorf("Gemini probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Gemini LLM service health check passed")

	return nil
}

// GetMode returns the current operational mode of the LLM service
func (s *GeminiService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeCloud
}

// Close releases resources and performs cleanup operations
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}
