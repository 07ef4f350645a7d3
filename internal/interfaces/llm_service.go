package interfaces

import (
	"context"
	"encoding/json"
)

// LLMMode represents the operational mode of the LLM service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"

	// LLMModeMock indicates a test double that never leaves the process
	LLMModeMock LLMMode = "mock"
)

// PropertySchema describes one parameter of a tool declaration.
type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ToolInputSchema is the JSON-schema object describing a tool's arguments.
// It is produced by the tool registry and consumed by the model boundary.
type ToolInputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// ToolDeclaration advertises one callable tool to the model.
type ToolDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"input_schema"`
}

// ToolCall is a tool invocation requested by the model. Arguments is the
// raw JSON payload exactly as the provider returned it; decoding happens
// at the tool boundary.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolResult carries the textual outcome of one tool call back to the
// model, tagged with the originating call identifier.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

// ChatMessage is a provider-neutral conversation message. At most one of
// the optional fields is populated beyond Content: ToolCalls on an
// assistant tool-request message, ToolResults on a tool-result message.
type ChatMessage struct {
	Role        string // "user" | "assistant" | "tool"
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// GenerateRequest is one chat-completion call. A nil Tools slice means
// tool access is disabled for this call; a non-empty slice is sent with
// tool_choice "auto".
type GenerateRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolDeclaration
}

// GenerateResponse is the model's reply: either plain text, or one or
// more requested tool calls (possibly alongside interstitial text).
type GenerateResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// LLMService defines the chat-completion boundary consumed by the
// generation engine. Implementations are cloud providers (Anthropic,
// Gemini) or test doubles; the engine issues calls one at a time and
// treats transport failures as fatal.
type LLMService interface {
	// Generate issues a single chat-completion call. Tool access is
	// controlled per call via req.Tools.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// HealthCheck verifies the provider is reachable and authenticated.
	HealthCheck(ctx context.Context) error

	// GetMode reports whether this service talks to a cloud API.
	GetMode() LLMMode

	// Close releases provider resources.
	Close() error
}
