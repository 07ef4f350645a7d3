package generation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
	"github.com/ternarybob/doceo/internal/services/tools"
)

// scriptedLLM replays a fixed sequence of responses and records every
// request it sees.
type scriptedLLM struct {
	responses []*interfaces.GenerateResponse
	err       error
	requests  []*interfaces.GenerateRequest
}

func (s *scriptedLLM) Generate(ctx context.Context, req *interfaces.GenerateRequest) (*interfaces.GenerateResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.requests) > len(s.responses) {
		return nil, errors.New("scripted llm exhausted")
	}
	return s.responses[len(s.requests)-1], nil
}

func (s *scriptedLLM) HealthCheck(ctx context.Context) error { return nil }
func (s *scriptedLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeMock }
func (s *scriptedLLM) Close() error                          { return nil }

// recordingTool counts executions and returns canned output
type recordingTool struct {
	name     string
	text     string
	err      error
	executed int
}

func (r *recordingTool) Definition() interfaces.ToolDeclaration {
	return interfaces.ToolDeclaration{
		Name:        r.name,
		Description: "recording",
		InputSchema: interfaces.ToolInputSchema{Type: "object"},
	}
}

func (r *recordingTool) Execute(ctx context.Context, args json.RawMessage) (string, []models.Citation, error) {
	r.executed++
	return r.text, nil, r.err
}

func newTestRegistry(t *testing.T, tool *recordingTool) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry(common.GetLogger())
	require.NoError(t, registry.Register(tool))
	return registry
}

func toolCall(name string) interfaces.ToolCall {
	return interfaces.ToolCall{ID: "call_1", Name: name, Arguments: json.RawMessage(`{}`)}
}

func TestEngine_PassesThroughWhenNoToolsRequested(t *testing.T) {
	llm := &scriptedLLM{responses: []*interfaces.GenerateResponse{
		{Text: "Paris is the capital of France."},
	}}
	tool := &recordingTool{name: "search_course_content"}
	engine := NewEngine(llm, newTestRegistry(t, tool), common.GetLogger(), nil)

	answer, err := engine.Generate(context.Background(), "What is the capital of France?", "")

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", answer)
	assert.Len(t, llm.requests, 1)
	assert.NotEmpty(t, llm.requests[0].Tools)
	assert.Zero(t, tool.executed)
}

func TestEngine_SingleToolRound(t *testing.T) {
	llm := &scriptedLLM{responses: []*interfaces.GenerateResponse{
		{ToolCalls: []interfaces.ToolCall{toolCall("search_course_content")}},
		{Text: "MCP uses JSON-RPC."},
	}}
	tool := &recordingTool{name: "search_course_content", text: "[Course - Lesson 1]\nchunk"}
	engine := NewEngine(llm, newTestRegistry(t, tool), common.GetLogger(), nil)

	answer, err := engine.Generate(context.Background(), "What transport does MCP use?", "")

	require.NoError(t, err)
	assert.Equal(t, "MCP uses JSON-RPC.", answer)
	assert.Equal(t, 1, tool.executed)
	require.Len(t, llm.requests, 2)

	// Tools are still offered on the second call, one round remains
	assert.NotEmpty(t, llm.requests[1].Tools)

	// The second call carries the assistant tool request and the result
	messages := llm.requests[1].Messages
	require.Len(t, messages, 3)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "tool", messages[2].Role)
	require.Len(t, messages[2].ToolResults, 1)
	assert.Equal(t, "[Course - Lesson 1]\nchunk", messages[2].ToolResults[0].Content)
	assert.False(t, messages[2].ToolResults[0].IsError)
}

func TestEngine_TwoRoundsMakeExactlyThreeModelCalls(t *testing.T) {
	llm := &scriptedLLM{responses: []*interfaces.GenerateResponse{
		{ToolCalls: []interfaces.ToolCall{toolCall("get_course_outline")}},
		{ToolCalls: []interfaces.ToolCall{toolCall("get_course_outline")}},
		{Text: "Lesson 4 covers chunking."},
	}}
	tool := &recordingTool{name: "get_course_outline", text: "Course: X"}
	engine := NewEngine(llm, newTestRegistry(t, tool), common.GetLogger(), &EngineConfig{MaxRounds: 2})

	answer, err := engine.Generate(context.Background(), "What does lesson 4 of the course cover?", "")

	require.NoError(t, err)
	assert.Equal(t, "Lesson 4 covers chunking.", answer)
	assert.Equal(t, 2, tool.executed)
	require.Len(t, llm.requests, 3)

	// Tools are withdrawn on the call after the last permitted round
	assert.NotEmpty(t, llm.requests[0].Tools)
	assert.NotEmpty(t, llm.requests[1].Tools)
	assert.Empty(t, llm.requests[2].Tools)
}

func TestEngine_ToolFailureShortCircuitsToFinalCall(t *testing.T) {
	llm := &scriptedLLM{responses: []*interfaces.GenerateResponse{
		{ToolCalls: []interfaces.ToolCall{toolCall("search_course_content")}},
		{Text: "I could not search the course materials."},
	}}
	tool := &recordingTool{
		name: "search_course_content",
		text: "Search failed: store unavailable",
		err:  errors.New("store unavailable"),
	}
	engine := NewEngine(llm, newTestRegistry(t, tool), common.GetLogger(), &EngineConfig{MaxRounds: 2})

	answer, err := engine.Generate(context.Background(), "What is in lesson 1?", "")

	require.NoError(t, err)
	assert.Equal(t, "I could not search the course materials.", answer)
	require.Len(t, llm.requests, 2)

	// The explanatory call gets the in-band failure text but no tools
	assert.Empty(t, llm.requests[1].Tools)
	last := llm.requests[1].Messages[len(llm.requests[1].Messages)-1]
	require.Len(t, last.ToolResults, 1)
	assert.True(t, last.ToolResults[0].IsError)
	assert.Equal(t, "Search failed: store unavailable", last.ToolResults[0].Content)
}

func TestEngine_ModelErrorIsFatal(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("rate limited")}
	engine := NewEngine(llm, newTestRegistry(t, &recordingTool{name: "x"}), common.GetLogger(), nil)

	_, err := engine.Generate(context.Background(), "anything", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call failed")
}

func TestEngine_HistoryAppendedToSystemPrompt(t *testing.T) {
	llm := &scriptedLLM{responses: []*interfaces.GenerateResponse{
		{Text: "As I said, lesson 2."},
	}}
	engine := NewEngine(llm, newTestRegistry(t, &recordingTool{name: "x"}), common.GetLogger(), nil)

	_, err := engine.Generate(context.Background(), "Which lesson was that again?",
		"User: Where is chunking covered?\nAssistant: Lesson 2.")

	require.NoError(t, err)
	require.Len(t, llm.requests, 1)
	assert.Contains(t, llm.requests[0].System, "Previous conversation:\nUser: Where is chunking covered?")

	// The user turn carries only the current question
	require.Len(t, llm.requests[0].Messages, 1)
	assert.Equal(t, "Which lesson was that again?", llm.requests[0].Messages[0].Content)
}
