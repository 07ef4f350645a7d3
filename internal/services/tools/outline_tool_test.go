package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/doceo/internal/common"
)

func TestOutlineTool_RendersSortedOutline(t *testing.T) {
	tool := NewOutlineTool(newFakeRetriever(), common.GetLogger())

	text, citations, err := tool.Execute(context.Background(), searchArgsJSON(t, map[string]interface{}{
		"course_title": "mcp",
	}))

	require.NoError(t, err)
	assert.Empty(t, citations)

	want := "Course: Introduction to MCP\n" +
		"Instructor: Ada Lovelace\n" +
		"Course Link: https://example.com/mcp\n" +
		"\nTotal Lessons: 2\n" +
		"\nLessons:\n" +
		"  Lesson 1: Protocol Basics\n" +
		"  Lesson 2: Servers and Transports"
	assert.Equal(t, want, text)
}

func TestOutlineTool_OmitsMissingLink(t *testing.T) {
	tool := NewOutlineTool(newFakeRetriever(), common.GetLogger())

	text, _, err := tool.Execute(context.Background(), searchArgsJSON(t, map[string]interface{}{
		"course_title": "Advanced Retrieval",
	}))

	require.NoError(t, err)
	assert.NotContains(t, text, "Course Link:")
	assert.Contains(t, text, "Instructor: Grace Hopper")
}

func TestOutlineTool_UnknownCourse(t *testing.T) {
	tool := NewOutlineTool(newFakeRetriever(), common.GetLogger())

	text, citations, err := tool.Execute(context.Background(), searchArgsJSON(t, map[string]interface{}{
		"course_title": "Bioinformatics",
	}))

	require.NoError(t, err)
	assert.Equal(t, "No course found matching 'Bioinformatics'", text)
	assert.Empty(t, citations)
}

func TestOutlineTool_InvalidArguments(t *testing.T) {
	tool := NewOutlineTool(newFakeRetriever(), common.GetLogger())

	text, _, err := tool.Execute(context.Background(), json.RawMessage(`{"course_title": []}`))
	require.Error(t, err)
	assert.Contains(t, text, "Invalid arguments for get_course_outline")

	text, _, err = tool.Execute(context.Background(), searchArgsJSON(t, map[string]interface{}{"course_title": ""}))
	require.Error(t, err)
	assert.Contains(t, text, "course_title is required")
}
