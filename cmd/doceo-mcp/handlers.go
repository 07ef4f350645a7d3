package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/services/tools"
)

// handleSearchContent implements the search_course_content tool
func handleSearchContent(tool *tools.SearchContentTool, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		args := map[string]interface{}{
			"query": query,
		}
		if courseName := request.GetString("course_name", ""); courseName != "" {
			args["course_name"] = courseName
		}
		if lessonNumber := request.GetInt("lesson_number", 0); lessonNumber != 0 {
			args["lesson_number"] = lessonNumber
		}

		text, _, execErr := tool.Execute(ctx, mustMarshal(args))
		if execErr != nil {
			logger.Error().Err(execErr).Str("query", query).Msg("Content search failed")
		}
		return textResult(text), nil
	}
}

// handleCourseOutline implements the get_course_outline tool
func handleCourseOutline(tool *tools.OutlineTool, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		courseTitle, err := request.RequireString("course_title")
		if err != nil || courseTitle == "" {
			return textResult("Error: course_title parameter is required"), nil
		}

		text, _, execErr := tool.Execute(ctx, mustMarshal(map[string]interface{}{
			"course_title": courseTitle,
		}))
		if execErr != nil {
			logger.Error().Err(execErr).Str("course", courseTitle).Msg("Outline lookup failed")
		}
		return textResult(text), nil
	}
}

// handleListCourses implements the list_courses tool
func handleListCourses(retriever interfaces.Retriever, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		titles, err := retriever.ListCourseTitles(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Course listing failed")
			return textResult(fmt.Sprintf("List error: %v", err)), nil
		}

		if len(titles) == 0 {
			return textResult("No courses in the catalog."), nil
		}
		return textResult(fmt.Sprintf("Courses (%d):\n%s", len(titles), strings.Join(titles, "\n"))), nil
	}
}

// textResult wraps plain text in an MCP tool result
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// mustMarshal encodes tool arguments built from already-validated values
func mustMarshal(v map[string]interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
