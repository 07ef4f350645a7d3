package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchContentTool returns the search_course_content tool definition
func createSearchContentTool() mcp.Tool {
	return mcp.NewTool("search_course_content",
		mcp.WithDescription("Search course materials with smart course name matching and lesson filtering"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to search for in the course content"),
		),
		mcp.WithString("course_name",
			mcp.Description("Course title (partial matches work, e.g. 'MCP', 'Introduction')"),
		),
		mcp.WithNumber("lesson_number",
			mcp.Description("Specific lesson number to search within (e.g. 1, 2, 3)"),
		),
	)
}

// createCourseOutlineTool returns the get_course_outline tool definition
func createCourseOutlineTool() mcp.Tool {
	return mcp.NewTool("get_course_outline",
		mcp.WithDescription("Get the complete outline of a course including course title, course link, and all lessons with their numbers and titles"),
		mcp.WithString("course_title",
			mcp.Required(),
			mcp.Description("Full or partial title of the course (e.g., 'MCP', 'Introduction to RAG')"),
		),
	)
}

// createListCoursesTool returns the list_courses tool definition
func createListCoursesTool() mcp.Tool {
	return mcp.NewTool("list_courses",
		mcp.WithDescription("List the titles of all courses in the catalog"),
	)
}
