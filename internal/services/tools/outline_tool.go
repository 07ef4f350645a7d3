package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// OutlineTool returns the structural outline of a course: title, link,
// instructor, and the ordered lesson list. Outlines are structural, not
// evidentiary, so the tool never produces citations.
type OutlineTool struct {
	retriever interfaces.Retriever
	logger    arbor.ILogger
}

// NewOutlineTool creates a new course outline tool
func NewOutlineTool(retriever interfaces.Retriever, logger arbor.ILogger) *OutlineTool {
	return &OutlineTool{
		retriever: retriever,
		logger:    logger,
	}
}

// outlineArgs is the decoded argument payload for get_course_outline
type outlineArgs struct {
	CourseTitle string `json:"course_title"`
}

// Definition returns the declaration advertised to the model
func (t *OutlineTool) Definition() interfaces.ToolDeclaration {
	return interfaces.ToolDeclaration{
		Name:        "get_course_outline",
		Description: "Get the complete outline of a course including course title, course link, and all lessons with their numbers and titles",
		InputSchema: interfaces.ToolInputSchema{
			Type: "object",
			Properties: map[string]interfaces.PropertySchema{
				"course_title": {
					Type:        "string",
					Description: "Full or partial title of the course (e.g., 'MCP', 'Introduction to RAG')",
				},
			},
			Required: []string{"course_title"},
		},
	}
}

// Execute resolves the course name and renders its outline
func (t *OutlineTool) Execute(ctx context.Context, args json.RawMessage) (string, []models.Citation, error) {
	var params outlineArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return fmt.Sprintf("Invalid arguments for get_course_outline: %v", err), nil, fmt.Errorf("invalid outline arguments: %w", err)
	}
	if strings.TrimSpace(params.CourseTitle) == "" {
		err := errors.New("course_title is required")
		return "Invalid arguments for get_course_outline: course_title is required", nil, err
	}

	resolved, err := t.retriever.ResolveCourseName(ctx, params.CourseTitle)
	if errors.Is(err, interfaces.ErrCourseNotFound) {
		return fmt.Sprintf("No course found matching '%s'", params.CourseTitle), nil, nil
	}
	if err != nil {
		return fmt.Sprintf("Course lookup failed: %v", err), nil, fmt.Errorf("course lookup failed: %w", err)
	}

	course, err := t.retriever.GetCourseRecord(ctx, resolved)
	if err != nil {
		t.logger.Warn().Err(err).Str("course", resolved).Msg("Failed to load course record")
		return fmt.Sprintf("Error retrieving metadata for course: %s", resolved), nil, fmt.Errorf("course record lookup failed: %w", err)
	}

	return renderOutline(course), nil, nil
}

// renderOutline formats the catalog record with lessons in ascending
// number order.
func renderOutline(course *models.Course) string {
	lessons := make([]models.Lesson, len(course.Lessons))
	copy(lessons, course.Lessons)
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].Number < lessons[j].Number
	})

	parts := []string{
		fmt.Sprintf("Course: %s", course.Title),
		fmt.Sprintf("Instructor: %s", course.Instructor),
	}
	if course.Link != "" {
		parts = append(parts, fmt.Sprintf("Course Link: %s", course.Link))
	}

	parts = append(parts, fmt.Sprintf("\nTotal Lessons: %d", len(lessons)))
	parts = append(parts, "\nLessons:")
	for _, lesson := range lessons {
		parts = append(parts, fmt.Sprintf("  Lesson %d: %s", lesson.Number, lesson.Title))
	}

	return strings.Join(parts, "\n")
}
