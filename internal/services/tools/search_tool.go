package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// SearchContentTool searches course chunks with smart course name
// matching and optional lesson filtering.
type SearchContentTool struct {
	retriever  interfaces.Retriever
	maxResults int
	logger     arbor.ILogger
}

// NewSearchContentTool creates a new content search tool
func NewSearchContentTool(retriever interfaces.Retriever, maxResults int, logger arbor.ILogger) *SearchContentTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchContentTool{
		retriever:  retriever,
		maxResults: maxResults,
		logger:     logger,
	}
}

// searchArgs is the decoded argument payload for search_course_content
type searchArgs struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

// Definition returns the declaration advertised to the model
func (t *SearchContentTool) Definition() interfaces.ToolDeclaration {
	return interfaces.ToolDeclaration{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: interfaces.ToolInputSchema{
			Type: "object",
			Properties: map[string]interfaces.PropertySchema{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute resolves the optional course filter, runs the search, and
// formats matched chunks with provenance headers. Citations are
// deduplicated by (course, lesson); first occurrence wins.
func (t *SearchContentTool) Execute(ctx context.Context, args json.RawMessage) (string, []models.Citation, error) {
	var params searchArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return fmt.Sprintf("Invalid arguments for search_course_content: %v", err), nil, fmt.Errorf("invalid search arguments: %w", err)
	}
	if strings.TrimSpace(params.Query) == "" {
		err := errors.New("query is required")
		return "Invalid arguments for search_course_content: query is required", nil, err
	}

	filter := interfaces.SearchFilter{
		LessonNumber: params.LessonNumber,
		Limit:        t.maxResults,
	}

	if params.CourseName != "" {
		resolved, err := t.retriever.ResolveCourseName(ctx, params.CourseName)
		if errors.Is(err, interfaces.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", params.CourseName), nil, nil
		}
		if err != nil {
			return fmt.Sprintf("Course lookup failed: %v", err), nil, fmt.Errorf("course lookup failed: %w", err)
		}
		filter.CourseTitle = resolved
	}

	results, err := t.retriever.Search(ctx, params.Query, filter)
	if err != nil {
		t.logger.Warn().Err(err).Str("query", params.Query).Msg("Content search failed")
		return fmt.Sprintf("Search failed: %v", err), nil, fmt.Errorf("content search failed: %w", err)
	}

	if results.IsEmpty() {
		return emptyResultMessage(params.CourseName, params.LessonNumber), nil, nil
	}

	text, citations := formatResults(results)
	return text, citations, nil
}

// emptyResultMessage names the filters that were applied so the caller
// can tell "nothing matched" apart from "no filters requested".
func emptyResultMessage(courseName string, lessonNumber *int) string {
	var filterInfo strings.Builder
	if courseName != "" {
		fmt.Fprintf(&filterInfo, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&filterInfo, " in lesson %d", *lessonNumber)
	}
	return fmt.Sprintf("No relevant content found%s.", filterInfo.String())
}

// formatResults renders chunk blocks with "[<course> - Lesson <n>]"
// headers joined by blank lines, and collects deduplicated citations.
func formatResults(results *interfaces.SearchResults) (string, []models.Citation) {
	type citationKey struct {
		course string
		lesson int // -1 for course-level material
	}

	blocks := make([]string, 0, len(results.Documents))
	citations := make([]models.Citation, 0, len(results.Documents))
	seen := map[citationKey]struct{}{}

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := "[" + meta.CourseTitle
		if meta.LessonNumber != nil {
			header += fmt.Sprintf(" - Lesson %d", *meta.LessonNumber)
		}
		header += "]"
		blocks = append(blocks, header+"\n"+doc)

		key := citationKey{course: meta.CourseTitle, lesson: -1}
		if meta.LessonNumber != nil {
			key.lesson = *meta.LessonNumber
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		citations = append(citations, models.Citation{
			Text: models.CitationText(meta.CourseTitle, meta.LessonNumber),
			URL:  meta.LessonLink,
		})
	}

	return strings.Join(blocks, "\n\n"), citations
}
