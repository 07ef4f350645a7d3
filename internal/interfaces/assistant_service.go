package interfaces

import (
	"context"

	"github.com/ternarybob/doceo/internal/models"
)

// QueryRequest is a single user question, optionally continuing an
// existing session.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse carries the final answer, the deduplicated citations
// collected during tool execution, and the session the exchange was
// recorded under.
type QueryResponse struct {
	Answer    string            `json:"answer"`
	Sources   []models.Citation `json:"sources"`
	SessionID string            `json:"session_id"`
}

// CourseAnalytics summarizes the catalog for the courses endpoint.
type CourseAnalytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// AssistantService is the engine's public call: answer a question with
// retrieval tools and session context.
type AssistantService interface {
	// Query answers one question. A missing session id starts a new
	// session; the id used is echoed in the response.
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

	// CourseAnalytics reports catalog size and titles.
	CourseAnalytics(ctx context.Context) (*CourseAnalytics, error)

	// HealthCheck verifies the model boundary is reachable.
	HealthCheck(ctx context.Context) error
}
