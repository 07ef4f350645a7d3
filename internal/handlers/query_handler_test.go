package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// fakeAssistant is a canned AssistantService for handler tests
type fakeAssistant struct {
	response  *interfaces.QueryResponse
	queryErr  error
	analytics *interfaces.CourseAnalytics
	healthErr error
}

func (f *fakeAssistant) Query(ctx context.Context, req *interfaces.QueryRequest) (*interfaces.QueryResponse, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.response, nil
}

func (f *fakeAssistant) CourseAnalytics(ctx context.Context) (*interfaces.CourseAnalytics, error) {
	return f.analytics, nil
}

func (f *fakeAssistant) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func TestQueryHandler_Success(t *testing.T) {
	assistant := &fakeAssistant{
		response: &interfaces.QueryResponse{
			Answer:    "MCP uses JSON-RPC.",
			Sources:   []models.Citation{{Text: "Introduction to MCP - Lesson 1", URL: "https://example.com/mcp/1"}},
			SessionID: "session-123",
		},
	}
	handler := NewQueryHandler(assistant, common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"query": "What transport does MCP use?"}`))
	rec := httptest.NewRecorder()

	handler.QueryHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp interfaces.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MCP uses JSON-RPC.", resp.Answer)
	assert.Equal(t, "session-123", resp.SessionID)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "Introduction to MCP - Lesson 1", resp.Sources[0].Text)
}

func TestQueryHandler_RejectsBadRequests(t *testing.T) {
	handler := NewQueryHandler(&fakeAssistant{}, common.GetLogger())

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "wrong method", method: http.MethodGet, body: "", want: http.StatusMethodNotAllowed},
		{name: "invalid json", method: http.MethodPost, body: "{", want: http.StatusBadRequest},
		{name: "missing query", method: http.MethodPost, body: `{"session_id": "x"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/query", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.QueryHandler(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQueryHandler_AssistantFailure(t *testing.T) {
	handler := NewQueryHandler(&fakeAssistant{queryErr: errors.New("model call failed")}, common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query": "anything"}`))
	rec := httptest.NewRecorder()

	handler.QueryHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model call failed")
}

func TestCourseHandler_ListCourses(t *testing.T) {
	assistant := &fakeAssistant{
		analytics: &interfaces.CourseAnalytics{
			TotalCourses: 2,
			CourseTitles: []string{"Advanced Retrieval", "Introduction to MCP"},
		},
	}
	handler := NewCourseHandler(assistant, nil, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	rec := httptest.NewRecorder()

	handler.CoursesHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var analytics interfaces.CourseAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analytics))
	assert.Equal(t, 2, analytics.TotalCourses)
}

func TestHealthHandler_ReportsStatus(t *testing.T) {
	healthy := NewHealthHandler(&fakeAssistant{}, common.GetLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	healthy.HealthHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy":true`)

	unhealthy := NewHealthHandler(&fakeAssistant{healthErr: errors.New("unauthorized")}, common.GetLogger())
	rec = httptest.NewRecorder()
	unhealthy.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
