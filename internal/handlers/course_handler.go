package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// CourseHandler handles course catalog HTTP requests
type CourseHandler struct {
	assistant interfaces.AssistantService
	retriever interfaces.Retriever
	logger    arbor.ILogger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(assistant interfaces.AssistantService, retriever interfaces.Retriever, logger arbor.ILogger) *CourseHandler {
	return &CourseHandler{
		assistant: assistant,
		retriever: retriever,
		logger:    logger,
	}
}

// ingestRequest is one course plus its content chunks
type ingestRequest struct {
	Course models.Course `json:"course"`
	Chunks []ingestChunk `json:"chunks"`
}

type ingestChunk struct {
	Content      string `json:"content"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// CoursesHandler handles GET and POST /api/courses requests
func (h *CourseHandler) CoursesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCourses(w, r)
	case http.MethodPost:
		h.ingestCourse(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listCourses returns catalog analytics
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.assistant.CourseAnalytics(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load course analytics")
		writeError(w, http.StatusInternalServerError, "Failed to load courses: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// ingestCourse stores a course catalog record and its content chunks
func (h *CourseHandler) ingestCourse(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode ingest request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Course.Title == "" {
		writeError(w, http.StatusBadRequest, "Course title is required")
		return
	}

	ctx := r.Context()
	if err := h.retriever.UpsertCourse(ctx, &req.Course); err != nil {
		h.logger.Error().Err(err).Str("course", req.Course.Title).Msg("Failed to store course")
		writeError(w, http.StatusInternalServerError, "Failed to store course: "+err.Error())
		return
	}

	chunks := make([]*models.Chunk, 0, len(req.Chunks))
	for _, c := range req.Chunks {
		chunks = append(chunks, &models.Chunk{
			Content:      c.Content,
			CourseTitle:  req.Course.Title,
			LessonNumber: c.LessonNumber,
			ChunkIndex:   c.ChunkIndex,
		})
	}
	if err := h.retriever.UpsertChunks(ctx, chunks); err != nil {
		h.logger.Error().Err(err).Str("course", req.Course.Title).Msg("Failed to store chunks")
		writeError(w, http.StatusInternalServerError, "Failed to store chunks: "+err.Error())
		return
	}

	h.logger.Info().
		Str("course", req.Course.Title).
		Int("chunks", len(chunks)).
		Msg("Course ingested")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"course":  req.Course.Title,
		"chunks":  len(chunks),
	})
}
