package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/query", s.app.QueryHandler.QueryHandler)
	mux.HandleFunc("/api/courses", s.app.CourseHandler.CoursesHandler)
	mux.HandleFunc("/api/health", s.app.HealthHandler.HealthHandler)

	return mux
}
