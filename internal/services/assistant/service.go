package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/services/generation"
	"github.com/ternarybob/doceo/internal/services/session"
	"github.com/ternarybob/doceo/internal/services/tools"
)

// Service orchestrates one query end to end: render session history,
// run the generation engine, collect citations, and record the
// exchange.
type Service struct {
	engine    *generation.Engine
	registry  *tools.Registry
	retriever interfaces.Retriever
	llm       interfaces.LLMService
	sessions  *session.Manager
	logger    arbor.ILogger
}

// NewService creates a new assistant service
func NewService(
	engine *generation.Engine,
	registry *tools.Registry,
	retriever interfaces.Retriever,
	llm interfaces.LLMService,
	sessions *session.Manager,
	logger arbor.ILogger,
) *Service {
	return &Service{
		engine:    engine,
		registry:  registry,
		retriever: retriever,
		llm:       llm,
		sessions:  sessions,
		logger:    logger,
	}
}

// Query answers one question. A missing session ID starts a new
// session; the exchange is recorded after the answer is produced so a
// query never sees its own text as history.
func (s *Service) Query(ctx context.Context, req *interfaces.QueryRequest) (*interfaces.QueryResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.sessions.CreateSession()
	}

	history := s.sessions.Render(sessionID)

	s.registry.ClearCitations()
	answer, err := s.engine.Generate(ctx, req.Query, history)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	sources := s.registry.Citations()
	s.registry.ClearCitations()

	s.sessions.AddExchange(sessionID, req.Query, answer)

	s.logger.Debug().
		Str("session_id", sessionID).
		Int("answer_length", len(answer)).
		Int("sources", len(sources)).
		Msg("Query answered")

	return &interfaces.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// CourseAnalytics reports catalog size and titles
func (s *Service) CourseAnalytics(ctx context.Context) (*interfaces.CourseAnalytics, error) {
	titles, err := s.retriever.ListCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load course catalog: %w", err)
	}

	return &interfaces.CourseAnalytics{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}

// HealthCheck verifies the model boundary is reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.llm.HealthCheck(ctx)
}
