package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/handlers"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/services/assistant"
	"github.com/ternarybob/doceo/internal/services/generation"
	"github.com/ternarybob/doceo/internal/services/llm"
	"github.com/ternarybob/doceo/internal/services/session"
	"github.com/ternarybob/doceo/internal/services/tools"
	badgerstorage "github.com/ternarybob/doceo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB        *badgerstorage.BadgerDB
	Retriever interfaces.Retriever

	LLMService     interfaces.LLMService
	ToolRegistry   *tools.Registry
	Engine         *generation.Engine
	SessionManager *session.Manager
	Assistant      interfaces.AssistantService

	// HTTP handlers
	QueryHandler  *handlers.QueryHandler
	CourseHandler *handlers.CourseHandler
	HealthHandler *handlers.HealthHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	db, err := badgerstorage.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db
	app.Retriever = badgerstorage.NewCourseStorage(db, logger)

	llmService, err := llm.NewLLMService(cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	app.LLMService = llmService

	registry := tools.NewRegistry(logger)
	if err := registry.Register(tools.NewSearchContentTool(app.Retriever, cfg.Search.MaxResults, logger)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register search tool: %w", err)
	}
	if err := registry.Register(tools.NewOutlineTool(app.Retriever, logger)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register outline tool: %w", err)
	}
	app.ToolRegistry = registry

	app.Engine = generation.NewEngine(llmService, registry, logger, &generation.EngineConfig{
		MaxRounds: cfg.Chat.MaxRounds,
	})
	app.SessionManager = session.NewManager(cfg.Session.MaxHistory, logger)

	app.Assistant = assistant.NewService(
		app.Engine,
		registry,
		app.Retriever,
		llmService,
		app.SessionManager,
		logger,
	)

	app.QueryHandler = handlers.NewQueryHandler(app.Assistant, logger)
	app.CourseHandler = handlers.NewCourseHandler(app.Assistant, app.Retriever, logger)
	app.HealthHandler = handlers.NewHealthHandler(app.Assistant, logger)

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Int("max_rounds", cfg.Chat.MaxRounds).
		Msg("Application initialized")

	return app, nil
}

// Close releases application resources in reverse initialization order
func (a *App) Close(ctx context.Context) error {
	var firstErr error

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return firstErr
}
