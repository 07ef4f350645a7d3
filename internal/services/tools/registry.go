package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Registry holds the available tools, dispatches invocations by name,
// and threads the citations each invocation produced. Citations persist
// until explicitly cleared by the layer that consumed them.
type Registry struct {
	logger arbor.ILogger

	mu        sync.Mutex
	tools     map[string]Tool
	order     []string
	citations map[string][]models.Citation // last citations per tool name
}

// NewRegistry creates an empty tool registry
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{
		logger:    logger,
		tools:     make(map[string]Tool),
		citations: make(map[string][]models.Citation),
	}
}

// Register adds a tool. An empty or duplicate declared name is a
// configuration error.
func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool must declare a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' is already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	r.logger.Debug().Str("tool", name).Msg("Tool registered")
	return nil
}

// Catalog returns the declarations of all registered tools, in
// registration order.
func (r *Registry) Catalog() []interfaces.ToolDeclaration {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog := make([]interfaces.ToolDeclaration, 0, len(r.order))
	for _, name := range r.order {
		catalog = append(catalog, r.tools[name].Definition())
	}
	return catalog
}

// Invoke executes a tool by name. An unknown name is answered in-band;
// invocation must never break the generation loop. A non-nil error
// flags an argument or execution failure (the text is still the in-band
// message for the model).
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	r.mu.Lock()
	tool, exists := r.tools[name]
	r.mu.Unlock()

	if !exists {
		r.logger.Warn().Str("tool", name).Msg("Unknown tool requested")
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}

	text, citations, err := tool.Execute(ctx, args)

	r.mu.Lock()
	r.citations[name] = citations
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn().Err(err).Str("tool", name).Msg("Tool invocation failed")
		return text, err
	}

	r.logger.Debug().
		Str("tool", name).
		Int("result_length", len(text)).
		Int("citations", len(citations)).
		Msg("Tool invocation complete")

	return text, nil
}

// Citations returns the first non-empty citation set recorded by any
// registered tool, in registration order. At most one tool produces
// citations per round in practice, but the contract does not assume it.
func (r *Registry) Citations() []models.Citation {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if citations := r.citations[name]; len(citations) > 0 {
			return citations
		}
	}
	return nil
}

// ClearCitations drops all recorded citations. Called by the layer that
// consumed them, after a full query/response cycle.
func (r *Registry) ClearCitations() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.citations = make(map[string][]models.Citation)
}
