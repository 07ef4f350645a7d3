package tools

import (
	"context"
	"encoding/json"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Tool is one capability the generation engine can offer the model. A
// tool declares itself once and executes against raw JSON arguments.
//
// Execute is total from the engine's point of view: the returned text is
// always usable as a tool result, including failure cases. A non-nil
// error additionally marks the invocation as failed (bad arguments or an
// underlying retrieval failure) so the engine can cut the round short;
// resolution misses and empty result sets are plain text with a nil
// error.
type Tool interface {
	// Definition returns the declaration advertised to the model.
	Definition() interfaces.ToolDeclaration

	// Execute runs the tool. Citations are returned explicitly rather
	// than parked on tool state; the registry threads them to the caller.
	Execute(ctx context.Context, args json.RawMessage) (string, []models.Citation, error)
}
