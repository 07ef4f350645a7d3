package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/doceo/internal/models"
)

// ErrCourseNotFound indicates a course name could not be resolved against
// the catalog. Tools translate this into in-band text, never a failure.
var ErrCourseNotFound = errors.New("course not found")

// ChunkMetadata is the per-result provenance returned by a search.
type ChunkMetadata struct {
	CourseTitle  string
	LessonNumber *int
	LessonLink   string
}

// SearchResults pairs matched chunk texts with their metadata, index for
// index.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
}

// IsEmpty reports whether the search matched nothing.
func (r *SearchResults) IsEmpty() bool {
	return r == nil || len(r.Documents) == 0
}

// SearchFilter constrains a content search. Zero values mean
// unconstrained; CourseTitle must already be a resolved catalog title.
type SearchFilter struct {
	CourseTitle  string
	LessonNumber *int
	Limit        int
}

// Retriever is the similarity-search / catalog-lookup collaborator the
// retrieval tools are built on. The production implementation is the
// Badger-backed course store; tests substitute in-memory fakes.
type Retriever interface {
	// Search returns the best-matching chunks for query under the given
	// filter.
	Search(ctx context.Context, query string, filter SearchFilter) (*SearchResults, error)

	// ResolveCourseName resolves a full or partial course name to the
	// exact stored catalog title. Returns ErrCourseNotFound when nothing
	// matches.
	ResolveCourseName(ctx context.Context, name string) (string, error)

	// GetCourseRecord fetches the catalog record (metadata and lessons,
	// not chunk content) for an exact title.
	GetCourseRecord(ctx context.Context, title string) (*models.Course, error)

	// ListCourseTitles returns every catalog title, for analytics.
	ListCourseTitles(ctx context.Context) ([]string, error)

	// UpsertCourse stores or replaces a catalog record.
	UpsertCourse(ctx context.Context, course *models.Course) error

	// UpsertChunks stores or replaces already-chunked course content.
	UpsertChunks(ctx context.Context, chunks []*models.Chunk) error
}
