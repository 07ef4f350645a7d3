package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

func newTestStorage(t *testing.T) *CourseStorage {
	t.Helper()

	logger := common.GetLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "doceo-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewCourseStorage(db, logger)
}

func intPtr(n int) *int { return &n }

func seedCatalog(t *testing.T, storage *CourseStorage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, storage.UpsertCourse(ctx, &models.Course{
		Title:      "Introduction to MCP",
		Link:       "https://example.com/mcp",
		Instructor: "Ada Lovelace",
		Lessons: []models.Lesson{
			{Number: 1, Title: "Protocol Basics", Link: "https://example.com/mcp/1"},
			{Number: 2, Title: "Servers and Transports", Link: "https://example.com/mcp/2"},
		},
	}))
	require.NoError(t, storage.UpsertCourse(ctx, &models.Course{
		Title:      "Advanced Retrieval",
		Instructor: "Grace Hopper",
		Lessons: []models.Lesson{
			{Number: 1, Title: "Chunking", Link: "https://example.com/ar/1"},
		},
	}))

	require.NoError(t, storage.UpsertChunks(ctx, []*models.Chunk{
		{Content: "MCP servers speak JSON-RPC over stdio transports.", CourseTitle: "Introduction to MCP", LessonNumber: intPtr(1), ChunkIndex: 0},
		{Content: "Transports include stdio and server-sent events.", CourseTitle: "Introduction to MCP", LessonNumber: intPtr(2), ChunkIndex: 1},
		{Content: "Chunking splits documents into overlapping windows.", CourseTitle: "Advanced Retrieval", LessonNumber: intPtr(1), ChunkIndex: 0},
	}))
}

func TestCourseStorage_GetCourseRecord(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	course, err := storage.GetCourseRecord(ctx, "Introduction to MCP")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", course.Instructor)
	assert.Len(t, course.Lessons, 2)

	_, err = storage.GetCourseRecord(ctx, "Nope")
	assert.ErrorIs(t, err, interfaces.ErrCourseNotFound)
}

func TestCourseStorage_ListCourseTitlesSorted(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)

	titles, err := storage.ListCourseTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Advanced Retrieval", "Introduction to MCP"}, titles)
}

func TestCourseStorage_ResolveCourseName(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "exact match", input: "Introduction to MCP", want: "Introduction to MCP"},
		{name: "case insensitive", input: "introduction to mcp", want: "Introduction to MCP"},
		{name: "substring", input: "MCP", want: "Introduction to MCP"},
		{name: "token overlap", input: "retrieval course", want: "Advanced Retrieval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ResolveCourseName(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := storage.ResolveCourseName(ctx, "Bioinformatics")
	assert.ErrorIs(t, err, interfaces.ErrCourseNotFound)

	_, err = storage.ResolveCourseName(ctx, "   ")
	assert.ErrorIs(t, err, interfaces.ErrCourseNotFound)
}

func TestCourseStorage_SearchUnfiltered(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)

	results, err := storage.Search(context.Background(), "stdio transports", interfaces.SearchFilter{})
	require.NoError(t, err)
	require.False(t, results.IsEmpty())

	// The lesson 1 chunk matches both query tokens and ranks first
	assert.Contains(t, results.Documents[0], "JSON-RPC over stdio")
	assert.Equal(t, "Introduction to MCP", results.Metadata[0].CourseTitle)
	require.NotNil(t, results.Metadata[0].LessonNumber)
	assert.Equal(t, 1, *results.Metadata[0].LessonNumber)
	assert.Equal(t, "https://example.com/mcp/1", results.Metadata[0].LessonLink)
}

func TestCourseStorage_SearchCourseFilter(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)

	results, err := storage.Search(context.Background(), "chunking documents", interfaces.SearchFilter{
		CourseTitle: "Introduction to MCP",
	})
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())

	results, err = storage.Search(context.Background(), "chunking documents", interfaces.SearchFilter{
		CourseTitle: "Advanced Retrieval",
	})
	require.NoError(t, err)
	require.False(t, results.IsEmpty())
	assert.Equal(t, "Advanced Retrieval", results.Metadata[0].CourseTitle)
}

func TestCourseStorage_SearchLessonFilter(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)

	results, err := storage.Search(context.Background(), "transports", interfaces.SearchFilter{
		CourseTitle:  "Introduction to MCP",
		LessonNumber: intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, results.Documents, 1)
	assert.Contains(t, results.Documents[0], "server-sent events")
}

func TestCourseStorage_SearchLimit(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)

	results, err := storage.Search(context.Background(), "transports stdio chunking documents", interfaces.SearchFilter{
		Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, results.Documents, 1)
}

func TestCourseStorage_SearchNoMatches(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)

	results, err := storage.Search(context.Background(), "quantum entanglement", interfaces.SearchFilter{})
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())
}

func TestCourseStorage_UpsertCourseReplaces(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.UpsertCourse(ctx, &models.Course{Title: "X", Instructor: "First"}))
	require.NoError(t, storage.UpsertCourse(ctx, &models.Course{Title: "X", Instructor: "Second"}))

	course, err := storage.GetCourseRecord(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "Second", course.Instructor)

	titles, err := storage.ListCourseTitles(ctx)
	require.NoError(t, err)
	assert.Len(t, titles, 1)
}
