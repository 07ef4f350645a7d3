package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// CourseStorage implements the Retriever interface on BadgerDB. Courses
// are catalog records keyed by title; chunks are stored separately and
// matched by keyword overlap at query time.
type CourseStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCourseStorage creates a new CourseStorage instance
func NewCourseStorage(db *BadgerDB, logger arbor.ILogger) *CourseStorage {
	return &CourseStorage{
		db:     db,
		logger: logger,
	}
}

// UpsertCourse stores or replaces a catalog record
func (s *CourseStorage) UpsertCourse(ctx context.Context, course *models.Course) error {
	if course == nil || course.Title == "" {
		return fmt.Errorf("course title is required")
	}

	if err := s.db.Store().Upsert(course.Title, course); err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}

	s.logger.Debug().
		Str("title", course.Title).
		Int("lessons", len(course.Lessons)).
		Msg("Course catalog record stored")

	return nil
}

// UpsertChunks stores or replaces course content chunks
func (s *CourseStorage) UpsertChunks(ctx context.Context, chunks []*models.Chunk) error {
	for _, chunk := range chunks {
		if chunk.CourseTitle == "" {
			return fmt.Errorf("chunk %d has no course title", chunk.ChunkIndex)
		}
		if chunk.ID == "" {
			chunk.ID = models.ChunkKey(chunk.CourseTitle, chunk.ChunkIndex)
		}
		if err := s.db.Store().Upsert(chunk.ID, chunk); err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ID, err)
		}
	}

	s.logger.Debug().Int("chunks", len(chunks)).Msg("Course chunks stored")
	return nil
}

// GetCourseRecord fetches the catalog record for an exact title
func (s *CourseStorage) GetCourseRecord(ctx context.Context, title string) (*models.Course, error) {
	var course models.Course
	err := s.db.Store().Get(title, &course)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course record: %w", err)
	}
	return &course, nil
}

// ListCourseTitles returns every catalog title
func (s *CourseStorage) ListCourseTitles(ctx context.Context) ([]string, error) {
	var courses []models.Course
	if err := s.db.Store().Find(&courses, nil); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	titles := make([]string, 0, len(courses))
	for _, course := range courses {
		titles = append(titles, course.Title)
	}
	sort.Strings(titles)
	return titles, nil
}

// ResolveCourseName resolves a full or partial course name to the exact
// stored catalog title. Matching is case-insensitive: exact title first,
// then substring, then best token overlap.
func (s *CourseStorage) ResolveCourseName(ctx context.Context, name string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", interfaces.ErrCourseNotFound
	}

	titles, err := s.ListCourseTitles(ctx)
	if err != nil {
		return "", err
	}

	// Exact match
	for _, title := range titles {
		if strings.ToLower(title) == needle {
			return title, nil
		}
	}

	// Substring match
	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), needle) {
			return title, nil
		}
	}

	// Token overlap: the title sharing the most query tokens wins
	queryTokens := tokenize(needle)
	bestScore := 0
	bestTitle := ""
	for _, title := range titles {
		score := overlap(queryTokens, tokenize(strings.ToLower(title)))
		if score > bestScore {
			bestScore = score
			bestTitle = title
		}
	}
	if bestTitle != "" {
		return bestTitle, nil
	}

	s.logger.Debug().Str("name", name).Msg("Course name did not resolve")
	return "", interfaces.ErrCourseNotFound
}

// Search returns the best-matching chunks for query under the given
// filter, scored by keyword overlap between query and chunk content.
func (s *CourseStorage) Search(ctx context.Context, query string, filter interfaces.SearchFilter) (*interfaces.SearchResults, error) {
	var q *badgerhold.Query
	if filter.CourseTitle != "" {
		q = badgerhold.Where("CourseTitle").Eq(filter.CourseTitle).Index("CourseTitle")
	}

	var chunks []models.Chunk
	if err := s.db.Store().Find(&chunks, q); err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	queryTokens := tokenize(strings.ToLower(query))

	type scored struct {
		chunk models.Chunk
		score int
	}
	matches := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		if filter.LessonNumber != nil {
			if chunk.LessonNumber == nil || *chunk.LessonNumber != *filter.LessonNumber {
				continue
			}
		}
		score := overlap(queryTokens, tokenize(strings.ToLower(chunk.Content)))
		if score > 0 {
			matches = append(matches, scored{chunk: chunk, score: score})
		}
	}

	// Stable ranking: score, then catalog order
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		if matches[i].chunk.CourseTitle != matches[j].chunk.CourseTitle {
			return matches[i].chunk.CourseTitle < matches[j].chunk.CourseTitle
		}
		return matches[i].chunk.ChunkIndex < matches[j].chunk.ChunkIndex
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := &interfaces.SearchResults{
		Documents: make([]string, 0, len(matches)),
		Metadata:  make([]interfaces.ChunkMetadata, 0, len(matches)),
	}
	lessonLinks := map[string]map[int]string{}
	for _, m := range matches {
		results.Documents = append(results.Documents, m.chunk.Content)
		results.Metadata = append(results.Metadata, interfaces.ChunkMetadata{
			CourseTitle:  m.chunk.CourseTitle,
			LessonNumber: m.chunk.LessonNumber,
			LessonLink:   s.lessonLink(ctx, lessonLinks, m.chunk),
		})
	}

	s.logger.Debug().
		Str("query", query).
		Str("course", filter.CourseTitle).
		Int("matched", len(results.Documents)).
		Msg("Chunk search complete")

	return results, nil
}

// lessonLink resolves the link for a chunk's lesson from its catalog
// record, caching per-course lookups for the duration of one search.
func (s *CourseStorage) lessonLink(ctx context.Context, cache map[string]map[int]string, chunk models.Chunk) string {
	if chunk.LessonNumber == nil {
		return ""
	}

	links, ok := cache[chunk.CourseTitle]
	if !ok {
		links = map[int]string{}
		if course, err := s.GetCourseRecord(ctx, chunk.CourseTitle); err == nil {
			for _, lesson := range course.Lessons {
				links[lesson.Number] = lesson.Link
			}
		}
		cache[chunk.CourseTitle] = links
	}

	return links[*chunk.LessonNumber]
}

// tokenize splits text into lowercase word tokens, dropping short noise words
func tokenize(text string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		if len(field) < 3 {
			continue
		}
		tokens[strings.ToLower(field)] = struct{}{}
	}
	return tokens
}

// overlap counts tokens present in both sets
func overlap(a, b map[string]struct{}) int {
	count := 0
	for token := range a {
		if _, ok := b[token]; ok {
			count++
		}
	}
	return count
}
