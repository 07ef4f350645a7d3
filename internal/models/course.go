package models

import "fmt"

// Course represents one ingested course and owns its lessons.
// The title doubles as the unique identifier across the catalog.
type Course struct {
	Title      string   `json:"title" badgerhold:"key"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is a single numbered lesson within a course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Chunk is a span of course text as stored for retrieval. It references
// its course by title only; removing a course does not require chunks to
// be touched first.
type Chunk struct {
	ID           string `json:"id" badgerhold:"key"` // <course_title>::<chunk_index>
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title" badgerhold:"index"`
	LessonNumber *int   `json:"lesson_number,omitempty"` // nil for course-level material
	ChunkIndex   int    `json:"chunk_index"`
}

// ChunkKey builds the storage key for a chunk of the given course.
func ChunkKey(courseTitle string, chunkIndex int) string {
	return fmt.Sprintf("%s::%d", courseTitle, chunkIndex)
}

// Citation is a provenance record returned to the end user alongside an
// answer. Text is "<course_title>" or "<course_title> - Lesson <n>".
type Citation struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// CitationText renders the user-facing citation label for a course/lesson pair.
func CitationText(courseTitle string, lessonNumber *int) string {
	if lessonNumber != nil {
		return fmt.Sprintf("%s - Lesson %d", courseTitle, *lessonNumber)
	}
	return courseTitle
}
