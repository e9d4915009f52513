package model

import "time"

// AnnotationStatus represents the positioning state of an annotation after
// its most recent revalidation.
type AnnotationStatus string

const (
	// StatusCurrent means the anchored content still sits at the recorded lines.
	StatusCurrent AnnotationStatus = "current"
	// StatusMoved means the content was relocated elsewhere via context matching.
	StatusMoved AnnotationStatus = "moved"
	// StatusOutdated means the anchored content could not be found anymore.
	StatusOutdated AnnotationStatus = "outdated"
)

// Annotation represents a user-authored review comment bound to a line range
// within a file. StartLine and EndLine are 1-based and inclusive, with
// StartLine <= EndLine. Revalidation may rewrite StartLine, EndLine, and
// Status in place; every other field is fixed at creation (UpdateText also
// refreshes Body and UpdatedAt).
type Annotation struct {
	ID        string
	FilePath  string
	StartLine int
	EndLine   int
	Body      string
	Snippet   string
	Status    AnnotationStatus
	Anchor    *Anchor // Nil only for legacy records that predate anchoring.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineCount returns the number of lines the annotation spans.
func (a *Annotation) LineCount() int {
	return a.EndLine - a.StartLine + 1
}
