package model

// Anchor is the content-plus-context evidence attached to an annotation,
// used to relocate it after the underlying file changes. An anchor is built
// once, from the file content the annotation was authored against, and is
// never rewritten by revalidation.
type Anchor struct {
	// BaseLabel and TargetLabel are display-only revision labels (branch
	// names at creation time). They are never consulted by matching logic.
	BaseLabel   string
	TargetLabel string

	// LineContent is the literal join (with "\n") of the anchored lines as
	// they appeared at creation time.
	LineContent string

	// ContextBefore and ContextAfter hold up to the configured number of
	// lines immediately preceding and following the anchored range, clipped
	// at file boundaries and never padded.
	ContextBefore []string
	ContextAfter  []string

	// OriginalStart and OriginalEnd record the 1-based inclusive range the
	// anchor was built from. Informational; validation tests the owning
	// annotation's live line numbers instead.
	OriginalStart int
	OriginalEnd   int
}

// SpanLines returns the number of lines the anchored content covers.
func (a *Anchor) SpanLines() int {
	return a.OriginalEnd - a.OriginalStart + 1
}
