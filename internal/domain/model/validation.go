package model

// ValidationResult is the outcome of revalidating one annotation against the
// current content of its file. Validation never fails with an error; every
// outcome, including unexpected comparison faults, is reported through this
// structure.
type ValidationResult struct {
	IsValid bool
	Status  AnnotationStatus

	// StartLine and EndLine carry the corrected position when IsValid is
	// true. For StatusCurrent they equal the annotation's existing range.
	StartLine int
	EndLine   int

	// Reason explains invalid outcomes for diagnostic display.
	Reason string
}

// AnnotationWithStatus pairs an annotation with its validation outcome for
// the non-filtering diagnostic view. Unlike the filtered view, every stored
// annotation appears here, including outdated ones.
type AnnotationWithStatus struct {
	Annotation Annotation
	Validation ValidationResult

	// ContentDiff is a unified diff between the anchored content and
	// whatever currently occupies the annotation's recorded range. Populated
	// only for outdated annotations whose file is part of the comparison.
	ContentDiff string
}
