package model

import "time"

// LegacyAnnotation is the pre-anchor record shape: a single-line comment with
// no stored content evidence. Legacy records are upgraded exactly once at
// load time; the rest of the engine only ever sees Annotation.
type LegacyAnnotation struct {
	ID        string
	FilePath  string
	Line      int
	Comment   string
	Snippet   string
	CreatedAt time.Time
}

// UpgradeLegacy converts a legacy record into the current shape. The
// synthesized anchor carries the stored display snippet as its line content,
// which is the only content evidence a legacy record has; it is never enough
// to relocate the annotation, so upgraded records start out outdated.
func UpgradeLegacy(l LegacyAnnotation) Annotation {
	line := l.Line
	if line < 1 {
		line = 1
	}

	return Annotation{
		ID:        l.ID,
		FilePath:  l.FilePath,
		StartLine: line,
		EndLine:   line,
		Body:      l.Comment,
		Snippet:   l.Snippet,
		Status:    StatusOutdated,
		Anchor: &Anchor{
			LineContent:   l.Snippet,
			ContextBefore: []string{},
			ContextAfter:  []string{},
			OriginalStart: line,
			OriginalEnd:   line,
		},
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.CreatedAt,
	}
}
