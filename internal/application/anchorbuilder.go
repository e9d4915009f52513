package application

import (
	"strings"

	"github.com/reviewpin/reviewpin/internal/domain/model"
)

// DefaultContextLines is the default number of lines captured on each side
// of an anchored range.
const DefaultContextLines = 3

// BuildAnchor captures the evidence needed to relocate an annotation: the
// exact text of lines [startLine, endLine] (1-based, inclusive) plus up to
// DefaultContextLines of surrounding context.
//
// The range must already be validated against content by the caller;
// behavior for an out-of-range span is undefined.
func BuildAnchor(content string, startLine, endLine int) model.Anchor {
	return BuildAnchorWindow(content, startLine, endLine, DefaultContextLines)
}

// BuildAnchorWindow is BuildAnchor with an explicit context window size.
// Context is clipped at file boundaries and never padded: an anchor at the
// top of the file simply carries fewer (or zero) preceding lines.
func BuildAnchorWindow(content string, startLine, endLine, window int) model.Anchor {
	if window < 0 {
		window = 0
	}

	lines := SplitLines(content)

	beforeStart := startLine - 1 - window
	if beforeStart < 0 {
		beforeStart = 0
	}

	afterEnd := endLine + window
	if afterEnd > len(lines) {
		afterEnd = len(lines)
	}

	before := append([]string{}, lines[beforeStart:startLine-1]...)
	after := append([]string{}, lines[endLine:afterEnd]...)

	return model.Anchor{
		LineContent:   strings.Join(lines[startLine-1:endLine], "\n"),
		ContextBefore: before,
		ContextAfter:  after,
		OriginalStart: startLine,
		OriginalEnd:   endLine,
	}
}
