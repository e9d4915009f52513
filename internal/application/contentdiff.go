package application

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/reviewpin/reviewpin/internal/domain/model"
)

// diffContext is the number of context lines in diagnostic diff hunks.
const diffContext = 2

// ContentDiff produces a classic unified diff between an annotation's
// anchored content and whatever currently occupies its recorded line range.
// It is a diagnostic aid for the status view; anchoring decisions never
// consume it. Returns "" when the two sides are identical after
// normalization or the annotation has no anchor.
func ContentDiff(ann model.Annotation, content string) string {
	if ann.Anchor == nil {
		return ""
	}

	lines := SplitLines(content)

	start := ann.StartLine - 1
	if start < 0 {
		start = 0
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := ann.EndLine
	if end > len(lines) {
		end = len(lines)
	}

	current := ""
	if start < end {
		current = strings.Join(lines[start:end], "\n")
	}

	anchored := Normalize(ann.Anchor.LineContent)
	if anchored == Normalize(current) {
		return ""
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(anchored),
		B:        splitLinesKeepNL(Normalize(current)),
		FromFile: "anchored",
		ToFile:   "current",
		Context:  diffContext,
	}

	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}

// splitLinesKeepNL splits s into lines, each keeping its trailing newline,
// as difflib expects.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
