package application

import (
	"strings"

	"github.com/reviewpin/reviewpin/internal/domain/model"
)

// DefaultMatchThreshold is the default fraction of context lines that must
// agree for a relocation candidate to be accepted.
const DefaultMatchThreshold = 0.5

// Validator decides whether an anchor still matches file content at its
// recorded position and, when it does not, searches the file for the best
// relocation candidate. Content matching is always exact (after
// normalization); only context matching is fuzzy.
type Validator struct {
	// MatchThreshold is the fraction of context lines, across both sides of
	// a candidate region, that must match for the candidate to be accepted.
	// The majority-agreement semantic must be preserved when tuning this.
	MatchThreshold float64
}

// NewValidator returns a Validator with the default context match threshold.
func NewValidator() *Validator {
	return &Validator{MatchThreshold: DefaultMatchThreshold}
}

// CheckExactPosition reports whether the anchored content still occupies
// lines [startLine, endLine] of currentLines. The caller passes the owning
// annotation's live line numbers, not the anchor's creation-time range.
// Always attempted before a context search: it is O(range length) and covers
// the common case of no edits near the annotation.
func (v *Validator) CheckExactPosition(anchor *model.Anchor, currentLines []string, startLine, endLine int) bool {
	if startLine < 1 || endLine < startLine || endLine > len(currentLines) {
		return false
	}

	region := strings.Join(currentLines[startLine-1:endLine], "\n")
	return Normalize(region) == Normalize(anchor.LineContent)
}

// Relocation is the outcome of a context search. StartLine and EndLine are
// 1-based and inclusive, set only when Found is true.
type Relocation struct {
	Found     bool
	StartLine int
	EndLine   int
}

// FindWithContext scans currentLines for a region whose normalized content
// equals the anchored content and whose surrounding lines agree with the
// anchor's context at MatchThreshold or better. Context lines missing past a
// file boundary count as non-matching.
//
// The scan runs in ascending line order and the first accepted candidate
// wins. That ordering is contractual: callers rely on the lowest matching
// line number being chosen, so it must not be reordered.
func (v *Validator) FindWithContext(anchor *model.Anchor, currentLines []string) Relocation {
	target := Normalize(anchor.LineContent)
	// The candidate span is the anchored range's full line count. Normalize
	// trims outer whitespace including newlines, so blank first or last lines
	// would vanish from a span derived from the normalized text and every
	// candidate window would misalign against the context.
	targetLen := len(SplitLines(anchor.LineContent))

	if targetLen > len(currentLines) {
		return Relocation{}
	}

	for i := 0; i+targetLen <= len(currentLines); i++ {
		region := strings.Join(currentLines[i:i+targetLen], "\n")
		if Normalize(region) != target {
			continue
		}

		if v.contextScore(anchor, currentLines, i, targetLen) >= v.MatchThreshold {
			return Relocation{
				Found:     true,
				StartLine: i + 1,
				EndLine:   i + targetLen,
			}
		}
	}

	return Relocation{}
}

// contextScore returns the fraction of the anchor's context lines that match
// the lines surrounding the candidate region starting at index start. An
// anchor with no context at all scores 1: content equality alone is then
// sufficient, which only happens for ranges spanning an entire file.
func (v *Validator) contextScore(anchor *model.Anchor, lines []string, start, span int) float64 {
	total := len(anchor.ContextBefore) + len(anchor.ContextAfter)
	if total == 0 {
		return 1
	}

	matched := 0

	base := start - len(anchor.ContextBefore)
	for j, want := range anchor.ContextBefore {
		idx := base + j
		if idx >= 0 && idx < len(lines) && Normalize(lines[idx]) == Normalize(want) {
			matched++
		}
	}

	for j, want := range anchor.ContextAfter {
		idx := start + span + j
		if idx >= 0 && idx < len(lines) && Normalize(lines[idx]) == Normalize(want) {
			matched++
		}
	}

	return float64(matched) / float64(total)
}
