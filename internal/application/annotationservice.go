package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reviewpin/reviewpin/internal/domain/model"
	"github.com/reviewpin/reviewpin/internal/domain/port/driven"
)

// Sentinel errors for annotation CRUD operations.
var (
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrInvalidRange       = errors.New("line range outside file bounds")
)

// maxSnippetLen caps auto-derived display snippets.
const maxSnippetLen = 120

// AnnotationService owns the annotation collection. It creates anchored
// annotations, revalidates them against current file content, applies
// position corrections to the stored records, and performs CRUD mutations.
//
// Every mutation is a read-full-collection-then-write-full-collection cycle
// against the store, so the service serializes them with a mutex. Validation
// itself is pure computation; results are deterministic for a given
// (annotation, content) pair and carry no cross-call cache.
type AnnotationService struct {
	mu           sync.Mutex
	store        driven.AnnotationStore
	validator    *Validator
	contextLines int
}

// NewAnnotationService creates an AnnotationService. contextLines controls
// how many surrounding lines new anchors capture on each side; values below
// 1 fall back to DefaultContextLines.
func NewAnnotationService(store driven.AnnotationStore, validator *Validator, contextLines int) *AnnotationService {
	if validator == nil {
		validator = NewValidator()
	}
	if contextLines < 1 {
		contextLines = DefaultContextLines
	}

	return &AnnotationService{
		store:        store,
		validator:    validator,
		contextLines: contextLines,
	}
}

// AddParams carries the inputs for creating a new annotation. FileContent is
// the full text of the file the user is commenting on, at the snapshot the
// range refers to. BaseLabel and TargetLabel are display-only revision
// labels recorded on the anchor.
type AddParams struct {
	FilePath    string
	StartLine   int
	EndLine     int
	Body        string
	Snippet     string
	FileContent string
	BaseLabel   string
	TargetLabel string
}

// Add creates an annotation anchored to the given range and persists it.
// The range is validated against FileContent here because the anchor builder
// itself does not defend against out-of-range spans. When no snippet is
// supplied, one is derived from the first anchored line.
func (s *AnnotationService) Add(ctx context.Context, p AddParams) (model.Annotation, error) {
	lines := SplitLines(p.FileContent)
	if p.StartLine < 1 || p.EndLine < p.StartLine || p.EndLine > len(lines) {
		return model.Annotation{}, fmt.Errorf("add annotation for %s lines %d-%d: %w",
			p.FilePath, p.StartLine, p.EndLine, ErrInvalidRange)
	}

	anchor := BuildAnchorWindow(p.FileContent, p.StartLine, p.EndLine, s.contextLines)
	anchor.BaseLabel = p.BaseLabel
	anchor.TargetLabel = p.TargetLabel

	snippet := p.Snippet
	if snippet == "" {
		snippet = deriveSnippet(anchor.LineContent)
	}

	now := time.Now().UTC()
	ann := model.Annotation{
		ID:        uuid.NewString(),
		FilePath:  p.FilePath,
		StartLine: p.StartLine,
		EndLine:   p.EndLine,
		Body:      p.Body,
		Snippet:   snippet,
		Status:    model.StatusCurrent,
		Anchor:    &anchor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return model.Annotation{}, err
	}

	all = append(all, ann)
	if err := s.store.ReplaceAll(ctx, all); err != nil {
		return model.Annotation{}, err
	}

	slog.Debug("annotation added",
		"id", ann.ID,
		"file", ann.FilePath,
		"start_line", ann.StartLine,
		"end_line", ann.EndLine,
	)

	return ann, nil
}

// UpdateText replaces an annotation's body and refreshes its modification
// timestamp. Returns ErrAnnotationNotFound if no annotation has the id.
func (s *AnnotationService) UpdateText(ctx context.Context, id, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return err
	}

	for i := range all {
		if all[i].ID == id {
			all[i].Body = body
			all[i].UpdatedAt = time.Now().UTC()
			return s.store.ReplaceAll(ctx, all)
		}
	}

	return fmt.Errorf("update annotation %s: %w", id, ErrAnnotationNotFound)
}

// DeleteByID removes the annotation with the given id. The returned bool
// reports whether anything was removed.
func (s *AnnotationService) DeleteByID(ctx context.Context, id string) (bool, error) {
	return s.deleteWhere(ctx, func(a model.Annotation) bool {
		return a.ID == id
	})
}

// DeleteByLocation removes annotations matching the (filePath, startLine,
// endLine) triple. The returned bool reports whether anything was removed.
func (s *AnnotationService) DeleteByLocation(ctx context.Context, filePath string, startLine, endLine int) (bool, error) {
	return s.deleteWhere(ctx, func(a model.Annotation) bool {
		return a.FilePath == filePath && a.StartLine == startLine && a.EndLine == endLine
	})
}

// ClearAll removes every stored annotation.
func (s *AnnotationService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.ReplaceAll(ctx, []model.Annotation{})
}

func (s *AnnotationService) deleteWhere(ctx context.Context, match func(model.Annotation) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return false, err
	}

	kept := all[:0]
	for _, a := range all {
		if !match(a) {
			kept = append(kept, a)
		}
	}

	if len(kept) == len(all) {
		return false, nil
	}

	return true, s.store.ReplaceAll(ctx, kept)
}

// Revalidate checks a single annotation against the current full content of
// its file. The outcome is always reported through the ValidationResult;
// unexpected faults during comparison (a corrupt anchor, for example) are
// recovered and folded into an outdated outcome rather than propagated.
func (s *AnnotationService) Revalidate(ann model.Annotation, content string) (result model.ValidationResult) {
	defer func() {
		if v := recover(); v != nil {
			result = model.ValidationResult{
				IsValid: false,
				Status:  model.StatusOutdated,
				Reason:  fmt.Sprintf("Validation error: %v", v),
			}
		}
	}()

	if ann.Anchor == nil {
		return model.ValidationResult{
			IsValid: false,
			Status:  model.StatusOutdated,
			Reason:  "Legacy comment format",
		}
	}

	lines := SplitLines(content)

	if s.validator.CheckExactPosition(ann.Anchor, lines, ann.StartLine, ann.EndLine) {
		return model.ValidationResult{
			IsValid:   true,
			Status:    model.StatusCurrent,
			StartLine: ann.StartLine,
			EndLine:   ann.EndLine,
		}
	}

	if rel := s.validator.FindWithContext(ann.Anchor, lines); rel.Found {
		return model.ValidationResult{
			IsValid:   true,
			Status:    model.StatusMoved,
			StartLine: rel.StartLine,
			EndLine:   rel.EndLine,
		}
	}

	reason := "Lines have been modified or removed"
	if ann.EndLine > len(lines) {
		reason = fmt.Sprintf("Line range %d-%d is out of bounds (file has %d lines)",
			ann.StartLine, ann.EndLine, len(lines))
	}

	return model.ValidationResult{
		IsValid: false,
		Status:  model.StatusOutdated,
		Reason:  reason,
	}
}

// ValidForFiles revalidates every stored annotation against contentByPath
// and returns the valid ones with corrected positions. Annotations whose
// file is absent from the map are excluded (not part of the comparison);
// invalid annotations are excluded but never deleted. Position and status
// corrections for moved annotations are written back to the store.
func (s *AnnotationService) ValidForFiles(ctx context.Context, contentByPath map[string]string) ([]model.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]model.Annotation, 0, len(all))
	dirty := false

	for i := range all {
		content, ok := contentByPath[all[i].FilePath]
		if !ok {
			continue
		}

		res := s.Revalidate(all[i], content)
		if !res.IsValid {
			continue
		}

		if all[i].StartLine != res.StartLine || all[i].EndLine != res.EndLine || all[i].Status != res.Status {
			if res.Status == model.StatusMoved {
				slog.Debug("annotation moved",
					"id", all[i].ID,
					"file", all[i].FilePath,
					"from", all[i].StartLine,
					"to", res.StartLine,
				)
			}
			all[i].StartLine = res.StartLine
			all[i].EndLine = res.EndLine
			all[i].Status = res.Status
			dirty = true
		}

		valid = append(valid, all[i])
	}

	if dirty {
		if err := s.store.ReplaceAll(ctx, all); err != nil {
			return nil, err
		}
	}

	return valid, nil
}

// TrackedFiles returns the distinct file paths referenced by stored
// annotations, in first-seen order. Callers use it to decide which files to
// fetch content for before a batch revalidation.
func (s *AnnotationService) TrackedFiles(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	paths := make([]string, 0, len(all))
	for _, a := range all {
		if _, ok := seen[a.FilePath]; ok {
			continue
		}
		seen[a.FilePath] = struct{}{}
		paths = append(paths, a.FilePath)
	}

	return paths, nil
}

// AllWithStatus returns every stored annotation together with its validation
// outcome. Nothing is filtered out and nothing is mutated: this is the
// diagnostic view that lets users inspect annotations the filtered view
// hides, each with the reason it was hidden and, for outdated annotations,
// a diff of what replaced the anchored content.
func (s *AnnotationService) AllWithStatus(ctx context.Context, contentByPath map[string]string) ([]model.AnnotationWithStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.AnnotationWithStatus, 0, len(all))
	for _, ann := range all {
		content, ok := contentByPath[ann.FilePath]
		if !ok {
			out = append(out, model.AnnotationWithStatus{
				Annotation: ann,
				Validation: model.ValidationResult{
					IsValid: false,
					Status:  ann.Status,
					Reason:  "File not part of current comparison",
				},
			})
			continue
		}

		res := s.Revalidate(ann, content)
		ws := model.AnnotationWithStatus{Annotation: ann, Validation: res}
		if !res.IsValid && ann.Anchor != nil {
			ws.ContentDiff = ContentDiff(ann, content)
		}
		out = append(out, ws)
	}

	return out, nil
}

// deriveSnippet produces a short display snippet from anchored content:
// the first line, trimmed and capped.
func deriveSnippet(lineContent string) string {
	first := lineContent
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	first = strings.TrimSpace(first)
	if len(first) > maxSnippetLen {
		first = first[:maxSnippetLen]
	}
	return first
}
