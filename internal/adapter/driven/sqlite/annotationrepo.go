package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reviewpin/reviewpin/internal/domain/model"
	"github.com/reviewpin/reviewpin/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AnnotationStore = (*AnnotationRepo)(nil)

// AnnotationRepo is the SQLite implementation of the AnnotationStore port.
// The engine's storage contract is read-full/write-full, so the repo exposes
// only GetAll and ReplaceAll; ReplaceAll runs as a single transaction.
type AnnotationRepo struct {
	db *DB
}

// NewAnnotationRepo creates a new AnnotationRepo backed by the given DB.
func NewAnnotationRepo(db *DB) *AnnotationRepo {
	return &AnnotationRepo{db: db}
}

// GetAll returns every stored annotation ordered by creation time. Legacy
// rows (NULL anchor content, written by pre-anchor versions) are upgraded to
// the current record shape on the way out; the upgrade is persisted on the
// next ReplaceAll, not here.
func (r *AnnotationRepo) GetAll(ctx context.Context) ([]model.Annotation, error) {
	const query = `
		SELECT id, file_path, start_line, end_line, body, snippet, status,
			anchor_base_label, anchor_target_label, anchor_line_content,
			anchor_context_before, anchor_context_after,
			anchor_original_start, anchor_original_end,
			created_at, updated_at
		FROM annotations
		ORDER BY created_at, id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var annotations []model.Annotation
	for rows.Next() {
		ann, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, ann)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}

	return annotations, nil
}

// ReplaceAll atomically swaps the stored collection for the given one.
func (r *AnnotationRepo) ReplaceAll(ctx context.Context, annotations []model.Annotation) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace-all: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM annotations`); err != nil {
		return fmt.Errorf("clear annotations: %w", err)
	}

	const insert = `
		INSERT INTO annotations (
			id, file_path, start_line, end_line, body, snippet, status,
			anchor_base_label, anchor_target_label, anchor_line_content,
			anchor_context_before, anchor_context_after,
			anchor_original_start, anchor_original_end,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, ann := range annotations {
		var (
			baseLabel, targetLabel string
			lineContent            any
			contextBefore          any
			contextAfter           any
			originalStart          any
			originalEnd            any
		)

		if ann.Anchor != nil {
			baseLabel = ann.Anchor.BaseLabel
			targetLabel = ann.Anchor.TargetLabel
			lineContent = ann.Anchor.LineContent

			before, err := json.Marshal(ann.Anchor.ContextBefore)
			if err != nil {
				return fmt.Errorf("marshal context before for %s: %w", ann.ID, err)
			}
			after, err := json.Marshal(ann.Anchor.ContextAfter)
			if err != nil {
				return fmt.Errorf("marshal context after for %s: %w", ann.ID, err)
			}
			contextBefore = string(before)
			contextAfter = string(after)
			originalStart = ann.Anchor.OriginalStart
			originalEnd = ann.Anchor.OriginalEnd
		}

		_, err := tx.ExecContext(ctx, insert,
			ann.ID, ann.FilePath, ann.StartLine, ann.EndLine,
			ann.Body, ann.Snippet, string(ann.Status),
			baseLabel, targetLabel, lineContent,
			contextBefore, contextAfter, originalStart, originalEnd,
			ann.CreatedAt.UTC(), ann.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert annotation %s: %w", ann.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace-all: %w", err)
	}

	return nil
}

func scanAnnotation(rows *sql.Rows) (model.Annotation, error) {
	var (
		ann                    model.Annotation
		status                 string
		baseLabel, targetLabel string
		lineContent            sql.NullString
		contextBefore          sql.NullString
		contextAfter           sql.NullString
		originalStart          sql.NullInt64
		originalEnd            sql.NullInt64
		createdAt, updatedAt   string
	)

	err := rows.Scan(
		&ann.ID, &ann.FilePath, &ann.StartLine, &ann.EndLine,
		&ann.Body, &ann.Snippet, &status,
		&baseLabel, &targetLabel, &lineContent,
		&contextBefore, &contextAfter, &originalStart, &originalEnd,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.Annotation{}, fmt.Errorf("scan annotation: %w", err)
	}

	ann.Status = model.AnnotationStatus(status)

	ann.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Annotation{}, fmt.Errorf("parse created_at: %w", err)
	}
	ann.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Annotation{}, fmt.Errorf("parse updated_at: %w", err)
	}

	if !lineContent.Valid {
		// Pre-anchor row: run it through the versioned upgrade path.
		return model.UpgradeLegacy(model.LegacyAnnotation{
			ID:        ann.ID,
			FilePath:  ann.FilePath,
			Line:      ann.StartLine,
			Comment:   ann.Body,
			Snippet:   ann.Snippet,
			CreatedAt: ann.CreatedAt,
		}), nil
	}

	anchor := model.Anchor{
		BaseLabel:     baseLabel,
		TargetLabel:   targetLabel,
		LineContent:   lineContent.String,
		OriginalStart: int(originalStart.Int64),
		OriginalEnd:   int(originalEnd.Int64),
	}

	if contextBefore.Valid {
		if err := json.Unmarshal([]byte(contextBefore.String), &anchor.ContextBefore); err != nil {
			return model.Annotation{}, fmt.Errorf("unmarshal context before for %s: %w", ann.ID, err)
		}
	}
	if contextAfter.Valid {
		if err := json.Unmarshal([]byte(contextAfter.String), &anchor.ContextAfter); err != nil {
			return model.Annotation{}, fmt.Errorf("unmarshal context after for %s: %w", ann.ID, err)
		}
	}

	ann.Anchor = &anchor
	return ann, nil
}

// parseTime handles the timestamp formats SQLite may hand back depending on
// how the value was written.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
