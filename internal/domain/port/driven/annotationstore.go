package driven

import (
	"context"

	"github.com/reviewpin/reviewpin/internal/domain/model"
)

// AnnotationStore defines the driven port for persisting annotations. The
// engine always reads the full collection and writes the full collection
// back; no partial-update or query capability is required of the store.
// Implementations must upgrade any legacy (pre-anchor) records they hold
// before returning them from GetAll.
type AnnotationStore interface {
	GetAll(ctx context.Context) ([]model.Annotation, error)
	ReplaceAll(ctx context.Context, annotations []model.Annotation) error
}
