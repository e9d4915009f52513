package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reviewpin/reviewpin/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// CreateAnnotationRequest is the JSON body for the create endpoint.
// FileContent optionally carries the snapshot the range refers to; when
// empty, the server fetches current content from its content provider.
type CreateAnnotationRequest struct {
	FilePath    string `json:"file_path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Body        string `json:"body"`
	Snippet     string `json:"snippet,omitempty"`
	FileContent string `json:"file_content,omitempty"`
	BaseLabel   string `json:"base_label,omitempty"`
	TargetLabel string `json:"target_label,omitempty"`
}

// UpdateAnnotationRequest is the JSON body for the update endpoint.
type UpdateAnnotationRequest struct {
	Body string `json:"body"`
}

// AnchorResponse is the JSON representation of an annotation's anchor.
type AnchorResponse struct {
	BaseLabel     string   `json:"base_label"`
	TargetLabel   string   `json:"target_label"`
	LineContent   string   `json:"line_content"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
	OriginalStart int      `json:"original_start"`
	OriginalEnd   int      `json:"original_end"`
}

// AnnotationResponse is the JSON representation of an annotation.
type AnnotationResponse struct {
	ID        string          `json:"id"`
	FilePath  string          `json:"file_path"`
	StartLine int             `json:"start_line"`
	EndLine   int             `json:"end_line"`
	Body      string          `json:"body"`
	BodyHTML  string          `json:"body_html"`
	Snippet   string          `json:"snippet"`
	Status    string          `json:"status"`
	Anchor    *AnchorResponse `json:"anchor,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ValidationResponse is the JSON representation of a validation outcome.
type ValidationResponse struct {
	IsValid   bool   `json:"is_valid"`
	Status    string `json:"status"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// AnnotationStatusResponse pairs an annotation with its validation outcome
// for the diagnostic view.
type AnnotationStatusResponse struct {
	Annotation  AnnotationResponse `json:"annotation"`
	Validation  ValidationResponse `json:"validation"`
	ContentDiff string             `json:"content_diff,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// toAnnotationResponse converts a domain Annotation to its JSON
// representation, rendering the body markdown to sanitized HTML.
func toAnnotationResponse(ann model.Annotation) AnnotationResponse {
	resp := AnnotationResponse{
		ID:        ann.ID,
		FilePath:  ann.FilePath,
		StartLine: ann.StartLine,
		EndLine:   ann.EndLine,
		Body:      ann.Body,
		BodyHTML:  RenderMarkdown(ann.Body),
		Snippet:   ann.Snippet,
		Status:    string(ann.Status),
		CreatedAt: ann.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: ann.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if ann.Anchor != nil {
		resp.Anchor = &AnchorResponse{
			BaseLabel:     ann.Anchor.BaseLabel,
			TargetLabel:   ann.Anchor.TargetLabel,
			LineContent:   ann.Anchor.LineContent,
			ContextBefore: emptyIfNil(ann.Anchor.ContextBefore),
			ContextAfter:  emptyIfNil(ann.Anchor.ContextAfter),
			OriginalStart: ann.Anchor.OriginalStart,
			OriginalEnd:   ann.Anchor.OriginalEnd,
		}
	}

	return resp
}

// toAnnotationStatusResponse converts a diagnostic view entry to JSON.
func toAnnotationStatusResponse(ws model.AnnotationWithStatus) AnnotationStatusResponse {
	return AnnotationStatusResponse{
		Annotation: toAnnotationResponse(ws.Annotation),
		Validation: ValidationResponse{
			IsValid:   ws.Validation.IsValid,
			Status:    string(ws.Validation.Status),
			StartLine: ws.Validation.StartLine,
			EndLine:   ws.Validation.EndLine,
			Reason:    ws.Validation.Reason,
		},
		ContentDiff: ws.ContentDiff,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
