// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/reviewpin/reviewpin/internal/application"
	"github.com/reviewpin/reviewpin/internal/domain/port/driven"
)

// Handler serves the annotation REST API.
type Handler struct {
	annotations *application.AnnotationService
	contents    driven.ContentProvider
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	annotations *application.AnnotationService,
	contents driven.ContentProvider,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		annotations: annotations,
		contents:    contents,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/annotations", h.ListValid)
	mux.HandleFunc("GET /api/v1/annotations/status", h.ListWithStatus)
	mux.HandleFunc("POST /api/v1/annotations", h.Create)
	mux.HandleFunc("PATCH /api/v1/annotations/{id}", h.UpdateText)
	mux.HandleFunc("DELETE /api/v1/annotations/{id}", h.DeleteByID)
	mux.HandleFunc("DELETE /api/v1/annotations", h.DeleteByLocationOrClear)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListValid returns valid annotations with corrected positions, revalidated
// against the content provider. Annotations whose file is missing at the
// current revision are excluded; outdated ones are excluded but stay stored.
func (h *Handler) ListValid(w http.ResponseWriter, r *http.Request) {
	contentByPath, err := h.fetchTrackedContent(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch file content", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch file content")
		return
	}

	valid, err := h.annotations.ValidForFiles(r.Context(), contentByPath)
	if err != nil {
		h.logger.Error("failed to revalidate annotations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AnnotationResponse, 0, len(valid))
	for _, ann := range valid {
		resp = append(resp, toAnnotationResponse(ann))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListWithStatus returns every stored annotation with its validation
// outcome. Nothing is filtered; this is the diagnostic view.
func (h *Handler) ListWithStatus(w http.ResponseWriter, r *http.Request) {
	contentByPath, err := h.fetchTrackedContent(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch file content", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch file content")
		return
	}

	all, err := h.annotations.AllWithStatus(r.Context(), contentByPath)
	if err != nil {
		h.logger.Error("failed to load annotation status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AnnotationStatusResponse, 0, len(all))
	for _, ws := range all {
		resp = append(resp, toAnnotationStatusResponse(ws))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new annotation. When the request carries no file content
// snapshot, the current content is fetched from the content provider.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.FilePath == "" || req.StartLine < 1 || req.EndLine < req.StartLine {
		writeError(w, http.StatusBadRequest, "file_path and a valid line range are required")
		return
	}

	fileContent := req.FileContent
	if fileContent == "" {
		content, found, err := h.contents.FileContent(r.Context(), req.FilePath)
		if err != nil {
			h.logger.Error("failed to fetch file content", "file", req.FilePath, "error", err)
			writeError(w, http.StatusBadGateway, "failed to fetch file content")
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "file not found at current revision")
			return
		}
		fileContent = content
	}

	ann, err := h.annotations.Add(r.Context(), application.AddParams{
		FilePath:    req.FilePath,
		StartLine:   req.StartLine,
		EndLine:     req.EndLine,
		Body:        req.Body,
		Snippet:     req.Snippet,
		FileContent: fileContent,
		BaseLabel:   req.BaseLabel,
		TargetLabel: req.TargetLabel,
	})
	if err != nil {
		if errors.Is(err, application.ErrInvalidRange) {
			writeError(w, http.StatusUnprocessableEntity, "line range outside file bounds")
			return
		}
		h.logger.Error("failed to add annotation", "file", req.FilePath, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toAnnotationResponse(ann))
}

// UpdateText replaces an annotation's body.
func (h *Handler) UpdateText(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateAnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.annotations.UpdateText(r.Context(), id, req.Body); err != nil {
		if errors.Is(err, application.ErrAnnotationNotFound) {
			writeError(w, http.StatusNotFound, "annotation not found")
			return
		}
		h.logger.Error("failed to update annotation", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID removes a single annotation.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	removed, err := h.annotations.DeleteByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete annotation", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "annotation not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByLocationOrClear removes annotations at a (file_path, start_line,
// end_line) location, or clears the whole collection when no query is given.
func (h *Handler) DeleteByLocationOrClear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("file_path") == "" && q.Get("start_line") == "" && q.Get("end_line") == "" {
		if err := h.annotations.ClearAll(r.Context()); err != nil {
			h.logger.Error("failed to clear annotations", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	filePath := q.Get("file_path")
	if filePath == "" {
		writeError(w, http.StatusBadRequest, "file_path is required")
		return
	}
	startLine, err := strconv.Atoi(q.Get("start_line"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_line")
		return
	}
	endLine, err := strconv.Atoi(q.Get("end_line"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_line")
		return
	}

	removed, err := h.annotations.DeleteByLocation(r.Context(), filePath, startLine, endLine)
	if err != nil {
		h.logger.Error("failed to delete annotations by location", "file", filePath, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "no annotation at location")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// fetchTrackedContent loads current content for every file referenced by a
// stored annotation. Files missing at the current revision are left out of
// the map; the lifecycle manager treats those annotations as not part of
// the comparison.
func (h *Handler) fetchTrackedContent(ctx context.Context) (map[string]string, error) {
	paths, err := h.annotations.TrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	contentByPath := make(map[string]string, len(paths))
	for _, path := range paths {
		content, found, err := h.contents.FileContent(ctx, path)
		if err != nil {
			return nil, err
		}
		if found {
			contentByPath[path] = content
		}
	}

	return contentByPath, nil
}
