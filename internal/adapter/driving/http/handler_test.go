package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpin/reviewpin/internal/application"
	"github.com/reviewpin/reviewpin/internal/domain/model"
)

// --- Fakes ---

type fakeStore struct {
	annotations []model.Annotation
}

func (f *fakeStore) GetAll(_ context.Context) ([]model.Annotation, error) {
	return append([]model.Annotation{}, f.annotations...), nil
}

func (f *fakeStore) ReplaceAll(_ context.Context, annotations []model.Annotation) error {
	f.annotations = append([]model.Annotation{}, annotations...)
	return nil
}

type fakeContents struct {
	files map[string]string
}

func (f *fakeContents) FileContent(_ context.Context, path string) (string, bool, error) {
	content, ok := f.files[path]
	return content, ok, nil
}

// --- Helpers ---

const reviewedFile = "L1\nL2\nL3\nL4\nL5"

func newTestServer(t *testing.T, store *fakeStore, contents *fakeContents) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	svc := application.NewAnnotationService(store, application.NewValidator(), application.DefaultContextLines)
	server := httptest.NewServer(NewServeMux(NewHandler(svc, contents, logger), logger))
	t.Cleanup(server.Close)

	return server
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func createAnnotation(t *testing.T, server *httptest.Server) AnnotationResponse {
	t.Helper()

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/annotations", `{
		"file_path": "pkg/thing.go",
		"start_line": 2,
		"end_line": 3,
		"body": "prefer a **named** constant here"
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created AnnotationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

// --- Tests ---

func TestCreateAnnotation(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, &fakeContents{
		files: map[string]string{"pkg/thing.go": reviewedFile},
	})

	created := createAnnotation(t, server)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "current", created.Status)
	require.NotNil(t, created.Anchor)
	assert.Equal(t, "L2\nL3", created.Anchor.LineContent)
	assert.Equal(t, []string{"L1"}, created.Anchor.ContextBefore)
	assert.Contains(t, created.BodyHTML, "<strong>named</strong>")
}

func TestCreateAnnotation_WithInlineSnapshot(t *testing.T) {
	// No content provider entry for the path: the request's snapshot is used.
	server := newTestServer(t, &fakeStore{}, &fakeContents{files: map[string]string{}})

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/annotations", `{
		"file_path": "pkg/local.go",
		"start_line": 1,
		"end_line": 1,
		"body": "local edit",
		"file_content": "only line"
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateAnnotation_FileMissing(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, &fakeContents{files: map[string]string{}})

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/annotations", `{
		"file_path": "gone.go",
		"start_line": 1,
		"end_line": 1,
		"body": "x"
	}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateAnnotation_RangeOutOfBounds(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, &fakeContents{
		files: map[string]string{"pkg/thing.go": reviewedFile},
	})

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/annotations", `{
		"file_path": "pkg/thing.go",
		"start_line": 4,
		"end_line": 99,
		"body": "x"
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateAnnotation_BadRequest(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, &fakeContents{files: map[string]string{}})

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/annotations", `{"start_line": 0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, server.URL+"/api/v1/annotations", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListValid_MovedAnnotation(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	store := &fakeStore{}
	server := newTestServer(t, store, contents)
	created := createAnnotation(t, server)

	// Two lines land above the annotated range before the next review pass.
	contents.files["pkg/thing.go"] = "L1\nN1\nN2\nL2\nL3\nL4\nL5"

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/annotations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []AnnotationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, 4, list[0].StartLine)
	assert.Equal(t, 5, list[0].EndLine)
	assert.Equal(t, "moved", list[0].Status)

	// The corrected position was persisted.
	assert.Equal(t, 4, store.annotations[0].StartLine)
}

func TestListValid_OutdatedExcluded(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	store := &fakeStore{}
	server := newTestServer(t, store, contents)
	createAnnotation(t, server)

	contents.files["pkg/thing.go"] = "L1\nX2\nX3\nL4\nL5"

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/annotations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []AnnotationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)
	assert.Len(t, store.annotations, 1) // Hidden, not deleted.
}

func TestListWithStatus_IncludesOutdatedWithDiff(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	server := newTestServer(t, &fakeStore{}, contents)
	createAnnotation(t, server)

	contents.files["pkg/thing.go"] = "L1\nX2\nX3\nL4\nL5"

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/annotations/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []AnnotationStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.False(t, list[0].Validation.IsValid)
	assert.Equal(t, "outdated", list[0].Validation.Status)
	assert.NotEmpty(t, list[0].Validation.Reason)
	assert.Contains(t, list[0].ContentDiff, "+X2")
}

func TestUpdateText(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	store := &fakeStore{}
	server := newTestServer(t, store, contents)
	created := createAnnotation(t, server)

	resp := doRequest(t, http.MethodPatch, server.URL+"/api/v1/annotations/"+created.ID,
		`{"body": "updated text"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "updated text", store.annotations[0].Body)

	resp = doRequest(t, http.MethodPatch, server.URL+"/api/v1/annotations/nope", `{"body": "x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteByID(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	store := &fakeStore{}
	server := newTestServer(t, store, contents)
	created := createAnnotation(t, server)

	resp := doRequest(t, http.MethodDelete, server.URL+"/api/v1/annotations/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, store.annotations)

	resp = doRequest(t, http.MethodDelete, server.URL+"/api/v1/annotations/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteByLocation(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	store := &fakeStore{}
	server := newTestServer(t, store, contents)
	createAnnotation(t, server)

	resp := doRequest(t, http.MethodDelete,
		server.URL+"/api/v1/annotations?file_path=pkg%2Fthing.go&start_line=2&end_line=3", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, store.annotations)
}

func TestClearAll(t *testing.T) {
	contents := &fakeContents{files: map[string]string{"pkg/thing.go": reviewedFile}}
	store := &fakeStore{}
	server := newTestServer(t, store, contents)
	createAnnotation(t, server)
	createAnnotation(t, server)

	resp := doRequest(t, http.MethodDelete, server.URL+"/api/v1/annotations", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, store.annotations)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, &fakeContents{})

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}
