package http

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/aretw0/shipyard/pkg/adapters/memory"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/aretw0/shipyard/pkg/generator/builtin"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	fetcher := memory.NewFetcherFromEntries(baseline.DefaultManifest,
		domain.SourceEntry{Path: "es_stable_data/map.txt", Content: "system Sol\n\tobject Earth\n"},
	)
	mgr := session.NewManager(memory.NewStore(), fetcher)
	dispatcher := pipeline.NewDispatcher(generator.NewInvoker(builtin.NewCatalog()))
	return NewHandler(mgr, dispatcher, opts...)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["session_id"])
	return body["session_id"]
}

type upload struct {
	name, mediaType, content string
}

func uploadRequest(t *testing.T, id string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		if f.mediaType != "" {
			h.Set("Content-Type", f.mediaType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, target string, v any) *http.Request {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	w := do(t, newTestHandler(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestHandler(t), httptest.NewRequest(http.MethodOptions, "/sessions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListGenerators(t *testing.T) {
	w := do(t, newTestHandler(t), httptest.NewRequest(http.MethodGet, "/generators", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var infos []GeneratorInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))

	kinds := make([]string, len(infos))
	for i, info := range infos {
		kinds[i] = info.Kind
	}
	assert.Equal(t, []string{"chaos", "full-map", "system-shuffler", "template"}, kinds)
	assert.Equal(t, []FieldInfo{{Name: "seed", Type: "seed"}}, infos[0].Fields)
}

func TestUploads_FilterByPartContentType(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	w := do(t, h, uploadRequest(t, id,
		upload{"ships.txt", "text/plain", "ship Falcon"},
		upload{"logo.png", "image/png", "\x89PNG"},
		upload{"notes.txt", "text/plain; charset=utf-8", "system Vega"},
	))
	require.Equal(t, http.StatusOK, w.Code)

	var res UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"ships.txt", "notes.txt"}, res.Accepted)
	assert.Equal(t, []string{"logo.png"}, res.Ignored)

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/uploads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paths":["ships.txt","notes.txt"]}`, w.Body.String())

	w = do(t, h, httptest.NewRequest(http.MethodDelete, "/sessions/"+id+"/uploads", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/uploads", nil))
	assert.JSONEq(t, `{"paths":[]}`, w.Body.String())
}

func TestUploads_BodyLimitStoresNothing(t *testing.T) {
	h := newTestHandler(t, WithMaxUploadBytes(1024))
	id := startSession(t, h)

	w := do(t, h, uploadRequest(t, id,
		upload{"a.txt", "text/plain", "system Sol"},
		upload{"b.txt", "text/plain", "system Vega"},
	))
	require.Equal(t, http.StatusOK, w.Code)

	// Every part fits on its own; the body as a whole does not.
	w = do(t, h, uploadRequest(t, id,
		upload{"c.txt", "text/plain", "ok"},
		upload{"d.txt", "text/plain", strings.Repeat("x", 600)},
		upload{"e.txt", "text/plain", strings.Repeat("y", 600)},
	))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "1024 bytes")

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/uploads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paths":["a.txt","b.txt"]}`, w.Body.String())
}

func TestUploads_UnknownSession(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, uploadRequest(t, "missing", upload{"a.txt", "text/plain", "x"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_ReturnsArchive(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	w := do(t, h, jsonRequest(t, "/sessions/"+id+"/generate/full-map", map[string]any{"include_baseline": true}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "full_map.zip")

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	assert.NotEmpty(t, zr.File)
}

func TestGenerate_FormFields(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	form := url.Values{"seed": {"42"}, "max_presets": {"2"}, "include_baseline": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/generate/system-shuffler", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := do(t, h, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "system_shuffler.zip")
}

func TestGenerate_ValidationErrors(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	w := do(t, h, jsonRequest(t, "/sessions/"+id+"/generate/system-shuffler", map[string]any{
		"fields": map[string]any{"max_presets": 0, "shuffle_chance": 101},
	}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	fields := make([]string, len(body.Errors))
	for i, e := range body.Errors {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"max_presets", "seed", "shuffle_chance"}, fields)
	assert.Equal(t, "required", body.Errors[1].Reason)
}

func TestGenerate_UnknownKind(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	w := do(t, h, jsonRequest(t, "/sessions/"+id+"/generate/nope", map[string]any{}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_InvocationFailure(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	// No baseline and no uploads: the full map has nothing to reveal.
	w := do(t, h, jsonRequest(t, "/sessions/"+id+"/generate/full-map", map[string]any{"include_baseline": false}))
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "full-map", body["kind"])
	assert.Equal(t, builtin.ErrNoSystems.Error(), body["error"])
	assert.Equal(t, false, body["panicked"])
}

func TestDeleteSession(t *testing.T) {
	h := newTestHandler(t)
	id := startSession(t, h)

	w := do(t, h, httptest.NewRequest(http.MethodDelete, "/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/uploads", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shipyard_http_requests_total{method="GET",route="/health",status="200"}`)
}
