package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/assets"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// stubPDF returns a fixed PDF payload.
type stubPDF struct {
	err error
}

func (s stubPDF) ToPDF(_ context.Context, html string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]byte("%PDF-1.7\n"), html[:16]...), nil
}

// routeCounter implements HTTPObserver.
type routeCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *routeCounter) ObserveHTTP(route string, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[route+" "+http.StatusText(code)]++
}

func (c *routeCounter) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func newGenerator(t *testing.T, pdf docgen.PDFConverter) *docgen.Generator {
	t.Helper()
	src, err := assets.NewResolver("")
	require.NoError(t, err)

	cache := docgen.NewTemplateCache(docgen.DefaultCatalog(), src)
	require.NoError(t, cache.PreloadAll(context.Background()))

	return docgen.NewGenerator(cache, docgen.NewRenderer(), pdf,
		docgen.WithLogger(zaptest.NewLogger(t)))
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(newGenerator(t, stubPDF{}), opts...)
}

func ndaBody(extra string) string {
	return `{"templateId":"nda",` + extra + `"data":{
		"partyA":{"name":"Globex SA","address":{"city":"Paris","country":"France"}},
		"partyB":{"name":"Umbrella BV","address":{"city":"Amsterdam","country":"Netherlands"}},
		"purpose":"evaluating a potential partnership",
		"effectiveDate":"2025-03-01",
		"term":{"years":2},
		"legal":{"governingLaw":"France"}}}`
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ---------------------------------------------------------------------------
// TestGenerate
// ---------------------------------------------------------------------------

func TestGenerate_BufferedHTML(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/documents/generate?stream=false", ndaBody(""))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docgen.MIMETypeHTML, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="nda-v1.html"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "private, max-age=0, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, rec.Header().Get("Content-Length"), strconv.Itoa(rec.Body.Len()))
	assert.Contains(t, rec.Body.String(), "Globex SA")
	assert.Contains(t, rec.Body.String(), "March 1, 2025")
}

func TestGenerate_StreamMatchesBuffered(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	buffered := do(t, h, http.MethodPost, "/documents/generate?stream=false", ndaBody(`"version":"v2",`))
	streamed := do(t, h, http.MethodPost, "/documents/generate", ndaBody(`"version":"v2",`))

	require.Equal(t, http.StatusOK, buffered.Code, buffered.Body.String())
	require.Equal(t, http.StatusOK, streamed.Code, streamed.Body.String())
	assert.Equal(t, buffered.Body.Bytes(), streamed.Body.Bytes())
	assert.Equal(t, buffered.Header().Get("Content-Disposition"), streamed.Header().Get("Content-Disposition"))
	assert.Equal(t, `attachment; filename="nda-v2.html"`, streamed.Header().Get("Content-Disposition"))
}

func TestGenerate_PDF(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/documents/generate", ndaBody(`"format":"pdf",`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docgen.MIMETypePDF, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="nda-v1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown template",
			target:     "/documents/generate",
			body:       `{"templateId":"lease","data":{"a":1}}`,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Available templates: service-agreement, nda",
		},
		{
			name:       "unknown version",
			target:     "/documents/generate",
			body:       ndaBody(`"version":"v9",`),
			wantStatus: http.StatusNotFound,
			wantMsg:    "Available versions: v1, v2",
		},
		{
			name:       "missing data path",
			target:     "/documents/generate?stream=false",
			body:       `{"templateId":"nda","data":{"purpose":"x"}}`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Document generation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, newTestServer(t).Handler(), http.MethodPost, tt.target, tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.EqualValues(t, tt.wantStatus, body["statusCode"])
			assert.Equal(t, http.StatusText(tt.wantStatus), body["error"])
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

func TestGenerate_PDFFailureHidesCause(t *testing.T) {
	t.Parallel()

	srv := New(newGenerator(t, stubPDF{err: errors.New("chrome exploded at /tmp/x")}),
		WithLogger(zaptest.NewLogger(t)))
	rec := do(t, srv.Handler(), http.MethodPost, "/documents/generate", ndaBody(`"format":"pdf",`))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "chrome exploded")
	assert.Equal(t, msgGenerationFailed, decodeError(t, rec)["message"])
}

func TestGenerate_InvalidBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{name: "empty body", target: "/documents/generate", body: ""},
		{name: "malformed json", target: "/documents/generate", body: `{"templateId":`},
		{name: "missing templateId", target: "/documents/generate", body: `{"data":{"a":1}}`},
		{name: "empty templateId", target: "/documents/generate", body: `{"templateId":"","data":{"a":1}}`},
		{name: "empty data", target: "/documents/generate", body: `{"templateId":"nda","data":{}}`},
		{name: "data not object", target: "/documents/generate", body: `{"templateId":"nda","data":[1]}`},
		{name: "bad format", target: "/documents/generate", body: `{"templateId":"nda","format":"docx","data":{"a":1}}`},
		{name: "extra field", target: "/documents/generate", body: `{"templateId":"nda","data":{"a":1},"x":1}`},
		{name: "bad stream flag", target: "/documents/generate?stream=maybe", body: ndaBody("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, newTestServer(t).Handler(), http.MethodPost, tt.target, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeError(t, rec)
			assert.Equal(t, "Bad Request", body["error"])
			msgs, ok := body["message"].([]any)
			require.True(t, ok, "message should be a list, got %T", body["message"])
			assert.NotEmpty(t, msgs)
		})
	}
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	t.Parallel()

	big := `{"templateId":"nda","data":{"blob":"` + strings.Repeat("x", MaxBodySize) + `"}}`
	rec := do(t, newTestServer(t).Handler(), http.MethodPost, "/documents/generate", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t).Handler(), http.MethodGet, "/documents/generate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ---------------------------------------------------------------------------
// TestTemplates / TestHealth
// ---------------------------------------------------------------------------

func TestTemplates(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t).Handler(), http.MethodGet, "/documents/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got templatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Templates, 2)

	ids := []string{got.Templates[0].ID, got.Templates[1].ID}
	assert.ElementsMatch(t, []string{"nda", "service-agreement"}, ids)
	for _, tpl := range got.Templates {
		assert.NotEmpty(t, tpl.Name)
		assert.NotEmpty(t, tpl.DefaultVersion)
		assert.Len(t, tpl.Versions, 2)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t).Handler(), http.MethodGet, "/documents/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, healthResponse{Status: "ok", Service: "documents", Timestamp: "2025-03-01T12:00:00Z"}, got)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "# metrics\n")
	})

	withMetrics := do(t, newTestServer(t, WithMetricsHandler(metrics)).Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, withMetrics.Code)
	assert.Equal(t, "# metrics\n", withMetrics.Body.String())

	without := do(t, newTestServer(t).Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, without.Code)
}

// ---------------------------------------------------------------------------
// TestServe
// ---------------------------------------------------------------------------

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := newTestServer(t, WithShutdownTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/documents/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ObserverSeesRoutes(t *testing.T) {
	t.Parallel()

	obs := &routeCounter{}
	h := newTestServer(t, WithObserver(obs)).Handler()

	do(t, h, http.MethodGet, "/documents/health", "")
	do(t, h, http.MethodGet, "/nope", "")

	assert.Equal(t, 1, obs.count("GET /documents/health OK"))
	assert.Equal(t, 1, obs.count("unmatched Not Found"))
}
