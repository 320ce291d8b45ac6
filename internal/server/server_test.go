package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/historydag/pkg/hdag"
	dagio "github.com/matzehuels/historydag/pkg/io"
	"github.com/matzehuels/historydag/pkg/observability"
	"github.com/matzehuels/historydag/pkg/tree"
)

var leafSeqs = map[string]string{"a": "CAAA", "b": "ACAA", "c": "AACA", "d": "AAAC"}

func pairing(t *testing.T, reference, p, q, r, s string) *hdag.DAG {
	t.Helper()
	leaf := func(n string) *tree.Node { return &tree.Node{Name: n, Sequence: leafSeqs[n]} }
	root := &tree.Node{Sequence: "AAAA", Children: []*tree.Node{
		{Sequence: "AAAA", Children: []*tree.Node{leaf(p), leaf(q)}},
		{Sequence: "AAAA", Children: []*tree.Node{leaf(r), leaf(s)}},
	}}
	d, err := hdag.FromTree(root, reference, hdag.BuildOptions{})
	require.NoError(t, err)
	return d
}

func newTestServer(d *hdag.DAG, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return New(d, opts)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func encode(t *testing.T, d *hdag.DAG) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, dagio.WriteJSON(d, &buf))
	return &buf
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	s := newTestServer(nil, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestQueries(t *testing.T) {
	s := newTestServer(pairing(t, "AAAA", "a", "b", "c", "d"), Options{})

	rec := do(t, s, http.MethodGet, "/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", decode[map[string]string](t, rec)["histories"])

	rec = do(t, s, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[SummaryResponse](t, rec)
	assert.Equal(t, SummaryResponse{Nodes: 8, Edges: 7, Leaves: 4, Histories: "1", MinScore: 4, MaxScore: 4}, sum)

	rec = do(t, s, http.MethodGet, "/histogram", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[map[string][]HistogramBucket](t, rec)
	assert.Equal(t, []HistogramBucket{{Score: 4, Count: "1"}}, hist["histogram"])

	rec = do(t, s, http.MethodGet, "/dag", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	back, err := dagio.ReadJSON(rec.Body)
	require.NoError(t, err)
	eq, err := hdag.Equal(back, s.DAG())
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestMerge(t *testing.T) {
	s := newTestServer(pairing(t, "AAAA", "a", "b", "c", "d"), Options{})

	rec := do(t, s, http.MethodPost, "/merge", encode(t, pairing(t, "AAAA", "a", "c", "b", "d")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", decode[SummaryResponse](t, rec).Histories)

	rec = do(t, s, http.MethodGet, "/count", nil)
	assert.Equal(t, "2", decode[map[string]string](t, rec)["histories"])
}

func TestMergeRejected(t *testing.T) {
	s := newTestServer(pairing(t, "AAAA", "a", "b", "c", "d"), Options{})
	before := s.DAG().Copy()

	rec := do(t, s, http.MethodPost, "/merge", strings.NewReader(`{"refseq": [`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_EXCHANGE_FORM", decode[errorResponse](t, rec).Code)

	rec = do(t, s, http.MethodPost, "/merge", encode(t, pairing(t, "AAAC", "a", "c", "b", "d")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INCOMPARABLE_REFERENCE", decode[errorResponse](t, rec).Code)

	eq, err := hdag.Equal(before, s.DAG())
	require.NoError(t, err)
	assert.True(t, eq, "rejected merges must leave the DAG unchanged")
}

func TestMergeBodyLimit(t *testing.T) {
	s := newTestServer(nil, Options{MaxBodyBytes: 16})
	rec := do(t, s, http.MethodPost, "/merge", encode(t, pairing(t, "AAAA", "a", "b", "c", "d")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEmptyServer(t *testing.T) {
	s := newTestServer(nil, Options{})
	for _, path := range []string{"/count", "/summary", "/histogram", "/dag"} {
		rec := do(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := do(t, s, http.MethodPost, "/merge", encode(t, pairing(t, "AAAA", "a", "b", "c", "d")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", decode[SummaryResponse](t, rec).Histories)
	assert.NotNil(t, s.DAG())
}

func TestMetrics(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)
	prom := observability.NewPrometheusHooks(nil)
	observability.SetServerHooks(prom)

	s := newTestServer(pairing(t, "AAAA", "a", "b", "c", "d"), Options{Metrics: prom.Handler()})
	do(t, s, http.MethodGet, "/count", nil)
	do(t, s, http.MethodGet, "/nope", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hdag_http_requests_total{method="GET",route="/count",status="200"} 1`)

	withoutMetrics := newTestServer(nil, Options{})
	assert.Equal(t, http.StatusNotFound, do(t, withoutMetrics, http.MethodGet, "/metrics", nil).Code)
}
