package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphilizer/pkg/filter"
	"github.com/matzehuels/graphilizer/pkg/observability"
	"github.com/matzehuels/graphilizer/pkg/observability/prom"
	"github.com/matzehuels/graphilizer/pkg/view"
)

const archJSON = `{
  "nodes": [
    {"id": "web", "label": "Web App", "type": "client"},
    {"id": "api", "label": "API", "type": "service", "layer": "core"},
    {"id": "db", "label": "Database", "type": "store", "layer": "core"}
  ],
  "edges": [
    {"id": "e1", "source": "web", "target": "api", "order": 1, "subtitle": "request"},
    {"id": "e2", "source": "api", "target": "db", "order": 2, "subtitle": "query"}
  ]
}`

func newTestServer(t *testing.T) (*Server, http.Handler, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "arch.json"), []byte(archJSON), 0o644))
	srv := New(Config{Root: root})
	return srv, srv.Handler(), root
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/sessions", map[string]string{"path": "arch.json"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func snapshot(t *testing.T, w *httptest.ResponseRecorder) view.Snapshot {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s view.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func TestHealthz(t *testing.T) {
	_, h, _ := newTestServer(t)
	w := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestCreateSession_Path(t *testing.T) {
	srv, h, _ := newTestServer(t)
	id := openSession(t, h)

	s := snapshot(t, do(t, h, http.MethodGet, "/sessions/"+id, nil))
	assert.Len(t, s.Nodes, 3)
	assert.Len(t, s.Edges, 2)
	assert.Nil(t, s.Focus)
	assert.Equal(t, 1, srv.Sessions().Len())
}

func TestCreateSession_Data(t *testing.T) {
	_, h, _ := newTestServer(t)
	yaml := "nodes:\n  - id: a\n  - id: b\nedges:\n  - source: a\n    target: b\n"
	w := do(t, h, http.MethodPost, "/sessions", map[string]string{"data": yaml, "format": "yaml"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp openResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Snapshot.Nodes, 2)
}

func TestCreateSession_Errors(t *testing.T) {
	_, h, _ := newTestServer(t)
	tests := []struct {
		name string
		body any
		code int
	}{
		{"empty", map[string]string{}, http.StatusBadRequest},
		{"traversal", map[string]string{"path": "../etc/passwd.json"}, http.StatusBadRequest},
		{"absolute", map[string]string{"path": "/arch.json"}, http.StatusBadRequest},
		{"missing file", map[string]string{"path": "nope.json"}, http.StatusNotFound},
		{"malformed data", map[string]string{"data": "{"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/sessions", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestUnknownSession(t *testing.T) {
	_, h, _ := newTestServer(t)
	w := do(t, h, http.MethodGet, "/sessions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSession(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/sessions/"+id, nil).Code)
}

func TestSelectAndClear(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	s := snapshot(t, do(t, h, http.MethodPost, "/sessions/"+id+"/select", map[string]string{"node": "db"}))
	require.NotNil(t, s.Focus)
	assert.Equal(t, "db", s.Focus.Center)

	s = snapshot(t, do(t, h, http.MethodPut, "/sessions/"+id+"/depth", map[string]int{"depth": 1}))
	assert.Equal(t, 1, s.Focus.Depth)
	_, ok := s.Node("web")
	assert.False(t, ok, "web is two hops from db")

	s = snapshot(t, do(t, h, http.MethodPost, "/sessions/"+id+"/clear", nil))
	assert.Nil(t, s.Focus)
	assert.Len(t, s.Nodes, 3)

	w := do(t, h, http.MethodPost, "/sessions/"+id+"/select", map[string]string{"node": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirection(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	s := snapshot(t, do(t, h, http.MethodPut, "/sessions/"+id+"/direction", map[string]string{"direction": "LR"}))
	assert.EqualValues(t, "LR", s.Direction)

	w := do(t, h, http.MethodPut, "/sessions/"+id+"/direction", map[string]string{"direction": "up"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleFilter(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	s := snapshot(t, do(t, h, http.MethodPost, "/sessions/"+id+"/filters/type/client", nil))
	assert.Equal(t, 2, s.MatchCount)
	web, ok := s.Node("web")
	require.True(t, ok)
	assert.True(t, web.Dimmed)

	s = snapshot(t, do(t, h, http.MethodPost, "/sessions/"+id+"/filters/type/client", nil))
	assert.Equal(t, 3, s.MatchCount)

	w := do(t, h, http.MethodPost, "/sessions/"+id+"/filters/color/red", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	w := do(t, h, http.MethodGet, "/sessions/"+id+"/search?q=data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []filter.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.NotEmpty(t, items)
	assert.Equal(t, "db", items[0].ID)

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/search?q=", nil)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestSearch_Limit(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	w := do(t, h, http.MethodGet, "/sessions/"+id+"/search?q=a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []filter.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Greater(t, len(items), 1)

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/search?q=a&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 1)

	for _, bad := range []string{"0", "x", "51"} {
		w = do(t, h, http.MethodGet, "/sessions/"+id+"/search?q=a&limit="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", bad)
	}
}

func TestConnections(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	w := do(t, h, http.MethodGet, "/sessions/"+id+"/connections/api", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conns view.Connections
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conns))
	assert.Len(t, conns.Incoming, 1)
	assert.Len(t, conns.Outgoing, 1)

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/connections/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimeline(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)
	base := "/sessions/" + id + "/timeline/"

	s := snapshot(t, do(t, h, http.MethodPost, base+"seek", map[string]float64{"step": 1}))
	assert.Equal(t, 1, s.Timeline.Step)
	assert.True(t, s.Timeline.Engaged)
	assert.Equal(t, "request", s.Subtitle)

	s = snapshot(t, do(t, h, http.MethodPost, base+"play", nil))
	assert.True(t, s.Timeline.Playing)

	s = snapshot(t, do(t, h, http.MethodPost, base+"tick?dt=3s", nil))
	assert.Equal(t, 2, s.Timeline.Step)

	s = snapshot(t, do(t, h, http.MethodPost, base+"pause", nil))
	assert.False(t, s.Timeline.Playing)

	s = snapshot(t, do(t, h, http.MethodPost, base+"reset", nil))
	assert.Equal(t, 1, s.Timeline.Step)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, base+"rewind", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, base+"seek", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, base+"tick?dt=soon", nil).Code)
}

func TestExport(t *testing.T) {
	_, h, _ := newTestServer(t)
	id := openSession(t, h)

	w := do(t, h, http.MethodGet, "/sessions/"+id+"/export/dot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/vnd.graphviz", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "digraph"))

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/export/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api"`)

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/export/gif", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReload(t *testing.T) {
	srv, h, root := newTestServer(t)
	id := openSession(t, h)

	updated := strings.Replace(archJSON, `{"id": "db", "label": "Database", "type": "store", "layer": "core"}`,
		`{"id": "db", "label": "Database", "type": "store", "layer": "core"}, {"id": "cache", "type": "store"}`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "arch.json"), []byte(updated), 0o644))

	n, err := srv.Reload(context.Background(), "arch.json")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s := snapshot(t, do(t, h, http.MethodGet, "/sessions/"+id, nil))
	_, ok := s.Node("cache")
	assert.True(t, ok)
}

func TestWatch(t *testing.T) {
	srv, h, root := newTestServer(t)
	id := openSession(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	updated := strings.Replace(archJSON, `"label": "API"`, `"label": "Gateway"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "arch.json"), []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		s := snapshot(t, do(t, h, http.MethodGet, "/sessions/"+id, nil))
		api, ok := s.Node("api")
		return ok && api.Label == "Gateway"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := prom.New()
	m.Install()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "arch.json"), []byte(archJSON), 0o644))
	h := New(Config{Root: root, Metrics: m.Handler()}).Handler()
	openSession(t, h)

	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `graphilizer_http_request_duration_seconds_count{code="201",method="POST",route="/sessions`)
	assert.Contains(t, w.Body.String(), "graphilizer_graph_loads_total")
}
