package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/graphilizer/pkg/errors"
	"github.com/matzehuels/graphilizer/pkg/filter"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
	"github.com/matzehuels/graphilizer/pkg/session"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// maxBodySize bounds request bodies, uploaded documents included.
const maxBodySize = 8 << 20

// MaxSearchLimit caps the limit a search request may ask for.
const MaxSearchLimit = 50

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

type openRequest struct {
	Path   string       `json:"path"`
	Data   string       `json:"data"`
	Format graph.Format `json:"format"`
}

type openResponse struct {
	ID       string         `json:"id"`
	Snapshot *view.Snapshot `json:"snapshot"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var sess *session.Session
	var err error
	switch {
	case req.Path != "":
		sess, err = s.Open(r.Context(), req.Path)
	case req.Data != "":
		if req.Format == "" {
			req.Format = graph.FormatJSON
		}
		sess, err = s.OpenData(r.Context(), []byte(req.Data), req.Format)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "path or data is required")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	snap := sess.Do(func(c *view.Coordinator) *view.Snapshot { return c.Snapshot() })
	writeJSON(w, http.StatusCreated, openResponse{ID: sess.ID, Snapshot: snap})
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(c *view.Coordinator) *view.Snapshot { return c.Snapshot() })
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session(r); err != nil {
		writeError(w, err)
		return
	}
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Node string `json:"node"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateID(req.Node); err != nil {
		writeError(w, err)
		return
	}
	s.apply(w, r, func(c *view.Coordinator) *view.Snapshot { return c.SelectNode(req.Node) })
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(c *view.Coordinator) *view.Snapshot { return c.ClearSelection() })
}

func (s *Server) setDepth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Depth int `json:"depth"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.apply(w, r, func(c *view.Coordinator) *view.Snapshot { return c.SetFocusDepth(req.Depth) })
}

func (s *Server) setDirection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := pipeline.ValidateDirection(req.Direction); err != nil {
		writeError(w, err)
		return
	}
	dir, _ := graph.ParseDirection(req.Direction)
	s.apply(w, r, func(c *view.Coordinator) *view.Snapshot { return c.SetDirection(dir) })
}

func (s *Server) toggleFilter(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if err := errors.ValidateID(tag); err != nil {
		writeError(w, err)
		return
	}
	var toggle func(*view.Coordinator, string) *view.Snapshot
	switch chi.URLParam(r, "kind") {
	case "type":
		toggle = (*view.Coordinator).ToggleType
	case "group":
		toggle = (*view.Coordinator).ToggleGroup
	case "layer":
		toggle = (*view.Coordinator).ToggleLayer
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown filter kind %q (type, group, layer)", chi.URLParam(r, "kind")))
		return
	}
	s.apply(w, r, func(c *view.Coordinator) *view.Snapshot { return toggle(c, tag) })
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := errors.ValidateQuery(q); err != nil {
		writeError(w, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxSearchLimit {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be between 1 and %d", MaxSearchLimit))
			return
		}
		limit = n
	}
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var items []filter.Item
	sess.Do(func(c *view.Coordinator) *view.Snapshot {
		items = c.Search(q, limit)
		return nil
	})
	if items == nil {
		items = []filter.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) connections(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	if err := errors.ValidateID(node); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var conns view.Connections
	var known bool
	sess.Do(func(c *view.Coordinator) *view.Snapshot {
		_, known = c.Graph().Node(node)
		conns = c.Connections(node)
		return nil
	})
	if !known {
		writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", node))
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	var fn func(*view.Coordinator) *view.Snapshot
	switch action := chi.URLParam(r, "action"); action {
	case "play":
		fn = (*view.Coordinator).Play
	case "pause":
		fn = (*view.Coordinator).Pause
	case "reset":
		fn = (*view.Coordinator).Reset
	case "seek":
		var req struct {
			Step *float64 `json:"step"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Step == nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "step is required"))
			return
		}
		fn = func(c *view.Coordinator) *view.Snapshot { return c.Seek(*req.Step) }
	case "tick":
		var dt time.Duration
		if v := r.URL.Query().Get("dt"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid dt %q", v))
				return
			}
			dt = d
		}
		fn = func(c *view.Coordinator) *view.Snapshot {
			if dt == 0 {
				dt = c.Timeline().StepDuration
			}
			return c.Tick(dt)
		}
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown timeline action %q", action))
		return
	}
	s.apply(w, r, fn)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	snap := sess.Do(func(c *view.Coordinator) *view.Snapshot { return c.Snapshot() })

	opts := pipeline.Options{
		Formats:  []string{format},
		Relayout: r.URL.Query().Get("relayout") == "true",
		Detailed: r.URL.Query().Get("detailed") == "true",
		Logger:   s.logger,
	}
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.PNGScale = scale
	}
	out, _, err := s.cfg.Runner.RenderWithCacheInfo(r.Context(), snap, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out[format])
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) session(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	return s.sessions.Get(id)
}

// apply runs fn on the request's session and writes the resulting snapshot.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(*view.Coordinator) *view.Snapshot) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Do(fn))
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case stderrors.Is(err, session.ErrExpired):
		status = http.StatusGone
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
