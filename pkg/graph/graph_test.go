package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/graphilizer/pkg/errors"
)

const sampleJSON = `{
  "nodes": [
    {"id": "api", "label": "API", "type": "service", "group": "backend", "position": {"x": 10, "y": 20}},
    {"id": "db", "type": "store", "metadata": {"engine": "postgres", "replicas": 3}}
  ],
  "edges": [
    {"source": "api", "target": "db", "order": 2, "layer": "data", "subtitle": "write"}
  ],
  "groups": [{"id": "backend", "label": "Backend"}],
  "settings": {
    "title": "Checkout",
    "layout": {"direction": "LR", "nodeSpacing": 40},
    "nodeTypes": {"service": {"color": "#fff", "shape": "pill"}},
    "edgeTypes": {"call": {"style": "dashed", "animated": true}}
  }
}`

const sampleYAML = `
nodes:
  - id: api
    label: API
    type: service
    group: backend
    position: {x: 10, y: 20}
  - id: db
    type: store
    metadata:
      engine: postgres
      replicas: 3
edges:
  - source: api
    target: db
    order: 2
    layer: data
    subtitle: write
groups:
  - id: backend
    label: Backend
settings:
  title: Checkout
  layout:
    direction: LR
    nodeSpacing: 40
  nodeTypes:
    service: {color: "#fff", shape: pill}
  edgeTypes:
    call: {style: dashed, animated: true}
`

const sampleTOML = `
[settings]
title = "Checkout"

[settings.layout]
direction = "LR"
nodeSpacing = 40

[settings.nodeTypes.service]
color = "#fff"
shape = "pill"

[settings.edgeTypes.call]
style = "dashed"
animated = true

[[nodes]]
id = "api"
label = "API"
type = "service"
group = "backend"
position = {x = 10, y = 20}

[[nodes]]
id = "db"
type = "store"
metadata = {engine = "postgres", replicas = 3}

[[edges]]
source = "api"
target = "db"
order = 2
layer = "data"
subtitle = "write"

[[groups]]
id = "backend"
label = "Backend"
`

func checkSample(t *testing.T, doc *Document) {
	t.Helper()
	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 || len(doc.Groups) != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/1", len(doc.Nodes), len(doc.Edges), len(doc.Groups))
	}
	api := doc.Nodes[0]
	if api.ID != "api" || api.Label != "API" || api.Group != "backend" {
		t.Errorf("node[0] = %+v", api)
	}
	if api.Position == nil || api.Position.X != 10 || api.Position.Y != 20 {
		t.Errorf("node[0].Position = %v, want (10,20)", api.Position)
	}
	if doc.Nodes[1].Position != nil {
		t.Errorf("node[1].Position = %v, want nil", doc.Nodes[1].Position)
	}
	if doc.Nodes[1].Metadata["engine"] != "postgres" {
		t.Errorf("metadata engine = %v, want postgres", doc.Nodes[1].Metadata["engine"])
	}
	e := doc.Edges[0]
	if e.Order == nil || *e.Order != 2 {
		t.Errorf("edge order = %v, want 2", e.Order)
	}
	if e.Layer != "data" || e.Subtitle != "write" {
		t.Errorf("edge = %+v", e)
	}
	s := doc.Settings
	if s.Title != "Checkout" || s.Layout.Direction != "LR" || s.Layout.NodeSpacing != 40 {
		t.Errorf("settings = %+v", s)
	}
	if s.NodeTypes["service"].Shape != "pill" {
		t.Errorf("nodeTypes.service = %+v", s.NodeTypes["service"])
	}
	if def := s.EdgeTypes["call"]; def.Style != "dashed" || !def.Animated {
		t.Errorf("edgeTypes.call = %+v", def)
	}
}

func TestParseDocument_JSON(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	checkSample(t, doc)
}

func TestParseDocument_YAML(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	checkSample(t, doc)
}

func TestParseDocument_TOML(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	checkSample(t, doc)
}

func TestParseDocument_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json syntax", `{"nodes": [`, FormatJSON},
		{"json empty", "  ", FormatJSON},
		{"json wrong type", `{"nodes": "api"}`, FormatJSON},
		{"yaml syntax", "nodes: [a, b", FormatYAML},
		{"toml syntax", "[[nodes]\nid=", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ParseDocument() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestParseDocument_EmptyGraph(t *testing.T) {
	doc, err := ParseDocument([]byte(`{}`), FormatJSON)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if len(doc.Nodes) != 0 || len(doc.Edges) != 0 {
		t.Errorf("doc = %+v, want empty", doc)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.json", FormatJSON},
		{"dir/a.YAML", FormatYAML},
		{"a.yml", FormatYAML},
		{"a.toml", FormatTOML},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatFromPath("a.xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("FormatFromPath(a.xml) error = %v, want INVALID_FORMAT", err)
	}
}

func TestReadDocumentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile() error: %v", err)
	}
	checkSample(t, doc)

	_, err = ReadDocumentFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadDocumentFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteJSON_Graph(t *testing.T) {
	order := 1
	g := Graph{
		Nodes: []Node{{ID: "a", Label: "A", Type: DefaultType, Size: DefaultSize}},
		Edges: []Edge{{ID: "a-a", Source: "a", Target: "a", Order: &order, TimelineState: TimelineNone}},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	for _, want := range []string{`"id": "a"`, `"order": 1`, `"timelineState": "none"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output missing %s:\n%s", want, buf.String())
		}
	}
}

func TestGraph_Clone(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{ID: "e"}}}
	c := g.Clone()
	c.Nodes[0].Dimmed = true
	c.Edges[0].Dimmed = true
	if g.Nodes[0].Dimmed || g.Edges[0].Dimmed {
		t.Error("Clone() shares node or edge storage")
	}
	if (*Graph)(nil).Clone() == nil {
		t.Error("Clone() of nil graph returned nil")
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"TB", "BT", "LR", "RL"} {
		if d, ok := ParseDirection(s); !ok || string(d) != s {
			t.Errorf("ParseDirection(%q) = %v, %v", s, d, ok)
		}
	}
	if d, ok := ParseDirection(""); !ok || d != DirectionTB {
		t.Errorf("ParseDirection(\"\") = %v, %v; want TB, true", d, ok)
	}
	if d, ok := ParseDirection("diagonal"); ok || d != DirectionTB {
		t.Errorf("ParseDirection(diagonal) = %v, %v; want TB, false", d, ok)
	}
}

func TestNode_Center(t *testing.T) {
	n := Node{Position: Point{X: 100, Y: 40}, Size: DefaultSize}
	if c := n.Center(); c != (Point{X: 200, Y: 70}) {
		t.Errorf("Center() = %v, want (200,70)", c)
	}
}
