// Package graph defines the input document schema, the canonical entity set
// produced by normalization, and their encodings.
//
// # Documents
//
// A [Document] is the raw declarative description users write: nodes, edges,
// groups and settings. It can be stored as JSON, YAML or TOML; the format is
// picked from the file extension:
//
//	doc, err := graph.ReadDocumentFile("flow.yaml")
//
// JSON is decoded with goccy/go-json. YAML and TOML are decoded into a
// generic tree first and mapped onto the same struct with mapstructure, using
// the JSON field names, so every format shares one schema. Malformed input is
// the only condition reported as an error ([errors.ErrCodeInvalidInput]).
//
// # Canonical Graph
//
// [Graph] is what the rest of the engine works on. Every node has a label,
// type, size and resolved style; group containers are nodes with IsGroup set;
// every edge has an ID and endpoints that exist. The derived fields (Dimmed,
// Highlighted, TimelineState, handles) are filled in by the view layer.
//
// # Geometry
//
// Positions are top-left corners of node boxes. A Point at the exact origin
// means "not supplied"; any other input position is kept by the layout.
package graph
