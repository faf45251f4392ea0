package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Marshal encodes v (a Graph, a Document or a view snapshot) as indented
// JSON.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v as indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSONFile writes v as indented JSON to path with 0644 permissions.
func WriteJSONFile(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, v)
}
