package graph

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphilizer/pkg/errors"
)

// Format identifies the encoding of a graph document.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported graph file extension %q", filepath.Ext(path))
}

// ReadDocumentFile reads and decodes a graph document, choosing the format by
// extension.
func ReadDocumentFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return ParseDocument(data, format)
}

// ReadDocument decodes a graph document from r.
func ReadDocument(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read document")
	}
	return ParseDocument(data, format)
}

// ParseDocument decodes data in the given format. Malformed data yields an
// INVALID_INPUT error; nothing is normalized here.
func ParseDocument(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty JSON document")
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON")
		}
		return &doc, nil
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode YAML")
		}
		return fromMap(raw)
	case FormatTOML:
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode TOML")
		}
		return fromMap(raw)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// fromMap maps a generic decoded tree onto Document using the JSON field
// names, so all three formats share one schema.
func fromMap(raw map[string]any) (*Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}
	return &doc, nil
}
