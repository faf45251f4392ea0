package errors

import (
	"strings"
	"unicode"
)

// Length limits for identifiers and queries arriving from outside the process.
const (
	MaxIDLength    = 256
	MaxQueryLength = 200
)

// ValidateID checks a node, edge or session identifier received from a
// client. IDs must be non-empty, at most [MaxIDLength] bytes and free of
// control characters.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", MaxIDLength)
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidInput, "id contains invalid control characters")
	}
	return nil
}

// ValidateQuery checks a search query. Empty queries are valid and simply
// match nothing.
func ValidateQuery(q string) error {
	if len(q) > MaxQueryLength {
		return New(ErrCodeInvalidInput, "query too long (max %d characters)", MaxQueryLength)
	}
	if strings.ContainsRune(q, '\x00') {
		return New(ErrCodeInvalidInput, "query contains a null byte")
	}
	return nil
}

// ValidatePath checks a graph file path given to the server. Paths must be
// relative to the served directory and must not escape it.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths
//   - No path traversal sequences (..)
//   - No backslashes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	if strings.IndexFunc(path, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}
