package errors

import (
	"strings"
	"unicode"
)

// MaxNotesSize bounds the note buffer accepted by the draw endpoints.
const MaxNotesSize = 1 << 20

// ValidateNodeName validates a node name coming from the parser backend.
// Names are the stable identity key of the merge, so they must be non-empty
// and free of control characters.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeMalformedGraph, "node name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedGraph, "node name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateStorageKey validates a key used with a note store.
// Keys end up in file names and redis keys, so path separators and
// traversal sequences are rejected.
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "storage key cannot be empty")
	}

	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "storage key too long (max 256 characters)")
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"\x00",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "storage key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateNotes checks the size of a note buffer before it is sent anywhere.
// Empty notes are not an error: callers short-circuit them to a no-op.
func ValidateNotes(notes string) error {
	if len(notes) > MaxNotesSize {
		return New(ErrCodeInvalidInput, "notes too large (%d bytes, max %d)", len(notes), MaxNotesSize)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
