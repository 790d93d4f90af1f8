package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sboosali/notegraph/pkg/errors"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// DecodeDocument decodes a parser response.
// Malformed JSON is reported as INVALID_RESPONSE.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode graph")
	}
	for i, n := range doc.Nodes {
		if n == nil {
			return nil, errors.New(errors.ErrCodeInvalidResponse, "node %d is null", i)
		}
	}
	return &doc, nil
}

// UnmarshalDocument decodes a parser response held in memory.
func UnmarshalDocument(data []byte) (*Document, error) {
	return DecodeDocument(bytes.NewReader(data))
}

// ReadDocumentFile reads a parser response saved to disk.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeDocument(f)
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as indented JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}
