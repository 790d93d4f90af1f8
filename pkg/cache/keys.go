package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Keyer derives cache keys for the values notegraph caches.
type Keyer interface {
	// DrawKey is the key of a parser response for notes sent to backend.
	DrawKey(backend, notes string) string

	// QueryKey is the key of a query response.
	QueryKey(backend, query string) string
}

// DefaultKeyer hashes the request into the key so that keys have a fixed
// length regardless of the size of the notes.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DrawKey(backend, notes string) string {
	return hashKey("draw", backend, notes)
}

func (DefaultKeyer) QueryKey(backend, query string) string {
	return hashKey("query", backend, query)
}

// ScopedKeyer wraps a Keyer with a prefix, so that sessions sharing one
// cache backend can be kept apart when needed.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DrawKey(backend, notes string) string {
	return k.prefix + k.inner.DrawKey(backend, notes)
}

func (k *ScopedKeyer) QueryKey(backend, query string) string {
	return k.prefix + k.inner.QueryKey(backend, query)
}

// hashKey is kind:sha256(fields). Each field is length-prefixed so that
// moving bytes between the backend URL and the notes changes the key.
func hashKey(kind string, fields ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, f := range fields {
		binary.BigEndian.PutUint64(n[:], uint64(len(f)))
		h.Write(n[:])
		h.Write([]byte(f))
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
