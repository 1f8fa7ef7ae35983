// Package ident mints ids for clips and tracks. Interactive sessions use
// time-ordered UUIDs; replay and scenario runs swap in a deterministic
// sequence so identical inputs produce identical traces.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator mints unique entity ids.
type Generator interface {
	NewID() string
}

// UUID returns a generator backed by UUIDv7, so ids sort by creation
// time. Falls back to v4 if the monotonic clock source fails.
func UUID() Generator { return uuidGen{} }

type uuidGen struct{}

func (uuidGen) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Sequence returns a generator yielding prefix-1, prefix-2, ...
func Sequence(prefix string) Generator {
	return &seqGen{prefix: prefix}
}

type seqGen struct {
	prefix string
	n      atomic.Int64
}

func (g *seqGen) NewID() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

// Derive mints a stable id from a domain and its parts: the same
// inputs always yield the same id, so entities created while folding a
// journal come back under the ids the original session gave them. The
// domain keeps ids from colliding across entity kinds; a NUL joins the
// parts so no two input splits share an image.
func Derive(domain string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
