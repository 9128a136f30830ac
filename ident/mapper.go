// Package ident normalizes Oracle identifiers into safe, length-bounded,
// collision-free PostgreSQL identifiers and quotes them on demand.
package ident

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// MaxIdentLength is PostgreSQL's identifier length limit.
const MaxIdentLength = 63

var needsQuote = regexp.MustCompile(`[^a-z0-9_]|^[^a-z_]|^[0-9]`)

var reserved = map[string]bool{
	"offset": true, "limit": true, "user": true, "schema": true,
	"table": true, "column": true, "order": true, "group": true,
	"primary": true, "foreign": true, "unique": true, "constraint": true,
	"references": true, "timestamp": true, "type": true, "name": true,
	"value": true, "values": true,
}

var normalizeInvalid = regexp.MustCompile(`[^a-z0-9_]`)
var startsValid = regexp.MustCompile(`^[a-z_]`)

// Mapper assigns a single, stable, collision-free target identifier to
// each distinct source identifier it is asked to map. It is not safe for
// concurrent use; build it during planning, then share the finished,
// read-only instance with the loader.
type Mapper struct {
	forward map[string]string // original -> mapped
	used    map[string]string // mapped -> original
}

// NewMapper returns an empty mapper.
func NewMapper() *Mapper {
	return &Mapper{
		forward: make(map[string]string),
		used:    make(map[string]string),
	}
}

// Map returns the target identifier for original, computing and
// memoizing it on first use. The same original always yields the same
// result; distinct originals never collide within one Mapper.
func (m *Mapper) Map(original string) string {
	if mapped, ok := m.forward[original]; ok {
		return mapped
	}

	base := shorten(normalize(original))
	n := base
	for i := 1; ; i++ {
		if existing, ok := m.used[n]; !ok || existing == original {
			break
		}
		suffix := fmt.Sprintf("_%d", i)
		keep := MaxIdentLength - len(suffix)
		if keep < 0 {
			keep = 0
		}
		if keep > len(base) {
			keep = len(base)
		}
		n = shorten(base[:keep] + suffix)
	}

	m.forward[original] = n
	m.used[n] = original
	return n
}

// Quote wraps ident in double quotes when it contains characters outside
// [a-z0-9_], starts with a digit, or is a reserved word; embedded double
// quotes are doubled.
func Quote(identifier string) string {
	if identifier == "" {
		return `""`
	}
	if needsQuote.MatchString(identifier) || reserved[strings.ToLower(identifier)] {
		return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
	}
	return identifier
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = normalizeInvalid.ReplaceAllString(n, "_")
	if n == "" || !startsValid.MatchString(n) {
		n = "_" + n
	}
	return n
}

func shorten(n string) string {
	if len(n) <= MaxIdentLength {
		return n
	}
	hasher, err := blake2b.New(4, nil) // 4-byte digest, matching blake2b(digest_size=4)
	if err != nil {
		panic(err) // only fails for an invalid size/key, both constant here
	}
	hasher.Write([]byte(n))
	h := fmt.Sprintf("%x", hasher.Sum(nil))
	keep := MaxIdentLength - 1 - len(h)
	if keep < 0 {
		keep = 0
	}
	if keep > len(n) {
		keep = len(n)
	}
	return n[:keep] + "_" + h
}
