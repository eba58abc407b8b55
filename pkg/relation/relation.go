// Package relation implements PointRelation: a typed triple of source
// endpoint, target endpoint and relation symbol, with canonicalization,
// inversion, equality and hashing over that triple.
package relation

import (
	"fmt"
	"strings"
)

// Symbol is a point-algebra relation between two endpoints.
type Symbol string

const (
	Before  Symbol = "<"
	After   Symbol = ">"
	Equal   Symbol = "="
	Unknown Symbol = "-"
)

func validSymbol(s Symbol) bool {
	switch s {
	case Before, After, Equal, Unknown:
		return true
	}
	return false
}

var endpointPrefixes = []string{"start ", "end ", "instant "}

func validEndpointName(name string) bool {
	for _, p := range endpointPrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			return true
		}
	}
	return false
}

// PointRelation is (source endpoint name, target endpoint name, relation).
type PointRelation struct {
	Source string
	Target string
	Rel    Symbol
}

// New validates and constructs a PointRelation. Both names must begin
// with "start ", "end " or "instant ", and rel must be one of <,>,=,-.
func New(source, target string, rel Symbol) (PointRelation, error) {
	if !validEndpointName(source) {
		return PointRelation{}, fmt.Errorf("relation: malformed source endpoint name %q", source)
	}
	if !validEndpointName(target) {
		return PointRelation{}, fmt.Errorf("relation: malformed target endpoint name %q", target)
	}
	if !validSymbol(rel) {
		return PointRelation{}, fmt.Errorf("relation: unknown relation symbol %q", rel)
	}
	return PointRelation{Source: source, Target: target, Rel: rel}, nil
}

// invertSymbol maps < -> >, > -> <, and is the identity on = and -.
func invertSymbol(s Symbol) Symbol {
	switch s {
	case Before:
		return After
	case After:
		return Before
	default:
		return s
	}
}

// Invert returns (target, source, inv(rel)).
func (r PointRelation) Invert() PointRelation {
	return PointRelation{Source: r.Target, Target: r.Source, Rel: invertSymbol(r.Rel)}
}

// Canonical returns the canonical form used for equality and hashing:
// the endpoint-name pair sorted lexicographically, inverting the
// relation when the pair was swapped to achieve that order.
func (r PointRelation) Canonical() PointRelation {
	if r.Source <= r.Target {
		return r
	}
	return r.Invert()
}

// Equal reports whether r and o denote the same point relation, directly
// or via inversion.
func (r PointRelation) Equal(o PointRelation) bool {
	return r == o || r == o.Invert()
}

// PairKey is the canonical unordered endpoint-pair identity used to
// detect contradictions (two relations asserted on the same pair).
func (r PointRelation) PairKey() string {
	c := r.Canonical()
	return c.Source + "\x00" + c.Target
}

// Key is the canonical hash key for the relation itself (pair + symbol),
// used as a set-membership key so identical relations dedupe and
// contradictory ones (same pair, different symbol) remain distinct.
func (r PointRelation) Key() string {
	c := r.Canonical()
	return c.Source + "\x00" + c.Target + "\x00" + string(c.Rel)
}

// Hash computes a hash of the canonical form. Two relations that compare
// Equal always hash equal.
func (r PointRelation) Hash() uint64 {
	return fnv1a(r.Key())
}

func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// ToDict serializes the relation for presentation.
func (r PointRelation) ToDict() map[string]string {
	return map[string]string{
		"source":   r.Source,
		"target":   r.Target,
		"relation": string(r.Rel),
	}
}

func splitName(name string) (kind, id string) {
	parts := strings.SplitN(name, " ", 2)
	if len(parts) != 2 {
		return name, ""
	}
	return parts[0], parts[1]
}

// SourceEndpoint returns the source endpoint's kind ("start"/"end"/"instant").
func (r PointRelation) SourceEndpoint() string { k, _ := splitName(r.Source); return k }

// SourceID returns the source endpoint's entity id.
func (r PointRelation) SourceID() string { _, id := splitName(r.Source); return id }

// TargetEndpoint returns the target endpoint's kind.
func (r PointRelation) TargetEndpoint() string { k, _ := splitName(r.Target); return k }

// TargetID returns the target endpoint's entity id.
func (r PointRelation) TargetID() string { _, id := splitName(r.Target); return id }

// SameEntity reports whether source and target belong to the same entity.
func (r PointRelation) SameEntity() bool { return r.SourceID() == r.TargetID() }
