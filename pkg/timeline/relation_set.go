package timeline

import (
	"sort"

	"github.com/rfielding/chronicle/pkg/relation"
)

// RelationSet is a deduplicated set of PointRelations keyed by their
// canonical (pair, symbol) identity, so identical relations collapse to
// one entry while two relations that disagree on the same unordered
// endpoint pair remain as distinct entries (a contradiction, detected by
// Timeline.IsValid via PairCount).
type RelationSet struct {
	byKey map[string]relation.PointRelation
}

// NewRelationSet returns an empty relation set.
func NewRelationSet() *RelationSet {
	return &RelationSet{byKey: make(map[string]relation.PointRelation)}
}

// Add inserts r under its canonical key, deduplicating identical
// relations. The stored relation keeps r's own orientation.
func (s *RelationSet) Add(r relation.PointRelation) {
	s.byKey[r.Key()] = r
}

// Has reports whether an equal relation is already present.
func (s *RelationSet) Has(r relation.PointRelation) bool {
	_, ok := s.byKey[r.Canonical().Key()]
	return ok
}

// Len returns the number of distinct relations.
func (s *RelationSet) Len() int { return len(s.byKey) }

// Items returns the set's relations in a stable (sorted by key) order.
func (s *RelationSet) Items() []relation.PointRelation {
	out := make([]relation.PointRelation, 0, len(s.byKey))
	for _, r := range s.byKey {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// PairCount returns the number of distinct unordered endpoint pairs
// represented in the set. When PairCount < Len, at least one pair
// carries two contradictory relations.
func (s *RelationSet) PairCount() int {
	pairs := make(map[string]struct{}, len(s.byKey))
	for _, r := range s.byKey {
		pairs[r.PairKey()] = struct{}{}
	}
	return len(pairs)
}

// Clone returns a deep copy.
func (s *RelationSet) Clone() *RelationSet {
	out := NewRelationSet()
	for k, v := range s.byKey {
		out.byKey[k] = v
	}
	return out
}

// Contains reports whether every relation in other is present in s
// (modulo canonicalization), i.e. other is a subset of s.
func (s *RelationSet) Contains(other *RelationSet) bool {
	for k := range other.byKey {
		if _, ok := s.byKey[k]; !ok {
			return false
		}
	}
	return true
}
