// Package timeline implements the Timeline: the set of asserted point
// relations for a document together with its transitive closure, and the
// consistency check over both.
package timeline

import "github.com/rfielding/chronicle/pkg/relation"

// Timeline holds an explicitly asserted relation set and its derived
// closure.
type Timeline struct {
	explicit *RelationSet
	closure  *RelationSet
}

// New returns an empty Timeline.
func New() *Timeline {
	return &Timeline{explicit: NewRelationSet(), closure: NewRelationSet()}
}

// FromRelations seeds a Timeline with a batch of relations (used to
// build the ground-truth timeline from a document's relations, and by
// Sort to rebuild from a reordered relation set) and computes its
// closure once.
func FromRelations(rels []relation.PointRelation) *Timeline {
	t := New()
	for _, r := range rels {
		t.explicit.Add(r)
	}
	t.closure = computeClosure(t.explicit)
	return t
}

// Add inserts r into the explicit set and recomputes the closure.
func (t *Timeline) Add(r relation.PointRelation) {
	t.explicit.Add(r)
	t.closure = computeClosure(t.explicit)
}

// Explicit returns the asserted relations.
func (t *Timeline) Explicit() []relation.PointRelation { return t.explicit.Items() }

// Closure returns the derived closure relations.
func (t *Timeline) Closure() []relation.PointRelation { return t.closure.Items() }

// ExplicitSet/ClosureSet expose the underlying sets for callers (like
// pkg/game) that need set operations (difference, subset) rather than
// slices.
func (t *Timeline) ExplicitSet() *RelationSet { return t.explicit }
func (t *Timeline) ClosureSet() *RelationSet  { return t.closure }

// IsValid reports whether the timeline is internally consistent: the
// explicit set is non-empty only if the closure is non-empty, and
// neither set may carry two relations on the same unordered endpoint
// pair.
func (t *Timeline) IsValid() bool {
	if t.explicit.Len() > 0 && t.closure.Len() == 0 {
		return false
	}
	if t.explicit.PairCount() != t.explicit.Len() {
		return false
	}
	if t.closure.PairCount() != t.closure.Len() {
		return false
	}
	return true
}

// Sort produces a new Timeline built from the closure, with every
// relation's source endpoint preceding its target endpoint in
// entityOrder (inverting any relation where it doesn't). entityOrder
// maps entity id ("e0", "e1", ...) to its traversal index.
func (t *Timeline) Sort(entityOrder map[string]int) *Timeline {
	closure := t.Closure()
	sorted := make([]relation.PointRelation, 0, len(closure))
	for _, r := range closure {
		si, sok := entityOrder[r.SourceID()]
		ti, tok := entityOrder[r.TargetID()]
		if sok && tok && si > ti {
			r = r.Invert()
		}
		sorted = append(sorted, r)
	}
	return FromRelations(sorted)
}

// Clone returns a deep copy, suitable for the undo stack's value-semantic
// history.
func (t *Timeline) Clone() *Timeline {
	return &Timeline{explicit: t.explicit.Clone(), closure: t.closure.Clone()}
}
