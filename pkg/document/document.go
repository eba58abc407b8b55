// Package document implements the input document model: entities, the
// remap to a dense e0.. id namespace, offset sorting, and tag insertion
// for the presented context string.
package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rfielding/chronicle/pkg/endpoint"
	"github.com/rfielding/chronicle/pkg/relation"
)

// RawEntity is an entity as given in the input document schema, with its
// original (pre-remap) id.
type RawEntity struct {
	ID      string
	Text    string
	Offsets [2]int
	Kind    endpoint.EntityKind // defaults to Interval when empty
}

// RawRelation is a ground-truth relation as given in the input schema,
// referencing entities by their original id.
type RawRelation struct {
	Source string
	Target string
	Rel    relation.Symbol
}

// RawDocument is the on-the-wire input document.
type RawDocument struct {
	Text      string
	Entities  []RawEntity
	Relations []RawRelation
}

// Entity is an entity after id remapping and offset sorting.
type Entity struct {
	ID      string
	Text    string
	Offsets [2]int
	Kind    endpoint.EntityKind
}

// Document is the remapped, offset-sorted document, ready to build
// endpoints and the ground-truth relation set from.
type Document struct {
	Text      string
	Entities  []Entity
	Relations []relation.PointRelation
}

// Normalize sorts entities by offset, remaps their ids to the dense
// e0, e1, ... namespace in that order (offset order coincides with
// first appearance in the text), and rewrites every relation's
// endpoint names through the same remap.
func Normalize(raw RawDocument) (*Document, error) {
	entities := append([]RawEntity(nil), raw.Entities...)
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Offsets[0] < entities[j].Offsets[0] })

	idMap := make(map[string]string, len(entities))
	out := make([]Entity, 0, len(entities))
	for i, e := range entities {
		kind := e.Kind
		if kind == "" {
			kind = endpoint.Interval
		}
		newID := fmt.Sprintf("e%d", i)
		idMap[e.ID] = newID
		out = append(out, Entity{ID: newID, Text: e.Text, Offsets: e.Offsets, Kind: kind})
	}

	rels := make([]relation.PointRelation, 0, len(raw.Relations))
	for _, rr := range raw.Relations {
		srcKind, srcID, err := splitEndpointName(rr.Source)
		if err != nil {
			return nil, fmt.Errorf("document: relation source: %w", err)
		}
		tgtKind, tgtID, err := splitEndpointName(rr.Target)
		if err != nil {
			return nil, fmt.Errorf("document: relation target: %w", err)
		}
		newSrcID, ok := idMap[srcID]
		if !ok {
			return nil, fmt.Errorf("document: relation references unknown entity %q", srcID)
		}
		newTgtID, ok := idMap[tgtID]
		if !ok {
			return nil, fmt.Errorf("document: relation references unknown entity %q", tgtID)
		}
		r, err := relation.New(srcKind+" "+newSrcID, tgtKind+" "+newTgtID, rr.Rel)
		if err != nil {
			return nil, fmt.Errorf("document: %w", err)
		}
		rels = append(rels, r)
	}

	return &Document{Text: raw.Text, Entities: out, Relations: rels}, nil
}

func splitEndpointName(name string) (kind, id string, err error) {
	parts := strings.SplitN(name, " ", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed endpoint name %q", name)
	}
	return parts[0], parts[1], nil
}

// EndpointRefs adapts the document's entities for endpoint.Sequence.
func (d *Document) EndpointRefs() []endpoint.EntityRef {
	out := make([]endpoint.EntityRef, len(d.Entities))
	for i, e := range d.Entities {
		out[i] = endpoint.EntityRef{ID: e.ID, Text: e.Text, Offsets: e.Offsets, Kind: e.Kind}
	}
	return out
}

// EntityTexts returns entity surface forms in traversal order, for
// Observation.Entities.
func (d *Document) EntityTexts() []string {
	out := make([]string, len(d.Entities))
	for i, e := range d.Entities {
		out[i] = e.Text
	}
	return out
}

// TaggedContext inserts "<start><end><eK>" immediately before entity K's
// surface span and "</eK>" immediately after, for each entity in offset
// order. Offsets are resolved against the original text via a monotonic
// walk, never against the growing tagged string.
func (d *Document) TaggedContext() string {
	var b strings.Builder
	cursor := 0
	for i, e := range d.Entities {
		start, end := e.Offsets[0], e.Offsets[1]
		if start < cursor || start > len(d.Text) || end > len(d.Text) || end < start {
			continue
		}
		b.WriteString(d.Text[cursor:start])
		fmt.Fprintf(&b, "<start><end><e%d>", i)
		b.WriteString(d.Text[start:end])
		fmt.Fprintf(&b, "</e%d>", i)
		cursor = end
	}
	b.WriteString(d.Text[cursor:])
	return b.String()
}
