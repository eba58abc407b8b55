// Package endpoint defines endpoint identities over entities: the start
// or end of an interval entity, or an instant entity, and the canonical
// ordering of endpoint pairs that the board is indexed by.
package endpoint

import "fmt"

// Kind is the role an endpoint plays relative to its entity.
type Kind string

const (
	Start   Kind = "start"
	End     Kind = "end"
	Instant Kind = "instant"
)

// EntityKind distinguishes interval entities (which contribute two
// endpoints) from instant entities (which contribute one).
type EntityKind string

const (
	Interval EntityKind = "interval"
	InstantK EntityKind = "instant"
)

// Endpoint is a single point in time: either the start or end of an
// interval entity, or an instant entity.
type Endpoint struct {
	Kind     Kind
	EntityID string
	Text     string
	Offsets  [2]int
}

// Name is the canonical string identity of an endpoint: "<kind> <entity_id>".
func (e Endpoint) Name() string {
	return fmt.Sprintf("%s %s", e.Kind, e.EntityID)
}

// Label is the human-readable form used in Observation.Endpoints:
// "<kind> <entity_text>".
func (e Endpoint) Label() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Text)
}

// EntityRef is the minimal view of an entity Sequence needs: its dense
// id, surface text, offsets and kind. pkg/document's
// Document.EndpointRefs builds these from its entities.
type EntityRef struct {
	ID      string
	Text    string
	Offsets [2]int
	Kind    EntityKind
}

// Sequence builds the ordered endpoint list for a set of entities already
// sorted by offset. Per entity, an interval entity contributes its start
// endpoint immediately followed by its end endpoint; an instant entity
// contributes its single instant endpoint. Entities are not regrouped by
// kind; endpoints are interleaved in entity order, e.g.
// [start e0, end e0, start e1, end e1, start e2, end e2] when all three
// entities are intervals.
func Sequence(entities []EntityRef) []Endpoint {
	out := make([]Endpoint, 0, len(entities)*2)
	for _, e := range entities {
		switch e.Kind {
		case Interval:
			out = append(out,
				Endpoint{Kind: Start, EntityID: e.ID, Text: e.Text, Offsets: e.Offsets},
				Endpoint{Kind: End, EntityID: e.ID, Text: e.Text, Offsets: e.Offsets},
			)
		default:
			out = append(out, Endpoint{Kind: Instant, EntityID: e.ID, Text: e.Text, Offsets: e.Offsets})
		}
	}
	return out
}

// Pair is one orderable endpoint pair: the indices i<j into the endpoint
// sequence, and the corresponding canonical endpoint names.
type Pair struct {
	I, J         int
	NameI, NameJ string
}

// PairIndex is the bijection between orderable endpoint pairs and board
// cells described in §4.1: for all (i,j) with 0<=i<j<n and the endpoints
// at i and j belonging to different entities, the pair is registered.
type PairIndex struct {
	Endpoints []Endpoint
	Pairs     []Pair
	idxToPair map[[2]int][2]string
	pairToIdx map[[2]string][2]int
}

// NewPairIndex builds the orderable-pair index over an endpoint sequence.
func NewPairIndex(endpoints []Endpoint) *PairIndex {
	pi := &PairIndex{
		Endpoints: endpoints,
		idxToPair: make(map[[2]int][2]string),
		pairToIdx: make(map[[2]string][2]int),
	}
	n := len(endpoints)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if endpoints[i].EntityID == endpoints[j].EntityID {
				continue
			}
			ni, nj := endpoints[i].Name(), endpoints[j].Name()
			pi.Pairs = append(pi.Pairs, Pair{I: i, J: j, NameI: ni, NameJ: nj})
			pi.idxToPair[[2]int{i, j}] = [2]string{ni, nj}
			pi.pairToIdx[[2]string{ni, nj}] = [2]int{i, j}
		}
	}
	return pi
}

// N is the number of endpoints (the board side length).
func (pi *PairIndex) N() int { return len(pi.Endpoints) }

// NRelations is the cardinality of the orderable-pair index.
func (pi *PairIndex) NRelations() int { return len(pi.Pairs) }

// NamesAt resolves an (i,j) index pair to its canonical endpoint names.
func (pi *PairIndex) NamesAt(i, j int) (string, string, bool) {
	v, ok := pi.idxToPair[[2]int{i, j}]
	if !ok {
		return "", "", false
	}
	return v[0], v[1], true
}

// IndexOf resolves a pair of canonical endpoint names to its (i,j) index.
// Names may be given in either order.
func (pi *PairIndex) IndexOf(a, b string) (int, int, bool) {
	if v, ok := pi.pairToIdx[[2]string{a, b}]; ok {
		return v[0], v[1], true
	}
	if v, ok := pi.pairToIdx[[2]string{b, a}]; ok {
		return v[0], v[1], true
	}
	return 0, 0, false
}
