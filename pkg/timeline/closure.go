package timeline

import (
	"sort"
	"strings"

	"github.com/rfielding/chronicle/pkg/relation"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// nodeIndex assigns dense int64 ids to endpoint names for gonum's graph
// types, which key nodes by int64 rather than string.
type nodeIndex struct {
	nameToID map[string]int64
	idToName map[int64]string
	next     int64
}

func newNodeIndex() *nodeIndex {
	return &nodeIndex{nameToID: make(map[string]int64), idToName: make(map[int64]string)}
}

func (n *nodeIndex) id(name string) int64 {
	if id, ok := n.nameToID[name]; ok {
		return id
	}
	id := n.next
	n.next++
	n.nameToID[name] = id
	n.idToName[id] = name
	return id
}

// unionFind is a textbook union-find over endpoint names, used to build
// equality classes from "=" edges; the strict-order half of the closure
// below uses gonum's graph/component/reachability machinery instead.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind { return &unionFind{parent: make(map[string]string)} }

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

func splitName(name string) (kind, id string) {
	parts := strings.SplitN(name, " ", 2)
	if len(parts) != 2 {
		return name, ""
	}
	return parts[0], parts[1]
}

// computeClosure derives the full closure of an explicit relation set
// in seven steps: gather edges by kind, inject implicit interval
// self-relations, expand equality classes, close the strict order over
// each weakly-connected component, re-expand equality across the
// result, reattach unresolved relations, then drop same-entity pairs.
func computeClosure(explicit *RelationSet) *RelationSet {
	var strictEdges [][2]string // [0] before [1]
	var eqPairs [][2]string
	var nullRels []relation.PointRelation
	intervalEntities := make(map[string]bool)

	markInterval := func(name string) {
		kind, id := splitName(name)
		if kind == string(relationStart) || kind == string(relationEnd) {
			intervalEntities[id] = true
		}
	}

	for _, r := range explicit.Items() {
		markInterval(r.Source)
		markInterval(r.Target)
		switch r.Rel {
		case relation.Before:
			strictEdges = append(strictEdges, [2]string{r.Source, r.Target})
		case relation.After:
			strictEdges = append(strictEdges, [2]string{r.Target, r.Source})
		case relation.Equal:
			eqPairs = append(eqPairs, [2]string{r.Source, r.Target})
		case relation.Unknown:
			nullRels = append(nullRels, r)
		}
	}

	// Step 2: inject the implicit interval self-relation into the
	// strict-order input (dropped again from the output in step 7).
	intervalIDs := make([]string, 0, len(intervalEntities))
	for id := range intervalEntities {
		intervalIDs = append(intervalIDs, id)
	}
	sort.Strings(intervalIDs)
	for _, id := range intervalIDs {
		strictEdges = append(strictEdges, [2]string{"start " + id, "end " + id})
	}

	result := NewRelationSet()

	// Step 3: equality classes. Union-find groups "=" edges; every
	// component emits every ordered pair drawn from its members.
	uf := newUnionFind()
	eqNodes := make(map[string]bool)
	for _, p := range eqPairs {
		uf.union(p[0], p[1])
		eqNodes[p[0]] = true
		eqNodes[p[1]] = true
	}
	groups := make(map[string][]string)
	for n := range eqNodes {
		root := uf.find(n)
		groups[root] = append(groups[root], n)
	}
	var eqClassPairs [][2]string
	for _, members := range groups {
		sort.Strings(members)
		for _, a := range members {
			for _, b := range members {
				if a == b {
					continue
				}
				eqClassPairs = append(eqClassPairs, [2]string{a, b})
				if r, err := relation.New(a, b, relation.Equal); err == nil {
					result.Add(r)
				}
			}
		}
	}

	// Step 4: strict-order closure via weakly-connected components and
	// per-component reachability.
	if len(strictEdges) > 0 {
		idx := newNodeIndex()
		dg := simple.NewDirectedGraph()
		ug := simple.NewUndirectedGraph()
		ensure := func(g interface {
			Node(int64) graph.Node
			AddNode(graph.Node)
		}, id int64) {
			if g.Node(id) == nil {
				g.AddNode(simple.Node(id))
			}
		}
		for _, e := range strictEdges {
			u, v := idx.id(e[0]), idx.id(e[1])
			ensure(dg, u)
			ensure(dg, v)
			ensure(ug, u)
			ensure(ug, v)
			if u != v {
				if !dg.HasEdgeFromTo(u, v) {
					dg.SetEdge(dg.NewEdge(simple.Node(u), simple.Node(v)))
				}
				if !ug.HasEdgeBetween(u, v) {
					ug.SetEdge(ug.NewEdge(simple.Node(u), simple.Node(v)))
				}
			}
		}

		components := topo.ConnectedComponents(ug)
		for _, comp := range components {
			for _, un := range comp {
				reachable := make(map[int64]bool)
				bf := traverse.BreadthFirst{}
				bf.Walk(dg, un, func(n graph.Node, d int) bool {
					if d > 0 {
						reachable[n.ID()] = true
					}
					return false
				})
				for _, vn := range comp {
					if vn.ID() == un.ID() || !reachable[vn.ID()] {
						continue
					}
					a, b := idx.idToName[un.ID()], idx.idToName[vn.ID()]
					if r, err := relation.New(a, b, relation.Before); err == nil {
						result.Add(r)
					}
				}
			}
		}
	}

	// Step 5: equality expansion: for every relation emitted so far,
	// substitute each equality-class member for every other member of
	// its class, one endpoint at a time, in a single pass. A relation
	// whose source and target both lie in equality classes gets each
	// endpoint replaced separately, never both in the same new relation.
	expandEquality(result, eqClassPairs)

	// Step 6: reattach "-" relations unchanged, added after expansion
	// so they are never substituted.
	for _, r := range nullRels {
		result.Add(r)
	}

	// Step 7: drop relations whose endpoints share an entity id. This
	// also removes the interval self-relations injected in step 2.
	return filterSelfRelations(result)
}

func expandEquality(result *RelationSet, eqClassPairs [][2]string) {
	if len(eqClassPairs) == 0 {
		return
	}
	snapshot := result.Items()
	for _, p := range eqClassPairs {
		a, b := p[0], p[1]
		for _, r := range snapshot {
			if r.Target == b {
				if nr, err := relation.New(r.Source, a, r.Rel); err == nil {
					result.Add(nr)
				}
			}
			if r.Source == b {
				if nr, err := relation.New(a, r.Target, r.Rel); err == nil {
					result.Add(nr)
				}
			}
			if r.Target == a {
				if nr, err := relation.New(r.Source, b, r.Rel); err == nil {
					result.Add(nr)
				}
			}
			if r.Source == a {
				if nr, err := relation.New(b, r.Target, r.Rel); err == nil {
					result.Add(nr)
				}
			}
		}
	}
}

func filterSelfRelations(s *RelationSet) *RelationSet {
	out := NewRelationSet()
	for _, r := range s.Items() {
		if r.SameEntity() {
			continue
		}
		out.Add(r)
	}
	return out
}

// relationStart/relationEnd mirror pkg/endpoint's Kind constants without
// importing pkg/endpoint: keeping this package standalone over strings is
// simpler than introducing the dependency just for two constants.
type epKind string

const (
	relationStart epKind = "start"
	relationEnd   epKind = "end"
)
