package board

import (
	"testing"

	"github.com/rfielding/chronicle/pkg/endpoint"
	"github.com/rfielding/chronicle/pkg/relation"
)

func threeIntervalEndpoints() []endpoint.Endpoint {
	entities := []endpoint.EntityRef{
		{ID: "e0", Text: "a", Kind: endpoint.Interval},
		{ID: "e1", Text: "b", Kind: endpoint.Interval},
		{ID: "e2", Text: "c", Kind: endpoint.Interval},
	}
	return endpoint.Sequence(entities)
}

func TestMaskedAndUnclassifiedCounts(t *testing.T) {
	eps := threeIntervalEndpoints()
	pi := endpoint.NewPairIndex(eps)
	b := Make(pi, nil)

	n := pi.N()
	wantMasked := n*n - 2*pi.NRelations()
	gotMasked, gotUnclassified := 0, 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch b.Cells[i][j] {
			case Masked:
				gotMasked++
			case Unclassified:
				gotUnclassified++
			}
		}
	}
	if gotMasked != wantMasked {
		t.Fatalf("masked cells = %d, want %d", gotMasked, wantMasked)
	}
	if gotUnclassified != pi.NRelations() {
		t.Fatalf("unclassified cells = %d, want %d", gotUnclassified, pi.NRelations())
	}
}

func TestEncodedRelationAppearsAtCell(t *testing.T) {
	eps := threeIntervalEndpoints()
	pi := endpoint.NewPairIndex(eps)
	// eps = [start e0, end e0, start e1, end e1, start e2, end e2]
	r, _ := relation.New("start e0", "start e2", relation.Before)
	b := Make(pi, []relation.PointRelation{r})

	i, j, ok := pi.IndexOf("start e0", "start e2")
	if !ok {
		t.Fatal("expected (start e0, start e2) to be an orderable pair")
	}
	if b.Cells[i][j] != EncBefore {
		t.Fatalf("cell (%d,%d) = %d, want EncBefore", i, j, b.Cells[i][j])
	}
}

func TestInvertedInputStillEncodesCorrectly(t *testing.T) {
	eps := threeIntervalEndpoints()
	pi := endpoint.NewPairIndex(eps)
	r, _ := relation.New("start e2", "start e0", relation.After) // same fact, reversed direction
	b := Make(pi, []relation.PointRelation{r})

	i, j, _ := pi.IndexOf("start e0", "start e2")
	if b.Cells[i][j] != EncBefore {
		t.Fatalf("cell (%d,%d) = %d, want EncBefore", i, j, b.Cells[i][j])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	eps := threeIntervalEndpoints()
	pi := endpoint.NewPairIndex(eps)
	b := Make(pi, nil)
	c := b.Clone()
	c.Cells[0][1] = EncEqual
	if b.Cells[0][1] == EncEqual {
		t.Fatal("mutating the clone mutated the original")
	}
	if !b.Equal(b.Clone()) {
		t.Fatal("a board should equal its own clone")
	}
}
