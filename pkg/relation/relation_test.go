package relation

import "testing"

func TestNewValidation(t *testing.T) {
	if _, err := New("start e0", "end e0", Before); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New("bogus e0", "end e0", Before); err == nil {
		t.Fatal("expected malformed source error")
	}
	if _, err := New("start e0", "end e0", "?"); err == nil {
		t.Fatal("expected unknown relation symbol error")
	}
}

func TestInvertInvolution(t *testing.T) {
	r, _ := New("start e0", "end e1", Before)
	if got := r.Invert().Invert(); got != r {
		t.Fatalf("invert(invert(r)) = %+v, want %+v", got, r)
	}
}

func TestEqualityUnderInversion(t *testing.T) {
	a, _ := New("start e0", "end e1", Before)
	b, _ := New("end e1", "start e0", After)
	if !a.Equal(b) {
		t.Fatalf("expected %+v == %+v", a, b)
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("expected equal hashes for %+v and %+v", a, b)
	}
}

func TestCanonicalSortsLexicographically(t *testing.T) {
	r, _ := New("start e9", "end e1", Before)
	c := r.Canonical()
	if c.Source != "end e1" || c.Target != "start e9" || c.Rel != After {
		t.Fatalf("unexpected canonical form: %+v", c)
	}
}

func TestPairKeyIgnoresRelation(t *testing.T) {
	a, _ := New("start e0", "end e1", Before)
	b, _ := New("start e0", "end e1", After)
	if a.PairKey() != b.PairKey() {
		t.Fatal("expected same pair key regardless of relation")
	}
	if a.Key() == b.Key() {
		t.Fatal("expected distinct keys for contradictory relations")
	}
}

func TestAccessors(t *testing.T) {
	r, _ := New("start e0", "end e1", Before)
	if r.SourceEndpoint() != "start" || r.SourceID() != "e0" {
		t.Fatalf("bad source accessors: %+v", r)
	}
	if r.TargetEndpoint() != "end" || r.TargetID() != "e1" {
		t.Fatalf("bad target accessors: %+v", r)
	}
	if r.SameEntity() {
		t.Fatal("expected different entities")
	}
}

func TestToDict(t *testing.T) {
	r, _ := New("start e0", "end e1", Equal)
	d := r.ToDict()
	if d["source"] != "start e0" || d["target"] != "end e1" || d["relation"] != "=" {
		t.Fatalf("unexpected dict: %v", d)
	}
}
