package intern

import "testing"

func TestInternIsStableAndDense(t *testing.T) {
	tbl := New()
	a := tbl.Intern("alpha")
	b := tbl.Intern("beta")
	a2 := tbl.Intern("alpha")
	if a != a2 {
		t.Fatalf("re-interning alpha should return the same ID")
	}
	if a == b {
		t.Fatalf("distinct strings should get distinct IDs")
	}
	if tbl.Name(a) != "alpha" || tbl.Name(b) != "beta" {
		t.Fatalf("Name should invert Intern")
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 distinct interned strings, got %d", tbl.Len())
	}
}

func TestLookupDoesNotAssign(t *testing.T) {
	tbl := New()
	if _, ok := tbl.Lookup("missing"); ok {
		t.Fatalf("Lookup should not find an un-interned string")
	}
	if tbl.Len() != 0 {
		t.Fatalf("Lookup must not assign an ID as a side effect")
	}
}
