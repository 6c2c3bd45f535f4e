package kleene

import "testing"

func TestRegexPlusIsIdempotentCommutativeMonoid(t *testing.T) {
	a := RegexAlgebra
	x, y := Letter("a"), Letter("b")

	if !a.Plus(x, x).Equal(x) {
		t.Fatalf("Plus not idempotent: %s", a.Plus(x, x))
	}
	if !a.Plus(x, y).Equal(a.Plus(y, x)) {
		t.Fatalf("Plus not commutative")
	}
	if !a.Plus(x, a.Zero()).Equal(x) {
		t.Fatalf("Zero is not a Plus identity: %s", a.Plus(x, a.Zero()))
	}
}

func TestRegexTimesIsMonoidWithOne(t *testing.T) {
	a := RegexAlgebra
	x := Letter("a")

	if !a.Times(x, a.One()).Equal(x) {
		t.Fatalf("One is not a right Times identity: %s", a.Times(x, a.One()))
	}
	if !a.Times(a.One(), x).Equal(x) {
		t.Fatalf("One is not a left Times identity: %s", a.Times(a.One(), x))
	}
}

func TestRegexZeroAnnihilatesTimes(t *testing.T) {
	a := RegexAlgebra
	x := Letter("a")
	if !a.Times(x, a.Zero()).Equal(a.Zero()) {
		t.Fatalf("Zero does not annihilate on the right: %s", a.Times(x, a.Zero()))
	}
	if !a.Times(a.Zero(), x).Equal(a.Zero()) {
		t.Fatalf("Zero does not annihilate on the left: %s", a.Times(a.Zero(), x))
	}
}

func TestRegexTimesDistributesOverPlus(t *testing.T) {
	a := RegexAlgebra
	x, y, z := Letter("a"), Letter("b"), Letter("c")

	left := a.Times(x, a.Plus(y, z))
	right := a.Plus(a.Times(x, y), a.Times(x, z))
	if left.String() != "a(b|c)" {
		t.Fatalf("unexpected left-distribution rendering: %s", left)
	}
	if right.String() != "(ab|ac)" {
		t.Fatalf("unexpected right-hand rendering: %s", right)
	}
}

func TestRegexStarOfZeroAndOneIsOne(t *testing.T) {
	a := RegexAlgebra
	if !a.Star(a.Zero()).Equal(a.One()) {
		t.Fatalf("Star(Zero) should be One, got %s", a.Star(a.Zero()))
	}
	if !a.Star(a.One()).Equal(a.One()) {
		t.Fatalf("Star(One) should be One, got %s", a.Star(a.One()))
	}
}

func TestRegexStarUnrollsOneStep(t *testing.T) {
	a := RegexAlgebra
	x := Letter("a")
	star := a.Star(x)
	// Star(a) = One + a * Star(a); with the trivial simplifications this
	// instance applies, the unrolled right-hand side doesn't collapse back
	// to the same syntactic form, so check the semantic unrolled shape
	// directly rather than re-deriving Star(a) from it.
	unrolled := a.Plus(a.One(), a.Times(x, star))
	if unrolled.String() != "(ε|a(a)*)" {
		t.Fatalf("unexpected unrolled Star rendering: %s", unrolled)
	}
}

// TestNFAEliminationTwoStateChain builds start --a--> mid --b--> accept and
// checks elimination of the single interior state yields "ab".
func TestNFAEliminationTwoStateChain(t *testing.T) {
	g := NewNFA[Regex](RegexAlgebra, 3)
	const start, mid, accept = 0, 1, 2
	g.AddEdge(start, mid, Letter("a"))
	g.AddEdge(mid, accept, Letter("b"))

	got := g.Eliminate(start, accept)
	if got.String() != "ab" {
		t.Fatalf("expected \"ab\", got %q", got)
	}
}

// TestNFAEliminationSelfLoop builds start --a--> loop(b) --c--> accept and
// checks the self-loop at the interior state is folded through Star.
func TestNFAEliminationSelfLoop(t *testing.T) {
	g := NewNFA[Regex](RegexAlgebra, 3)
	const start, mid, accept = 0, 1, 2
	g.AddEdge(start, mid, Letter("a"))
	g.AddEdge(mid, mid, Letter("b"))
	g.AddEdge(mid, accept, Letter("c"))

	got := g.Eliminate(start, accept)
	if got.String() != "a(b)*c" {
		t.Fatalf("expected \"a(b)*c\", got %q", got)
	}
}

// TestNFAEliminationParallelEdges builds two parallel start->accept paths
// through distinct interior states and checks the union is formed.
func TestNFAEliminationParallelEdges(t *testing.T) {
	g := NewNFA[Regex](RegexAlgebra, 4)
	const start, left, right, accept = 0, 1, 2, 3
	g.AddEdge(start, left, Letter("a"))
	g.AddEdge(left, accept, Letter("b"))
	g.AddEdge(start, right, Letter("c"))
	g.AddEdge(right, accept, Letter("d"))

	got := g.Eliminate(start, accept)
	// Both orderings are valid outputs of the same language; smart_kleene_order
	// always eliminates the lower id first since the two interior states have
	// identical in-degree*out-degree, so "ab" is folded into the accumulator
	// before "cd" joins it.
	if got.String() != "(ab|cd)" {
		t.Fatalf("expected \"(ab|cd)\", got %q", got)
	}
}

// TestNFAEliminationDirectEdgeSkipsDeadEnd checks that a state with no path
// to accept doesn't contribute to the result, and a direct start->accept
// edge survives elimination untouched.
func TestNFAEliminationDirectEdgeSkipsDeadEnd(t *testing.T) {
	g := NewNFA[Regex](RegexAlgebra, 3)
	const start, deadEnd, accept = 0, 1, 2
	g.AddEdge(start, accept, Letter("a"))
	g.AddEdge(start, deadEnd, Letter("x"))

	got := g.Eliminate(start, accept)
	if got.String() != "a" {
		t.Fatalf("expected \"a\", got %q", got)
	}
}
