package presburger

import "testing"

func TestAffineNormalizeMergesDuplicates(t *testing.T) {
	x := Free[string]("x")
	a := Var(x).Plus(Var(x)).Plus(Const[string](3))
	if a.Coeff(x) != 2 {
		t.Fatalf("expected coeff 2, got %d", a.Coeff(x))
	}
	if a.Constant() != 3 {
		t.Fatalf("expected constant 3, got %d", a.Constant())
	}
}

func TestAffineSubstEliminatesVariable(t *testing.T) {
	x, y := Free[string]("x"), Free[string]("y")
	a := Var(x).Plus(Var(y)).Plus(Const[string](1))
	sub := a.Subst(x, Const[string](0))
	if sub.Coeff(x) != 0 {
		t.Fatalf("x should be eliminated")
	}
	if sub.Coeff(y) != 1 || sub.Constant() != 1 {
		t.Fatalf("unexpected substitution result: %v", sub)
	}
}

func TestMkExistsThenUnwrapRoundTrips(t *testing.T) {
	x := Free[string]("x")
	y := Free[string]("y")
	// phi = (x >= 0) and (y == 0)
	phi := And[string](GE(Var(x), Const[string](0)), EqF(Var(y), Const[string](0)))
	quantified := MkExists(x, phi)

	// Unwrap substitutes a fresh free var for the bound index MkExists
	// introduced; substituting x back should reproduce phi exactly.
	roundTrip := Unwrap(quantified, x)
	if !formulaEqual(roundTrip, phi) {
		t.Fatalf("round trip mismatch:\n got: %s\nwant: %s", debugString(roundTrip), debugString(phi))
	}
}

func TestMkExistsDoesNotCaptureExistingBoundIndices(t *testing.T) {
	x := Free[string]("x")
	y := Free[string]("y")
	inner := MkExists(y, GE(Var(y), Var(x))) // exists #0. #0 >= x
	outer := MkExists(x, inner)              // must not reuse index 0 for x
	// Sanity: outer is structurally an Exists wrapping an Exists with a
	// DIFFERENT index than the inner one.
	oe, ok := outer.(fExists[string])
	if !ok {
		t.Fatalf("expected outer Exists, got %T", outer)
	}
	ie, ok := oe.f.(fExists[string])
	if !ok {
		t.Fatalf("expected inner Exists, got %T", oe.f)
	}
	if oe.index == ie.index {
		t.Fatalf("index capture: both quantifiers use index %d", oe.index)
	}
}

func TestForwardEliminationZeroesVariable(t *testing.T) {
	p := Free[string]("p")
	q := Free[string]("q")
	phi := And[string](GE(Var(p), Const[string](0)), EqF(Var(q), Const[string](2)))
	out := ForwardEliminate(phi, []Variable[string]{p})
	a := out.(fAnd[string])
	atom := a.l.(fAtom[string])
	if atom.expr.Coeff(p) != 0 {
		t.Fatalf("p should be eliminated (zeroed)")
	}
}

func TestBackwardEliminationQuantifies(t *testing.T) {
	p := Free[string]("p")
	phi := GE(Var(p), Const[string](0))
	out := BackwardEliminate(phi, []Variable[string]{p})
	if _, ok := out.(fExists[string]); !ok {
		t.Fatalf("expected Exists wrapper, got %T", out)
	}
}

func TestSimplifyConstantFolding(t *testing.T) {
	phi := And[string](True[string](), GE(Const[string](5), Const[string](0)))
	simplified := Simplify(phi)
	if !isTrue(simplified) {
		t.Fatalf("expected True, got %s", debugString(simplified))
	}
}

func TestSMTLIBEmission(t *testing.T) {
	p := Free[string]("p")
	phi := GE(Var(p), Const[string](1))
	s := SMTLIB(phi)
	if s != "(>= (+ -1 (* 1 p)) 0)" {
		t.Fatalf("unexpected SMT-LIB: %s", s)
	}
}

func TestMapLiftsFreeVariableType(t *testing.T) {
	p := Free[int](1)
	phi := GE(Var(p), Const[int](0))
	lifted := Map(phi, func(i int) string {
		if i == 1 {
			return "place_a"
		}
		return "?"
	})
	s := SMTLIB(lifted)
	if s != "(>= (+ 0 (* 1 place_a)) 0)" {
		t.Fatalf("unexpected lifted SMT-LIB: %s", s)
	}
}

// --- test helpers: structural equality and debug printing, independent of
// the SMT-LIB emitter so the round-trip test doesn't just check itself. ---

func formulaEqual(a, b Formula[string]) bool {
	return debugString(a) == debugString(b)
}

func debugString(f Formula[string]) string {
	switch n := f.(type) {
	case fTrue[string]:
		return "true"
	case fFalse[string]:
		return "false"
	case fAtom[string]:
		op := "=0"
		if n.kind == GE0 {
			op = ">=0"
		}
		return "(" + n.expr.String() + ")" + op
	case fAnd[string]:
		return "(" + debugString(n.l) + " & " + debugString(n.r) + ")"
	case fOr[string]:
		return "(" + debugString(n.l) + " | " + debugString(n.r) + ")"
	case fNot[string]:
		return "!(" + debugString(n.f) + ")"
	case fExists[string]:
		return "E#" + itoa(n.index) + "." + debugString(n.f)
	case fForall[string]:
		return "A#" + itoa(n.index) + "." + debugString(n.f)
	}
	return "?"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
