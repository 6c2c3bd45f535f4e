package kleene

import "strings"

// Regex is the reference Kleene-algebra carrier over a finite alphabet,
// used for law-checking tests and as a second instantiation alongside
// semilinear.Set to exercise the generic elimination algorithm against
// something human-checkable by hand.
type Regex struct {
	// expr renders as a parenthesized regex string. Zero is the empty
	// language "∅", One is the empty word "ε".
	expr string
}

func (Regex) zeroExpr() string { return "∅" }
func (Regex) oneExpr() string  { return "ε" }

// Letter constructs the regex matching exactly the single symbol s.
func Letter(s string) Regex { return Regex{expr: s} }

type regexAlgebra struct{}

// RegexAlgebra is the Algebra[Regex] instance.
var RegexAlgebra Algebra[Regex] = regexAlgebra{}

func (regexAlgebra) Zero() Regex { return Regex{expr: Regex{}.zeroExpr()} }
func (regexAlgebra) One() Regex  { return Regex{expr: Regex{}.oneExpr()} }

func (a regexAlgebra) Plus(x, y Regex) Regex {
	if x.expr == a.Zero().expr {
		return y
	}
	if y.expr == a.Zero().expr {
		return x
	}
	if x.expr == y.expr {
		return x
	}
	// Order the operands canonically (shorter first, then lexically) so
	// Plus(x, y) and Plus(y, x) render identically.
	if len(y.expr) < len(x.expr) || (len(y.expr) == len(x.expr) && y.expr < x.expr) {
		x, y = y, x
	}
	return Regex{expr: "(" + x.expr + "|" + y.expr + ")"}
}

func (a regexAlgebra) Times(x, y Regex) Regex {
	if x.expr == a.Zero().expr || y.expr == a.Zero().expr {
		return a.Zero()
	}
	if x.expr == a.One().expr {
		return y
	}
	if y.expr == a.One().expr {
		return x
	}
	return Regex{expr: x.expr + y.expr}
}

func (a regexAlgebra) Star(x Regex) Regex {
	if x.expr == a.Zero().expr || x.expr == a.One().expr {
		return a.One()
	}
	return Regex{expr: "(" + x.expr + ")*"}
}

func (r Regex) String() string { return r.expr }

// Equal does syntactic (not semantic) comparison — good enough for the law
// tests, which construct both sides of a law and only need to recognize the
// trivial cases the simplifications above normalize away.
func (r Regex) Equal(o Regex) bool { return r.expr == o.expr }

// IsZero/IsOne report whether r is literally the zero/one element.
func (r Regex) IsZero() bool { return r.expr == Regex{}.zeroExpr() }
func (r Regex) IsOne() bool  { return r.expr == Regex{}.oneExpr() }

// Letters returns the set of distinct alphabet symbols occurring in r's
// rendered form, ignoring algebra metacharacters. Used only by tests that
// want to sanity-check an expression mentions the letters it should.
func (r Regex) Letters() []string {
	var out []string
	seen := map[string]bool{}
	cur := strings.Builder{}
	flush := func() {
		if cur.Len() > 0 {
			s := cur.String()
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	for _, r := range r.expr {
		switch r {
		case '(', ')', '|', '*', '∅', 'ε':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
