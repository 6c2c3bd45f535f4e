package presburger

import (
	"fmt"
	"sort"
	"strings"
)

// AtomKind discriminates the two atomic predicates this package allows:
// `expr >= 0` and `expr == 0`.
type AtomKind int

const (
	GE0 AtomKind = iota
	EQ0
)

// Formula is the Presburger formula AST: True, False, Atom,
// And, Or, Not, Exists, Forall. The marker method mentions T so that
// type inference can read T off a Formula[T] argument.
type Formula[T comparable] interface {
	formulaNode(T)
}

type fTrue[T comparable] struct{}
type fFalse[T comparable] struct{}

type fAtom[T comparable] struct {
	kind AtomKind
	expr Affine[T]
}

type fAnd[T comparable] struct{ l, r Formula[T] }
type fOr[T comparable] struct{ l, r Formula[T] }
type fNot[T comparable] struct{ f Formula[T] }

type fExists[T comparable] struct {
	index int
	f     Formula[T]
}
type fForall[T comparable] struct {
	index int
	f     Formula[T]
}

func (fTrue[T]) formulaNode(T)   {}
func (fFalse[T]) formulaNode(T)  {}
func (fAtom[T]) formulaNode(T)   {}
func (fAnd[T]) formulaNode(T)    {}
func (fOr[T]) formulaNode(T)     {}
func (fNot[T]) formulaNode(T)    {}
func (fExists[T]) formulaNode(T) {}
func (fForall[T]) formulaNode(T) {}

func True[T comparable]() Formula[T]  { return fTrue[T]{} }
func False[T comparable]() Formula[T] { return fFalse[T]{} }

// Atom constructs kind(expr) — expr >= 0 or expr == 0.
func Atom[T comparable](kind AtomKind, expr Affine[T]) Formula[T] {
	return fAtom[T]{kind: kind, expr: expr}
}

// GE builds `a >= b`.
func GE[T comparable](a, b Affine[T]) Formula[T] { return Atom(GE0, a.Minus(b)) }

// EqF builds `a == b`.
func EqF[T comparable](a, b Affine[T]) Formula[T] { return Atom(EQ0, a.Minus(b)) }

func And[T comparable](fs ...Formula[T]) Formula[T] {
	if len(fs) == 0 {
		return True[T]()
	}
	out := fs[0]
	for _, f := range fs[1:] {
		out = fAnd[T]{out, f}
	}
	return out
}

func Or[T comparable](fs ...Formula[T]) Formula[T] {
	if len(fs) == 0 {
		return False[T]()
	}
	out := fs[0]
	for _, f := range fs[1:] {
		out = fOr[T]{out, f}
	}
	return out
}

func Not[T comparable](f Formula[T]) Formula[T] { return fNot[T]{f} }

// maxBoundIndexInFormula returns the largest bound index occurring in f,
// quantifier indices included, or -1 if there is none; MkExists and
// MkForall use one more than it as their fresh index.
func maxBoundIndexInFormula[T comparable](f Formula[T]) int {
	switch n := f.(type) {
	case fTrue[T], fFalse[T]:
		return -1
	case fAtom[T]:
		return n.expr.MaxBoundIndex() - 1
	case fAnd[T]:
		return maxInt(maxBoundIndexInFormula(n.l), maxBoundIndexInFormula(n.r))
	case fOr[T]:
		return maxInt(maxBoundIndexInFormula(n.l), maxBoundIndexInFormula(n.r))
	case fNot[T]:
		return maxBoundIndexInFormula(n.f)
	case fExists[T]:
		return maxInt(n.index, maxBoundIndexInFormula(n.f))
	case fForall[T]:
		return maxInt(n.index, maxBoundIndexInFormula(n.f))
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// substFreeAsBound replaces every free occurrence of `v` with Bound(k) in f.
func substFreeAsBound[T comparable](f Formula[T], v Variable[T], k int) Formula[T] {
	to := Affine[T]{terms: []term[T]{{v: Bound[T](k), coeff: 1}}}
	switch n := f.(type) {
	case fTrue[T]:
		return n
	case fFalse[T]:
		return n
	case fAtom[T]:
		return fAtom[T]{kind: n.kind, expr: n.expr.Subst(v, to)}
	case fAnd[T]:
		return fAnd[T]{substFreeAsBound(n.l, v, k), substFreeAsBound(n.r, v, k)}
	case fOr[T]:
		return fOr[T]{substFreeAsBound(n.l, v, k), substFreeAsBound(n.r, v, k)}
	case fNot[T]:
		return fNot[T]{substFreeAsBound(n.f, v, k)}
	case fExists[T]:
		return fExists[T]{index: n.index, f: substFreeAsBound(n.f, v, k)}
	case fForall[T]:
		return fForall[T]{index: n.index, f: substFreeAsBound(n.f, v, k)}
	}
	panic("unreachable")
}

// MkExists is the ONLY way to introduce an existential quantifier: it
// replaces every free occurrence of freeVar in f with a fresh
// Bound(k), k = 1 + max bound index in f, then wraps in Exists(k, ...). This
// prevents index capture and keeps T invariant across quantification.
func MkExists[T comparable](freeVar Variable[T], f Formula[T]) Formula[T] {
	k := maxBoundIndexInFormula(f) + 1
	return fExists[T]{index: k, f: substFreeAsBound(f, freeVar, k)}
}

// MkForall is Forall's analogue of MkExists.
func MkForall[T comparable](freeVar Variable[T], f Formula[T]) Formula[T] {
	k := maxBoundIndexInFormula(f) + 1
	return fForall[T]{index: k, f: substFreeAsBound(f, freeVar, k)}
}

// SubstBoundWithFree substitutes a fresh free variable for the bound index
// that an Exists/Forall most recently introduced: MkExists then this yields
// a formula equivalent to the original f[v := freshVar].
func substBoundWithFree[T comparable](f Formula[T], index int, fresh Variable[T]) Formula[T] {
	to := Affine[T]{terms: []term[T]{{v: fresh, coeff: 1}}}
	switch n := f.(type) {
	case fTrue[T]:
		return n
	case fFalse[T]:
		return n
	case fAtom[T]:
		return fAtom[T]{kind: n.kind, expr: n.expr.Subst(Bound[T](index), to)}
	case fAnd[T]:
		return fAnd[T]{substBoundWithFree(n.l, index, fresh), substBoundWithFree(n.r, index, fresh)}
	case fOr[T]:
		return fOr[T]{substBoundWithFree(n.l, index, fresh), substBoundWithFree(n.r, index, fresh)}
	case fNot[T]:
		return fNot[T]{substBoundWithFree(n.f, index, fresh)}
	case fExists[T]:
		if n.index == index {
			return n // shadowed by an inner quantifier reusing the same index
		}
		return fExists[T]{index: n.index, f: substBoundWithFree(n.f, index, fresh)}
	case fForall[T]:
		if n.index == index {
			return n
		}
		return fForall[T]{index: n.index, f: substBoundWithFree(n.f, index, fresh)}
	}
	panic("unreachable")
}

// Unwrap strips the outermost Exists/Forall introduced by MkExists/MkForall,
// substituting `fresh` for the bound index it introduced. Returns the
// formula unchanged if it is not a quantifier at the top.
func Unwrap[T comparable](f Formula[T], fresh Variable[T]) Formula[T] {
	switch n := f.(type) {
	case fExists[T]:
		return substBoundWithFree(n.f, n.index, fresh)
	case fForall[T]:
		return substBoundWithFree(n.f, n.index, fresh)
	default:
		return f
	}
}

// Map rewrites every Free(T) to Free(U) via f, leaving bound indices and
// structure untouched. Nothing outside this package's tests calls it.
func Map[T, U comparable](form Formula[T], f func(T) U) Formula[U] {
	switch n := form.(type) {
	case fTrue[T]:
		return fTrue[U]{}
	case fFalse[T]:
		return fFalse[U]{}
	case fAtom[T]:
		return fAtom[U]{kind: n.kind, expr: MapAffine(n.expr, f)}
	case fAnd[T]:
		return fAnd[U]{Map(n.l, f), Map(n.r, f)}
	case fOr[T]:
		return fOr[U]{Map(n.l, f), Map(n.r, f)}
	case fNot[T]:
		return fNot[U]{Map(n.f, f)}
	case fExists[T]:
		return fExists[U]{index: n.index, f: Map(n.f, f)}
	case fForall[T]:
		return fForall[U]{index: n.index, f: Map(n.f, f)}
	}
	panic("unreachable")
}

// substFreeWithAffine substitutes an affine expression for every free
// occurrence of v — the primitive behind forward elimination ("v := 0").
func substFreeWithAffine[T comparable](f Formula[T], v Variable[T], to Affine[T]) Formula[T] {
	switch n := f.(type) {
	case fTrue[T]:
		return n
	case fFalse[T]:
		return n
	case fAtom[T]:
		return fAtom[T]{kind: n.kind, expr: n.expr.Subst(v, to)}
	case fAnd[T]:
		return fAnd[T]{substFreeWithAffine(n.l, v, to), substFreeWithAffine(n.r, v, to)}
	case fOr[T]:
		return fOr[T]{substFreeWithAffine(n.l, v, to), substFreeWithAffine(n.r, v, to)}
	case fNot[T]:
		return fNot[T]{substFreeWithAffine(n.f, v, to)}
	case fExists[T]:
		return fExists[T]{index: n.index, f: substFreeWithAffine(n.f, v, to)}
	case fForall[T]:
		return fForall[T]{index: n.index, f: substFreeWithAffine(n.f, v, to)}
	}
	panic("unreachable")
}

// ForwardEliminate substitutes 0 for every v in vars: the claim that no
// token can ever appear on v.
func ForwardEliminate[T comparable](f Formula[T], vars []Variable[T]) Formula[T] {
	out := f
	for _, v := range vars {
		out = substFreeWithAffine(out, v, Const[T](0))
	}
	return out
}

// BackwardEliminate existentially quantifies every v in vars: the value of
// v is left unconstrained by reachability of the target.
func BackwardEliminate[T comparable](f Formula[T], vars []Variable[T]) Formula[T] {
	out := f
	for _, v := range vars {
		out = MkExists(v, out)
	}
	return out
}

func (k AtomKind) smtOp() string {
	if k == GE0 {
		return ">="
	}
	return "="
}

// SMTLIB renders f as a QF_LIA term in the solver's dialect. Emission is
// specialized to Formula[string] because the
// consumer — an external SMT-LIB 2 process — only ever needs string
// identifiers; callers with a Formula[T] first Map it down with a T->string
// namer.
func SMTLIB(f Formula[string]) string {
	var b strings.Builder
	writeSMT(&b, f, 0)
	return b.String()
}

func writeSMT(b *strings.Builder, f Formula[string], depth int) {
	switch n := f.(type) {
	case fTrue[string]:
		b.WriteString("true")
	case fFalse[string]:
		b.WriteString("false")
	case fAtom[string]:
		b.WriteString("(" + n.kind.smtOp() + " " + affineSMT(n.expr) + " 0)")
	case fAnd[string]:
		b.WriteString("(and ")
		writeSMT(b, n.l, depth)
		b.WriteString(" ")
		writeSMT(b, n.r, depth)
		b.WriteString(")")
	case fOr[string]:
		b.WriteString("(or ")
		writeSMT(b, n.l, depth)
		b.WriteString(" ")
		writeSMT(b, n.r, depth)
		b.WriteString(")")
	case fNot[string]:
		b.WriteString("(not ")
		writeSMT(b, n.f, depth)
		b.WriteString(")")
	case fExists[string]:
		fresh := fmt.Sprintf("q%d", n.index)
		b.WriteString("(exists ((" + fresh + " Int)) ")
		writeSMT(b, substBoundWithFree(n.f, n.index, Free(fresh)), depth+1)
		b.WriteString(")")
	case fForall[string]:
		fresh := fmt.Sprintf("q%d", n.index)
		b.WriteString("(forall ((" + fresh + " Int)) ")
		writeSMT(b, substBoundWithFree(n.f, n.index, Free(fresh)), depth+1)
		b.WriteString(")")
	}
}

// FreeNames returns every distinct free variable name occurring in f, sorted,
// for emitting `(declare-const name Int)` preambles.
func FreeNames(f Formula[string]) []string {
	seen := map[string]bool{}
	var walk func(Formula[string])
	walk = func(f Formula[string]) {
		switch n := f.(type) {
		case fAtom[string]:
			for _, t := range n.expr.Terms() {
				if t.V.IsFree() {
					seen[t.V.Name()] = true
				}
			}
		case fAnd[string]:
			walk(n.l)
			walk(n.r)
		case fOr[string]:
			walk(n.l)
			walk(n.r)
		case fNot[string]:
			walk(n.f)
		case fExists[string]:
			walk(n.f)
		case fForall[string]:
			walk(n.f)
		}
	}
	walk(f)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func affineSMT(a Affine[string]) string {
	parts := []string{fmt.Sprintf("%d", a.Constant())}
	for _, t := range a.Terms() {
		var vn string
		if t.V.IsFree() {
			vn = t.V.Name()
		} else {
			vn = fmt.Sprintf("q%d", t.V.Index())
		}
		parts = append(parts, fmt.Sprintf("(* %d %s)", t.Coeff, vn))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(+ " + strings.Join(parts, " ") + ")"
}
