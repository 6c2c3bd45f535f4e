package presburger

import (
	"fmt"
	"sort"
	"strings"
)

// term pairs a variable with its integer coefficient.
type term[T comparable] struct {
	v     Variable[T]
	coeff int
}

// Affine is a mapping from Variable[T] to integer coefficient, plus a
// constant. Internally a slice keeps the representation dense-free;
// normalize merges duplicate variables deterministically, keeping them in
// first-occurrence order.
type Affine[T comparable] struct {
	terms []term[T]
	const_ int
}

// NewAffine builds a zero affine expression (the constant 0).
func NewAffine[T comparable]() Affine[T] {
	return Affine[T]{}
}

// Const builds the constant affine expression k.
func Const[T comparable](k int) Affine[T] {
	return Affine[T]{const_: k}
}

// Var builds the affine expression 1*v.
func Var[T comparable](v Variable[T]) Affine[T] {
	return Affine[T]{terms: []term[T]{{v: v, coeff: 1}}}
}

// Plus returns a+b, merging duplicate variables and dropping zero
// coefficients.
func (a Affine[T]) Plus(b Affine[T]) Affine[T] {
	out := Affine[T]{const_: a.const_ + b.const_}
	out.terms = append(out.terms, a.terms...)
	for _, t := range b.terms {
		out.terms = append(out.terms, t)
	}
	return out.normalize()
}

// Scale returns k*a.
func (a Affine[T]) Scale(k int) Affine[T] {
	out := Affine[T]{const_: a.const_ * k}
	for _, t := range a.terms {
		out.terms = append(out.terms, term[T]{v: t.v, coeff: t.coeff * k})
	}
	return out.normalize()
}

// Minus returns a-b.
func (a Affine[T]) Minus(b Affine[T]) Affine[T] {
	return a.Plus(b.Scale(-1))
}

func (a Affine[T]) normalize() Affine[T] {
	merged := map[int]term[T]{}
	var order []int
	idxOf := func(v Variable[T]) int {
		for i, o := range order {
			if merged[o].v.Equal(v) {
				return i
			}
		}
		return -1
	}
	for _, t := range a.terms {
		if i := idxOf(t.v); i >= 0 {
			key := order[i]
			e := merged[key]
			e.coeff += t.coeff
			merged[key] = e
			continue
		}
		key := len(order)
		order = append(order, key)
		merged[key] = t
	}
	out := Affine[T]{const_: a.const_}
	for _, key := range order {
		t := merged[key]
		if t.coeff != 0 {
			out.terms = append(out.terms, t)
		}
	}
	return out
}

// Constant returns the constant term.
func (a Affine[T]) Constant() int { return a.const_ }

// Coeff returns the coefficient of v (0 if absent).
func (a Affine[T]) Coeff(v Variable[T]) int {
	for _, t := range a.terms {
		if t.v.Equal(v) {
			return t.coeff
		}
	}
	return 0
}

// Terms returns the (variable, coefficient) pairs with nonzero coefficient.
func (a Affine[T]) Terms() []struct {
	V     Variable[T]
	Coeff int
} {
	out := make([]struct {
		V     Variable[T]
		Coeff int
	}, len(a.terms))
	for i, t := range a.terms {
		out[i] = struct {
			V     Variable[T]
			Coeff int
		}{t.v, t.coeff}
	}
	return out
}

// IsConstant reports whether a has no free or bound variables.
func (a Affine[T]) IsConstant() bool { return len(a.terms) == 0 }

// Subst substitutes every occurrence of `from` with the affine expression
// `to`, distributing coefficients — the mechanism behind both mk_exists'
// de-Bruijn renumbering and forward elimination's "replace v with 0".
func (a Affine[T]) Subst(from Variable[T], to Affine[T]) Affine[T] {
	out := Const[T](a.const_)
	for _, t := range a.terms {
		if t.v.Equal(from) {
			out = out.Plus(to.Scale(t.coeff))
		} else {
			out = out.Plus(Affine[T]{terms: []term[T]{{v: t.v, coeff: t.coeff}}})
		}
	}
	return out.normalize()
}

// MapAffine rewrites every Free(T) variable to Free(U) via f, leaving bound
// indices and structure untouched.
func MapAffine[T, U comparable](a Affine[T], f func(T) U) Affine[U] {
	out := Affine[U]{const_: a.const_}
	for _, t := range a.terms {
		var nv Variable[U]
		if t.v.IsFree() {
			nv = Free(f(t.v.Name()))
		} else {
			nv = Bound[U](t.v.Index())
		}
		out.terms = append(out.terms, term[U]{v: nv, coeff: t.coeff})
	}
	return out
}

// MaxBoundIndex returns one more than the maximum bound index occurring in
// a, or 0 if none — used by mk_exists to pick a fresh index.
func (a Affine[T]) MaxBoundIndex() int {
	max := -1
	for _, t := range a.terms {
		if !t.v.IsFree() && t.v.Index() > max {
			max = t.v.Index()
		}
	}
	return max + 1
}

func (a Affine[T]) String() string {
	if len(a.terms) == 0 {
		return fmt.Sprintf("%d", a.const_)
	}
	var parts []string
	names := make([]string, len(a.terms))
	for i, t := range a.terms {
		names[i] = fmt.Sprintf("%v", t.v)
	}
	order := make([]int, len(a.terms))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return names[order[i]] < names[order[j]] })
	for _, i := range order {
		t := a.terms[i]
		parts = append(parts, fmt.Sprintf("%d*%v", t.coeff, t.v))
	}
	s := strings.Join(parts, " + ")
	if a.const_ != 0 {
		s = fmt.Sprintf("%s + %d", s, a.const_)
	}
	return s
}
