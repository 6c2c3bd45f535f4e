// Package semilinear implements semilinear sets of integer vectors — finite
// unions of linear sets {base + k1*p1 + ... + kn*pn : ki >= 0} — and the
// operations needed to use them as a Kleene-algebra carrier (package
// kleene) for Parikh-image reasoning over transition labels.
package semilinear

import (
	"fmt"
	"sort"
	"strings"
)

// Vector is a point in N^d (or, transiently during construction, Z^d).
// Dimension is fixed by the Set that owns it.
type Vector []int

func (v Vector) clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

func addVec(a, b Vector) Vector {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func scaleVec(v Vector, k int) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}

func equalVec(a, b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v Vector) key() string {
	b := strings.Builder{}
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", x)
	}
	return b.String()
}

// Component is a single linear set: base plus any nonnegative combination
// of the period (generator) vectors.
type Component struct {
	Base    Vector
	Periods []Vector
}

func (c Component) clone() Component {
	out := Component{Base: c.Base.clone(), Periods: make([]Vector, len(c.Periods))}
	for i, p := range c.Periods {
		out.Periods[i] = p.clone()
	}
	return out
}

// Set is a semilinear set: a finite union of Components, all sharing Dim.
type Set struct {
	Dim        int
	Components []Component
}

// Empty returns the empty set (∅) of the given dimension.
func Empty(dim int) Set { return Set{Dim: dim} }

// UnitVector returns the zero-vector-only set ({0}, i.e. the Kleene One)
// of the given dimension.
func UnitVector(dim int) Set {
	return Set{Dim: dim, Components: []Component{{Base: make(Vector, dim)}}}
}

// Singleton returns the set containing exactly one vector.
func Singleton(v Vector) Set {
	return Set{Dim: len(v), Components: []Component{{Base: v.clone()}}}
}

// FromLinear builds a Set with a single component from a base and its
// period generators; useful for hand-constructing test fixtures and for
// ns-to-serial-automaton edge labels (one symbol fired = base e_i, no
// periods).
func FromLinear(base Vector, periods ...Vector) Set {
	c := Component{Base: base.clone()}
	for _, p := range periods {
		c.Periods = append(c.Periods, p.clone())
	}
	return Set{Dim: len(base), Components: []Component{c}}
}

// Contains reports whether v is a member of any component of s. It solves,
// per component, a small integer feasibility problem by bounded search
// over coefficients: since v is given and finite, any witnessing
// coefficient k_i is bounded by max(v)/min-nonzero-period-entry, so a
// bounded depth-first search over coefficient vectors (solveNonneg)
// suffices.
func (s Set) Contains(v Vector) bool {
	for _, c := range s.Components {
		if containsLinear(c, v) {
			return true
		}
	}
	return false
}

func containsLinear(c Component, v Vector) bool {
	diff := make(Vector, len(v))
	for i := range v {
		diff[i] = v[i] - c.Base[i]
	}
	return solveNonneg(diff, c.Periods)
}

// solveNonneg reports whether target is expressible as a nonnegative
// integer combination of periods, via bounded DFS: each coefficient is
// capped at the largest component of target (coefficients beyond that can
// never help since periods and target are nonnegative-entry vectors in
// this domain — Parikh vectors never have negative coordinates).
func solveNonneg(target Vector, periods []Vector) bool {
	for _, x := range target {
		if x < 0 {
			return false
		}
	}
	if len(periods) == 0 {
		for _, x := range target {
			if x != 0 {
				return false
			}
		}
		return true
	}
	bound := 0
	for _, x := range target {
		if x > bound {
			bound = x
		}
	}
	return dfsNonneg(target, periods, 0, bound)
}

func dfsNonneg(remaining Vector, periods []Vector, idx, bound int) bool {
	allZero := true
	for _, x := range remaining {
		if x != 0 {
			allZero = false
			break
		}
		if x < 0 {
			return false
		}
	}
	if allZero {
		return true
	}
	if idx >= len(periods) {
		return false
	}
	p := periods[idx]
	for k := 0; k <= bound; k++ {
		next := make(Vector, len(remaining))
		ok := true
		for i := range remaining {
			next[i] = remaining[i] - p[i]*k
			if next[i] < 0 {
				ok = false
				break
			}
		}
		if ok && dfsNonneg(next, periods, idx+1, bound) {
			return true
		}
	}
	return false
}

// Equal compares two sets up to component reordering and period-list
// reordering, after normalizing both.
func (s Set) Equal(o Set) bool {
	a, b := Normalize(s), Normalize(o)
	if a.Dim != b.Dim || len(a.Components) != len(b.Components) {
		return false
	}
	used := make([]bool, len(b.Components))
	for _, ca := range a.Components {
		found := false
		for j, cb := range b.Components {
			if !used[j] && componentEqual(ca, cb) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func componentEqual(a, b Component) bool {
	if !equalVec(a.Base, b.Base) || len(a.Periods) != len(b.Periods) {
		return false
	}
	ak := make([]string, len(a.Periods))
	bk := make([]string, len(b.Periods))
	for i, p := range a.Periods {
		ak[i] = p.key()
	}
	for i, p := range b.Periods {
		bk[i] = p.key()
	}
	sort.Strings(ak)
	sort.Strings(bk)
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	if len(s.Components) == 0 {
		return "∅"
	}
	parts := make([]string, len(s.Components))
	for i, c := range s.Components {
		ps := make([]string, len(c.Periods))
		for j, p := range c.Periods {
			ps[j] = fmt.Sprintf("%v", []int(p))
		}
		parts[i] = fmt.Sprintf("(%v + N*%s)", []int(c.Base), strings.Join(ps, ","))
	}
	return strings.Join(parts, " ∪ ")
}
