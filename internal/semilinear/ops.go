package semilinear

import "github.com/sercheck/ser/internal/kleene"

// Algebra instantiates kleene.Algebra[Set] for a fixed vector dimension.
// Dimension is part of the algebra rather than the Set type's zero value
// because Zero (the empty set) and One (the zero-vector singleton) both
// need to know how many coordinates their vectors carry.
type Algebra struct {
	Dim int
}

var _ kleene.Algebra[Set] = Algebra{}

func (a Algebra) Zero() Set { return Empty(a.Dim) }
func (a Algebra) One() Set  { return UnitVector(a.Dim) }

// Plus is set union: every component of either operand survives into the
// union (Normalize is responsible for dropping ones it can prove redundant
// afterward — Plus itself never loses information).
func (a Algebra) Plus(x, y Set) Set {
	out := Set{Dim: a.Dim}
	out.Components = append(out.Components, x.Components...)
	out.Components = append(out.Components, y.Components...)
	return Normalize(out)
}

// Times is the Minkowski sum, distributed over each pair of components:
// every vector reachable as (vector of x) + (vector of y) is covered by
// base = x.Base+y.Base with periods = x.Periods ∪ y.Periods.
func (a Algebra) Times(x, y Set) Set {
	if len(x.Components) == 0 || len(y.Components) == 0 {
		return a.Zero()
	}
	out := Set{Dim: a.Dim}
	for _, cx := range x.Components {
		for _, cy := range y.Components {
			c := Component{Base: addVec(cx.Base, cy.Base)}
			c.Periods = append(c.Periods, cx.Periods...)
			c.Periods = append(c.Periods, cy.Periods...)
			out.Components = append(out.Components, c)
		}
	}
	return Normalize(out)
}

// Star computes the Parikh image of unbounded repetition. Because the
// Parikh map forgets ordering, A* collapses to a single linear set: the
// zero vector, closed under adding any base or period vector that any
// component of A contributes, any number of times. So Star(A) has one
// component with base 0 and periods = the union of every component's
// base and periods in A.
func (a Algebra) Star(x Set) Set {
	out := Component{Base: make(Vector, a.Dim)}
	for _, c := range x.Components {
		if !isZeroVec(c.Base) {
			out.Periods = append(out.Periods, c.Base)
		}
		out.Periods = append(out.Periods, c.Periods...)
	}
	return Normalize(Set{Dim: a.Dim, Components: []Component{out}})
}

// IsZero lets kleene.NFA elimination tell present edges from absent ones
// when building a smart_kleene_order-style elimination schedule.
func (a Algebra) IsZero(s Set) bool { return len(Normalize(s).Components) == 0 }
