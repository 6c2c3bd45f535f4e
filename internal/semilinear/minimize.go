package semilinear

import "sort"

// Normalize runs the three minimization passes in order and returns a
// deterministically sorted result, so Normalize is idempotent:
// Normalize(Normalize(s)).Equal(Normalize(s)) always holds, and in fact the
// two are structurally identical, not just Set-Equal.
func Normalize(s Set) Set {
	out := Set{Dim: s.Dim}
	for _, c := range s.Components {
		c = removeRedundantParts(c)
		c = generateLess(c)
		out.Components = append(out.Components, c)
	}
	out = removeRedundantSets(out)
	sortComponents(out.Components)
	return out
}

// removeRedundantParts drops the zero vector from a component's period
// list (it never contributes to what the component generates) and
// collapses exact duplicate period vectors.
func removeRedundantParts(c Component) Component {
	seen := map[string]bool{}
	var keep []Vector
	for _, p := range c.Periods {
		if isZeroVec(p) {
			continue
		}
		k := p.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, p)
	}
	sortVectors(keep)
	return Component{Base: c.Base, Periods: keep}
}

// generateLess drops any period generator that is itself a nonnegative
// combination of the component's other generators — it adds no vectors
// the rest didn't already reach.
func generateLess(c Component) Component {
	keep := make([]Vector, 0, len(c.Periods))
	for i, p := range c.Periods {
		others := make([]Vector, 0, len(c.Periods)-1)
		for j, q := range c.Periods {
			if j != i {
				others = append(others, q)
			}
		}
		if len(others) > 0 && solveNonneg(p, others) {
			continue
		}
		keep = append(keep, p)
	}
	return Component{Base: c.Base, Periods: keep}
}

// removeRedundantSets drops components whose generated vector set is a
// subset of another component's: same base, and every period is itself
// generated (nonnegative combination) by the other component's periods.
func removeRedundantSets(s Set) Set {
	keep := make([]bool, len(s.Components))
	for i := range s.Components {
		keep[i] = true
	}
	for i, a := range s.Components {
		if !keep[i] {
			continue
		}
		for j, b := range s.Components {
			if i == j || !keep[j] {
				continue
			}
			if subsumedBy(a, b) && (i > j || !subsumedBy(b, a)) {
				keep[i] = false
				break
			}
		}
	}
	out := Set{Dim: s.Dim}
	for i, c := range s.Components {
		if keep[i] {
			out.Components = append(out.Components, c)
		}
	}
	return out
}

// subsumedBy reports whether every vector generated by a is also
// generated by b: they must share a base (up to being reachable from one
// another via b's periods) and every one of a's periods must be
// expressible as a nonnegative combination of b's periods.
func subsumedBy(a, b Component) bool {
	baseDiff := make(Vector, len(a.Base))
	for i := range a.Base {
		baseDiff[i] = a.Base[i] - b.Base[i]
	}
	if !isZeroVec(baseDiff) && !solveNonneg(baseDiff, b.Periods) {
		return false
	}
	for _, p := range a.Periods {
		if !containsPeriod(p, b.Periods) {
			return false
		}
	}
	return true
}

func containsPeriod(p Vector, periods []Vector) bool {
	if len(periods) == 0 {
		return isZeroVec(p)
	}
	return solveNonneg(p, periods)
}

func isZeroVec(v Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func sortVectors(vs []Vector) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].key() < vs[j].key() })
}

func sortComponents(cs []Component) {
	sort.Slice(cs, func(i, j int) bool {
		bi, bj := cs[i].Base.key(), cs[j].Base.key()
		if bi != bj {
			return bi < bj
		}
		return len(cs[i].Periods) < len(cs[j].Periods)
	})
}
