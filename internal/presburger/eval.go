package presburger

// Eval evaluates a closed or open formula under env, substituting 0 for
// any free variable absent from env. Quantifiers are decided by brute
// force: Exists and Forall try every value of their bound index in
// [-defaultSearchBound, defaultSearchBound], and a bound index no
// enclosing quantifier has set evaluates to 0.
func Eval[T comparable](f Formula[T], env map[T]int) bool {
	return evalBound(f, env, nil)
}

func evalAffine[T comparable](a Affine[T], env map[T]int, bound []int) int {
	total := a.Constant()
	for _, t := range a.Terms() {
		var v int
		if t.V.IsFree() {
			v = env[t.V.Name()]
		} else if t.V.Index() < len(bound) {
			v = bound[t.V.Index()]
		}
		total += t.Coeff * v
	}
	return total
}

func evalBound[T comparable](f Formula[T], env map[T]int, bound []int) bool {
	switch n := f.(type) {
	case fTrue[T]:
		return true
	case fFalse[T]:
		return false
	case fAtom[T]:
		v := evalAffine(n.expr, env, bound)
		if n.kind == GE0 {
			return v >= 0
		}
		return v == 0
	case fAnd[T]:
		return evalBound(n.l, env, bound) && evalBound(n.r, env, bound)
	case fOr[T]:
		return evalBound(n.l, env, bound) || evalBound(n.r, env, bound)
	case fNot[T]:
		return !evalBound(n.f, env, bound)
	case fExists[T]:
		return existsBounded(n.f, env, bound, n.index, defaultSearchBound)
	case fForall[T]:
		return forallBounded(n.f, env, bound, n.index, defaultSearchBound)
	}
	return false
}

// defaultSearchBound caps the brute-force witness search ExistsSat and
// Eval use for quantifiers; it is a testing/fake-solver convenience, not
// part of the decision procedure's soundness argument (the real verdicts
// come from package smt's external solver).
const defaultSearchBound = 64

func existsBounded[T comparable](f Formula[T], env map[T]int, bound []int, index, limit int) bool {
	for k := -limit; k <= limit; k++ {
		extended := extendBound(bound, index, k)
		if evalBound(f, env, extended) {
			return true
		}
	}
	return false
}

func forallBounded[T comparable](f Formula[T], env map[T]int, bound []int, index, limit int) bool {
	for k := -limit; k <= limit; k++ {
		extended := extendBound(bound, index, k)
		if !evalBound(f, env, extended) {
			return false
		}
	}
	return true
}

func extendBound(bound []int, index, value int) []int {
	n := index + 1
	if n < len(bound) {
		n = len(bound)
	}
	out := make([]int, n)
	copy(out, bound)
	out[index] = value
	return out
}

// ExistsSat reports whether f is satisfiable for some assignment of its
// free variables drawn from [0, searchBound] — a bounded brute-force
// decision procedure good enough for the fake SMT solver and for
// sanity-checking small certificates without an external binary.
func ExistsSat(f Formula[string], searchBound int) bool {
	names := FreeNames(f)
	env := make(map[string]int, len(names))
	return searchFree(f, names, env, searchBound)
}

func searchFree(f Formula[string], names []string, env map[string]int, bound int) bool {
	if len(names) == 0 {
		return Eval(f, env)
	}
	name := names[0]
	rest := names[1:]
	for v := 0; v <= bound; v++ {
		env[name] = v
		if searchFree(f, rest, env, bound) {
			delete(env, name)
			return true
		}
	}
	delete(env, name)
	return false
}
