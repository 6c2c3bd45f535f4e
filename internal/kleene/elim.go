package kleene

import (
	"sort"

	"github.com/sercheck/ser/internal/logger"
)

// NFA is a labelled-edge graph over a Kleene-algebra carrier: trans[i][j] is
// the algebra element labelling the edge from state i to state j (Zero if
// absent). Self-loops are legal and are absorbed by Star during elimination.
type NFA[K any] struct {
	alg   Algebra[K]
	n     int
	trans [][]K
}

// NewNFA allocates an NFA with n states and every edge set to Zero.
func NewNFA[K any](alg Algebra[K], n int) *NFA[K] {
	g := &NFA[K]{alg: alg, n: n, trans: make([][]K, n)}
	z := alg.Zero()
	for i := range g.trans {
		row := make([]K, n)
		for j := range row {
			row[j] = z
		}
		g.trans[i] = row
	}
	return g
}

// AddEdge adds a transition i -> j labelled k, unioning with any existing
// label on that edge.
func (g *NFA[K]) AddEdge(i, j int, k K) {
	g.trans[i][j] = g.alg.Plus(g.trans[i][j], k)
}

// zeroTester is an optional extension an Algebra implementation can provide
// to let Eliminate tell present edges from absent ones. Without it, degree
// counting treats every edge as present and falls back to id order for ties.
type zeroTester[K any] interface {
	IsZero(K) bool
}

// Eliminate computes the algebra value of all paths from start to accept by
// repeated state elimination: two sentinel nodes are wired in with a One
// edge into start and a One edge out of accept, every original state is then
// removed one at a time (folding its self-loop through Star and rerouting
// its neighbors), and the label left between the sentinels is the answer.
// Because the sentinels have no incoming/outgoing edges of their own, no
// sentinel self-loop is ever created, so the two-sentinel value is already
// the final closed-form result — no separate end-game formula is needed.
//
// States are eliminated in smart_kleene_order: at each step, remove the
// live state minimizing in-degree * out-degree among the states not yet
// eliminated, breaking ties by the smaller state id.
func (g *NFA[K]) Eliminate(start, accept int) K {
	sPrime, tPrime := g.n, g.n+1
	total := g.n + 2
	z := g.alg.Zero()

	trans := make([][]K, total)
	for i := range trans {
		row := make([]K, total)
		for j := range row {
			row[j] = z
		}
		trans[i] = row
	}
	for i := 0; i < g.n; i++ {
		for j := 0; j < g.n; j++ {
			trans[i][j] = g.trans[i][j]
		}
	}
	trans[sPrime][start] = g.alg.Plus(trans[sPrime][start], g.alg.One())
	trans[accept][tPrime] = g.alg.Plus(trans[accept][tPrime], g.alg.One())

	zc, _ := g.alg.(zeroTester[K])
	present := func(k K) bool {
		if zc != nil {
			return !zc.IsZero(k)
		}
		return true
	}

	alive := make(map[int]bool, g.n)
	for i := 0; i < g.n; i++ {
		alive[i] = true
	}

	neighbors := func() []int {
		ns := make([]int, 0, len(alive)+2)
		for i := range alive {
			ns = append(ns, i)
		}
		ns = append(ns, sPrime, tPrime)
		return ns
	}

	degree := func(i int, ns []int) int {
		in, out := 0, 0
		for _, j := range ns {
			if j == i {
				continue
			}
			if present(trans[i][j]) {
				out++
			}
			if present(trans[j][i]) {
				in++
			}
		}
		return in * out
	}

	for len(alive) > 0 {
		ids := make([]int, 0, len(alive))
		for i := range alive {
			ids = append(ids, i)
		}
		sort.Ints(ids)

		ns := neighbors()
		best := ids[0]
		bestScore := degree(best, ns)
		for _, id := range ids[1:] {
			if sc := degree(id, ns); sc < bestScore {
				best, bestScore = id, sc
			}
		}

		delete(alive, best)
		logger.Trace("kleene elimination step", "state", best, "degree", bestScore, "remaining", len(alive))
		rest := make([]int, 0, len(alive)+2)
		for i := range alive {
			rest = append(rest, i)
		}
		rest = append(rest, sPrime, tPrime)

		loop := g.alg.Star(trans[best][best])
		for _, i := range rest {
			if !present(trans[i][best]) {
				continue
			}
			through := g.alg.Times(trans[i][best], loop)
			for _, j := range rest {
				if !present(trans[best][j]) {
					continue
				}
				trans[i][j] = g.alg.Plus(trans[i][j], g.alg.Times(through, trans[best][j]))
			}
		}
	}

	return trans[sPrime][tPrime]
}
