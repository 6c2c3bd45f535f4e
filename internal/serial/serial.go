// Package serial builds the serial Parikh set (C5): the set of
// Req x Resp multisets a strictly-one-request-at-a-time execution of the
// Network System can produce, and its complement, the non-serial target
// the reachability layer (package reach) searches the Petri net for.
//
// A serial round trip is a request spawning, running to completion with no
// other request interleaved, and emitting a response — exactly what the
// compiled System's delta graph already represents for a single request,
// since package ns folds every yield-free run into one edge and every
// yield-resume into a fresh edge, without ever modelling a second request
// touching the same execution. So the serial round-trip relation is just
// delta-reachability restricted to walks that start at a request's spawn
// state, projected onto (start global, end global, request, response)
// tuples: yields inside the walk are invisible to it, matching the spec's
// reading of "serial" as one request running, however many times it
// yields to itself, before the next request may start.
package serial

import (
	"sort"

	"github.com/sercheck/ser/internal/kleene"
	"github.com/sercheck/ser/internal/ns"
	"github.com/sercheck/ser/internal/semilinear"
)

// Symbol is one alphabet letter of the Req x Resp product: a request
// paired with one of the response values it can terminate in.
type Symbol struct {
	Req  string
	Resp string
}

// Alphabet assigns each distinct Req x Resp symbol reached during
// construction a stable dimension index, sorted for reproducibility.
type Alphabet struct {
	Symbols []Symbol
	index   map[Symbol]int
}

func (a *Alphabet) indexOf(s Symbol) int {
	if a.index == nil {
		a.index = map[Symbol]int{}
	}
	if i, ok := a.index[s]; ok {
		return i
	}
	i := len(a.Symbols)
	a.Symbols = append(a.Symbols, s)
	a.index[s] = i
	return i
}

// roundTrip is one discovered serial edge: from global state g, a handler
// for Req, possibly yielding any number of times to itself, lands back in
// global state To and emits Resp.
type roundTrip struct {
	From, To ns.GlobalID
	Sym      Symbol
}

// discoverRoundTrips walks sys.Delta from every (g, req-spawn) pair,
// following only delta edges (never crossing between unrelated requests:
// a delta edge's FromL is always some continuation of the same spawn), to
// find every (global, local) node the request can reach by yielding to
// itself any number of times. At each such node, sys.Resp — keyed by the
// exact (FromG, Local) pair a completion was observed at — gives the
// precise resulting global state and symbol; looking it up by the node's
// own global component (rather than reusing whatever global state the
// node was first discovered under) matters because a handler's final
// statements can still mutate globals between reaching a resume point and
// actually terminating.
func discoverRoundTrips(sys *ns.System) []roundTrip {
	succ := map[[2]int][][2]int{}
	for _, e := range sys.Delta {
		from := [2]int{int(e.FromG), int(e.FromL)}
		to := [2]int{int(e.ToG), int(e.ToL)}
		succ[from] = append(succ[from], to)
	}
	respByGL := map[[2]int][]ns.RespEdge{}
	for _, r := range sys.Resp {
		k := [2]int{int(r.FromG), int(r.Local)}
		respByGL[k] = append(respByGL[k], r)
	}

	var trips []roundTrip
	for _, name := range sys.RequestsInOrder() {
		spawnL := sys.Req[name]
		for g := range sys.Globals {
			start := [2]int{g, int(spawnL)}
			visited := map[[2]int]bool{start: true}
			stack := [][2]int{start}
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, re := range respByGL[cur] {
					trips = append(trips, roundTrip{
						From: ns.GlobalID(g),
						To:   re.ToG,
						Sym:  Symbol{Req: name, Resp: re.Symbol},
					})
				}
				for _, nxt := range succ[cur] {
					if !visited[nxt] {
						visited[nxt] = true
						stack = append(stack, nxt)
					}
				}
			}
		}
	}
	return trips
}

// Build constructs the labelled global-state automaton (nodes = reached
// global states, edges = serial round trips) and eliminates it into the
// serial Parikh set Ser# over N^(Req x Resp): one dimension per distinct
// symbol, in sorted order.
//
// Every global state is a legal accept state (a serial execution may stop
// after any completed round trip, or after none at all), so Ser# is the
// union, over every global state g, of the paths from g0 to g — including
// the empty run, which Eliminate(g0, g0) always contributes via its
// sentinel One edges.
func Build(sys *ns.System) (Set semilinear.Set, alphabet Alphabet) {
	trips := discoverRoundTrips(sys)

	for _, t := range trips {
		alphabet.indexOf(t.Sym)
	}
	sort.Slice(alphabet.Symbols, func(i, j int) bool {
		a, b := alphabet.Symbols[i], alphabet.Symbols[j]
		if a.Req != b.Req {
			return a.Req < b.Req
		}
		return a.Resp < b.Resp
	})
	alphabet.index = map[Symbol]int{}
	for i, s := range alphabet.Symbols {
		alphabet.index[s] = i
	}

	dim := len(alphabet.Symbols)
	alg := semilinear.Algebra{Dim: dim}

	n := len(sys.Globals)
	nfa := kleene.NewNFA[semilinear.Set](alg, n)
	for _, t := range trips {
		unit := make(semilinear.Vector, dim)
		unit[alphabet.indexOf(t.Sym)] = 1
		nfa.AddEdge(int(t.From), int(t.To), semilinear.FromLinear(unit))
	}

	ser := alg.Zero()
	for g := 0; g < n; g++ {
		ser = alg.Plus(ser, nfa.Eliminate(0, g))
	}
	return semilinear.Normalize(ser), alphabet
}

// NonSerial computes the non-serial target ¬Ser#: exact within
// [0, bound]^dim, a sound over-approximation past it (see
// semilinear.Complement's doc comment for why exact complementation
// outside a fixed box isn't attempted).
func NonSerial(ser semilinear.Set, dim, bound int) semilinear.Set {
	return semilinear.Complement(ser, dim, bound)
}
