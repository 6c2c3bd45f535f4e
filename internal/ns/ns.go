// Package ns is the Network System layer: the finite-state control
// representation N = (G, L, Req, Resp, g0, delta, req, resp) and the
// small-step compiler that builds one from a parsed program.
package ns

import (
	"fmt"

	"github.com/sercheck/ser/internal/ast"
)

// GlobalID and LocalID index into the arenas owned by a System. All
// cross-references between transitions, requests, and responses are by
// index, never by pointer, so a System can be copied, hashed, or cached
// cheaply.
type GlobalID int
type LocalID int

// System is the compiled Network System: finite arenas of global and
// local states, the delta relation between them, and the request/response
// boundary relations.
type System struct {
	// Globals holds one entry per distinct global valuation reached from
	// G0, in discovery order; Globals[0] is always g0.
	Globals []Valuation
	// Locals holds one entry per distinct (local valuation, continuation)
	// pair reached from some request's initial local state.
	Locals []LocalState

	Delta []Edge

	// Req maps each request symbol to the local state a freshly spawned
	// handler for it starts in.
	Req map[string]LocalID
	// Resp lists every (local, response-symbol) pair a handler can
	// terminate in. Multiple entries may share a LocalID if the same
	// continuation is reachable with more than one rendered return value
	// (nondeterministic returns, see ast.Choice).
	Resp []RespEdge

	// ReqOrder records request symbols in declaration order, fixing
	// iteration order for reproducibility.
	ReqOrder []string
}

// Edge is one delta transition, global-state indices on both sides and
// local-state indices on both sides.
type Edge struct {
	FromG GlobalID
	FromL LocalID
	ToG   GlobalID
	ToL   LocalID
}

// LocalState is an entry point into a deterministic run: a local valuation
// paired with the program continuation to execute from here. Entries exist
// only at request-spawn points and at yield-resume points — everything
// deterministic in between two suspensions is folded into a single delta
// edge rather than modelled step by step (sound: nothing can interleave
// during a run with no suspension point, so the intermediate states are
// unobservable to any other request).
type LocalState struct {
	Vars Valuation
	Cont ast.Expr
}

// RespEdge records a handler's termination: starting from global state
// FromG, local state ℓ emits symbol s and leaves the system in ToG.
// FromG/ToG are what let package serial build the global-state automaton a
// completed round trip corresponds to; the Petri net construction (package
// petri) ignores them, matching the token model's forgetting of which
// request produced a given response.
type RespEdge struct {
	FromG  GlobalID
	Local  LocalID
	Symbol string
	ToG    GlobalID
}

// Valuation is a variable assignment (global or local), keyed by variable name,
// rendered to a canonical string key for arena deduplication.
type Valuation map[string]int

func (v Valuation) key() string {
	// Deterministic regardless of map iteration order: sort by name.
	names := make([]string, 0, len(v))
	for n := range v {
		names = append(names, n)
	}
	sortStrings(names)
	s := ""
	for _, n := range names {
		s += fmt.Sprintf("%s=%d;", n, v[n])
	}
	return s
}

func (v Valuation) clone() Valuation {
	out := make(Valuation, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// RequestsInOrder returns request symbols in canonical (sorted) order, per
// the reproducibility invariant: iteration over semantically-unordered
// containers uses a canonical total order to pin down tiebreaks.
func (sys *System) RequestsInOrder() []string {
	out := make([]string, len(sys.ReqOrder))
	copy(out, sys.ReqOrder)
	sortStrings(out)
	return out
}

// ReachableFromRequests returns, for a local state ℓ, the set of request
// symbols from which ℓ is reachable via delta — the conservative
// over-approximation C4 uses to index response-emission transitions,
// since the Petri net forgets which request a local-state token
// originated from.
func (sys *System) ReachableFromRequests() map[LocalID][]string {
	// adjacency: local -> locals reachable via one delta step (global
	// component is irrelevant to this query, so we project it away).
	succ := make(map[LocalID][]LocalID)
	for _, e := range sys.Delta {
		succ[e.FromL] = append(succ[e.FromL], e.ToL)
	}

	reach := make(map[LocalID]map[string]bool)
	order := sys.RequestsInOrder()
	for _, r := range order {
		start := sys.Req[r]
		visited := map[LocalID]bool{}
		stack := []LocalID{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			if reach[cur] == nil {
				reach[cur] = map[string]bool{}
			}
			reach[cur][r] = true
			for _, nxt := range succ[cur] {
				if !visited[nxt] {
					stack = append(stack, nxt)
				}
			}
		}
	}

	out := make(map[LocalID][]string, len(reach))
	for l, set := range reach {
		var rs []string
		for r := range set {
			rs = append(rs, r)
		}
		sortStrings(rs)
		out[l] = rs
	}
	return out
}
