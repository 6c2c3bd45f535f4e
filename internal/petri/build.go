package petri

import (
	"fmt"

	"github.com/sercheck/ser/internal/ns"
)

// Build constructs the Petri net for a compiled Network System:
//
//   - one place per global state g, one per local state ℓ, one per
//     (request, response) pair;
//   - one input-free transition per (r, ℓ) ∈ req, producing a token on
//     L_ℓ — the only source of unbounded growth in L-places;
//   - one transition per δ edge ((g,ℓ),(g',ℓ')), consuming G_g and L_ℓ
//     and producing G_g' and L_ℓ';
//   - one transition per (ℓ, s) ∈ resp and each request symbol r from
//     which ℓ is reachable, consuming L_ℓ and producing R_(r,s).
//
// The response-emission ambiguity is resolved via
// ns.System.ReachableFromRequests: since the net forgets which request a
// local-state token came from, every request that can reach ℓ gets its
// own (r,s) response transition, a sound over-approximation the serial
// semilinear set (package serial) is built against identically.
func Build(sys *ns.System) *Net {
	net := newNet("ser")

	globalPlace := make([]int, len(sys.Globals))
	for g := range sys.Globals {
		globalPlace[g] = net.addPlace(fmt.Sprintf("g%d", g), PlaceGlobal)
	}
	localPlace := make([]int, len(sys.Locals))
	for l := range sys.Locals {
		localPlace[l] = net.addPlace(fmt.Sprintf("l%d", l), PlaceLocal)
	}

	net.Initial = markingOf(globalPlace[0], 1)

	reach := sys.ReachableFromRequests()

	for _, name := range sys.RequestsInOrder() {
		lid := sys.Req[name]
		tname := fmt.Sprintf("spawn_%s", name)
		net.addTransition(tname, nil, markingOf(localPlace[lid], 1))
	}

	for i, e := range sys.Delta {
		tname := fmt.Sprintf("delta_%d", i)
		pre := append(Marking{}, markingOf(globalPlace[e.FromG], 1)...)
		pre = append(pre, markingOf(localPlace[e.FromL], 1)...)
		post := append(Marking{}, markingOf(globalPlace[e.ToG], 1)...)
		post = append(post, markingOf(localPlace[e.ToL], 1)...)
		net.addTransition(tname, pre, post)
	}

	respPlace := map[string]int{}
	respPlaceOf := func(r, s string) int {
		key := r + "|" + s
		if idx, ok := respPlace[key]; ok {
			return idx
		}
		idx := net.addPlace(fmt.Sprintf("resp_%s_%s", r, s), PlaceResponse)
		respPlace[key] = idx
		return idx
	}

	for _, re := range sys.Resp {
		requests := reach[re.Local]
		for _, r := range requests {
			tname := fmt.Sprintf("resp_%s_%s_from_l%d", r, re.Symbol, re.Local)
			rp := respPlaceOf(r, re.Symbol)
			net.addTransition(tname, markingOf(localPlace[re.Local], 1), markingOf(rp, 1))
		}
	}

	return net
}
