package oracle

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/sercheck/ser/internal/petri"
)

// Fake is an in-process stand-in for the external reachability checker,
// used by the orchestrator's end-to-end scenario tests so they never need
// an installed oracle binary. It brute-force-explores net's marking graph
// up to MaxDepth (the scenarios this repository ships are all small enough
// for this to be exhaustive within that bound) and reports Reachable the
// moment it finds a marking satisfying the query's target atoms, else
// Unreachable once the frontier is exhausted within the bound, else
// Unknown if the bound is hit first. A target naming a place the net does
// not have is reported Unreachable without exploring.
type Fake struct {
	Net      *petri.Net
	MaxDepth int
}

func NewFake(net *petri.Net) *Fake {
	return &Fake{Net: net, MaxDepth: 10000}
}

func (f *Fake) Health(ctx context.Context) error { return nil }

var targetAtomPattern = regexp.MustCompile(`<atom place="([^"]+)" min="(-?\d+)"/>`)

// parseTarget reads the <atom place="..." min="k"/> tags package reach
// emits into Query.QueryText: the target is the conjunction "every named
// place holds at least k tokens."
func parseTarget(queryText string) map[string]int {
	out := map[string]int{}
	for _, m := range targetAtomPattern.FindAllStringSubmatch(queryText, -1) {
		k, _ := strconv.Atoi(m[2])
		out[m[1]] = k
	}
	return out
}

func (f *Fake) Check(ctx context.Context, q Query) (Result, error) {
	target := parseTarget(q.QueryText)
	net := f.Net
	for place := range target {
		if _, ok := net.PlaceIndex[place]; !ok {
			return Result{Status: Unreachable}, nil
		}
	}

	satisfies := func(m petri.Marking) bool {
		for place, min := range target {
			idx, ok := net.PlaceIndex[place]
			if !ok {
				return false
			}
			if m.Get(idx) < min {
				return false
			}
		}
		return true
	}

	type state struct{ m petri.Marking }
	seen := map[string]bool{}
	keyOf := func(m petri.Marking) string {
		s := ""
		for _, a := range m {
			s += strconv.Itoa(a.Pl) + ":" + strconv.Itoa(a.Mult) + ","
		}
		return s
	}

	start := net.Initial
	if satisfies(start) {
		return Result{Status: Reachable, Proof: witnessOf(net, start)}, nil
	}
	frontier := []petri.Marking{start}
	seen[keyOf(start)] = true

	for depth := 0; depth < f.MaxDepth && len(frontier) > 0; depth++ {
		var next []petri.Marking
		for _, m := range frontier {
			for t := range net.Tr {
				if !net.Enabled(m, t) {
					continue
				}
				nm := net.Fire(m, t)
				k := keyOf(nm)
				if seen[k] {
					continue
				}
				seen[k] = true
				if satisfies(nm) {
					return Result{Status: Reachable, Proof: witnessOf(net, nm)}, nil
				}
				next = append(next, nm)
			}
		}
		frontier = next
	}
	if len(frontier) > 0 {
		return Result{Status: Unknown}, nil
	}
	return Result{Status: Unreachable}, nil
}

// witnessOf renders a witness marking as one "place=value" line per
// nonzero place, the same shape Result.Proof carries after Subprocess has
// stripped the real oracle's "proof:" line prefixes — package proof
// parses this format back into a concrete witness to validate.
func witnessOf(net *petri.Net, m petri.Marking) string {
	var lines []string
	for _, a := range m {
		lines = append(lines, net.Pl[a.Pl]+"="+strconv.Itoa(a.Mult))
	}
	return strings.Join(lines, "\n")
}
