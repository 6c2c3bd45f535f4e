// Package petri implements the Petri net representation (P, T, Pre, Post,
// M0) and the construction of one from a compiled Network System (C4). The
// net shape — named place/transition slices with sorted-atom markings —
// follows github.com/dalzilio/nets, adapted here to the three place
// classes the checker's over-approximation needs (global, local,
// response) instead of the time/inhibitor-arc features the original
// supports.
package petri

import (
	"fmt"
	"sort"
	"strings"
)

// Atom is a (place index, multiplicity) pair; multiplicity is never
// stored as zero.
type Atom struct {
	Pl   int
	Mult int
}

// Marking is a set of Atoms sorted by place index.
type Marking []Atom

func (m Marking) Get(p int) int {
	for _, a := range m {
		if a.Pl == p {
			return a.Mult
		}
	}
	return 0
}

func markingOf(p, mult int) Marking {
	if mult == 0 {
		return nil
	}
	return Marking{{Pl: p, Mult: mult}}
}

func sortMarking(m Marking) Marking {
	sort.Slice(m, func(i, j int) bool { return m[i].Pl < m[j].Pl })
	return m
}

// PlaceKind classifies a place by which of the three NS-derived families
// it belongs to: at most one token total across all Global
// places, unbounded tokens on Local places, write-only accumulation on
// Response places.
type PlaceKind int

const (
	PlaceGlobal PlaceKind = iota
	PlaceLocal
	PlaceResponse
)

// Net is the Petri net (P, T, Pre, Post, M0). Pre[t]/Post[t] are the
// multiplicity functions for transition t, represented sparsely as
// Markings rather than dense P-length vectors.
type Net struct {
	Name string

	Pl      []string
	PlKind  []PlaceKind
	Tr      []string
	Pre     []Marking
	Post    []Marking
	Initial Marking

	// PlaceIndex maps a place's generated name back to its index, for
	// lookups when building reachability queries and lifting proofs.
	PlaceIndex map[string]int
}

func newNet(name string) *Net {
	return &Net{Name: name, PlaceIndex: map[string]int{}}
}

func (n *Net) addPlace(name string, kind PlaceKind) int {
	if idx, ok := n.PlaceIndex[name]; ok {
		return idx
	}
	idx := len(n.Pl)
	n.Pl = append(n.Pl, name)
	n.PlKind = append(n.PlKind, kind)
	n.PlaceIndex[name] = idx
	return idx
}

func (n *Net) addTransition(name string, pre, post Marking) int {
	idx := len(n.Tr)
	n.Tr = append(n.Tr, name)
	n.Pre = append(n.Pre, sortMarking(pre))
	n.Post = append(n.Post, sortMarking(post))
	return idx
}

// Enabled reports whether transition t can fire at marking m.
func (n *Net) Enabled(m Marking, t int) bool {
	for _, a := range n.Pre[t] {
		if m.Get(a.Pl) < a.Mult {
			return false
		}
	}
	return true
}

// Fire returns the marking after firing transition t at m. Callers must
// check Enabled first; Fire does not validate.
func (n *Net) Fire(m Marking, t int) Marking {
	delta := map[int]int{}
	for _, a := range m {
		delta[a.Pl] += a.Mult
	}
	for _, a := range n.Pre[t] {
		delta[a.Pl] -= a.Mult
	}
	for _, a := range n.Post[t] {
		delta[a.Pl] += a.Mult
	}
	var out Marking
	for p, mult := range delta {
		if mult != 0 {
			out = append(out, Atom{Pl: p, Mult: mult})
		}
	}
	return sortMarking(out)
}

// GlobalTokenCount sums the tokens on every Global-kind place, which must
// equal 1 at every reachable marking — the Petri-net global-token
// invariant the construction is meant to preserve.
func (n *Net) GlobalTokenCount(m Marking) int {
	total := 0
	for _, a := range m {
		if n.PlKind[a.Pl] == PlaceGlobal {
			total += a.Mult
		}
	}
	return total
}

// Text renders the net in the line-oriented format the external oracle
// consumes: a "net {name}" header, one "pl {place} ({tokens})" line
// per place with nonzero initial marking, and one
// "tr {id} {in-list} -> {out-list}" line per transition.
func (n *Net) Text() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "net %s\n", n.Name)
	for _, a := range n.Initial {
		fmt.Fprintf(&b, "pl %s (%d)\n", n.Pl[a.Pl], a.Mult)
	}
	for t, name := range n.Tr {
		fmt.Fprintf(&b, "tr %s %s -> %s\n", name, formatList(n, n.Pre[t]), formatList(n, n.Post[t]))
	}
	return b.String()
}

func formatList(n *Net, m Marking) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, len(m))
	for i, a := range m {
		if a.Mult == 1 {
			parts[i] = n.Pl[a.Pl]
		} else {
			parts[i] = fmt.Sprintf("%s*%d", n.Pl[a.Pl], a.Mult)
		}
	}
	return strings.Join(parts, " ")
}
