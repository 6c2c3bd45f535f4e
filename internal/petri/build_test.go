package petri

import (
	"testing"

	"github.com/sercheck/ser/internal/ns"
	"github.com/sercheck/ser/internal/parse"
)

func compileNet(t *testing.T, src string) *Net {
	t.Helper()
	prog, err := parse.Program(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sys, err := ns.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return Build(sys)
}

// TestGlobalTokenInvariantHoldsAcrossReachableMarkings does a bounded BFS
// over the net's reachable markings (bounded firing depth, since spawn
// transitions are input-free and would otherwise make the place count
// grow forever) and checks the invariant holds everywhere it looks.
func TestGlobalTokenInvariantHoldsAcrossReachableMarkings(t *testing.T) {
	net := compileNet(t, `request main { X := 1; yield; y := X; X := 0; y }`)

	const maxDepth = 6
	seen := map[string]bool{}
	type state struct {
		m     Marking
		depth int
	}
	key := func(m Marking) string {
		s := ""
		for _, a := range m {
			s += string(rune('a'+a.Pl)) + ":" + string(rune('0'+a.Mult)) + ","
		}
		return s
	}
	queue := []state{{net.Initial, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		k := key(cur.m)
		if seen[k] {
			continue
		}
		seen[k] = true

		if got := net.GlobalTokenCount(cur.m); got != 1 {
			t.Fatalf("global token invariant violated at marking %v: got %d", cur.m, got)
		}

		if cur.depth >= maxDepth {
			continue
		}
		for t := range net.Tr {
			if net.Enabled(cur.m, t) {
				queue = append(queue, state{net.Fire(cur.m, t), cur.depth + 1})
			}
		}
	}
}

func TestBuildPlacesCoverAllThreeKinds(t *testing.T) {
	net := compileNet(t, `request main { X := 1; yield; y := X; X := 0; y }`)
	kinds := map[PlaceKind]int{}
	for _, k := range net.PlKind {
		kinds[k]++
	}
	if kinds[PlaceGlobal] == 0 || kinds[PlaceLocal] == 0 || kinds[PlaceResponse] == 0 {
		t.Fatalf("expected at least one place of each kind, got %v", kinds)
	}
}

func TestSpawnTransitionIsInputFree(t *testing.T) {
	net := compileNet(t, `request main { X := 1; y := X; X := 0; y }`)
	for i, name := range net.Tr {
		if name == "spawn_main" {
			if len(net.Pre[i]) != 0 {
				t.Fatalf("spawn transition should have empty Pre, got %v", net.Pre[i])
			}
			return
		}
	}
	t.Fatalf("expected a spawn_main transition")
}

func TestTextRendersHeaderAndPlaces(t *testing.T) {
	net := compileNet(t, `request main { X := 1; y := X; X := 0; y }`)
	text := net.Text()
	if len(text) == 0 {
		t.Fatalf("expected non-empty rendered net")
	}
	if text[:4] != "net " {
		t.Fatalf("expected net text to start with \"net \", got %q", text[:4])
	}
}
