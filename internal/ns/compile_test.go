package ns

import (
	"testing"

	"github.com/sercheck/ser/internal/parse"
)

func mustCompile(t *testing.T, src string) *System {
	t.Helper()
	prog, err := parse.Program(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sys, err := Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return sys
}

func TestCompileNoYieldProducesNoDeltaEdges(t *testing.T) {
	sys := mustCompile(t, `request main { X := 1; y := X; X := 0; y }`)
	if len(sys.Delta) != 0 {
		t.Fatalf("expected no delta edges for a yield-free handler, got %d", len(sys.Delta))
	}
	// A request's spawn point is re-enqueued at every newly discovered
	// global state (it can restart from wherever the last invocation left
	// off, not only from g0), so completing once from g0 and again from
	// the {X:0} state it leaves behind both register a response.
	if len(sys.Resp) == 0 {
		t.Fatalf("expected at least one response")
	}
	for _, r := range sys.Resp {
		if r.Symbol != "1" {
			t.Fatalf("expected every response to be \"1\", got %+v", sys.Resp)
		}
	}
}

func TestCompileYieldProducesDeltaEdgesAndSplitsLocalStates(t *testing.T) {
	sys := mustCompile(t, `request main { X := 1; yield; y := X; X := 0; y }`)
	// Three edges: g0's spawn reaching the resume state, the same spawn
	// re-run from the {X:1} state its own yield lands in, and a third
	// re-run from the {X:0} state the completed response leaves behind —
	// each restart converges back on the same resume local state since X
	// is set to 1 unconditionally before any yield.
	if len(sys.Delta) != 3 {
		t.Fatalf("expected three delta edges, got %d", len(sys.Delta))
	}
	if len(sys.Globals) != 3 {
		t.Fatalf("expected three global states (g0, {X:1}, {X:0}), got %d", len(sys.Globals))
	}
	if len(sys.Locals) != 2 {
		t.Fatalf("expected two local states (spawn point + resume point), got %d", len(sys.Locals))
	}
	if len(sys.Resp) != 1 || sys.Resp[0].Symbol != "1" {
		t.Fatalf("expected a single response of \"1\", got %+v", sys.Resp)
	}
	edge := sys.Delta[0]
	if edge.FromL != sys.Req["main"] {
		t.Fatalf("delta edge should originate at the request's spawn local state")
	}
	if edge.ToL == edge.FromL {
		t.Fatalf("delta edge should move to a distinct resume local state")
	}
}

func TestCompileLockPatternTerminatesAndYields(t *testing.T) {
	sys := mustCompile(t, `request main {
		while (L == 1) { yield };
		L := 1;
		X := 1;
		yield;
		y := X;
		X := 0;
		L := 0;
		y
	}`)
	if len(sys.Resp) == 0 {
		t.Fatalf("expected at least one response")
	}
	for _, r := range sys.Resp {
		if r.Symbol != "1" {
			t.Fatalf("lock-protected handler should only ever respond 1, got %s", r.Symbol)
		}
	}
}

func TestCompileChoiceWithoutGlobalsProducesBothBranches(t *testing.T) {
	sys := mustCompile(t, `request main { if (?) { y := 1 } else { y := 0 }; y }`)
	symbols := map[string]bool{}
	for _, r := range sys.Resp {
		symbols[r.Symbol] = true
	}
	if !symbols["0"] || !symbols["1"] {
		t.Fatalf("expected both response symbols 0 and 1, got %v", symbols)
	}
}

func TestCompileRejectsUnboundedLiteral(t *testing.T) {
	big := "request main { X := 1000; X }"
	prog, err := parse.Program(big)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(prog)
	if err == nil {
		t.Fatalf("expected an unbounded-value-domain error")
	}
	if _, ok := err.(*ErrUnboundedValueDomain); !ok {
		t.Fatalf("expected *ErrUnboundedValueDomain, got %T", err)
	}
}

func TestReachableFromRequestsCoversSpawnState(t *testing.T) {
	sys := mustCompile(t, `request main { X := 1; yield; y := X; X := 0; y }`)
	reach := sys.ReachableFromRequests()
	spawn := sys.Req["main"]
	rs, ok := reach[spawn]
	if !ok || len(rs) != 1 || rs[0] != "main" {
		t.Fatalf("expected spawn state reachable only from \"main\", got %v", rs)
	}
}
