package serial

import (
	"testing"

	"github.com/sercheck/ser/internal/ns"
	"github.com/sercheck/ser/internal/parse"
	"github.com/sercheck/ser/internal/semilinear"
)

func mustBuild(t *testing.T, src string) (semilinear.Set, Alphabet) {
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

// TestBuildNoYieldAllowsAnyRepeatCount checks a yield-free always-1 handler
// serializes to "any nonnegative number of (main,1) round trips" — the
// handler's own response leaves globals in a state from which it can
// restart, so nothing caps how many times it runs in sequence.
func TestBuildNoYieldAllowsAnyRepeatCount(t *testing.T) {
	set, alphabet := mustBuild(t, `request main { X := 1; y := X; X := 0; y }`)
	if len(alphabet.Symbols) != 1 || alphabet.Symbols[0] != (Symbol{Req: "main", Resp: "1"}) {
		t.Fatalf("expected a single (main,1) symbol, got %+v", alphabet.Symbols)
	}
	for _, n := range []int{0, 1, 2, 5} {
		if !set.Contains(semilinear.Vector{n}) {
			t.Fatalf("expected %d repeats to be a member of the serial set", n)
		}
	}
}

// TestBuildYieldAllowsAnyRepeatCount is the yield-bearing counterpart:
// suspending mid-handler and resuming must not change the serial
// conclusion, since a serial run never actually interleaves with anything
// else regardless of how many times the single active request yields to
// itself.
func TestBuildYieldAllowsAnyRepeatCount(t *testing.T) {
	set, alphabet := mustBuild(t, `request main { X := 1; yield; y := X; X := 0; y }`)
	if len(alphabet.Symbols) != 1 || alphabet.Symbols[0] != (Symbol{Req: "main", Resp: "1"}) {
		t.Fatalf("expected a single (main,1) symbol, got %+v", alphabet.Symbols)
	}
	for _, n := range []int{0, 1, 3} {
		if !set.Contains(semilinear.Vector{n}) {
			t.Fatalf("expected %d repeats to be a member of the serial set", n)
		}
	}
}

// TestBuildChoiceBranchesBothSymbolsAppear checks a request whose response
// genuinely depends on nondeterministic choice contributes both response
// symbols to the alphabet, each independently repeatable.
func TestBuildChoiceBranchesBothSymbolsAppear(t *testing.T) {
	set, alphabet := mustBuild(t, `request main { if (?) { y := 1 } else { y := 0 }; y }`)
	if len(alphabet.Symbols) != 2 {
		t.Fatalf("expected two symbols (main,0) and (main,1), got %+v", alphabet.Symbols)
	}
	idx0, idx1 := -1, -1
	for i, s := range alphabet.Symbols {
		if s.Resp == "0" {
			idx0 = i
		}
		if s.Resp == "1" {
			idx1 = i
		}
	}
	if idx0 < 0 || idx1 < 0 {
		t.Fatalf("expected both 0 and 1 response symbols, got %+v", alphabet.Symbols)
	}
	v := make(semilinear.Vector, 2)
	v[idx0] = 2
	if !set.Contains(v) {
		t.Fatalf("expected two (main,0) round trips with zero (main,1) to be a member")
	}
}

func TestNonSerialExcludesMembersWithinBox(t *testing.T) {
	set, _ := mustBuild(t, `request main { X := 1; y := X; X := 0; y }`)
	nonSerial := NonSerial(set, set.Dim, 4)
	if nonSerial.Contains(semilinear.Vector{2}) {
		t.Fatalf("2 repeats is in the serial set, so it must not be in the non-serial complement")
	}
}
