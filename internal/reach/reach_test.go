package reach

import (
	"context"
	"testing"

	"github.com/sercheck/ser/internal/ns"
	"github.com/sercheck/ser/internal/oracle"
	"github.com/sercheck/ser/internal/parse"
	"github.com/sercheck/ser/internal/petri"
	"github.com/sercheck/ser/internal/semilinear"
	"github.com/sercheck/ser/internal/serial"
)

func buildFixture(t *testing.T, src string) (*petri.Net, *ns.System, serial.Alphabet, semilinear.Set) {
	t.Helper()
	prog, err := parse.Program(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sys, err := ns.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	serSet, alphabet := serial.Build(sys)
	net := petri.Build(sys)
	return net, sys, alphabet, serSet
}

func TestCheckReportsUnreachableForEmptyTarget(t *testing.T) {
	net, _, alphabet, _ := buildFixture(t, `request main { X := 1; y := X; X := 0; y }`)
	res, err := Check(context.Background(), oracle.NewFake(net), net, alphabet, semilinear.Empty(len(alphabet.Symbols)))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Outcome != Unreachable {
		t.Fatalf("expected Unreachable for an empty target, got %v", res.Outcome)
	}
}

func TestCheckReportsReachableWhenTargetMatchesReachableMarking(t *testing.T) {
	net, _, alphabet, _ := buildFixture(t, `request main { X := 1; y := X; X := 0; y }`)
	// The request's own response place is reachable with at least one
	// token the moment it completes once, so a target requiring >=1 of
	// that symbol must be Reachable.
	target := semilinear.Set{
		Dim:        len(alphabet.Symbols),
		Components: []semilinear.Component{{Base: semilinear.Vector{1}}},
	}
	res, err := Check(context.Background(), oracle.NewFake(net), net, alphabet, target)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Outcome != Reachable {
		t.Fatalf("expected Reachable, got %v", res.Outcome)
	}
}
