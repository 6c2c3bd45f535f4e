package oracle

import (
	"context"
	"testing"

	"github.com/sercheck/ser/internal/ns"
	"github.com/sercheck/ser/internal/parse"
	"github.com/sercheck/ser/internal/petri"
)

func tinyNet(t *testing.T) *petri.Net {
	t.Helper()
	prog, err := parse.Program(`request main { X := 1; y := X; X := 0; y }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sys, err := ns.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return petri.Build(sys)
}

func TestFakeReportsUnreachableBelowTarget(t *testing.T) {
	net := tinyNet(t)
	f := NewFake(net)
	q := Query{QueryText: `<query><atom place="nonexistent" min="1"/></query>`}
	res, err := f.Check(context.Background(), q)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != Unreachable {
		t.Fatalf("expected Unreachable, got %v", res.Status)
	}
}

func TestFakeInitialMarkingSatisfiesTrivialTarget(t *testing.T) {
	net := tinyNet(t)
	f := NewFake(net)
	q := Query{QueryText: `<query><atom place="` + net.Pl[0] + `" min="1"/></query>`}
	res, err := f.Check(context.Background(), q)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != Reachable {
		t.Fatalf("expected Reachable, got %v", res.Status)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	net := tinyNet(t)
	pool := NewPool(NewFake(net), 1)
	release, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Acquire(ctx); err == nil {
		t.Fatalf("expected second acquire on a full pool with a cancelled context to fail")
	}
	release()
}
