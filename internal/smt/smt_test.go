package smt

import (
	"context"
	"testing"
)

func TestFakeReturnsUnknownForUnregisteredScript(t *testing.T) {
	f := NewFake()
	v, err := f.Solve(context.Background(), "(assert true)")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if v != UnknownVerdict {
		t.Fatalf("expected Unknown, got %v", v)
	}
}

func TestFakeReturnsRegisteredVerdict(t *testing.T) {
	f := NewFake()
	f.Formulas["(assert (>= x 0))"] = true
	v, err := f.Solve(context.Background(), "(assert (>= x 0))")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if v != Sat {
		t.Fatalf("expected Sat, got %v", v)
	}
}
