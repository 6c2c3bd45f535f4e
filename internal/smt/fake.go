package smt

import "context"

// Fake is an in-process stand-in for the external SMT-LIB solver. It
// never parses the script text Subprocess would send: Solve looks the
// script up verbatim in Formulas.
type Fake struct {
	Formulas map[string]bool
}

func NewFake() *Fake {
	return &Fake{Formulas: map[string]bool{}}
}

func (f *Fake) Health(ctx context.Context) error { return nil }

// Solve looks up a precomputed verdict for script (tests register one via
// Formulas before calling); an unregistered script reports Unknown rather
// than guessing.
func (f *Fake) Solve(ctx context.Context, script string) (Verdict, error) {
	sat, ok := f.Formulas[script]
	if !ok {
		return UnknownVerdict, nil
	}
	if sat {
		return Sat, nil
	}
	return Unsat, nil
}
