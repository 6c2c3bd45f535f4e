// Package proof implements the proof pipeline (C7): parsing an oracle
// witness into a concrete marking, building obligation formulas a witness
// must satisfy (the global-token invariant, and a target obligation for a
// query's min atoms), and validating a witness against an obligation via
// package smt. The reachability driver prunes nothing, so no obligation is
// lifted through pruning, and nothing here combines obligations: the
// orchestrator validates each witness against the global-token invariant
// alone.
package proof

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sercheck/ser/internal/petri"
	"github.com/sercheck/ser/internal/presburger"
	"github.com/sercheck/ser/internal/smt"
)

// ErrCertificateInvalid is returned when a witness fails validation: it
// doesn't actually satisfy the invariants a reachable marking must.
type ErrCertificateInvalid struct {
	Obligation string
	Reason     string
}

func (e *ErrCertificateInvalid) Error() string {
	return fmt.Sprintf("certificate invalid (%s): %s", e.Obligation, e.Reason)
}

// ParseWitness reads the "place=value" lines an oracle Result.Proof
// carries into a concrete place-name -> token-count map.
func ParseWitness(proofText string) (map[string]int, error) {
	out := map[string]int{}
	for _, line := range strings.Split(proofText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed witness line %q", line)
		}
		v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed witness value in %q: %w", line, err)
		}
		out[strings.TrimSpace(parts[0])] = v
	}
	return out, nil
}

// GlobalTokenObligation builds the formula asserting the global-token
// invariant (exactly one token across every PlaceGlobal-kind place) for a
// given net, over Free(string) variables named by place.
func GlobalTokenObligation(net *petri.Net) presburger.Formula[string] {
	var sum presburger.Affine[string]
	sum = presburger.Const[string](0)
	for i, kind := range net.PlKind {
		if kind != petri.PlaceGlobal {
			continue
		}
		sum = sum.Plus(presburger.Var(presburger.Free[string](net.Pl[i])))
	}
	return presburger.EqF(sum, presburger.Const[string](1))
}

// TargetObligation builds the conjunction of "place >= min" atoms the
// witness was produced to satisfy, mirroring package reach's query.
func TargetObligation(mins map[string]int) presburger.Formula[string] {
	f := presburger.Formula[string](presburger.True[string]())
	for place, min := range mins {
		atom := presburger.GE(presburger.Var(presburger.Free[string](place)), presburger.Const[string](min))
		f = presburger.And(f, atom)
	}
	return f
}

// Validate checks witness against obligation. It first evaluates
// obligation directly under witness, treating a place the witness does
// not name as 0 (the Petri net's own convention of dropping
// zero-multiplicity atoms); if that holds, the witness is valid.
// Otherwise it asks the configured SMT adapter whether obligation is
// satisfiable together with equalities pinning every witness-named place
// to its observed value (places absent from witness stay unconstrained
// there). With a nil adapter there is no second check, and a failed
// direct evaluation rejects the witness.
func Validate(ctx context.Context, adapter smt.Adapter, obligation presburger.Formula[string], witness map[string]int) (bool, error) {
	if presburger.Eval(obligation, witness) {
		return true, nil
	}
	if adapter == nil {
		return false, nil
	}
	script := buildScript(obligation, witness)
	verdict, err := adapter.Solve(ctx, script)
	if err != nil {
		return false, fmt.Errorf("validate via SMT: %w", err)
	}
	return verdict == smt.Sat, nil
}

// buildScript renders obligation plus an equality constraint pinning
// every witness-named variable to its observed value, as a full SMT-LIB
// script with declare-const preamble.
func buildScript(obligation presburger.Formula[string], witness map[string]int) string {
	pinned := obligation
	for name, val := range witness {
		atom := presburger.EqF(presburger.Var(presburger.Free(name)), presburger.Const[string](val))
		pinned = presburger.And(pinned, atom)
	}
	var b strings.Builder
	for _, name := range presburger.FreeNames(pinned) {
		fmt.Fprintf(&b, "(declare-const %s Int)\n", name)
	}
	fmt.Fprintf(&b, "(assert %s)\n", presburger.SMTLIB(pinned))
	return b.String()
}
