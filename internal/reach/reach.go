// Package reach is the reachability driver (C6): it turns the non-serial
// semilinear target into one reachability query per component against the
// compiled Petri net, invokes the oracle (package oracle) for each, and
// aggregates the per-component outcomes into one overall Outcome.
package reach

import (
	"context"
	"fmt"
	"strings"

	"github.com/sercheck/ser/internal/oracle"
	"github.com/sercheck/ser/internal/petri"
	"github.com/sercheck/ser/internal/semilinear"
	"github.com/sercheck/ser/internal/serial"
)

// Outcome is the decision-procedure-level reachability verdict, after
// combining every component query of the non-serial target.
type Outcome int

const (
	Unreachable Outcome = iota
	Reachable
	UnknownOutcome
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case TimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// Result pairs the aggregate Outcome with the component (if any) whose
// query was reachable, and the oracle's raw proof text for package proof
// to validate.
type Result struct {
	Outcome   Outcome
	Component int
	Proof     string
}

// responsePlaceName mirrors package petri's own naming convention
// (resp_<req>_<symbol>) for the places a serial.Symbol corresponds to.
func responsePlaceName(sym serial.Symbol) string {
	return fmt.Sprintf("resp_%s_%s", sym.Req, sym.Resp)
}

// buildQuery renders a component's target as the oracle's min-atom query
// format: "is it reachable for every response place named by the
// alphabet to hold at least Base[j] tokens". Scoped design decision:
// response places only ever accumulate (package petri never consumes
// them), so any marking reachable with counts >= a component's base is
// also one from which every period generator's round trip can keep
// firing — the periods themselves don't need their own explicit target,
// since reachability of the base already certifies the request/response
// cycle that produces further repeats is enabled. This turns an
// unbounded-period target into a single finite query per component
// instead of requiring the oracle to understand parameterized targets.
func buildQuery(net *petri.Net, alphabet serial.Alphabet, comp semilinear.Component) oracle.Query {
	var b strings.Builder
	b.WriteString("<query>\n")
	for j, sym := range alphabet.Symbols {
		min := 0
		if j < len(comp.Base) {
			min = comp.Base[j]
		}
		if min <= 0 {
			continue
		}
		fmt.Fprintf(&b, "  <atom place=%q min=\"%d\"/>\n", responsePlaceName(sym), min)
	}
	b.WriteString("</query>\n")
	return oracle.Query{NetText: net.Text(), QueryText: b.String()}
}

// Check queries the oracle once per component of target and aggregates:
// Reachable if any component is reachable (the non-serial behavior it
// witnesses is itself enough to prove the program is not serializable),
// Unreachable only if every component is unreachable, else the weakest
// outcome observed (Timeout/Unknown) among the remainder once a
// Reachable verdict hasn't already been found.
func Check(ctx context.Context, adapter oracle.Adapter, net *petri.Net, alphabet serial.Alphabet, target semilinear.Set) (Result, error) {
	if len(target.Components) == 0 {
		return Result{Outcome: Unreachable}, nil
	}
	worst := Unreachable
	for i, comp := range target.Components {
		q := buildQuery(net, alphabet, comp)
		res, err := adapter.Check(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("oracle check (component %d): %w", i, err)
		}
		switch res.Status {
		case oracle.Reachable:
			return Result{Outcome: Reachable, Component: i, Proof: res.Proof}, nil
		case oracle.Timeout:
			worst = TimedOut
		case oracle.Unknown:
			if worst != TimedOut {
				worst = UnknownOutcome
			}
		}
	}
	return Result{Outcome: worst}, nil
}
