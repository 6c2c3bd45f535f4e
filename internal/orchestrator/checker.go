// Package orchestrator wires every other layer into one entry point:
// parse, compile the Network System, build the Petri net and the serial
// semilinear set, run the reachability driver against the non-serial
// target, and validate any witness before reporting a final Decision.
// The five numbered steps below mirror the step-numbered-comment style
// the rest of this codebase uses for its own multi-stage pipelines.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sercheck/ser/internal/ns"
	"github.com/sercheck/ser/internal/oracle"
	"github.com/sercheck/ser/internal/parse"
	"github.com/sercheck/ser/internal/petri"
	"github.com/sercheck/ser/internal/proof"
	"github.com/sercheck/ser/internal/reach"
	"github.com/sercheck/ser/internal/semilinear"
	"github.com/sercheck/ser/internal/serial"
	"github.com/sercheck/ser/internal/smt"
)

// Verdict is the user-visible conclusion of one check.
type Verdict int

const (
	Serializable Verdict = iota
	NotSerializable
	VerdictUnknown
	VerdictTimeout
)

func (v Verdict) String() string {
	switch v {
	case Serializable:
		return "serializable"
	case NotSerializable:
		return "not serializable"
	case VerdictTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Certificate is the evidence behind a NotSerializable verdict: the
// reachable non-serial witness and the obligations it was validated
// against.
type Certificate struct {
	Witness       map[string]int
	ObligationOK  bool
	RawProof      string
}

// Decision is the complete result of one Checker.Check call.
type Decision struct {
	Verdict     Verdict
	Certificate *Certificate
	Elapsed     time.Duration
}

// Checker holds the two external subprocess adapters (nil means "build a
// real Subprocess with default config on first use") and options that
// apply across every Check call.
type Checker struct {
	Oracle oracle.Adapter
	SMT    smt.Adapter

	// Bound overrides the value-domain bound used to build the non-serial
	// complement; 0 means derive it from the serial set's dimension (8 per
	// dimension, or 8 when the dimension is 0).
	Bound int
}

// New builds a Checker wired against the real subprocess adapters.
func New() *Checker {
	return &Checker{
		Oracle: oracle.NewSubprocess(oracle.DefaultConfig()),
		SMT:    smt.NewSubprocess(smt.DefaultConfig()),
	}
}

// Check runs the full decision procedure against .ser source text.
func (c *Checker) Check(ctx context.Context, source string) (Decision, error) {
	start := time.Now()

	// 1. parse
	prog, err := parse.Program(source)
	if err != nil {
		return Decision{}, fmt.Errorf("parse: %w", err)
	}

	// 2. build the Network System
	sys, err := ns.Compile(prog)
	if err != nil {
		return Decision{}, fmt.Errorf("compile network system: %w", err)
	}

	return c.checkCompiled(ctx, sys, start)
}

// CheckSystem runs the decision procedure against an already-compiled
// Network System (e.g. one decoded by package nsimport), skipping steps
// 1-2.
func (c *Checker) CheckSystem(ctx context.Context, sys *ns.System) (Decision, error) {
	return c.checkCompiled(ctx, sys, time.Now())
}

func (c *Checker) checkCompiled(ctx context.Context, sys *ns.System, start time.Time) (Decision, error) {
	// 3. build the Petri net and the serial semilinear set
	net := petri.Build(sys)
	serSet, alphabet := serial.Build(sys)

	bound := c.Bound
	if bound == 0 {
		bound = maxDim(serSet) * 8
		if bound == 0 {
			bound = 8
		}
	}
	nonSerial := serial.NonSerial(serSet, len(alphabet.Symbols), bound)

	if len(nonSerial.Components) == 0 {
		return Decision{Verdict: Serializable, Elapsed: time.Since(start)}, nil
	}

	// 4. reachability
	oracleAdapter := c.Oracle
	if oracleAdapter == nil {
		oracleAdapter = oracle.NewSubprocess(oracle.DefaultConfig())
	}
	res, err := reach.Check(ctx, oracleAdapter, net, alphabet, nonSerial)
	if err != nil {
		return Decision{}, fmt.Errorf("reachability check: %w", err)
	}

	// 5. format result
	switch res.Outcome {
	case reach.Unreachable:
		return Decision{Verdict: Serializable, Elapsed: time.Since(start)}, nil
	case reach.TimedOut:
		return Decision{Verdict: VerdictTimeout, Elapsed: time.Since(start)}, nil
	case reach.UnknownOutcome:
		return Decision{Verdict: VerdictUnknown, Elapsed: time.Since(start)}, nil
	}

	witness, err := proof.ParseWitness(res.Proof)
	if err != nil {
		return Decision{}, fmt.Errorf("parse oracle witness: %w", err)
	}
	obligation := proof.GlobalTokenObligation(net)
	smtAdapter := c.SMT
	if smtAdapter == nil {
		smtAdapter = smt.NewSubprocess(smt.DefaultConfig())
	}
	ok, err := proof.Validate(ctx, smtAdapter, obligation, witness)
	if err != nil {
		return Decision{}, fmt.Errorf("validate certificate: %w", err)
	}
	if !ok {
		return Decision{}, &ErrCertificateInvalid{Reason: "witness violates the global-token invariant"}
	}

	return Decision{
		Verdict: NotSerializable,
		Certificate: &Certificate{
			Witness:      witness,
			ObligationOK: ok,
			RawProof:     res.Proof,
		},
		Elapsed: time.Since(start),
	}, nil
}

// ErrCertificateInvalid is returned when the oracle reported Reachable but
// the witness it produced fails validation against the net's own
// invariants — a contract violation in the oracle, not a property of the
// program under test.
type ErrCertificateInvalid struct {
	Reason string
}

func (e *ErrCertificateInvalid) Error() string {
	return fmt.Sprintf("oracle certificate invalid: %s", e.Reason)
}

func maxDim(s semilinear.Set) int { return s.Dim }
