package ns

import (
	"fmt"

	"github.com/sercheck/ser/internal/ast"
)

// boundCeiling is the hard ceiling on an inferred value-domain bound. A
// program whose literals alone would need a larger domain is rejected with
// ErrUnboundedValueDomain rather than silently truncated.
const boundCeiling = 64

// ErrUnboundedValueDomain is returned when the static bound-inference pass
// cannot fix a finite value domain for the program.
type ErrUnboundedValueDomain struct {
	Reason string
}

func (e *ErrUnboundedValueDomain) Error() string {
	return fmt.Sprintf("unbounded value domain: %s", e.Reason)
}

// inferBound performs the static analysis compile-time enumeration needs
// to be guaranteed to terminate: it walks every
// request body, collects the literal constants that appear, and takes the
// bound to be the largest one seen (so every reachable valuation in a
// correctly written program stays inside [0, bound]). Programs whose
// inferred bound would exceed boundCeiling are rejected outright, since a
// domain that large is a strong sign the program doesn't actually have a
// bounded value domain (e.g. an unguarded counter increment).
func inferBound(prog *ast.Program) (int, error) {
	max := 0
	for _, name := range prog.Order {
		walkLiterals(prog.Requests[name], &max)
	}
	if max == 0 {
		max = 1
	}
	if max > boundCeiling {
		return 0, &ErrUnboundedValueDomain{
			Reason: fmt.Sprintf("largest literal %d exceeds the inference ceiling %d", max, boundCeiling),
		}
	}
	return max, nil
}

func walkLiterals(e ast.Expr, max *int) {
	switch n := e.(type) {
	case *ast.Const:
		if n.Value > *max {
			*max = n.Value
		}
		if -n.Value > *max {
			*max = -n.Value
		}
	case *ast.Binary:
		walkLiterals(n.Left, max)
		walkLiterals(n.Right, max)
	case *ast.Assign:
		walkLiterals(n.Value, max)
	case *ast.Seq:
		walkLiterals(n.First, max)
		walkLiterals(n.Then, max)
	case *ast.If:
		walkLiterals(n.Cond, max)
		walkLiterals(n.Then, max)
		walkLiterals(n.Else, max)
	case *ast.While:
		walkLiterals(n.Cond, max)
		walkLiterals(n.Body, max)
	case *ast.Ident, *ast.Yield, *ast.Choice, nil:
		// no literal to record
	}
}

func normalize(v, bound int) int {
	m := bound + 1
	v %= m
	if v < 0 {
		v += m
	}
	return v
}
