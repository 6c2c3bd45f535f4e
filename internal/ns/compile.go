package ns

import (
	"fmt"
	"strconv"

	"github.com/sercheck/ser/internal/ast"
	"github.com/sercheck/ser/internal/parse"
)

// maxWhileIterations bounds the recursive while-loop unrolling a single
// macro-step performs. A loop that neither exits nor yields within this
// many iterations is treated as divergent and contributes no outcome —
// per spec, a nondeterministically diverging run "is modelled as a
// missing transition."
const maxWhileIterations = 10000

// valueOutcome is one deterministic result of reducing a pure expression
// (no Yield reachable inside: Const, Ident, Binary, Assign, Choice) to a
// value. Choice is the only construct that can produce more than one.
type valueOutcome struct {
	Value int
	G, L  Valuation
}

// stmtOutcome is one deterministic result of running a statement-level
// expression until it either completes (Done) or suspends at a Yield.
type stmtOutcome struct {
	Done  bool
	Value int
	G, L  Valuation
	Cont  ast.Expr // remaining continuation, valid when !Done
}

type compiler struct {
	bound int
}

func (c *compiler) evalExpr(g, l Valuation, e ast.Expr) []valueOutcome {
	switch n := e.(type) {
	case *ast.Const:
		return []valueOutcome{{Value: normalize(n.Value, c.bound), G: g, L: l}}
	case *ast.Ident:
		v := 0
		if n.Kind == ast.Global {
			v = g[n.Name]
		} else {
			v = l[n.Name]
		}
		return []valueOutcome{{Value: v, G: g, L: l}}
	case *ast.Choice:
		return []valueOutcome{{Value: 0, G: g, L: l}, {Value: 1, G: g, L: l}}
	case *ast.Assign:
		var out []valueOutcome
		for _, vo := range c.evalExpr(g, l, n.Value) {
			g2, l2 := vo.G, vo.L
			if n.Kind == ast.Global {
				g2 = g2.clone()
				g2[n.Name] = vo.Value
			} else {
				l2 = l2.clone()
				l2[n.Name] = vo.Value
			}
			out = append(out, valueOutcome{Value: vo.Value, G: g2, L: l2})
		}
		return out
	case *ast.Binary:
		var out []valueOutcome
		for _, lo := range c.evalExpr(g, l, n.Left) {
			for _, ro := range c.evalExpr(lo.G, lo.L, n.Right) {
				out = append(out, valueOutcome{Value: applyOp(n.Op, lo.Value, ro.Value, c.bound), G: ro.G, L: ro.L})
			}
		}
		return out
	default:
		return nil
	}
}

func applyOp(op ast.BinOp, a, b, bound int) int {
	switch op {
	case ast.Add:
		return normalize(a+b, bound)
	case ast.Sub:
		return normalize(a-b, bound)
	case ast.Eq:
		if a == b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (c *compiler) evalStmt(g, l Valuation, e ast.Expr) []stmtOutcome {
	switch n := e.(type) {
	case *ast.Yield:
		return []stmtOutcome{{Done: false, G: g, L: l, Cont: nil}}
	case *ast.Seq:
		var out []stmtOutcome
		for _, fo := range c.evalStmt(g, l, n.First) {
			if fo.Done {
				out = append(out, c.evalStmt(fo.G, fo.L, n.Then)...)
				continue
			}
			cont := n.Then
			if fo.Cont != nil {
				cont = &ast.Seq{Pos: n.Pos, First: fo.Cont, Then: n.Then}
			}
			out = append(out, stmtOutcome{Done: false, G: fo.G, L: fo.L, Cont: cont})
		}
		return out
	case *ast.If:
		var out []stmtOutcome
		for _, co := range c.evalExpr(g, l, n.Cond) {
			branch := n.Else
			if co.Value != 0 {
				branch = n.Then
			}
			out = append(out, c.evalStmt(co.G, co.L, branch)...)
		}
		return out
	case *ast.While:
		return c.evalWhile(g, l, n, 0)
	default:
		var out []stmtOutcome
		for _, vo := range c.evalExpr(g, l, e) {
			out = append(out, stmtOutcome{Done: true, Value: vo.Value, G: vo.G, L: vo.L})
		}
		return out
	}
}

func (c *compiler) evalWhile(g, l Valuation, n *ast.While, depth int) []stmtOutcome {
	if depth > maxWhileIterations {
		return nil
	}
	var out []stmtOutcome
	for _, co := range c.evalExpr(g, l, n.Cond) {
		if co.Value == 0 {
			out = append(out, stmtOutcome{Done: true, Value: 0, G: co.G, L: co.L})
			continue
		}
		for _, bo := range c.evalStmt(co.G, co.L, n.Body) {
			if bo.Done {
				out = append(out, c.evalWhile(bo.G, bo.L, n, depth+1)...)
				continue
			}
			cont := ast.Expr(n)
			if bo.Cont != nil {
				cont = &ast.Seq{Pos: n.Pos, First: bo.Cont, Then: n}
			}
			out = append(out, stmtOutcome{Done: false, G: bo.G, L: bo.L, Cont: cont})
		}
	}
	return out
}

// Compile builds the Network System reachable from the program's requests,
// via a worklist: each (g, ℓ) configuration is
// reduced to completion (response) or to one or more suspension points
// (Yield), newly discovered configurations are queued, and the process
// continues until the worklist is empty. Termination is guaranteed once
// inferBound has fixed a finite value domain, since the (Globals x Locals)
// product is then finite.
func Compile(prog *ast.Program) (*System, error) {
	bound, err := inferBound(prog)
	if err != nil {
		return nil, err
	}
	c := &compiler{bound: bound}

	sys := &System{Req: map[string]LocalID{}}
	globalIdx := map[string]GlobalID{}
	localIdx := map[string]LocalID{}

	type pending struct {
		g GlobalID
		l LocalID
	}
	var worklist []pending
	visited := map[[2]int]bool{}
	enqueue := func(g GlobalID, l LocalID) {
		key := [2]int{int(g), int(l)}
		if visited[key] {
			return
		}
		visited[key] = true
		worklist = append(worklist, pending{g, l})
	}

	// getGlobal dedups global valuations. A request's spawn point carries
	// no global-state precondition (req, like the Petri net's input-free
	// spawn transitions, is available from any reachable global state), so
	// whenever a genuinely new global state is discovered, every request
	// already registered in sys.Req is re-enqueued from it too — otherwise
	// a second invocation of a request after the global state has moved on
	// from g0 would be silently unreachable.
	getGlobal := func(v Valuation) GlobalID {
		k := v.key()
		if id, ok := globalIdx[k]; ok {
			return id
		}
		id := GlobalID(len(sys.Globals))
		sys.Globals = append(sys.Globals, v)
		globalIdx[k] = id
		for _, lid := range sys.Req {
			enqueue(id, lid)
		}
		return id
	}
	getLocal := func(v Valuation, cont ast.Expr) LocalID {
		k := v.key() + "|" + parse.Format(cont)
		if id, ok := localIdx[k]; ok {
			return id
		}
		id := LocalID(len(sys.Locals))
		sys.Locals = append(sys.Locals, LocalState{Vars: v, Cont: cont})
		localIdx[k] = id
		return id
	}

	g0 := Valuation{}
	g0ID := getGlobal(g0)

	for _, name := range prog.Order {
		sys.ReqOrder = append(sys.ReqOrder, name)
		body := prog.Requests[name]
		lid := getLocal(Valuation{}, body)
		sys.Req[name] = lid
		enqueue(g0ID, lid)
	}

	edgeSeen := map[string]bool{}
	addEdge := func(e Edge) {
		k := fmt.Sprintf("%d|%d|%d|%d", e.FromG, e.FromL, e.ToG, e.ToL)
		if edgeSeen[k] {
			return
		}
		edgeSeen[k] = true
		sys.Delta = append(sys.Delta, e)
	}
	respSeen := map[string]bool{}
	addResp := func(fromG GlobalID, l LocalID, symbol string, toG GlobalID) {
		k := fmt.Sprintf("%d|%d|%s|%d", fromG, l, symbol, toG)
		if respSeen[k] {
			return
		}
		respSeen[k] = true
		sys.Resp = append(sys.Resp, RespEdge{FromG: fromG, Local: l, Symbol: symbol, ToG: toG})
	}

	const maxStates = 200000
	for i := 0; i < len(worklist); i++ {
		if i > maxStates {
			return nil, fmt.Errorf("construction overflow: more than %d reachable states", maxStates)
		}
		cur := worklist[i]
		gv := sys.Globals[cur.g]
		ls := sys.Locals[cur.l]

		for _, o := range c.evalStmt(gv, ls.Vars, ls.Cont) {
			if o.Done {
				addResp(cur.g, cur.l, renderSymbol(o.Value), getGlobal(o.G))
				continue
			}
			resume := o.Cont
			if resume == nil {
				resume = &ast.Const{Value: 0}
			}
			newG := getGlobal(o.G)
			newL := getLocal(o.L, resume)
			addEdge(Edge{FromG: cur.g, FromL: cur.l, ToG: newG, ToL: newL})
			enqueue(newG, newL)
		}
	}

	return sys, nil
}

// renderSymbol renders a response value as its symbol: the computed
// integer value itself, not a further-abstracted token. A return
// expression that embeds a Choice simply contributes one response symbol
// per possible value, each individually exact.
func renderSymbol(v int) string {
	return strconv.Itoa(v)
}
