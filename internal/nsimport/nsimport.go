// Package nsimport decodes the JSON Network System document format
// directly into an ns.System, for callers that already have a compiled
// NS (from another tool, or a hand-written fixture) and want to skip
// parsing .ser source and running the ns.Compile worklist.
package nsimport

import (
	"encoding/json"
	"fmt"

	"github.com/sercheck/ser/internal/ns"
)

// Document is the on-the-wire shape: global and local valuations given
// as plain string-keyed maps (no AST continuation — imported local
// states are terminal placeholders, since the document has no source
// expression to resume), delta edges and responses given as
// index-referencing records, and a name->local-state-index map for
// request spawn points.
type Document struct {
	Globals []map[string]int `json:"globals"`
	Locals  []map[string]int `json:"locals"`
	Delta   []DeltaEdge      `json:"delta"`
	Resp    []RespEdge       `json:"resp"`
	Req     map[string]int   `json:"req"`
	ReqOrder []string        `json:"req_order"`
}

type DeltaEdge struct {
	FromG, FromL, ToG, ToL int
}

func (e *DeltaEdge) UnmarshalJSON(b []byte) error {
	var raw [4]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("delta edge: expected [fromG, fromL, toG, toL]: %w", err)
	}
	e.FromG, e.FromL, e.ToG, e.ToL = raw[0], raw[1], raw[2], raw[3]
	return nil
}

func (e DeltaEdge) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{e.FromG, e.FromL, e.ToG, e.ToL})
}

type RespEdge struct {
	FromG  int
	Local  int
	Symbol string
	ToG    int
}

func (r *RespEdge) UnmarshalJSON(b []byte) error {
	var raw struct {
		FromG  int    `json:"from_g"`
		Local  int    `json:"local"`
		Symbol string `json:"symbol"`
		ToG    int    `json:"to_g"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("resp edge: %w", err)
	}
	r.FromG, r.Local, r.Symbol, r.ToG = raw.FromG, raw.Local, raw.Symbol, raw.ToG
	return nil
}

func (r RespEdge) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FromG  int    `json:"from_g"`
		Local  int    `json:"local"`
		Symbol string `json:"symbol"`
		ToG    int    `json:"to_g"`
	}{r.FromG, r.Local, r.Symbol, r.ToG})
}

// Decode parses a JSON NS document and builds the equivalent ns.System.
func Decode(data []byte) (*ns.System, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode NS document: %w", err)
	}
	return doc.ToSystem()
}

// ToSystem builds an ns.System from the decoded document, validating
// every index reference stays in range.
func (doc Document) ToSystem() (*ns.System, error) {
	sys := &ns.System{Req: map[string]ns.LocalID{}}

	for _, g := range doc.Globals {
		sys.Globals = append(sys.Globals, ns.Valuation(g))
	}
	for _, l := range doc.Locals {
		sys.Locals = append(sys.Locals, ns.LocalState{Vars: ns.Valuation(l)})
	}
	if err := checkRange("global", len(sys.Globals)); err != nil {
		return nil, err
	}

	for _, e := range doc.Delta {
		if err := boundsCheck(e.FromG, e.ToG, len(sys.Globals), e.FromL, e.ToL, len(sys.Locals)); err != nil {
			return nil, fmt.Errorf("delta edge out of range: %w", err)
		}
		sys.Delta = append(sys.Delta, ns.Edge{
			FromG: ns.GlobalID(e.FromG), FromL: ns.LocalID(e.FromL),
			ToG: ns.GlobalID(e.ToG), ToL: ns.LocalID(e.ToL),
		})
	}
	for _, r := range doc.Resp {
		if r.FromG < 0 || r.FromG >= len(sys.Globals) || r.ToG < 0 || r.ToG >= len(sys.Globals) {
			return nil, fmt.Errorf("resp edge references out-of-range global state")
		}
		if r.Local < 0 || r.Local >= len(sys.Locals) {
			return nil, fmt.Errorf("resp edge references out-of-range local state")
		}
		sys.Resp = append(sys.Resp, ns.RespEdge{
			FromG: ns.GlobalID(r.FromG), Local: ns.LocalID(r.Local),
			Symbol: r.Symbol, ToG: ns.GlobalID(r.ToG),
		})
	}
	for name, idx := range doc.Req {
		if idx < 0 || idx >= len(sys.Locals) {
			return nil, fmt.Errorf("request %q references out-of-range local state %d", name, idx)
		}
		sys.Req[name] = ns.LocalID(idx)
	}
	sys.ReqOrder = doc.ReqOrder
	if len(sys.ReqOrder) == 0 {
		for name := range doc.Req {
			sys.ReqOrder = append(sys.ReqOrder, name)
		}
	}
	return sys, nil
}

func checkRange(what string, n int) error {
	if n == 0 {
		return fmt.Errorf("%s state list must be non-empty", what)
	}
	return nil
}

func boundsCheck(fromG, toG, nG, fromL, toL, nL int) error {
	for _, g := range []int{fromG, toG} {
		if g < 0 || g >= nG {
			return fmt.Errorf("global index %d out of range [0,%d)", g, nG)
		}
	}
	for _, l := range []int{fromL, toL} {
		if l < 0 || l >= nL {
			return fmt.Errorf("local index %d out of range [0,%d)", l, nL)
		}
	}
	return nil
}

// Encode renders sys back to the JSON document format, the inverse of
// Decode (local-state continuations are not part of the document and are
// dropped).
func Encode(sys *ns.System) ([]byte, error) {
	doc := Document{Req: map[string]int{}, ReqOrder: sys.ReqOrder}
	for _, g := range sys.Globals {
		doc.Globals = append(doc.Globals, map[string]int(g))
	}
	for _, l := range sys.Locals {
		doc.Locals = append(doc.Locals, map[string]int(l.Vars))
	}
	for _, e := range sys.Delta {
		doc.Delta = append(doc.Delta, DeltaEdge{int(e.FromG), int(e.FromL), int(e.ToG), int(e.ToL)})
	}
	for _, r := range sys.Resp {
		doc.Resp = append(doc.Resp, RespEdge{int(r.FromG), int(r.Local), r.Symbol, int(r.ToG)})
	}
	for name, lid := range sys.Req {
		doc.Req[name] = int(lid)
	}
	return json.MarshalIndent(doc, "", "  ")
}
