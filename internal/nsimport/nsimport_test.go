package nsimport

import "testing"

func TestDecodeRoundTripsThroughEncode(t *testing.T) {
	doc := Document{
		Globals: []map[string]int{{}},
		Locals:  []map[string]int{{}},
		Delta:   []DeltaEdge{{0, 0, 0, 0}},
		Resp:    []RespEdge{{FromG: 0, Local: 0, Symbol: "1", ToG: 0}},
		Req:     map[string]int{"main": 0},
		ReqOrder: []string{"main"},
	}
	sys, err := doc.ToSystem()
	if err != nil {
		t.Fatalf("ToSystem: %v", err)
	}
	encoded, err := Encode(sys)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	sys2, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sys2.Globals) != 1 || len(sys2.Locals) != 1 || len(sys2.Delta) != 1 || len(sys2.Resp) != 1 {
		t.Fatalf("round trip lost data: %+v", sys2)
	}
	if sys2.Req["main"] != 0 {
		t.Fatalf("expected request main to map to local 0")
	}
}

func TestDecodeRejectsOutOfRangeDeltaEdge(t *testing.T) {
	doc := Document{
		Globals: []map[string]int{{}},
		Locals:  []map[string]int{{}},
		Delta:   []DeltaEdge{{0, 0, 5, 0}},
	}
	if _, err := doc.ToSystem(); err == nil {
		t.Fatalf("expected an out-of-range error")
	}
}
