package crown

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/five82/crown/internal/clarity"
)

const holder = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"

func TestDecodeState_FlatAndNestedAgree(t *testing.T) {
	want := State{Holder: holder, Price: 5000000, Message: "Hello"}

	flat := map[string]any{"king": holder, "price": 5000000, "message": "Hello"}
	nested := map[string]any{
		"king":    map[string]any{"value": holder},
		"price":   map[string]any{"value": 5000000},
		"message": map[string]any{"value": "Hello"},
	}

	for name, raw := range map[string]any{"flat": flat, "nested": nested} {
		got, err := DecodeState(raw)
		if err != nil {
			t.Fatalf("%s: DecodeState returned error: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: DecodeState = %+v, want %+v", name, got, want)
		}
	}
}

func TestDecodeState_AcceptsWireValues(t *testing.T) {
	v, err := clarity.DecodeHex("0x0c00000003046b696e670516a46ff88886c2ef9762d970b4d2c63678835bd39d076d6573736167650e0000000548656c6c6f05707269636501000000000000000000000000004c4b40")
	if err != nil {
		t.Fatalf("DecodeHex returned error: %v", err)
	}

	for name, raw := range map[string]any{
		"tuple":    clarity.Native(v),
		"ok tuple": clarity.Native(clarity.Ok(v)),
	} {
		got, err := DecodeState(raw)
		if err != nil {
			t.Fatalf("%s: DecodeState returned error: %v", name, err)
		}
		if got.Holder != holder || got.Price != 5000000 || got.Message != "Hello" {
			t.Fatalf("%s: DecodeState = %+v", name, got)
		}
	}
}

func TestDecodeState_JSONShapes(t *testing.T) {
	const body = `{"type":"ok","value":{"king":{"type":"principal","value":"SP1"},"price":{"type":"uint","value":"u7000000"},"message":{"type":"string-utf8","value":"x"}}}`
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	got, err := DecodeState(raw)
	if err != nil {
		t.Fatalf("DecodeState returned error: %v", err)
	}
	if got != (State{Holder: "SP1", Price: 7000000, Message: "x"}) {
		t.Fatalf("DecodeState = %+v", got)
	}
}

func TestDecodeState_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{name: "not an object", raw: "SP1"},
		{name: "nil", raw: nil},
		{name: "missing king", raw: map[string]any{"price": 1, "message": "m"}},
		{name: "missing price", raw: map[string]any{"king": "SP1", "message": "m"}},
		{name: "missing message", raw: map[string]any{"king": "SP1", "price": 1}},
		{name: "empty king", raw: map[string]any{"king": " ", "price": 1, "message": "m"}},
		{name: "king wrong kind", raw: map[string]any{"king": 7, "price": 1, "message": "m"}},
		{name: "price negative", raw: map[string]any{"king": "SP1", "price": -1, "message": "m"}},
		{name: "price fractional", raw: map[string]any{"king": "SP1", "price": 1.5, "message": "m"}},
		{name: "price too large", raw: map[string]any{"king": "SP1", "price": new(big.Int).Lsh(big.NewInt(1), 70), "message": "m"}},
		{name: "price text", raw: map[string]any{"king": "SP1", "price": "lots", "message": "m"}},
		{name: "message wrong kind", raw: map[string]any{"king": "SP1", "price": 1, "message": true}},
		{name: "nested without value", raw: map[string]any{"king": map[string]any{"type": "principal"}, "price": 1, "message": "m"}},
		{name: "err response", raw: map[string]any{"type": "err", "value": big.NewInt(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState(tt.raw)
			if !errors.Is(err, ErrMalformedState) {
				t.Fatalf("DecodeState error = %v, want ErrMalformedState", err)
			}
		})
	}
}
