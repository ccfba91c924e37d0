package event

import (
	"encoding/json"
	"testing"
)

func TestNew_CopiesTargetsAndPayload(t *testing.T) {
	targets := []string{"market_square"}
	payload := Payload{"amount": 3}

	e := New(KindMove, 4, "npc_sample", targets, payload)

	targets[0] = "elsewhere"
	payload["amount"] = 99

	if e.Target(0) != "market_square" {
		t.Errorf("expected target 'market_square', got '%s'", e.Target(0))
	}
	if n, _ := e.Payload.Int("amount"); n != 3 {
		t.Errorf("expected amount 3, got %d", n)
	}
	if e.Tick != 4 || e.ActorID != "npc_sample" || e.Kind != KindMove {
		t.Errorf("unexpected event fields: %+v", e)
	}
}

func TestNew_AssignsDistinctIDs(t *testing.T) {
	a := New(KindDescribeLocation, 0, "a", nil, nil)
	b := New(KindDescribeLocation, 0, "a", nil, nil)
	if a.ID == b.ID {
		t.Error("expected distinct event IDs")
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Valid() {
			t.Errorf("declared kind %q reported invalid", k)
		}
	}
	if Kind("dance").Valid() {
		t.Error("expected undeclared kind to be invalid")
	}
}

func TestKind_UnmarshalJSON(t *testing.T) {
	var k Kind
	if err := json.Unmarshal([]byte(`"attack_hit"`), &k); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != KindAttackHit {
		t.Errorf("expected attack_hit, got %s", k)
	}
	if err := json.Unmarshal([]byte(`"fly"`), &k); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPayload_Accessors(t *testing.T) {
	var p Payload
	if err := json.Unmarshal([]byte(`{"amount":2,"half":2.5,"type":"fire","ok":true,"items":["a","b"]}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"integral float", must(p.Int("amount")), 2},
		{"string", p.String("type"), "fire"},
		{"missing string", p.String("nope"), ""},
		{"bool", mustBool(p.Bool("ok")), true},
		{"strings", len(p.Strings("items")), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, tt.got)
			}
		})
	}

	if _, ok := p.Int("half"); ok {
		t.Error("expected non-integral number to be rejected")
	}
}

func TestPayload_IntOutOfRange(t *testing.T) {
	p := Payload{
		"huge":   float64(9.3e18),
		"edge":   float64(1 << 63),
		"number": json.Number("99999999999999999999"),
		"small":  json.Number("12"),
	}
	for _, key := range []string{"huge", "edge", "number"} {
		if n, ok := p.Int(key); ok {
			t.Errorf("expected %s to be rejected, got %d", key, n)
		}
	}
	if n, ok := p.Int("small"); !ok || n != 12 {
		t.Errorf("expected 12, got %d (%v)", n, ok)
	}
}

func must(n int, _ bool) int       { return n }
func mustBool(b bool, _ bool) bool { return b }
