package location

import (
	"slices"
	"testing"
)

func TestStatic_Neighbors(t *testing.T) {
	s := Static{
		ID: "market_square",
		HexConnections: map[string]string{
			"north":     "temple",
			"southeast": "docks",
			"west":      "alley",
		},
	}
	want := []string{"alley", "docks", "temple"}
	if got := s.Neighbors(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !s.IsNeighbor("docks") || s.IsNeighbor("castle") {
		t.Error("unexpected neighbor result")
	}
	if dir, ok := s.Direction("temple"); !ok || dir != "north" {
		t.Errorf("expected north, got %q", dir)
	}
}

func TestState_Sets(t *testing.T) {
	var s State
	s.ApplyDefaults()

	s.AddOccupant("guard_1")
	s.AddOccupant("guard_1")
	if len(s.Occupants) != 1 {
		t.Errorf("expected set semantics, got %v", s.Occupants)
	}
	if !s.RemoveOccupant("guard_1") || s.RemoveOccupant("guard_1") {
		t.Error("expected exactly one removal")
	}

	s.AddItem("bread_1")
	if !s.HasItem("bread_1") {
		t.Error("expected bread_1")
	}
	s.RemoveItem("bread_1")
	if s.HasItem("bread_1") {
		t.Error("expected bread_1 removed")
	}
}

func TestState_ConnectionStatus(t *testing.T) {
	s := State{ID: "market_square"}
	if s.ConnectionStatus("temple") != StatusOpen {
		t.Error("missing connections must read as open")
	}
	s.SetConnectionStatus("temple", StatusClosed)
	if s.ConnectionStatus("temple") != StatusClosed {
		t.Error("expected closed")
	}
}
