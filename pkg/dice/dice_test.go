package dice

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr     string
		wantMin  int
		wantMax  int
		wantTerm int
	}{
		{"1d8", 1, 8, 1},
		{"2d6+1", 3, 13, 2},
		{"d4-1", 0, 3, 2},
		{"3", 3, 3, 1},
		{"1D12 + 2d4 - 2", 1, 18, 3},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(e.Terms) != tt.wantTerm {
				t.Errorf("expected %d terms, got %d", tt.wantTerm, len(e.Terms))
			}
			if e.Min() != tt.wantMin {
				t.Errorf("expected min %d, got %d", tt.wantMin, e.Min())
			}
			if e.Max() != tt.wantMax {
				t.Errorf("expected max %d, got %d", tt.wantMax, e.Max())
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Parse("  ")
		if !errors.Is(err, ErrEmptyExpression) {
			t.Errorf("expected ErrEmptyExpression, got %v", err)
		}
	})
	t.Run("zero sides", func(t *testing.T) {
		_, err := Parse("1d0")
		if !errors.Is(err, ErrInvalidDie) {
			t.Errorf("expected ErrInvalidDie, got %v", err)
		}
	})
	for _, expr := range []string{"d", "2d", "+3", "1d6+", "abc"} {
		t.Run(expr, func(t *testing.T) {
			if _, err := Parse(expr); err == nil {
				t.Errorf("expected error for %q", expr)
			}
		})
	}
}

func TestRoll_StaysWithinBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	e := MustParse("2d6+1")
	for i := 0; i < 500; i++ {
		got := e.Roll(r)
		if got < e.Min() || got > e.Max() {
			t.Fatalf("roll %d outside [%d,%d]", got, e.Min(), e.Max())
		}
	}
}

func TestRoll_SameSeedSameResults(t *testing.T) {
	e := MustParse("3d8-2")
	a := rand.New(rand.NewPCG(42, 42))
	b := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 50; i++ {
		if e.Roll(a) != e.Roll(b) {
			t.Fatal("expected identical sequences for identical seeds")
		}
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted(20, 3)
	if got := Die(s, 20); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := Die(s, 6); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	// faces cycle and clamp to the die size
	if got := Die(s, 4); got != 4 {
		t.Errorf("expected clamped 4, got %d", got)
	}
	if s.Drawn() != 3 {
		t.Errorf("expected 3 draws, got %d", s.Drawn())
	}

	total, err := Roll(NewScripted(2, 5), "2d6+1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 8 {
		t.Errorf("expected 8, got %d", total)
	}
}
