package fields

import (
	"errors"
	"testing"
)

func TestNewLayoutValid(t *testing.T) {
	l, err := NewLayout(
		Field{Name: Euler, Components: 3, Offset: 1},
		Field{Name: DensityExtraVariables, Components: 2, ComponentNames: []string{"cpv_0", "cpv_1"}, Offset: 4},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Extent() != 6 {
		t.Errorf("expected extent 6, got %d", l.Extent())
	}

	f, err := l.Resolve(DensityExtraVariables)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if f.Offset != 4 || f.Components != 2 || f.ComponentNames[1] != "cpv_1" {
		t.Errorf("unexpected field %+v", f)
	}
}

func TestNewLayoutInvalid(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		want   error
	}{
		{"overlap", []Field{{Name: "a", Components: 3, Offset: 0}, {Name: "b", Components: 2, Offset: 2}}, ErrOverlap},
		{"duplicate", []Field{{Name: "a", Components: 1, Offset: 0}, {Name: "a", Components: 1, Offset: 1}}, ErrOverlap},
		{"zero components", []Field{{Name: "a", Components: 0, Offset: 0}}, ErrDimensionMismatch},
		{"negative offset", []Field{{Name: "a", Components: 1, Offset: -1}}, ErrDimensionMismatch},
		{"name count", []Field{{Name: "a", Components: 2, ComponentNames: []string{"x"}, Offset: 0}}, ErrDimensionMismatch},
		{"empty name", []Field{{Components: 1}}, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.fields...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	l, _ := NewLayout(Field{Name: Euler, Components: 3})
	if _, err := l.Resolve("missing"); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("expected ErrUnknownBlock, got %v", err)
	}
	if l.Has("missing") {
		t.Error("Has should be false for missing block")
	}
}

func TestSliceChecksLengthPerCall(t *testing.T) {
	l, _ := NewLayout(Field{Name: Euler, Components: 3, Offset: 1})

	state := []float64{0, 1.2, 1.2e5, 12}
	euler, err := l.Slice(Euler, state)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if len(euler) != 3 || euler[0] != 1.2 || euler[2] != 12 {
		t.Errorf("unexpected euler block %v", euler)
	}

	if _, err := l.Slice(Euler, state[:3]); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for short state, got %v", err)
	}
}

func TestSliceToleratesGapsAndTrailingEntries(t *testing.T) {
	l, _ := NewLayout(
		Field{Name: Euler, Components: 3, Offset: 1},
		Field{Name: DensityExtraVariables, Components: 2, Offset: 5},
	)

	// index 0 and 4 belong to no block, index 7 trails the last one
	state := []float64{-1, 1.2, 1.2e5, 12, -1, 0.84, 0.36, -1}
	if l.Extent() != 7 {
		t.Errorf("extent = %d, want 7", l.Extent())
	}
	rhoC, err := l.Slice(DensityExtraVariables, state)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if len(rhoC) != 2 || rhoC[0] != 0.84 || rhoC[1] != 0.36 {
		t.Errorf("unexpected progress block %v", rhoC)
	}
}

func TestSliceCannotGrowIntoNeighbour(t *testing.T) {
	l, _ := NewLayout(Field{Name: "a", Components: 1}, Field{Name: "b", Components: 1, Offset: 1})
	state := []float64{1, 2}
	a, _ := l.Slice("a", state)
	if cap(a) != 1 {
		t.Errorf("expected capacity 1, got %d", cap(a))
	}
}

func TestResolveReturnsCopy(t *testing.T) {
	l, _ := NewLayout(Field{Name: "a", Components: 1, ComponentNames: []string{"x"}})
	f, _ := l.Resolve("a")
	f.ComponentNames[0] = "changed"
	g, _ := l.Resolve("a")
	if g.ComponentNames[0] != "x" {
		t.Error("layout was mutated through a resolved field")
	}
}

func TestComponentLabels(t *testing.T) {
	l, _ := NewLayout(
		Field{Name: Euler, Components: 3, ComponentNames: []string{"rho", "rhoE", "rhoU"}, Offset: 1},
		Field{Name: DensityExtraVariables, Components: 2, Offset: 4},
	)
	labels := l.ComponentLabels()
	want := []string{"pad_0", "rho", "rhoE", "rhoU", "densityEV_0", "densityEV_1"}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(labels))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %s, got %s", i, want[i], labels[i])
		}
	}
}
