package fields

import (
	"fmt"
	"sort"
)

// Well-known field names shared by the flow solver and the equations of state.
const (
	// Euler holds the bulk flow quantities [ρ, ρE, ρu_1..ρu_d].
	Euler = "euler"
	// DensityExtraVariables holds density-weighted progress variables ρC.
	DensityExtraVariables = "densityEV"
	// DensityMassFractions holds density-weighted species mass fractions ρY.
	DensityMassFractions = "densityYi"
)

// Offsets of the bulk quantities inside the Euler block.
const (
	Rho  = 0
	RhoE = 1
	RhoU = 2
)

// Field is one named block of the packed state vector.
type Field struct {
	Name           string
	Components     int
	ComponentNames []string
	Offset         int
}

// End returns the first index past the block.
func (f Field) End() int { return f.Offset + f.Components }

// Layout is a validated set of field blocks. It is immutable after
// construction and safe for concurrent use.
type Layout struct {
	fields []Field
	byName map[string]int
}

// NewLayout validates the given blocks and builds a Layout. Blocks must have
// unique names, non-negative offsets, at least one component, component
// names matching the component count when present, and must not overlap.
func NewLayout(fs ...Field) (*Layout, error) {
	l := &Layout{
		fields: make([]Field, 0, len(fs)),
		byName: make(map[string]int, len(fs)),
	}

	for _, f := range fs {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field with empty name", ErrDimensionMismatch)
		}
		if _, dup := l.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrOverlap, f.Name)
		}
		if f.Offset < 0 || f.Components <= 0 {
			return nil, fmt.Errorf("%w: field %q has offset %d and %d components", ErrDimensionMismatch, f.Name, f.Offset, f.Components)
		}
		if len(f.ComponentNames) > 0 && len(f.ComponentNames) != f.Components {
			return nil, fmt.Errorf("%w: field %q names %d components but declares %d", ErrDimensionMismatch, f.Name, len(f.ComponentNames), f.Components)
		}
		names := append([]string(nil), f.ComponentNames...)
		f.ComponentNames = names
		l.byName[f.Name] = len(l.fields)
		l.fields = append(l.fields, f)
	}

	sorted := append([]Field(nil), l.fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Offset < sorted[i-1].End() {
			return nil, fmt.Errorf("%w: %q [%d,%d) and %q [%d,%d)", ErrOverlap,
				sorted[i-1].Name, sorted[i-1].Offset, sorted[i-1].End(),
				sorted[i].Name, sorted[i].Offset, sorted[i].End())
		}
	}

	return l, nil
}

// Resolve returns the block registered under name.
func (l *Layout) Resolve(name string) (Field, error) {
	i, ok := l.byName[name]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownBlock, name)
	}
	f := l.fields[i]
	f.ComponentNames = append([]string(nil), f.ComponentNames...)
	return f, nil
}

// Has reports whether the layout contains a block named name.
func (l *Layout) Has(name string) bool {
	_, ok := l.byName[name]
	return ok
}

// Fields returns the blocks in declaration order.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	for i, f := range l.fields {
		f.ComponentNames = append([]string(nil), f.ComponentNames...)
		out[i] = f
	}
	return out
}

// Extent returns the smallest vector length that holds every block.
func (l *Layout) Extent() int {
	n := 0
	for _, f := range l.fields {
		if f.End() > n {
			n = f.End()
		}
	}
	return n
}

// Slice returns the sub-slice of state covered by the named block. The
// returned slice aliases state; callers must treat it as read-only. Only
// the block's own end is checked: state may hold gaps between blocks and
// entries past Extent.
func (l *Layout) Slice(name string, state []float64) ([]float64, error) {
	f, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	if f.End() > len(state) {
		return nil, fmt.Errorf("%w: field %q needs entries [%d,%d) but state has %d", ErrDimensionMismatch, name, f.Offset, f.End(), len(state))
	}
	return state[f.Offset:f.End():f.End()], nil
}

// ComponentLabels returns the component names of every block in vector
// order, generating "<field>_<i>" for unnamed components. Gaps between
// blocks are labelled "pad_<index>".
func (l *Layout) ComponentLabels() []string {
	labels := make([]string, l.Extent())
	for i := range labels {
		labels[i] = fmt.Sprintf("pad_%d", i)
	}
	for _, f := range l.fields {
		for c := 0; c < f.Components; c++ {
			if len(f.ComponentNames) > 0 {
				labels[f.Offset+c] = f.ComponentNames[c]
			} else {
				labels[f.Offset+c] = fmt.Sprintf("%s_%d", f.Name, c)
			}
		}
	}
	return labels
}
