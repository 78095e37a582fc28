// Package fields describes how named physical fields are packed into one
// flat conserved state vector.
//
// A [Layout] is a set of non-overlapping [Field] blocks, each with an offset
// and a component count. Layouts are caller-owned and carry no tie to any
// equation of state; they only tell an evaluator where to read:
//
//	layout, err := fields.NewLayout(
//	    fields.Field{Name: fields.Euler, Components: 3, Offset: 1},
//	    fields.Field{Name: fields.DensityExtraVariables, Components: 2, Offset: 4},
//	)
//	rhoC, err := layout.Slice(fields.DensityExtraVariables, conserved)
//
// Vector lengths are a per-call input, so bounds are checked lazily by
// [Layout.Slice] rather than at construction.
package fields
