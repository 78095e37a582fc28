package eos

import (
	"fmt"

	"github.com/san-kum/eostab/internal/fields"
)

// Evaluator is a property function bound to a backend and a layout in one
// of the two call shapes.
type Evaluator struct {
	Property         Property
	KnownTemperature bool

	fn  ThermodynamicFunction
	tfn ThermodynamicTemperatureFunction
}

// GetFunction binds property p of backend b to layout. With
// knownTemperature the returned evaluator must be called through
// [Evaluator.EvalAt]; otherwise through [Evaluator.Eval].
func GetFunction(b EOS, p Property, layout *fields.Layout, knownTemperature bool) (Evaluator, error) {
	if !p.Valid() {
		return Evaluator{}, fmt.Errorf("%w: %v", ErrUnsupportedProperty, p)
	}
	e := Evaluator{Property: p, KnownTemperature: knownTemperature}
	var err error
	if knownTemperature {
		e.tfn, err = b.ThermodynamicTemperatureFunction(p, layout)
	} else {
		e.fn, err = b.ThermodynamicFunction(p, layout)
	}
	if err != nil {
		return Evaluator{}, err
	}
	return e, nil
}

// Eval evaluates a temperature-unknown evaluator.
func (e Evaluator) Eval(conserved []float64) (float64, error) {
	if e.fn == nil {
		return 0, fmt.Errorf("eos: %v evaluator is bound with known temperature; use EvalAt", e.Property)
	}
	return e.fn(conserved)
}

// EvalAt evaluates a temperature-known evaluator.
func (e Evaluator) EvalAt(conserved []float64, temperature float64) (float64, error) {
	if e.tfn == nil {
		return 0, fmt.Errorf("eos: %v evaluator solves for temperature; use Eval", e.Property)
	}
	return e.tfn(conserved, temperature)
}

// CheckLength returns ErrDimensionMismatch unless len(v) == want.
func CheckLength(what string, v []float64, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: %s has %d entries, want %d", ErrDimensionMismatch, what, len(v), want)
	}
	return nil
}
