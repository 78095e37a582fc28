package kinetics

import (
	"fmt"

	"github.com/san-kum/eostab/internal/eos"
)

// ErrInvalidState is eos.ErrInvalidState.
var ErrInvalidState = eos.ErrInvalidState

// ConvergenceError reports a temperature solve that gave up.
type ConvergenceError struct {
	Iterations int
	Last       float64
	Energy     float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("kinetics: temperature solve for e=%g stopped after %d iterations at T=%g", e.Energy, e.Iterations, e.Last)
}

func (e *ConvergenceError) Unwrap() error {
	return eos.ErrConvergenceFailure
}
