package tabulated

import (
	"fmt"

	"github.com/san-kum/eostab/internal/eos"
)

// DecodeError reports progress variables whose decoded composition fails
// the admissibility check. The clamped composition is still written to the
// caller's output slice.
type DecodeError struct {
	Progress []float64
	Raw      []float64
	Sum      float64
	// Index is the first component outside [0,1], or -1 when only the sum
	// is off.
	Index int
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("tabulated: decoded mass fractions sum to %.9g", e.Sum)
	}
	return fmt.Sprintf("tabulated: decoded mass fraction %d is %.9g (sum %.9g)", e.Index, e.Raw[e.Index], e.Sum)
}

func (e *DecodeError) Unwrap() error {
	return eos.ErrDecodeOutOfDomain
}

func invalidModel(format string, args ...any) error {
	return fmt.Errorf("%w: %s", eos.ErrInvalidModel, fmt.Sprintf(format, args...))
}
