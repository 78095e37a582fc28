package eos

import (
	"errors"

	"github.com/san-kum/eostab/internal/fields"
)

// Error taxonomy shared by every backend.
var (
	// ErrInvalidModel indicates a model or mechanism that could not be loaded.
	// No usable backend is produced alongside it.
	ErrInvalidModel = errors.New("eos: invalid model")

	// ErrDimensionMismatch indicates a caller-supplied vector of the wrong length.
	ErrDimensionMismatch = fields.ErrDimensionMismatch

	// ErrUnknownBlock indicates a field block missing from the layout.
	ErrUnknownBlock = fields.ErrUnknownBlock

	// ErrUnsupportedProperty indicates a property the backend cannot evaluate.
	ErrUnsupportedProperty = errors.New("eos: unsupported property")

	// ErrDecodeOutOfDomain indicates progress variables outside the trained
	// support of a reduced manifold.
	ErrDecodeOutOfDomain = errors.New("eos: progress variables outside manifold domain")

	// ErrConvergenceFailure indicates the implicit temperature solve gave up.
	ErrConvergenceFailure = errors.New("eos: temperature solve did not converge")

	// ErrInvalidState indicates a non-physical input such as a non-positive
	// density or temperature.
	ErrInvalidState = errors.New("eos: non-physical state")
)
