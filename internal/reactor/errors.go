package reactor

import "errors"

var (
	// ErrUnknownSpecies indicates a composition naming a species outside the
	// model's reference basis.
	ErrUnknownSpecies = errors.New("reactor: species not in reference basis")

	// ErrEmptyComposition indicates a composition with no positive entry.
	ErrEmptyComposition = errors.New("reactor: composition has no positive mass fraction")
)
