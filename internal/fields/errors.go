package fields

import "errors"

var (
	// ErrUnknownBlock indicates a field name that is not part of the layout.
	ErrUnknownBlock = errors.New("fields: unknown field block")

	// ErrDimensionMismatch indicates a state vector too short for the layout
	// or a field with inconsistent component metadata.
	ErrDimensionMismatch = errors.New("fields: dimension mismatch")

	// ErrOverlap indicates two blocks that claim the same vector entries.
	ErrOverlap = errors.New("fields: overlapping field blocks")
)
