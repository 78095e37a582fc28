package consistency

import "errors"

var (
	// ErrNotSequence indicates a targets file whose top level is not a list.
	ErrNotSequence = errors.New("consistency: test targets must be a sequence")
	// ErrNoModels indicates a discovery root without any model directory.
	ErrNoModels = errors.New("consistency: no model directories with test targets")
)
