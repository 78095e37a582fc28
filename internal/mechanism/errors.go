package mechanism

import "errors"

// ErrInvalidMechanism indicates a mechanism file that cannot be used.
var ErrInvalidMechanism = errors.New("mechanism: invalid mechanism")
