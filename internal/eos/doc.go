// Package eos defines the equation-of-state abstraction consumed by a flow
// solver.
//
// A backend turns a packed conserved state vector into thermodynamic
// properties without exposing where the numbers come from:
//
//   - [EOS]: any backend able to bind a [Property] to a [fields.Layout]
//   - [Kinetics]: a detailed backend evaluating from explicit mass fractions
//     and reporting species reaction rates
//   - [Reduced]: a progress-variable backend with encode/decode and a closed
//     chemistry source
//
// Bound functions come in two shapes. A [ThermodynamicFunction] solves for
// temperature itself when the property needs it; a
// [ThermodynamicTemperatureFunction] takes a caller-supplied temperature and
// skips the solve. [GetFunction] picks between them at bind time.
//
// # Thread Safety
//
// Backends are immutable after construction. Bound functions capture only
// immutable backend state and the layout, so they may be called from many
// goroutines at once as long as each caller owns its state vector.
package eos
