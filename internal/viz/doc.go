// Package viz provides terminal views of reactor runs.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live integration of one reactor with its trajectory drawn in
//     progress-variable space
//   - [App]: preset picker that launches a live view
//   - [Canvas]: Braille-based pixel canvas
//
// # Key Bindings
//
//	Space - Pause/Resume integration
//	R     - Reset to initial state
//	+/-   - More or fewer steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
package viz
