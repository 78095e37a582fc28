// Package sim integrates ordinary differential equations over packed state
// vectors.
//
// The package defines the pieces a run is assembled from:
//
//   - [State]: the packed vector being integrated
//   - [System]: dX/dt = f(X, t), which may fail
//   - [Integrator]: a fixed-step scheme, optionally [AdaptiveIntegrator]
//   - [Metric] and [Observer]: per-step hooks
//   - [Simulator]: drives a run with context cancellation
//
// A failing derivative stops the run. The partial [Result] is returned
// together with a [SimulationError] naming the step.
//
// # Thread Safety
//
// Simulator instances are not thread-safe. [Ensemble] runs several
// initial states in parallel, building one simulator per run.
package sim
