// Package reactor integrates a closed, constant-volume, adiabatic reactor
// whose chemistry is carried by a reduced-order model.
//
// The state is a packed vector laid out like a single flow-solver cell:
//
//	[ρ, ρE, ρu | ρC_1 .. ρC_p]
//
// Density and momentum are constant. The energy field gains the chemical
// heat release Q and each ρC_k gains its projected source S_C,k. The
// temperature driving the rates is solved from ρE at every evaluation
// unless a fixed closure temperature is requested.
//
// Linear manifolds are not closed under the reaction flow, so a long run
// eventually decodes slightly outside the admissible window. By default
// such states are clamped and counted; a strict reactor stops instead.
package reactor
