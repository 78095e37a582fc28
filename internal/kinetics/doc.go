// Package kinetics is the detailed reference backend: an ideal-gas mixture
// with NASA7 species thermodynamics and mass-action reaction rates.
//
// It serves two roles. As an [eos.EOS] it reads density-weighted mass
// fractions straight from the packed state. As an [eos.Kinetics] it
// evaluates properties and species production rates from an explicit
// mass-fraction vector, which is what a reduced backend delegates to after
// decoding its progress variables.
//
// Sensible quantities are measured from 298.15 K:
//
//	h_s(T) = Σ Y_i (h_i(T) - h_i(298.15))
//	e_s(T) = h_s(T) - R_mix T
//
// Temperature is recovered from e_s by a bounded Newton iteration; failure
// to converge is reported as [ConvergenceError].
package kinetics
