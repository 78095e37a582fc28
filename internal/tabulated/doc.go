// Package tabulated implements the reduced-order backend: a chemical state
// carried as a handful of progress variables on a linear manifold fitted
// against a detailed mechanism.
//
// A model lives in a directory:
//
//	metadata.yaml     name, mechanism, wpath, ipath, version, closure_temperature
//	weights.csv       encode weights W (species × progress variables)
//	weights_inv.csv   decode weights W⁺, optional
//	<mechanism>.yaml  the detailed mechanism the manifold was fitted against
//
// Encoding is C = Wᵀ Y and decoding is Y = W⁺ C. When no decode weights are
// shipped W⁺ is the pseudo-inverse W (WᵀW)⁻¹. Load rejects any model for
// which WᵀW⁺ is not the identity, so encode∘decode is a projection and the
// round trip is idempotent.
//
// Every property is evaluated by decoding the densityEV block into mass
// fractions and delegating to the detailed [kinetics.Backend] with the Euler
// block unchanged. Chemistry sources are the detailed species mass rates
// projected through the encode Jacobian, S_C = Wᵀ ω; the energy release is
// passed through unprojected.
package tabulated
