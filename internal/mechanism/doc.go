// Package mechanism parses detailed chemical mechanisms.
//
// The file format is the YAML layout used by Cantera: a `units` block, a
// `phases` list naming elements and species, `species` entries with element
// composition and NASA7 thermodynamic polynomials, and `reactions` entries
// with an equation string and Arrhenius parameters. Only SI units (m, mol,
// J/mol) are accepted and only elementary and three-body reactions are
// understood; anything else fails the load.
//
//	mech, err := mechanism.Load("models/h2air/h2o2.yaml")
//	i, ok := mech.Index("H2O")
package mechanism
