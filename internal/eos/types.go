package eos

import "github.com/san-kum/eostab/internal/fields"

// ThermodynamicFunction evaluates a property from a packed conserved state,
// solving for temperature first when the property needs it. It never
// mutates conserved.
type ThermodynamicFunction func(conserved []float64) (float64, error)

// ThermodynamicTemperatureFunction evaluates a property from a packed
// conserved state and a temperature consistent with its energy field.
type ThermodynamicTemperatureFunction func(conserved []float64, temperature float64) (float64, error)

// MassFractionFunction evaluates a property from the Euler block of a packed
// state and an explicit mass-fraction vector.
type MassFractionFunction func(conserved, massFractions []float64) (float64, error)

// MassFractionTemperatureFunction is the known-temperature form of
// [MassFractionFunction].
type MassFractionTemperatureFunction func(conserved, massFractions []float64, temperature float64) (float64, error)

// EOS is the capability every backend provides to the flow solver.
type EOS interface {
	// Species returns the species carried as transport unknowns.
	Species() []string
	ThermodynamicFunction(p Property, layout *fields.Layout) (ThermodynamicFunction, error)
	ThermodynamicTemperatureFunction(p Property, layout *fields.Layout) (ThermodynamicTemperatureFunction, error)
}

// Kinetics is a detailed backend: properties from explicit mass fractions
// plus per-species reaction rates.
type Kinetics interface {
	EOS
	ThermodynamicMassFractionFunction(p Property, layout *fields.Layout) (MassFractionFunction, error)
	ThermodynamicTemperatureMassFractionFunction(p Property, layout *fields.Layout) (MassFractionTemperatureFunction, error)

	// ReactionRates fills rates with per-species mass production rates
	// [kg/m³/s] and returns the chemical energy release rate [W/m³].
	ReactionRates(massFractions []float64, temperature, density float64, rates []float64) (float64, error)
}

// Reduced is a progress-variable backend.
type Reduced interface {
	EOS
	ReferenceSpecies() []string
	ExtraVariables() []string
	ComputeMassFractions(progress, massFractions []float64) error
	ComputeProgressVariables(massFractions, progress []float64) error

	// ChemistrySource fills progressSource with the production rate of each
	// density-weighted progress variable and returns the energy source.
	ChemistrySource(density float64, densityProgress, progressSource []float64) (float64, error)
}
