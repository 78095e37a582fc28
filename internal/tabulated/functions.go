package tabulated

import (
	"fmt"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
)

// progressBlock checks that layout carries an Euler block and a densityEV
// block of the model's width.
func (b *Backend) progressBlock(p eos.Property, layout *fields.Layout) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", eos.ErrUnsupportedProperty, p)
	}
	if _, err := layout.Resolve(fields.Euler); err != nil {
		return err
	}
	f, err := layout.Resolve(fields.DensityExtraVariables)
	if err != nil {
		return err
	}
	if f.Components != len(b.manifold.cpvs) {
		return fmt.Errorf("%w: %s block has %d components, model has %d progress variables",
			eos.ErrDimensionMismatch, fields.DensityExtraVariables, f.Components, len(b.manifold.cpvs))
	}
	return nil
}

// decodeState reads ρC from the state and decodes it into mechanism-ordered
// mass fractions.
func (b *Backend) decodeState(layout *fields.Layout, conserved []float64) (rho float64, rhoC, y []float64, err error) {
	euler, err := layout.Slice(fields.Euler, conserved)
	if err != nil {
		return 0, nil, nil, err
	}
	if rhoC, err = layout.Slice(fields.DensityExtraVariables, conserved); err != nil {
		return 0, nil, nil, err
	}
	rho = euler[fields.Rho]
	if !(rho > 0) {
		return 0, nil, nil, fmt.Errorf("%w: density %g", eos.ErrInvalidState, rho)
	}

	c := make([]float64, len(rhoC))
	for i, v := range rhoC {
		c[i] = v / rho
	}
	ref := make([]float64, len(b.refIndex))
	if err := b.manifold.Decode(c, ref); err != nil {
		return 0, nil, nil, err
	}
	y = make([]float64, b.nDetail)
	if err := b.Expand(ref, y); err != nil {
		return 0, nil, nil, err
	}
	return rho, rhoC, y, nil
}

// ThermodynamicFunction decodes the densityEV block and delegates p to the
// detailed backend with the same Euler block.
func (b *Backend) ThermodynamicFunction(p eos.Property, layout *fields.Layout) (eos.ThermodynamicFunction, error) {
	if err := b.progressBlock(p, layout); err != nil {
		return nil, err
	}
	fn, err := b.detailed.ThermodynamicMassFractionFunction(p, layout)
	if err != nil {
		return nil, err
	}
	return func(conserved []float64) (float64, error) {
		_, _, y, err := b.decodeState(layout, conserved)
		if err != nil {
			return 0, err
		}
		return fn(conserved, y)
	}, nil
}

// ThermodynamicTemperatureFunction is the known-temperature form of
// ThermodynamicFunction.
func (b *Backend) ThermodynamicTemperatureFunction(p eos.Property, layout *fields.Layout) (eos.ThermodynamicTemperatureFunction, error) {
	if err := b.progressBlock(p, layout); err != nil {
		return nil, err
	}
	fn, err := b.detailed.ThermodynamicTemperatureMassFractionFunction(p, layout)
	if err != nil {
		return nil, err
	}
	return func(conserved []float64, temperature float64) (float64, error) {
		_, _, y, err := b.decodeState(layout, conserved)
		if err != nil {
			return 0, err
		}
		return fn(conserved, y, temperature)
	}, nil
}

// ChemistrySource evaluates the source closure at the model's closure
// temperature. It fills progressSource with d(ρC)/dt and returns the energy
// release rate. The result does not depend on the state's energy: two
// states with equal ρ and ρC get the same source whatever their
// temperature. Use ChemistrySourceAt or ChemistrySourceFunction when the
// source should follow the state.
func (b *Backend) ChemistrySource(density float64, densityProgress, progressSource []float64) (float64, error) {
	return b.ChemistrySourceAt(density, densityProgress, b.closureTemperature, progressSource)
}

// ChemistrySourceAt is ChemistrySource at an explicit temperature.
func (b *Backend) ChemistrySourceAt(density float64, densityProgress []float64, temperature float64, progressSource []float64) (float64, error) {
	p := len(b.manifold.cpvs)
	if err := eos.CheckLength("density-weighted progress variables", densityProgress, p); err != nil {
		return 0, err
	}
	if err := eos.CheckLength("progress sources", progressSource, p); err != nil {
		return 0, err
	}
	if !(density > 0) {
		return 0, fmt.Errorf("%w: density %g", eos.ErrInvalidState, density)
	}

	c := make([]float64, p)
	for i, v := range densityProgress {
		c[i] = v / density
	}
	ref := make([]float64, len(b.refIndex))
	if err := b.manifold.Decode(c, ref); err != nil {
		return 0, err
	}
	return b.SourceFromMassFractions(density, ref, temperature, progressSource)
}

// SourceFromMassFractions closes the source for an already decoded
// reference composition: species rates from the detailed backend projected
// through Wᵀ. Rates of species outside the reference basis are dropped.
func (b *Backend) SourceFromMassFractions(density float64, refMassFractions []float64, temperature float64, progressSource []float64) (float64, error) {
	y := make([]float64, b.nDetail)
	if err := b.Expand(refMassFractions, y); err != nil {
		return 0, err
	}
	rates := make([]float64, b.nDetail)
	q, err := b.detailed.ReactionRates(y, temperature, density, rates)
	if err != nil {
		return 0, err
	}
	refRates := make([]float64, len(b.refIndex))
	for i, j := range b.refIndex {
		refRates[i] = rates[j]
	}
	if err := b.manifold.Project(refRates, progressSource); err != nil {
		return 0, err
	}
	return q, nil
}

// SourceFunction evaluates chemistry sources from a packed state.
type SourceFunction func(conserved, progressSource []float64) (float64, error)

// ChemistrySourceFunction binds the source closure to layout. Unlike
// ChemistrySource it solves for the temperature of the state first.
func (b *Backend) ChemistrySourceFunction(layout *fields.Layout) (SourceFunction, error) {
	if err := b.progressBlock(eos.Temperature, layout); err != nil {
		return nil, err
	}
	temperature, err := b.detailed.ThermodynamicMassFractionFunction(eos.Temperature, layout)
	if err != nil {
		return nil, err
	}
	return func(conserved, progressSource []float64) (float64, error) {
		rho, rhoC, y, err := b.decodeState(layout, conserved)
		if err != nil {
			return 0, err
		}
		T, err := temperature(conserved, y)
		if err != nil {
			return 0, err
		}
		return b.ChemistrySourceAt(rho, rhoC, T, progressSource)
	}, nil
}
