package kinetics

import (
	"fmt"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
)

func (b *Backend) bindEuler(p eos.Property, layout *fields.Layout) (fields.Field, error) {
	if !p.Valid() {
		return fields.Field{}, fmt.Errorf("%w: %v", eos.ErrUnsupportedProperty, p)
	}
	return layout.Resolve(fields.Euler)
}

// ThermodynamicMassFractionFunction binds p to the layout's Euler block.
// Mass fractions are passed explicitly at call time.
func (b *Backend) ThermodynamicMassFractionFunction(p eos.Property, layout *fields.Layout) (eos.MassFractionFunction, error) {
	if _, err := b.bindEuler(p, layout); err != nil {
		return nil, err
	}
	return func(conserved, massFractions []float64) (float64, error) {
		euler, err := layout.Slice(fields.Euler, conserved)
		if err != nil {
			return 0, err
		}
		return b.ComputeProperty(p, massFractions, euler)
	}, nil
}

// ThermodynamicTemperatureMassFractionFunction is the known-temperature
// form of ThermodynamicMassFractionFunction.
func (b *Backend) ThermodynamicTemperatureMassFractionFunction(p eos.Property, layout *fields.Layout) (eos.MassFractionTemperatureFunction, error) {
	if _, err := b.bindEuler(p, layout); err != nil {
		return nil, err
	}
	return func(conserved, massFractions []float64, temperature float64) (float64, error) {
		euler, err := layout.Slice(fields.Euler, conserved)
		if err != nil {
			return 0, err
		}
		return b.ComputePropertyAt(p, massFractions, euler, temperature)
	}, nil
}

func (b *Backend) bindSpecies(p eos.Property, layout *fields.Layout) error {
	if _, err := b.bindEuler(p, layout); err != nil {
		return err
	}
	f, err := layout.Resolve(fields.DensityMassFractions)
	if err != nil {
		return err
	}
	if f.Components != b.NumSpecies() {
		return fmt.Errorf("%w: %s block has %d components, mechanism has %d species", eos.ErrDimensionMismatch, fields.DensityMassFractions, f.Components, b.NumSpecies())
	}
	return nil
}

// massFractions reads Y = ρY/ρ from the state.
func massFractions(layout *fields.Layout, conserved []float64) (euler, y []float64, err error) {
	euler, err = layout.Slice(fields.Euler, conserved)
	if err != nil {
		return nil, nil, err
	}
	rhoY, err := layout.Slice(fields.DensityMassFractions, conserved)
	if err != nil {
		return nil, nil, err
	}
	rho := euler[fields.Rho]
	if !(rho > 0) {
		return nil, nil, fmt.Errorf("%w: density %g", ErrInvalidState, rho)
	}
	y = make([]float64, len(rhoY))
	for i, v := range rhoY {
		y[i] = v / rho
	}
	return euler, y, nil
}

// ThermodynamicFunction binds p for states carrying density-weighted mass
// fractions in the densityYi block.
func (b *Backend) ThermodynamicFunction(p eos.Property, layout *fields.Layout) (eos.ThermodynamicFunction, error) {
	if err := b.bindSpecies(p, layout); err != nil {
		return nil, err
	}
	return func(conserved []float64) (float64, error) {
		euler, y, err := massFractions(layout, conserved)
		if err != nil {
			return 0, err
		}
		return b.ComputeProperty(p, y, euler)
	}, nil
}

// ThermodynamicTemperatureFunction is the known-temperature form of
// ThermodynamicFunction.
func (b *Backend) ThermodynamicTemperatureFunction(p eos.Property, layout *fields.Layout) (eos.ThermodynamicTemperatureFunction, error) {
	if err := b.bindSpecies(p, layout); err != nil {
		return nil, err
	}
	return func(conserved []float64, temperature float64) (float64, error) {
		euler, y, err := massFractions(layout, conserved)
		if err != nil {
			return 0, err
		}
		return b.ComputePropertyAt(p, y, euler, temperature)
	}, nil
}
