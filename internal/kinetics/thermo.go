package kinetics

import (
	"fmt"
	"math"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
	"gonum.org/v1/gonum/floats"
)

// GasConstantMix returns R_mix = Ru Σ Y_i/W_i [J/kg/K].
func (b *Backend) GasConstantMix(massFractions []float64) float64 {
	return floats.Dot(massFractions, b.rs)
}

// SpecificHeatCp returns the mixture cp [J/kg/K] at temperature T.
func (b *Backend) SpecificHeatCp(massFractions []float64, T float64) float64 {
	cp := 0.0
	for i, y := range massFractions {
		cp += y * b.mech.Species[i].Thermo.CpR(T) * b.rs[i]
	}
	return cp
}

// SensibleEnthalpy returns h_s [J/kg] at temperature T.
func (b *Backend) SensibleEnthalpy(massFractions []float64, T float64) float64 {
	h := 0.0
	for i, y := range massFractions {
		th := &b.mech.Species[i].Thermo
		h += y * (th.HRT(T)*T*b.rs[i] - b.hf[i])
	}
	return h
}

// SensibleEnergy returns e_s = h_s - R_mix T [J/kg].
func (b *Backend) SensibleEnergy(massFractions []float64, T float64) float64 {
	return b.SensibleEnthalpy(massFractions, T) - b.GasConstantMix(massFractions)*T
}

// TemperatureFromEnergy inverts e_s(T) = energy by Newton iteration.
func (b *Backend) TemperatureFromEnergy(massFractions []float64, energy float64) (float64, error) {
	if err := eos.CheckLength("mass fractions", massFractions, b.NumSpecies()); err != nil {
		return 0, err
	}

	T := b.initialGuess
	for it := 1; it <= b.maxIterations; it++ {
		cv := b.SpecificHeatCp(massFractions, T) - b.GasConstantMix(massFractions)
		if cv <= 0 {
			return 0, &ConvergenceError{Iterations: it, Last: T, Energy: energy}
		}
		dT := (b.SensibleEnergy(massFractions, T) - energy) / cv
		T -= dT
		if T <= 0 || math.IsNaN(T) || math.IsInf(T, 0) {
			return 0, &ConvergenceError{Iterations: it, Last: T, Energy: energy}
		}
		if math.Abs(dT) <= b.tolerance*T {
			return T, nil
		}
	}

	b.log.WithField("energy", energy).WithField("last", T).Warn("temperature solve exhausted its iteration budget")
	return 0, &ConvergenceError{Iterations: b.maxIterations, Last: T, Energy: energy}
}

// eulerState splits [ρ, ρE, ρu...] into density and internal energy.
func eulerState(euler []float64) (rho, e float64, err error) {
	if len(euler) < fields.RhoU {
		return 0, 0, fmt.Errorf("%w: euler block has %d entries, want at least %d", eos.ErrDimensionMismatch, len(euler), fields.RhoU)
	}
	rho = euler[fields.Rho]
	if !(rho > 0) {
		return 0, 0, fmt.Errorf("%w: density %g", ErrInvalidState, rho)
	}
	ke := 0.0
	for _, mom := range euler[fields.RhoU:] {
		u := mom / rho
		ke += u * u
	}
	return rho, euler[fields.RhoE]/rho - 0.5*ke, nil
}

// Temperature solves for temperature given an Euler block and composition.
func (b *Backend) Temperature(massFractions, euler []float64) (float64, error) {
	_, e, err := eulerState(euler)
	if err != nil {
		return 0, err
	}
	return b.TemperatureFromEnergy(massFractions, e)
}

// ComputeProperty evaluates p for the Euler block and composition, solving
// for temperature when p needs it.
func (b *Backend) ComputeProperty(p eos.Property, massFractions, euler []float64) (float64, error) {
	if err := eos.CheckLength("mass fractions", massFractions, b.NumSpecies()); err != nil {
		return 0, err
	}
	rho, e, err := eulerState(euler)
	if err != nil {
		return 0, err
	}
	switch p {
	case eos.Density:
		return rho, nil
	case eos.InternalSensibleEnergy:
		return e, nil
	}
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %v", eos.ErrUnsupportedProperty, p)
	}
	T, err := b.TemperatureFromEnergy(massFractions, e)
	if err != nil {
		return 0, err
	}
	return b.atTemperature(p, rho, massFractions, T)
}

// ComputePropertyAt evaluates p with a caller-supplied temperature.
func (b *Backend) ComputePropertyAt(p eos.Property, massFractions, euler []float64, T float64) (float64, error) {
	if err := eos.CheckLength("mass fractions", massFractions, b.NumSpecies()); err != nil {
		return 0, err
	}
	rho, _, err := eulerState(euler)
	if err != nil {
		return 0, err
	}
	if !(T > 0) {
		return 0, fmt.Errorf("%w: temperature %g", ErrInvalidState, T)
	}
	return b.atTemperature(p, rho, massFractions, T)
}

func (b *Backend) atTemperature(p eos.Property, rho float64, y []float64, T float64) (float64, error) {
	switch p {
	case eos.Pressure:
		return rho * b.GasConstantMix(y) * T, nil
	case eos.Temperature:
		return T, nil
	case eos.InternalSensibleEnergy:
		return b.SensibleEnergy(y, T), nil
	case eos.SensibleEnthalpy:
		return b.SensibleEnthalpy(y, T), nil
	case eos.SpecificHeatConstantVolume:
		return b.SpecificHeatCp(y, T) - b.GasConstantMix(y), nil
	case eos.SpecificHeatConstantPressure:
		return b.SpecificHeatCp(y, T), nil
	case eos.SpeedOfSound:
		r := b.GasConstantMix(y)
		cp := b.SpecificHeatCp(y, T)
		return math.Sqrt(cp / (cp - r) * r * T), nil
	case eos.Density:
		return rho, nil
	}
	return 0, fmt.Errorf("%w: %v", eos.ErrUnsupportedProperty, p)
}
