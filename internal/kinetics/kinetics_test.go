package kinetics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
	"github.com/stretchr/testify/require"
)

const mechanismPath = "../../models/h2air/h2o2.yaml"

// species order: H2, O2, H2O, N2, H, O, OH
var (
	unburnt = []float64{0.0283, 0.2264, 0, 0.7453, 0, 0, 0}
	burnt   = []float64{0.001, 0.005, 0.2417, 0.7453, 0.0002, 0.001, 0.0058}
)

func loadBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b, err := Load(mechanismPath, opts...)
	require.NoError(t, err)
	return b
}

func relClose(t *testing.T, want, got, tol float64, msg string) {
	t.Helper()
	if math.Abs(want-got) > tol*math.Abs(want) {
		t.Errorf("%s: got %.17g, want %.17g", msg, got, want)
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	require.ErrorIs(t, err, eos.ErrInvalidModel)
}

func TestMixtureThermo(t *testing.T) {
	b := loadBackend(t)
	T := 1200.0

	relClose(t, 396.7572102057002, b.GasConstantMix(unburnt), 1e-12, "R_mix")
	relClose(t, 1584.2256492938081, b.SpecificHeatCp(unburnt, T), 1e-12, "cp")
	relClose(t, 1334940.3068104684, b.SensibleEnthalpy(unburnt, T), 1e-10, "h_s")
	relClose(t, 858831.6545636283, b.SensibleEnergy(unburnt, T), 1e-10, "e_s")

	if h := b.SensibleEnthalpy(burnt, ReferenceTemperature); h != 0 {
		t.Errorf("h_s(Tref) = %g, want 0", h)
	}

	hf := b.FormationEnthalpies()
	relClose(t, -13423306.305586591, hf[2], 1e-12, "h_f H2O")
	relClose(t, 216279923.7926202, hf[4], 1e-12, "h_f H")
}

func TestTemperatureRoundTrip(t *testing.T) {
	b := loadBackend(t)

	tests := []struct {
		name string
		y    []float64
		T    float64
		u    float64
	}{
		{"unburnt at rest", unburnt, 350, 0},
		{"unburnt moving", unburnt, 900, 120},
		{"burnt hot", burnt, 2400, 30},
		{"burnt across midpoint", burnt, 1000.5, -15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho := 0.8
			e := b.SensibleEnergy(tt.y, tt.T)
			euler := []float64{rho, rho * (e + 0.5*tt.u*tt.u), rho * tt.u}

			got, err := b.Temperature(tt.y, euler)
			require.NoError(t, err)
			relClose(t, tt.T, got, 1e-9, "temperature")

			p, err := b.ComputeProperty(eos.Pressure, tt.y, euler)
			require.NoError(t, err)
			relClose(t, rho*b.GasConstantMix(tt.y)*tt.T, p, 1e-9, "pressure")
		})
	}
}

func TestConvergenceFailure(t *testing.T) {
	b := loadBackend(t, WithSolver(1, 0, 0))
	euler := []float64{1.2, 1.2e5, 12}

	_, err := b.Temperature(unburnt, euler)
	require.ErrorIs(t, err, eos.ErrConvergenceFailure)

	var ce *ConvergenceError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, 1, ce.Iterations)
}

func TestInvalidInputs(t *testing.T) {
	b := loadBackend(t)

	_, err := b.ComputeProperty(eos.Pressure, unburnt[:3], []float64{1, 1e5, 0})
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)

	_, err = b.ComputeProperty(eos.Pressure, unburnt, []float64{0, 1e5, 0})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = b.ComputePropertyAt(eos.Pressure, unburnt, []float64{1, 1e5, 0}, -3)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = b.ComputeProperty(eos.Property(99), unburnt, []float64{1, 1e5, 0})
	require.ErrorIs(t, err, eos.ErrUnsupportedProperty)
}

func TestPropertyRelations(t *testing.T) {
	b := loadBackend(t)
	euler := []float64{1.2, 1.2e5, 12}

	eval := func(p eos.Property) float64 {
		v, err := b.ComputeProperty(p, burnt, euler)
		require.NoError(t, err)
		return v
	}

	T := eval(eos.Temperature)
	cp := eval(eos.SpecificHeatConstantPressure)
	cv := eval(eos.SpecificHeatConstantVolume)
	a := eval(eos.SpeedOfSound)

	relClose(t, b.GasConstantMix(burnt), cp-cv, 1e-12, "cp - cv")
	relClose(t, math.Sqrt(cp/cv*b.GasConstantMix(burnt)*T), a, 1e-12, "speed of sound")
	relClose(t, 1.2e5/1.2-50, eval(eos.InternalSensibleEnergy), 1e-12, "energy")
	relClose(t, 1.2, eval(eos.Density), 0, "density")

	// the known-temperature form must agree once T is consistent
	for _, p := range eos.Properties() {
		want := eval(p)
		got, err := b.ComputePropertyAt(p, burnt, euler, T)
		require.NoError(t, err)
		relClose(t, want, got, 1e-9, p.String())
	}
}

func TestReactionRates(t *testing.T) {
	b := loadBackend(t)
	rates := make([]float64, b.NumSpecies())

	q, err := b.ReactionRates(burnt, 1800, 0.5, rates)
	require.NoError(t, err)

	want := []float64{69.00637344976161, 1464.397378734219, 767.5449956021356, 0, -7.715070625153777, 190.15985322314563, -2483.3935303841076}
	for i := range want {
		if want[i] == 0 {
			require.Zero(t, rates[i])
			continue
		}
		relClose(t, want[i], rates[i], 1e-9, b.Species()[i])
	}
	relClose(t, 14755458389.313862, q, 1e-9, "energy release")

	sum, scale := 0.0, 0.0
	for _, r := range rates {
		sum += r
		scale = math.Max(scale, math.Abs(r))
	}
	if math.Abs(sum) > 1e-10*scale {
		t.Errorf("mass is not conserved: Σω = %g", sum)
	}
}

func TestReactionRatesErrors(t *testing.T) {
	b := loadBackend(t)

	_, err := b.ReactionRates(burnt, 1800, 0.5, make([]float64, 3))
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)

	_, err = b.ReactionRates(burnt[:2], 1800, 0.5, make([]float64, 7))
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)

	_, err = b.ReactionRates(burnt, 0, 0.5, make([]float64, 7))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestBoundFunctions(t *testing.T) {
	b := loadBackend(t)

	layout, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: 3, Offset: 0},
		fields.Field{Name: fields.DensityMassFractions, Components: 7, Offset: 3},
	)
	require.NoError(t, err)

	rho := 1.2
	state := []float64{rho, 1.2e5, 12}
	for _, y := range burnt {
		state = append(state, rho*y)
	}

	for _, p := range eos.Properties() {
		t.Run(p.String(), func(t *testing.T) {
			fn, err := b.ThermodynamicFunction(p, layout)
			require.NoError(t, err)
			mf, err := b.ThermodynamicMassFractionFunction(p, layout)
			require.NoError(t, err)

			got, err := fn(state)
			require.NoError(t, err)
			want, err := mf(state, burnt)
			require.NoError(t, err)
			relClose(t, want, got, 1e-9, "species block vs explicit mass fractions")

			tfn, err := b.ThermodynamicTemperatureFunction(p, layout)
			require.NoError(t, err)
			T, err := b.Temperature(burnt, state[:3])
			require.NoError(t, err)
			at, err := tfn(state, T)
			require.NoError(t, err)
			relClose(t, want, at, 1e-9, "known temperature")
		})
	}

	fn, err := b.ThermodynamicFunction(eos.Pressure, layout)
	require.NoError(t, err)
	_, err = fn(state[:5])
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)
}

func TestBindErrors(t *testing.T) {
	b := loadBackend(t)

	eulerOnly, err := fields.NewLayout(fields.Field{Name: fields.Euler, Components: 3})
	require.NoError(t, err)
	_, err = b.ThermodynamicFunction(eos.Pressure, eulerOnly)
	require.ErrorIs(t, err, eos.ErrUnknownBlock)

	// explicit mass fractions only need the euler block
	_, err = b.ThermodynamicMassFractionFunction(eos.Pressure, eulerOnly)
	require.NoError(t, err)

	wrongWidth, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: 3},
		fields.Field{Name: fields.DensityMassFractions, Components: 4, Offset: 3},
	)
	require.NoError(t, err)
	_, err = b.ThermodynamicTemperatureFunction(eos.Pressure, wrongWidth)
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)

	noEuler, err := fields.NewLayout(fields.Field{Name: fields.DensityMassFractions, Components: 7})
	require.NoError(t, err)
	_, err = b.ThermodynamicMassFractionFunction(eos.Temperature, noEuler)
	require.ErrorIs(t, err, eos.ErrUnknownBlock)
}
