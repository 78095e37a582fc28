package tabulated

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
	"github.com/san-kum/eostab/internal/kinetics"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

const modelDir = "../../models/h2air"

var (
	fixtureProgress      = []float64{0.7, 0.3}
	fixtureMassFractions = []float64{0.02011, 6e-05, 0.0003, 0.15997999999999998, 0.0017399999999999998, 0.07250999999999999, 0.7452999999999999}
	fixtureEnergySource  = 513111182415.72314
	fixtureSources       = []float64{-610842.0880460908, 610842.0880460908}
)

func loadModel(t *testing.T) *Backend {
	t.Helper()
	b, err := Load(modelDir)
	require.NoError(t, err)
	return b
}

func within(t *testing.T, want, got, tol float64, msg string) {
	t.Helper()
	if math.Abs(want-got) > tol*math.Abs(want) {
		t.Errorf("%s: got %.17g, want %.17g", msg, got, want)
	}
}

func TestLoadModel(t *testing.T) {
	b := loadModel(t)

	require.Equal(t, "h2air", b.Name())
	require.Empty(t, b.Species())
	require.Equal(t, []string{"H2", "H", "O", "O2", "OH", "H2O", "N2"}, b.ReferenceSpecies())
	require.Equal(t, []string{"CPV_0", "CPV_1"}, b.ExtraVariables())
	require.Equal(t, 1400.0, b.ClosureTemperature())
	require.Equal(t, modelDir, b.Dir())
}

func TestDecodeFixture(t *testing.T) {
	b := loadModel(t)

	y := make([]float64, 7)
	require.NoError(t, b.ComputeMassFractions(fixtureProgress, y))
	sum := 0.0
	for i := range y {
		within(t, fixtureMassFractions[i], y[i], 1e-10, b.ReferenceSpecies()[i])
		require.GreaterOrEqual(t, y[i], 0.0)
		require.LessOrEqual(t, y[i], 1.0)
		sum += y[i]
	}
	require.InDelta(t, 1.0, sum, SumTolerance)
}

func TestRoundTripIdempotent(t *testing.T) {
	b := loadModel(t)

	inputs := [][]float64{
		{0.02, 0.0001, 0.0011, 0.18, 0.0035, 0.05, 0.7453},
		{0.0283, 0, 0, 0.2264, 0, 0, 0.7453},
		{0.001, 0.0002, 0.001, 0.005, 0.0058, 0.2417, 0.7453},
	}
	for _, x := range inputs {
		c1 := make([]float64, 2)
		require.NoError(t, b.ComputeProgressVariables(x, c1))
		y1 := make([]float64, 7)
		require.NoError(t, b.ComputeMassFractions(c1, y1))

		c2 := make([]float64, 2)
		require.NoError(t, b.ComputeProgressVariables(y1, c2))
		y2 := make([]float64, 7)
		require.NoError(t, b.ComputeMassFractions(c2, y2))
		c3 := make([]float64, 2)
		require.NoError(t, b.ComputeProgressVariables(y2, c3))

		for i := range c2 {
			require.InDelta(t, c2[i], c3[i], 1e-12)
		}
	}
}

// TestDecodeFixtureTargets decodes the progress variables of every shipped
// target, including those encoded from compositions off the manifold.
func TestDecodeFixtureTargets(t *testing.T) {
	b := loadModel(t)
	data, err := os.ReadFile(filepath.Join(modelDir, "testTargets.yaml"))
	require.NoError(t, err)
	var targets []struct {
		Name               string    `yaml:"testName"`
		InputCPVs          []float64 `yaml:"input_cpvs"`
		OutputCPVs         []float64 `yaml:"output_cpvs"`
		InputMassFractions []float64 `yaml:"input_mass_fractions"`
	}
	require.NoError(t, yaml.Unmarshal(data, &targets))
	require.NotEmpty(t, targets)

	for _, tt := range targets {
		t.Run(tt.Name, func(t *testing.T) {
			for _, c := range [][]float64{tt.InputCPVs, tt.OutputCPVs} {
				y := make([]float64, 7)
				require.NoError(t, b.ComputeMassFractions(c, y))
				require.InDelta(t, 1.0, floats.Sum(y), SumTolerance)
			}

			// the decoded composition carries the encoded mass
			c := make([]float64, 2)
			require.NoError(t, b.ComputeProgressVariables(tt.InputMassFractions, c))
			y := make([]float64, 7)
			require.NoError(t, b.ComputeMassFractions(c, y))
			require.InDelta(t, floats.Sum(tt.InputMassFractions), floats.Sum(y), 1e-12)
		})
	}
}

func TestDecodeOutOfDomain(t *testing.T) {
	b := loadModel(t)

	tests := []struct {
		name     string
		progress []float64
		index    bool
	}{
		{"zero vector", []float64{0, 0}, false},
		{"far off manifold", []float64{2, -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := make([]float64, 7)
			err := b.ComputeMassFractions(tt.progress, y)
			require.ErrorIs(t, err, eos.ErrDecodeOutOfDomain)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			require.Equal(t, tt.index, de.Index >= 0)
			require.Len(t, de.Raw, 7)
			for _, v := range y {
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 1.0)
			}
		})
	}
}

func TestDimensionMismatch(t *testing.T) {
	b := loadModel(t)

	require.ErrorIs(t, b.ComputeMassFractions([]float64{1}, make([]float64, 7)), eos.ErrDimensionMismatch)
	require.ErrorIs(t, b.ComputeMassFractions(fixtureProgress, make([]float64, 8)), eos.ErrDimensionMismatch)
	require.ErrorIs(t, b.ComputeProgressVariables(make([]float64, 6), make([]float64, 2)), eos.ErrDimensionMismatch)
	require.ErrorIs(t, b.ComputeProgressVariables(make([]float64, 7), make([]float64, 3)), eos.ErrDimensionMismatch)

	_, err := b.ChemistrySource(1.5, []float64{1, 2, 3}, make([]float64, 2))
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)
	_, err = b.ChemistrySource(1.5, []float64{1, 2}, make([]float64, 1))
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)
}

func TestChemistrySourceFixture(t *testing.T) {
	b := loadModel(t)

	density := 1.5
	rhoC := []float64{fixtureProgress[0] * density, fixtureProgress[1] * density}
	src := make([]float64, 2)

	q, err := b.ChemistrySource(density, rhoC, src)
	require.NoError(t, err)
	within(t, fixtureEnergySource, q, 5e-6, "energy source")
	for i := range src {
		within(t, fixtureSources[i], src[i], 5e-6, b.ExtraVariables()[i])
	}

	_, err = b.ChemistrySource(0, rhoC, src)
	require.ErrorIs(t, err, eos.ErrInvalidState)
}

// TestChemistrySourceMatchesDetailedRates rebuilds the closure by hand from
// the detailed rates at the closure temperature.
func TestChemistrySourceMatchesDetailedRates(t *testing.T) {
	b := loadModel(t)
	detailed := b.Detailed().(*kinetics.Backend)

	density := 1.5
	rhoC := []float64{fixtureProgress[0] * density, fixtureProgress[1] * density}
	src := make([]float64, 2)
	q, err := b.ChemistrySource(density, rhoC, src)
	require.NoError(t, err)

	rates := make([]float64, detailed.NumSpecies())
	release, err := detailed.ReactionRates(mechanismOrder(b, fixtureMassFractions), b.ClosureTemperature(), density, rates)
	require.NoError(t, err)

	hf := detailed.FormationEnthalpies()
	wantQ := 0.0
	for i := range rates {
		wantQ -= rates[i] * hf[i]
	}
	within(t, release, wantQ, 1e-12, "heat release from formation enthalpies")
	within(t, wantQ, q, 5e-6, "energy source")

	weights := b.Manifold().Weights()
	for j := range src {
		want := 0.0
		for i, name := range b.ReferenceSpecies() {
			k, ok := detailed.Mechanism().Index(name)
			require.True(t, ok, name)
			want += weights.At(i, j) * rates[k]
		}
		within(t, want, src[j], 5e-6, b.ExtraVariables()[j])
	}
	// the progress variables partition the mass, so their sources cancel
	require.InDelta(t, 0, src[0]+src[1], 1e-6*math.Abs(src[1]))
}

func probeState(progress []float64) (*fields.Layout, []float64, []float64) {
	density := 1.2
	euler := []float64{0, density, density * 1e5, density * 10}
	state := append([]float64(nil), euler...)
	for _, c := range progress {
		state = append(state, c*density)
	}
	layout, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: 3, Offset: 1},
		fields.Field{Name: fields.DensityExtraVariables, Components: len(progress), ComponentNames: []string{"CPV_0", "CPV_1"}, Offset: len(euler)},
	)
	if err != nil {
		panic(err)
	}
	return layout, euler, state
}

func mechanismOrder(b *Backend, ref []float64) []float64 {
	y := make([]float64, len(b.Detailed().Species()))
	if err := b.Expand(ref, y); err != nil {
		panic(err)
	}
	return y
}

func TestThermodynamicEquivalence(t *testing.T) {
	b := loadModel(t)
	layout, euler, state := probeState(fixtureProgress)
	y := mechanismOrder(b, fixtureMassFractions)

	tfn, err := b.Detailed().ThermodynamicMassFractionFunction(eos.Temperature, layout)
	require.NoError(t, err)
	T, err := tfn(euler, y)
	require.NoError(t, err)

	for _, p := range eos.Properties() {
		t.Run(p.String(), func(t *testing.T) {
			want, err := b.Detailed().ThermodynamicMassFractionFunction(p, layout)
			require.NoError(t, err)
			got, err := b.ThermodynamicFunction(p, layout)
			require.NoError(t, err)

			w, err := want(euler, y)
			require.NoError(t, err)
			g, err := got(state)
			require.NoError(t, err)
			within(t, w, g, 1e-9, "temperature unknown")

			wantT, err := b.Detailed().ThermodynamicTemperatureMassFractionFunction(p, layout)
			require.NoError(t, err)
			gotT, err := b.ThermodynamicTemperatureFunction(p, layout)
			require.NoError(t, err)

			w, err = wantT(euler, y, T)
			require.NoError(t, err)
			g, err = gotT(state, T)
			require.NoError(t, err)
			within(t, w, g, 1e-9, "temperature known")
		})
	}
}

func TestThermodynamicFunctionErrors(t *testing.T) {
	b := loadModel(t)

	eulerOnly, err := fields.NewLayout(fields.Field{Name: fields.Euler, Components: 3})
	require.NoError(t, err)
	_, err = b.ThermodynamicFunction(eos.Pressure, eulerOnly)
	require.ErrorIs(t, err, eos.ErrUnknownBlock)

	wide, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: 3},
		fields.Field{Name: fields.DensityExtraVariables, Components: 3, Offset: 3},
	)
	require.NoError(t, err)
	_, err = b.ThermodynamicTemperatureFunction(eos.Pressure, wide)
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)

	layout, _, state := probeState(fixtureProgress)
	_, err = b.ThermodynamicFunction(eos.Property(42), layout)
	require.ErrorIs(t, err, eos.ErrUnsupportedProperty)

	fn, err := b.ThermodynamicFunction(eos.Pressure, layout)
	require.NoError(t, err)
	_, err = fn(state[:5])
	require.ErrorIs(t, err, eos.ErrDimensionMismatch)

	_, _, off := probeState([]float64{0, 0})
	_, err = fn(off)
	require.ErrorIs(t, err, eos.ErrDecodeOutOfDomain)
}

func TestChemistrySourceFunction(t *testing.T) {
	b := loadModel(t)
	layout, euler, state := probeState(fixtureProgress)

	fn, err := b.ChemistrySourceFunction(layout)
	require.NoError(t, err)
	src := make([]float64, 2)
	q, err := fn(state, src)
	require.NoError(t, err)

	T, err := b.Detailed().(*kinetics.Backend).Temperature(mechanismOrder(b, fixtureMassFractions), euler[1:])
	require.NoError(t, err)
	want := make([]float64, 2)
	wq, err := b.ChemistrySourceAt(1.2, state[4:], T, want)
	require.NoError(t, err)

	within(t, wq, q, 1e-9, "energy source")
	for i := range want {
		within(t, want[i], src[i], 1e-9, "progress source")
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	b := loadModel(t)
	layout, _, state := probeState(fixtureProgress)
	fn, err := b.ThermodynamicFunction(eos.SpeedOfSound, layout)
	require.NoError(t, err)
	want, err := fn(state)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 16)
	errs := make([]error, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			own := append([]float64(nil), state...)
			results[i], errs[i] = fn(own)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, want, results[i])
	}
}

func TestPseudoInverseOfShippedWeights(t *testing.T) {
	species, cpvs, w, err := ReadWeights(filepath.Join(modelDir, "weights.csv"))
	require.NoError(t, err)

	m, err := NewManifold(species, cpvs, w, nil)
	require.NoError(t, err)

	var gram mat.Dense
	gram.Mul(w.T(), m.InverseWeights())
	require.True(t, mat.EqualApprox(&gram, mat.NewDiagDense(2, []float64{1, 1}), GramTolerance))

	// ones lie in col(W), so every decode column sums to one
	winv := m.InverseWeights()
	for j := range cpvs {
		require.InDelta(t, 1.0, floats.Sum(mat.Col(nil, j, winv)), 1e-12)
	}
}

func TestNewManifoldRejects(t *testing.T) {
	w := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 0, 0})
	tests := []struct {
		name    string
		species []string
		cpvs    []string
		w, winv *mat.Dense
	}{
		{"duplicate species", []string{"A", "A", "B"}, []string{"c0", "c1"}, w, nil},
		{"duplicate cpv", []string{"A", "B", "C"}, []string{"c0", "c0"}, w, nil},
		{"shape", []string{"A", "B"}, []string{"c0", "c1"}, w, nil},
		{"not an inverse", []string{"A", "B", "C"}, []string{"c0", "c1"}, w, mat.NewDense(3, 2, []float64{2, 0, 0, 1, 0, 0})},
		{"rank deficient", []string{"A", "B", "C"}, []string{"c0", "c1"}, mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1}), nil},
		{"no cpvs", []string{"A"}, nil, w, nil},
		{"mass not conserved", []string{"A", "B", "C"}, []string{"c0", "c1"}, w, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManifold(tt.species, tt.cpvs, tt.w, tt.winv)
			require.ErrorIs(t, err, eos.ErrInvalidModel)
		})
	}
}

// writeModel builds a model directory around the shipped mechanism.
func writeModel(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	mech, err := os.ReadFile(filepath.Join(modelDir, "h2o2.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "h2o2.yaml"), mech, 0o644))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoadRejectsInvalidModels(t *testing.T) {
	const meta = "name: t\nmechanism: h2o2.yaml\nwpath: w.csv\n"
	const weights = ",c0\nH2,0.5\nO2,0.5\n"

	tests := []struct {
		name  string
		files map[string]string
	}{
		{"no metadata", map[string]string{"w.csv": weights}},
		{"missing weights", map[string]string{MetadataFile: meta}},
		{"missing mechanism", map[string]string{MetadataFile: "mechanism: none.yaml\nwpath: w.csv\n", "w.csv": weights}},
		{"unknown species", map[string]string{MetadataFile: meta, "w.csv": ",c0\nH2,0.5\nXe,0.5\n"}},
		{"bad number", map[string]string{MetadataFile: meta, "w.csv": ",c0\nH2,half\nO2,0.5\n"}},
		{"ragged rows", map[string]string{MetadataFile: meta, "w.csv": ",c0\nH2,0.5,0.1\nO2,0.5\n"}},
		{"header only", map[string]string{MetadataFile: meta, "w.csv": ",c0\n"}},
		{"inverse labels differ", map[string]string{
			MetadataFile: meta + "ipath: wi.csv\n",
			"w.csv":      weights,
			"wi.csv":     ",c0\nO2,1\nH2,1\n",
		}},
		{"inverse is not an inverse", map[string]string{
			MetadataFile: meta + "ipath: wi.csv\n",
			"w.csv":      weights,
			"wi.csv":     ",c0\nH2,0.5\nO2,0.5\n",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Load(writeModel(t, tt.files))
			require.ErrorIs(t, err, eos.ErrInvalidModel)
			require.Nil(t, b)
		})
	}
}

func TestLoadWithoutInverse(t *testing.T) {
	dir := writeModel(t, map[string]string{
		MetadataFile: "name: t\nmechanism: h2o2.yaml\nwpath: w.csv\n",
		"w.csv":      ",c0\nH2,0.5\nO2,0.5\n",
	})
	b, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, DefaultClosureTemperature, b.ClosureTemperature())

	y := make([]float64, 2)
	require.NoError(t, b.ComputeMassFractions([]float64{0.5}, y))
	require.InDelta(t, 0.5, y[0], 1e-12)
	require.InDelta(t, 0.5, y[1], 1e-12)
}
