package tabulated

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/eostab/internal/eos"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Admissibility window for decoded compositions.
const (
	ComponentSlack = 1e-6
	SumTolerance   = 1e-5
	// GramTolerance bounds |WᵀW⁺ - I| at load.
	GramTolerance = 1e-8
	// MassTolerance bounds how far decode∘encode may move ΣY per unit
	// mass fraction.
	MassTolerance = 1e-8
)

// Manifold is the linear encode/decode pair. It is immutable.
type Manifold struct {
	species []string
	cpvs    []string
	w       *mat.Dense // S×P encode weights
	winv    *mat.Dense // S×P decode weights
}

// NewManifold validates encode weights w and decode weights winv (both
// species × progress variables). A nil winv is replaced by the
// pseudo-inverse of w.
func NewManifold(species, cpvs []string, w, winv *mat.Dense) (*Manifold, error) {
	if len(species) == 0 || len(cpvs) == 0 {
		return nil, invalidModel("manifold needs at least one species and one progress variable")
	}
	if err := unique("species", species); err != nil {
		return nil, err
	}
	if err := unique("progress variable", cpvs); err != nil {
		return nil, err
	}
	if r, c := w.Dims(); r != len(species) || c != len(cpvs) {
		return nil, invalidModel("encode weights are %d×%d, want %d×%d", r, c, len(species), len(cpvs))
	}
	if len(cpvs) > len(species) {
		return nil, invalidModel("%d progress variables exceed %d species", len(cpvs), len(species))
	}

	if winv == nil {
		var err error
		if winv, err = pseudoInverse(w); err != nil {
			return nil, err
		}
	} else if r, c := winv.Dims(); r != len(species) || c != len(cpvs) {
		return nil, invalidModel("decode weights are %d×%d, want %d×%d", r, c, len(species), len(cpvs))
	}

	var gram mat.Dense
	gram.Mul(w.T(), winv)
	p := len(cpvs)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if d := math.Abs(gram.At(i, j) - want); d > GramTolerance {
				return nil, invalidModel("encode∘decode is not the identity: entry (%d,%d) off by %g", i, j, d)
			}
		}
	}
	if err := conservesMass(species, w, winv); err != nil {
		return nil, err
	}

	return &Manifold{
		species: append([]string(nil), species...),
		cpvs:    append([]string(nil), cpvs...),
		w:       mat.DenseCopyOf(w),
		winv:    mat.DenseCopyOf(winv),
	}, nil
}

func unique(what string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return invalidModel("empty %s name", what)
		}
		if seen[n] {
			return invalidModel("duplicate %s %q", what, n)
		}
		seen[n] = true
	}
	return nil
}

// conservesMass checks that decode∘encode keeps ΣY, i.e. that the ones
// vector lies in the column space of W.
func conservesMass(species []string, w, winv *mat.Dense) error {
	_, p := winv.Dims()
	colSums := make([]float64, p)
	for j := range colSums {
		colSums[j] = floats.Sum(mat.Col(nil, j, winv))
	}
	for i, name := range species {
		if d := math.Abs(floats.Dot(w.RawRowView(i), colSums) - 1); d > MassTolerance {
			return invalidModel("decode∘encode does not conserve mass: species %q off by %g", name, d)
		}
	}
	return nil
}

// pseudoInverse returns W (WᵀW)⁻¹, the transpose of the Moore-Penrose
// inverse of Wᵀ for full column rank W.
func pseudoInverse(w *mat.Dense) (*mat.Dense, error) {
	var gram, inv, out mat.Dense
	gram.Mul(w.T(), w)
	if err := inv.Inverse(&gram); err != nil {
		return nil, invalidModel("encode weights are rank deficient: %v", err)
	}
	out.Mul(w, &inv)
	return &out, nil
}

// Species returns the reference species in weight-file order.
func (m *Manifold) Species() []string { return append([]string(nil), m.species...) }

// ProgressVariables returns the progress-variable names.
func (m *Manifold) ProgressVariables() []string { return append([]string(nil), m.cpvs...) }

// Weights returns a copy of the encode weights.
func (m *Manifold) Weights() *mat.Dense { return mat.DenseCopyOf(m.w) }

// InverseWeights returns a copy of the decode weights.
func (m *Manifold) InverseWeights() *mat.Dense { return mat.DenseCopyOf(m.winv) }

// Encode writes C = Wᵀ Y into progress.
func (m *Manifold) Encode(massFractions, progress []float64) error {
	if err := eos.CheckLength("mass fractions", massFractions, len(m.species)); err != nil {
		return err
	}
	if err := eos.CheckLength("progress variables", progress, len(m.cpvs)); err != nil {
		return err
	}
	out := mat.NewVecDense(len(progress), progress)
	out.MulVec(m.w.T(), mat.NewVecDense(len(massFractions), massFractions))
	return nil
}

// Project writes Wᵀ v into out. It is the Jacobian of Encode applied to a
// per-species rate.
func (m *Manifold) Project(v, out []float64) error {
	return m.Encode(v, out)
}

// Decode writes Y = W⁺ C into massFractions and checks admissibility.
// Components within ComponentSlack of [0,1] are clamped. A composition
// outside the window, or whose sum is more than SumTolerance from one,
// yields a *DecodeError; massFractions still holds the clamped values.
func (m *Manifold) Decode(progress, massFractions []float64) error {
	if err := eos.CheckLength("progress variables", progress, len(m.cpvs)); err != nil {
		return err
	}
	if err := eos.CheckLength("mass fractions", massFractions, len(m.species)); err != nil {
		return err
	}
	out := mat.NewVecDense(len(massFractions), massFractions)
	out.MulVec(m.winv, mat.NewVecDense(len(progress), progress))

	sum := floats.Sum(massFractions)
	bad := -1
	for i, y := range massFractions {
		if bad < 0 && (y < -ComponentSlack || y > 1+ComponentSlack || math.IsNaN(y)) {
			bad = i
		}
	}
	var raw []float64
	if bad >= 0 || !(math.Abs(sum-1) <= SumTolerance) {
		raw = append([]float64(nil), massFractions...)
	}
	for i, y := range massFractions {
		massFractions[i] = math.Min(math.Max(y, 0), 1)
	}
	if raw != nil {
		return &DecodeError{
			Progress: append([]float64(nil), progress...),
			Raw:      raw,
			Sum:      sum,
			Index:    bad,
		}
	}
	return nil
}

// ReadWeights reads a weight CSV: a header row ",<cpv names>" followed by
// one row per species "<name>,<weights>".
func ReadWeights(path string) (species, cpvs []string, w *mat.Dense, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, invalidModel("open weights: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, invalidModel("read %s: %v", path, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, nil, nil, invalidModel("%s needs a header and at least one species row", path)
	}

	for _, name := range records[0][1:] {
		cpvs = append(cpvs, strings.TrimSpace(name))
	}
	rows := records[1:]
	data := make([]float64, 0, len(rows)*len(cpvs))
	for i, row := range rows {
		species = append(species, strings.TrimSpace(row[0]))
		for j, cell := range row[1:] {
			v, perr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, nil, invalidModel("%s row %d column %d: bad weight %q", path, i+2, j+2, cell)
			}
			data = append(data, v)
		}
	}
	return species, cpvs, mat.NewDense(len(rows), len(cpvs), data), nil
}

func formatNames(names []string) string {
	return fmt.Sprintf("[%s]", strings.Join(names, " "))
}
