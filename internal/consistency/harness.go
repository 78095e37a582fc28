package consistency

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
	"github.com/san-kum/eostab/internal/tabulated"
	"github.com/sirupsen/logrus"
)

// Check names used in findings.
const (
	CheckNames             = "names"
	CheckMassFractions     = "massFractions"
	CheckProgressVariables = "progressVariables"
	CheckSource            = "source"
	CheckThermodynamics    = "thermodynamics"
)

// Probe conditions.
const (
	SourceDensity = 1.5
	ProbeDensity  = 1.2
	ProbeEnergy   = 1.2e5
	ProbeMomentum = 12.0
)

// Finding is one failed comparison.
type Finding struct {
	Target   string
	Check    string
	Detail   string
	Expected float64
	Actual   float64
}

func (f Finding) String() string {
	return fmt.Sprintf("%s/%s: %s (expected %.9g, got %.9g)", f.Target, f.Check, f.Detail, f.Expected, f.Actual)
}

// Report collects the outcome of checking one model.
type Report struct {
	Model    string
	Dir      string
	Targets  int
	Checks   int
	Findings []Finding
}

// OK reports whether every comparison passed.
func (r *Report) OK() bool { return len(r.Findings) == 0 }

// Failures returns the findings for one check.
func (r *Report) Failures(check string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) fail(target, check, detail string, expected, actual float64) {
	r.Findings = append(r.Findings, Finding{Target: target, Check: check, Detail: detail, Expected: expected, Actual: actual})
}

func (r *Report) failErr(target, check string, err error) {
	r.fail(target, check, err.Error(), 0, 0)
}

// Model is a discovered model directory.
type Model struct {
	Name    string
	Dir     string
	Targets string
}

// DiscoverModels lists every immediate sub-directory of root holding a
// targets file, sorted by name.
func DiscoverModels(root string) ([]Model, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("consistency: %w", err)
	}
	var models []Model
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		targets := filepath.Join(dir, TargetsFile)
		if st, err := os.Stat(targets); err != nil || st.IsDir() {
			continue
		}
		models = append(models, Model{Name: e.Name(), Dir: dir, Targets: targets})
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoModels, root)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// Harness runs the checks.
type Harness struct {
	log logrus.FieldLogger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the harness logger. It is also handed to the backends
// the harness loads.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Harness) { h.log = l }
}

// New creates a harness.
func New(opts ...Option) *Harness {
	l := logrus.New()
	l.SetOutput(io.Discard)
	h := &Harness{log: l}
	for _, o := range opts {
		o(h)
	}
	return h
}

// CheckModel loads the model in m.Dir and checks it against m.Targets.
// Load failures are returned as errors; comparison failures are findings.
func (h *Harness) CheckModel(m Model) (*Report, error) {
	targets, err := LoadTargets(m.Targets)
	if err != nil {
		return nil, err
	}
	b, err := tabulated.Load(m.Dir, tabulated.WithLogger(h.log))
	if err != nil {
		return nil, err
	}
	r := h.CheckBackend(b, targets)
	r.Model, r.Dir = m.Name, m.Dir
	return r, nil
}

// CheckDir is CheckModel for a directory holding TargetsFile.
func (h *Harness) CheckDir(dir string) (*Report, error) {
	return h.CheckModel(Model{Name: filepath.Base(dir), Dir: dir, Targets: filepath.Join(dir, TargetsFile)})
}

// CheckBackend runs every check of every target against b.
func (h *Harness) CheckBackend(b *tabulated.Backend, targets []Target) *Report {
	r := &Report{Model: b.Name(), Dir: b.Dir(), Targets: len(targets)}
	for _, t := range targets {
		h.checkNames(r, b, t)
		h.checkMassFractions(r, b, t)
		h.checkProgressVariables(r, b, t)
		h.checkSource(r, b, t)
		h.checkThermodynamics(r, b, t)
	}
	h.log.WithFields(logrus.Fields{
		"model":    r.Model,
		"targets":  r.Targets,
		"checks":   r.Checks,
		"findings": len(r.Findings),
	}).Info("consistency check finished")
	return r
}

func (h *Harness) checkNames(r *Report, b *tabulated.Backend, t Target) {
	r.Checks += 3
	if s := b.Species(); len(s) != 0 {
		r.fail(t.TestName, CheckNames, fmt.Sprintf("should report no transport species, got %v", s), 0, float64(len(s)))
	}
	if got := b.ReferenceSpecies(); !slices.Equal(got, t.SpeciesNames) {
		r.fail(t.TestName, CheckNames, fmt.Sprintf("species names %v, want %v", got, t.SpeciesNames), 0, 0)
	}
	if got := b.ExtraVariables(); !slices.Equal(got, t.CPVNames) {
		r.fail(t.TestName, CheckNames, fmt.Sprintf("progress variable names %v, want %v", got, t.CPVNames), 0, 0)
	}
}

func (h *Harness) checkMassFractions(r *Report, b *tabulated.Backend, t Target) {
	actual := make([]float64, len(t.OutputMassFractions))
	if err := b.ComputeMassFractions(t.InputCPVs, actual); err != nil {
		r.Checks++
		r.failErr(t.TestName, CheckMassFractions, err)
		return
	}
	for i, want := range t.OutputMassFractions {
		r.Checks++
		if !CloseRelative(want, actual[i], RelativeTolerance) {
			r.fail(t.TestName, CheckMassFractions, fmt.Sprintf("mass fraction [%d]", i), want, actual[i])
		}
	}
}

func (h *Harness) checkProgressVariables(r *Report, b *tabulated.Backend, t Target) {
	actual := make([]float64, len(t.OutputCPVs))
	if err := b.ComputeProgressVariables(t.InputMassFractions, actual); err != nil {
		r.Checks++
		r.failErr(t.TestName, CheckProgressVariables, err)
		return
	}
	for i, want := range t.OutputCPVs {
		r.Checks++
		if !CloseRelative(want, actual[i], RelativeTolerance) {
			r.fail(t.TestName, CheckProgressVariables, fmt.Sprintf("progress variable [%d]", i), want, actual[i])
		}
	}
}

func (h *Harness) checkSource(r *Report, b *tabulated.Backend, t Target) {
	n := len(b.ExtraVariables())
	r.Checks++
	if err := eos.CheckLength("input_cpvs", t.InputCPVs, n); err != nil {
		r.failErr(t.TestName, CheckSource, err)
		return
	}
	if err := eos.CheckLength("output_source_terms", t.OutputSourceTerms, n); err != nil {
		r.failErr(t.TestName, CheckSource, err)
		return
	}

	rhoC := make([]float64, n)
	for i, c := range t.InputCPVs {
		rhoC[i] = c * SourceDensity
	}
	actual := make([]float64, n)
	q, err := b.ChemistrySource(SourceDensity, rhoC, actual)
	if err != nil {
		r.failErr(t.TestName, CheckSource, err)
		return
	}
	if !CloseRelative(t.OutputSourceEnergy, q, SourceTolerance) {
		r.fail(t.TestName, CheckSource, "energy source", t.OutputSourceEnergy, q)
	}
	for i, want := range t.OutputSourceTerms {
		r.Checks++
		if !CloseRelative(want, actual[i], SourceTolerance) {
			r.fail(t.TestName, CheckSource, fmt.Sprintf("progress source [%d]", i), want, actual[i])
		}
	}
}

// probe builds the packed state [pad, ρ, ρE, ρu, ρC...] and its layout.
func probe(t Target) (*fields.Layout, []float64, []float64, error) {
	euler := []float64{0, ProbeDensity, ProbeEnergy, ProbeMomentum}
	state := append([]float64(nil), euler...)
	for _, c := range t.InputCPVs {
		state = append(state, c*ProbeDensity)
	}
	layout, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: 3, Offset: 1},
		fields.Field{Name: fields.DensityExtraVariables, Components: len(t.CPVNames), ComponentNames: t.CPVNames, Offset: len(euler)},
	)
	return layout, euler, state, err
}

func (h *Harness) checkThermodynamics(r *Report, b *tabulated.Backend, t Target) {
	layout, euler, state, err := probe(t)
	if err != nil {
		r.Checks++
		r.failErr(t.TestName, CheckThermodynamics, err)
		return
	}
	detailed := b.Detailed()

	// the expected composition is in reference order; the detailed backend
	// wants mechanism order
	y := make([]float64, len(detailed.Species()))
	if err := b.Expand(t.OutputMassFractions, y); err != nil {
		r.Checks++
		r.failErr(t.TestName, CheckThermodynamics, err)
		return
	}

	r.Checks++
	refT, err := massFraction(detailed.ThermodynamicMassFractionFunction(eos.Temperature, layout))(euler, y)
	if err != nil {
		r.failErr(t.TestName, CheckThermodynamics, fmt.Errorf("detailed temperature: %w", err))
		return
	}
	redT, err := thermo(b.ThermodynamicFunction(eos.Temperature, layout))(state)
	if err != nil {
		r.failErr(t.TestName, CheckThermodynamics, fmt.Errorf("reduced temperature: %w", err))
		return
	}
	if !FloatEqual(refT, redT) {
		r.fail(t.TestName, CheckThermodynamics, "temperatures differ", refT, redT)
	}

	for _, p := range eos.Properties() {
		r.Checks += 2

		want, werr := massFraction(detailed.ThermodynamicMassFractionFunction(p, layout))(euler, y)
		got, gerr := thermo(b.ThermodynamicFunction(p, layout))(state)
		h.compare(r, t.TestName, p, "", want, got, werr, gerr)

		want, werr = massFractionAt(detailed.ThermodynamicTemperatureMassFractionFunction(p, layout))(euler, y, refT)
		got, gerr = thermoAt(b.ThermodynamicTemperatureFunction(p, layout))(state, redT)
		h.compare(r, t.TestName, p, " with temperature", want, got, werr, gerr)
	}
}

func (h *Harness) compare(r *Report, target string, p eos.Property, variant string, want, got float64, werr, gerr error) {
	switch {
	case werr != nil:
		r.failErr(target, CheckThermodynamics, fmt.Errorf("detailed %v%s: %w", p, variant, werr))
	case gerr != nil:
		r.failErr(target, CheckThermodynamics, fmt.Errorf("reduced %v%s: %w", p, variant, gerr))
	case !FloatEqual(want, got):
		r.fail(target, CheckThermodynamics, fmt.Sprintf("%v%s", p, variant), want, got)
	}
}

// The helpers below fold a bind error into the call so every comparison is
// reported the same way.

func thermo(fn eos.ThermodynamicFunction, err error) eos.ThermodynamicFunction {
	if err != nil {
		return func([]float64) (float64, error) { return 0, err }
	}
	return fn
}

func massFraction(fn eos.MassFractionFunction, err error) eos.MassFractionFunction {
	if err != nil {
		return func([]float64, []float64) (float64, error) { return 0, err }
	}
	return fn
}

func massFractionAt(fn eos.MassFractionTemperatureFunction, err error) eos.MassFractionTemperatureFunction {
	if err != nil {
		return func([]float64, []float64, float64) (float64, error) { return 0, err }
	}
	return fn
}

func thermoAt(fn eos.ThermodynamicTemperatureFunction, err error) eos.ThermodynamicTemperatureFunction {
	if err != nil {
		return func([]float64, float64) (float64, error) { return 0, err }
	}
	return fn
}
