package tabulated

import (
	"io"
	"path/filepath"
	"slices"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/kinetics"
	"github.com/sirupsen/logrus"
)

// Backend is a loaded reduced-order model. It holds only immutable data and
// is safe for concurrent use once built.
type Backend struct {
	name     string
	dir      string
	meta     Metadata
	manifold *Manifold
	detailed eos.Kinetics

	// refIndex maps reference species to detailed mechanism species.
	refIndex []int
	nDetail  int

	closureTemperature float64
	log                logrus.FieldLogger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used while loading and for decode diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Backend) { b.log = l }
}

// WithClosureTemperature overrides the temperature used by ChemistrySource.
func WithClosureTemperature(t float64) Option {
	return func(b *Backend) {
		if t > 0 {
			b.closureTemperature = t
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Load builds a backend from a model directory. It validates everything
// before constructing; on error no backend is returned and the error wraps
// eos.ErrInvalidModel.
func Load(dir string, opts ...Option) (*Backend, error) {
	probe := &Backend{log: discardLogger()}
	for _, o := range opts {
		o(probe)
	}
	log := probe.log.WithField("model", dir)

	meta, err := ReadMetadata(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}

	species, cpvs, w, err := ReadWeights(filepath.Join(dir, meta.WeightsPath))
	if err != nil {
		return nil, err
	}
	var manifold *Manifold
	if meta.InversePath != "" {
		ispecies, icpvs, winv, err := ReadWeights(filepath.Join(dir, meta.InversePath))
		if err != nil {
			return nil, err
		}
		if !slices.Equal(species, ispecies) || !slices.Equal(cpvs, icpvs) {
			return nil, invalidModel("decode weights label %s × %s, encode weights %s × %s",
				formatNames(ispecies), formatNames(icpvs), formatNames(species), formatNames(cpvs))
		}
		manifold, err = NewManifold(species, cpvs, w, winv)
		if err != nil {
			return nil, err
		}
	} else {
		log.Debug("no decode weights shipped, using the pseudo-inverse")
		if manifold, err = NewManifold(species, cpvs, w, nil); err != nil {
			return nil, err
		}
	}

	if meta.Regressor != "" {
		log.WithField("rpath", meta.Regressor).Warn("learned source regressors are not used; sources follow the encode Jacobian")
	}

	detailed, err := kinetics.Load(filepath.Join(dir, meta.Mechanism), kinetics.WithLogger(probe.log))
	if err != nil {
		return nil, err
	}

	b, err := New(*meta, manifold, detailed, opts...)
	if err != nil {
		return nil, err
	}
	b.dir = dir

	log.WithFields(logrus.Fields{
		"name":               b.name,
		"mechanism":          meta.Mechanism,
		"referenceSpecies":   len(species),
		"progressVariables":  len(cpvs),
		"closureTemperature": b.closureTemperature,
	}).Debug("reduced model loaded")

	return b, nil
}

// New assembles a backend from parsed parts. The reference species of the
// manifold must all be species of the detailed backend.
func New(meta Metadata, manifold *Manifold, detailed eos.Kinetics, opts ...Option) (*Backend, error) {
	b := &Backend{
		name:               meta.Name,
		meta:               meta,
		manifold:           manifold,
		detailed:           detailed,
		closureTemperature: meta.ClosureTemperature,
		log:                discardLogger(),
	}
	if !(b.closureTemperature > 0) {
		b.closureTemperature = DefaultClosureTemperature
	}
	for _, o := range opts {
		o(b)
	}

	all := detailed.Species()
	pos := make(map[string]int, len(all))
	for i, s := range all {
		pos[s] = i
	}
	b.nDetail = len(all)
	b.refIndex = make([]int, len(manifold.species))
	for i, s := range manifold.species {
		j, ok := pos[s]
		if !ok {
			return nil, invalidModel("reference species %q is not in the mechanism", s)
		}
		b.refIndex[i] = j
	}

	return b, nil
}

// Name returns the model name from its metadata.
func (b *Backend) Name() string { return b.name }

// Dir returns the directory the model was loaded from, if any.
func (b *Backend) Dir() string { return b.dir }

// Metadata returns the parsed descriptor.
func (b *Backend) Metadata() Metadata { return b.meta }

// Manifold returns the encode/decode pair.
func (b *Backend) Manifold() *Manifold { return b.manifold }

// Detailed returns the backend sources and properties are delegated to.
func (b *Backend) Detailed() eos.Kinetics { return b.detailed }

// ClosureTemperature returns the temperature ChemistrySource evaluates at.
func (b *Backend) ClosureTemperature() float64 { return b.closureTemperature }

// Species is always empty: every species is carried through the progress
// variables.
func (b *Backend) Species() []string { return []string{} }

// ReferenceSpecies returns the species basis the manifold was fitted on.
func (b *Backend) ReferenceSpecies() []string { return b.manifold.Species() }

// ExtraVariables returns the progress-variable names.
func (b *Backend) ExtraVariables() []string { return b.manifold.ProgressVariables() }

// ComputeMassFractions decodes progress variables into reference-species
// mass fractions.
func (b *Backend) ComputeMassFractions(progress, massFractions []float64) error {
	return b.manifold.Decode(progress, massFractions)
}

// ComputeProgressVariables encodes reference-species mass fractions.
func (b *Backend) ComputeProgressVariables(massFractions, progress []float64) error {
	return b.manifold.Encode(massFractions, progress)
}

// Expand scatters reference-species mass fractions into the detailed
// mechanism ordering. Species outside the reference basis are zero.
func (b *Backend) Expand(refMassFractions, out []float64) error {
	if err := eos.CheckLength("reference mass fractions", refMassFractions, len(b.refIndex)); err != nil {
		return err
	}
	if err := eos.CheckLength("mechanism mass fractions", out, b.nDetail); err != nil {
		return err
	}
	clear(out)
	for i, j := range b.refIndex {
		out[j] = refMassFractions[i]
	}
	return nil
}

var _ eos.Reduced = (*Backend)(nil)
