package mechanism

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Species is one chemical species with its thermodynamic data.
type Species struct {
	Name        string
	Composition map[string]float64
	// MolecularWeight in kg/mol.
	MolecularWeight float64
	Thermo          NASA7
}

// Arrhenius holds k = A T^B exp(-Ea / (Ru T)) in SI units.
type Arrhenius struct {
	A, B, Ea float64
}

// Stoich pairs a species index with its stoichiometric coefficient.
type Stoich struct {
	Species int
	Coeff   float64
}

// Reaction is an elementary or three-body reaction.
type Reaction struct {
	Equation   string
	Reactants  []Stoich
	Products   []Stoich
	Reversible bool
	ThirdBody  bool
	// Efficiencies holds a third-body efficiency per species (default 1).
	Efficiencies []float64
	Rate         Arrhenius
}

// Mechanism is an immutable parsed mechanism.
type Mechanism struct {
	Name      string
	Path      string
	Elements  []string
	Species   []Species
	Reactions []Reaction

	index map[string]int
}

type mechanismFile struct {
	Description string            `yaml:"description"`
	Units       map[string]string `yaml:"units"`
	Phases      []phaseEntry      `yaml:"phases"`
	Species     []speciesEntry    `yaml:"species"`
	Reactions   []reactionEntry   `yaml:"reactions"`
}

type phaseEntry struct {
	Name     string   `yaml:"name"`
	Elements []string `yaml:"elements"`
	Species  []string `yaml:"species"`
}

type speciesEntry struct {
	Name        string             `yaml:"name"`
	Composition map[string]float64 `yaml:"composition"`
	Thermo      struct {
		Model             string      `yaml:"model"`
		TemperatureRanges []float64   `yaml:"temperature-ranges"`
		Data              [][]float64 `yaml:"data"`
	} `yaml:"thermo"`
}

type reactionEntry struct {
	Equation          string             `yaml:"equation"`
	Type              string             `yaml:"type"`
	RateConstant      map[string]float64 `yaml:"rate-constant"`
	Efficiencies      map[string]float64 `yaml:"efficiencies"`
	DefaultEfficiency *float64           `yaml:"default-efficiency"`
}

var supportedUnits = map[string]string{
	"length":            "m",
	"quantity":          "mol",
	"activation-energy": "J/mol",
}

// Load reads and parses a mechanism file.
func Load(path string) (*Mechanism, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMechanism, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// Parse builds a mechanism from YAML bytes.
func Parse(data []byte) (*Mechanism, error) {
	var doc mechanismFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMechanism, err)
	}
	m, err := build(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMechanism, err)
	}
	return m, nil
}

func build(doc *mechanismFile) (*Mechanism, error) {
	for k, v := range doc.Units {
		want, ok := supportedUnits[k]
		if !ok {
			return nil, fmt.Errorf("unsupported unit kind %q", k)
		}
		if v != want {
			return nil, fmt.Errorf("unit %s must be %s, got %s", k, want, v)
		}
	}

	byName := make(map[string]*speciesEntry, len(doc.Species))
	for i := range doc.Species {
		s := &doc.Species[i]
		if s.Name == "" {
			return nil, fmt.Errorf("species %d has no name", i)
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate species %q", s.Name)
		}
		byName[s.Name] = s
	}

	// the phase fixes species order when present
	order := make([]string, 0, len(doc.Species))
	var elements []string
	if len(doc.Phases) > 0 {
		elements = doc.Phases[0].Elements
		order = append(order, doc.Phases[0].Species...)
	}
	if len(order) == 0 {
		for _, s := range doc.Species {
			order = append(order, s.Name)
		}
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("mechanism defines no species")
	}

	m := &Mechanism{
		Elements: elements,
		Species:  make([]Species, 0, len(order)),
		index:    make(map[string]int, len(order)),
	}

	for _, name := range order {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("phase species %q is not defined", name)
		}
		if _, dup := m.index[name]; dup {
			return nil, fmt.Errorf("phase lists species %q twice", name)
		}
		sp, err := buildSpecies(s, elements)
		if err != nil {
			return nil, err
		}
		m.index[name] = len(m.Species)
		m.Species = append(m.Species, sp)
	}

	for i := range doc.Reactions {
		r, err := m.buildReaction(&doc.Reactions[i])
		if err != nil {
			return nil, fmt.Errorf("reaction %d: %w", i+1, err)
		}
		m.Reactions = append(m.Reactions, r)
	}

	return m, nil
}

func buildSpecies(s *speciesEntry, elements []string) (Species, error) {
	if len(s.Composition) == 0 {
		return Species{}, fmt.Errorf("species %q has no composition", s.Name)
	}
	allowed := make(map[string]bool, len(elements))
	for _, e := range elements {
		allowed[e] = true
	}

	// sorted so the weight sum does not depend on map order
	names := make([]string, 0, len(s.Composition))
	for e := range s.Composition {
		names = append(names, e)
	}
	sort.Strings(names)

	mw := 0.0
	for _, e := range names {
		if len(elements) > 0 && !allowed[e] {
			return Species{}, fmt.Errorf("species %q uses undeclared element %q", s.Name, e)
		}
		w, ok := AtomicWeight(e)
		if !ok {
			return Species{}, fmt.Errorf("species %q: unknown element %q", s.Name, e)
		}
		mw += w * s.Composition[e]
	}

	if model := strings.ToUpper(s.Thermo.Model); model != "NASA7" {
		return Species{}, fmt.Errorf("species %q: unsupported thermo model %q", s.Name, s.Thermo.Model)
	}
	thermo, err := newNASA7(s.Thermo.TemperatureRanges, s.Thermo.Data)
	if err != nil {
		return Species{}, fmt.Errorf("species %q: %w", s.Name, err)
	}

	comp := make(map[string]float64, len(s.Composition))
	for k, v := range s.Composition {
		comp[k] = v
	}
	return Species{Name: s.Name, Composition: comp, MolecularWeight: mw, Thermo: thermo}, nil
}

func (m *Mechanism) buildReaction(rs *reactionEntry) (Reaction, error) {
	reac, prod, reversible, thirdBody, err := parseEquation(rs.Equation)
	if err != nil {
		return Reaction{}, err
	}

	switch rs.Type {
	case "", "elementary":
		if thirdBody {
			return Reaction{}, fmt.Errorf("%q uses M but is not a three-body reaction", rs.Equation)
		}
	case "three-body":
		if !thirdBody {
			return Reaction{}, fmt.Errorf("three-body reaction %q has no M", rs.Equation)
		}
	default:
		return Reaction{}, fmt.Errorf("unsupported reaction type %q", rs.Type)
	}

	A, okA := rs.RateConstant["A"]
	b := rs.RateConstant["b"]
	Ea := rs.RateConstant["Ea"]
	if !okA || A <= 0 || math.IsNaN(b) || math.IsNaN(Ea) {
		return Reaction{}, fmt.Errorf("%q: rate-constant needs a positive A", rs.Equation)
	}

	r := Reaction{
		Equation:   rs.Equation,
		Reversible: reversible,
		ThirdBody:  thirdBody,
		Rate:       Arrhenius{A: A, B: b, Ea: Ea},
	}
	if r.Reactants, err = m.stoich(reac); err != nil {
		return Reaction{}, err
	}
	if r.Products, err = m.stoich(prod); err != nil {
		return Reaction{}, err
	}

	if thirdBody {
		def := 1.0
		if rs.DefaultEfficiency != nil {
			def = *rs.DefaultEfficiency
		}
		r.Efficiencies = make([]float64, len(m.Species))
		for i := range r.Efficiencies {
			r.Efficiencies[i] = def
		}
		for name, eff := range rs.Efficiencies {
			i, ok := m.index[name]
			if !ok {
				return Reaction{}, fmt.Errorf("%q: efficiency for unknown species %q", rs.Equation, name)
			}
			r.Efficiencies[i] = eff
		}
	} else if len(rs.Efficiencies) > 0 {
		return Reaction{}, fmt.Errorf("%q: efficiencies on a reaction without third body", rs.Equation)
	}

	return r, nil
}

func (m *Mechanism) stoich(s side) ([]Stoich, error) {
	out := make([]Stoich, 0, len(s))
	for name, c := range s {
		i, ok := m.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown species %q", name)
		}
		out = append(out, Stoich{Species: i, Coeff: c})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Species < out[b].Species })
	return out, nil
}

// Index returns the position of the named species.
func (m *Mechanism) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// SpeciesNames returns the species names in mechanism order.
func (m *Mechanism) SpeciesNames() []string {
	out := make([]string, len(m.Species))
	for i, s := range m.Species {
		out[i] = s.Name
	}
	return out
}

// NumSpecies returns the number of species.
func (m *Mechanism) NumSpecies() int { return len(m.Species) }
