package consistency

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TargetsFile is the name of the fixture file inside a model directory.
const TargetsFile = "testTargets.yaml"

// Target is one labelled test case.
type Target struct {
	TestName            string    `yaml:"testName"`
	SpeciesNames        []string  `yaml:"species_names"`
	CPVNames            []string  `yaml:"cpv_names"`
	InputCPVs           []float64 `yaml:"input_cpvs"`
	OutputMassFractions []float64 `yaml:"output_mass_fractions"`
	InputMassFractions  []float64 `yaml:"input_mass_fractions"`
	OutputCPVs          []float64 `yaml:"output_cpvs"`
	OutputSourceEnergy  float64   `yaml:"output_source_energy"`
	OutputSourceTerms   []float64 `yaml:"output_source_terms"`
}

// LoadTargets reads a targets file.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("consistency: read targets: %w", err)
	}
	return ParseTargets(data)
}

// ParseTargets decodes targets from YAML. The document must be a sequence.
func ParseTargets(data []byte) ([]Target, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("consistency: parse targets: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, ErrNotSequence
	}

	var targets []Target
	if err := doc.Content[0].Decode(&targets); err != nil {
		return nil, fmt.Errorf("consistency: decode targets: %w", err)
	}
	for i := range targets {
		if targets[i].TestName == "" {
			targets[i].TestName = fmt.Sprintf("target%d", i)
		}
	}
	return targets, nil
}
