package tabulated

import (
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// MetadataFile is the descriptor every model directory carries.
const MetadataFile = "metadata.yaml"

// DefaultClosureTemperature is used by ChemistrySource when the metadata
// does not name one.
const DefaultClosureTemperature = 1500.0

// Metadata describes a model directory. Paths are relative to it.
type Metadata struct {
	Name        string
	Mechanism   string
	WeightsPath string
	InversePath string
	// Regressor names a learned source model; sources are always closed
	// through the encode Jacobian so it is only reported.
	Regressor          string
	Version            string
	ClosureTemperature float64
}

// ReadMetadata parses a metadata descriptor. Scalars are accepted loosely
// (version: 1.0 and version: "1.0" are the same).
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalidModel("read metadata: %v", err)
	}
	return ParseMetadata(data)
}

// ParseMetadata parses metadata from YAML bytes.
func ParseMetadata(data []byte) (*Metadata, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, invalidModel("parse metadata: %v", err)
	}

	str := func(key string) (string, error) {
		s, err := cast.ToStringE(raw[key])
		if err != nil {
			return "", invalidModel("metadata %s: %v", key, err)
		}
		return s, nil
	}

	m := &Metadata{ClosureTemperature: DefaultClosureTemperature}
	for key, dst := range map[string]*string{
		"name":      &m.Name,
		"mechanism": &m.Mechanism,
		"wpath":     &m.WeightsPath,
		"ipath":     &m.InversePath,
		"rpath":     &m.Regressor,
		"version":   &m.Version,
	} {
		s, err := str(key)
		if err != nil {
			return nil, err
		}
		*dst = s
	}

	if m.Mechanism == "" {
		return nil, invalidModel("metadata does not name a mechanism")
	}
	if m.WeightsPath == "" {
		return nil, invalidModel("metadata does not name encode weights (wpath)")
	}

	if v, ok := raw["closure_temperature"]; ok {
		t, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, invalidModel("metadata closure_temperature: %v", err)
		}
		if !(t > 0) {
			return nil, invalidModel("closure_temperature must be positive, got %g", t)
		}
		m.ClosureTemperature = t
	}

	return m, nil
}
