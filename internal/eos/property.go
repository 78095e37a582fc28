package eos

import (
	"fmt"
	"strings"
)

// Property names a thermodynamic quantity a backend can evaluate.
type Property int

const (
	Pressure Property = iota
	Temperature
	InternalSensibleEnergy
	SensibleEnthalpy
	SpecificHeatConstantVolume
	SpecificHeatConstantPressure
	SpeedOfSound
	Density
	numProperties
)

var propertyNames = [...]string{
	Pressure:                     "pressure",
	Temperature:                  "temperature",
	InternalSensibleEnergy:       "internalSensibleEnergy",
	SensibleEnthalpy:             "sensibleEnthalpy",
	SpecificHeatConstantVolume:   "specificHeatConstantVolume",
	SpecificHeatConstantPressure: "specificHeatConstantPressure",
	SpeedOfSound:                 "speedOfSound",
	Density:                      "density",
}

var propertyAliases = map[string]Property{
	"p":   Pressure,
	"t":   Temperature,
	"e":   InternalSensibleEnergy,
	"h":   SensibleEnthalpy,
	"cv":  SpecificHeatConstantVolume,
	"cp":  SpecificHeatConstantPressure,
	"a":   SpeedOfSound,
	"rho": Density,
}

func (p Property) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Property(%d)", int(p))
	}
	return propertyNames[p]
}

// Valid reports whether p is one of the declared properties.
func (p Property) Valid() bool { return p >= 0 && p < numProperties }

// Properties returns every declared property in declaration order.
func Properties() []Property {
	out := make([]Property, 0, numProperties)
	for p := Property(0); p < numProperties; p++ {
		out = append(out, p)
	}
	return out
}

// ParseProperty accepts a property name (case-insensitive) or a short alias
// such as "cp" or "rho".
func ParseProperty(s string) (Property, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if p, ok := propertyAliases[key]; ok {
		return p, nil
	}
	for p, name := range propertyNames {
		if strings.ToLower(name) == key {
			return Property(p), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedProperty, s)
}
