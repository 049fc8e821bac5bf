// Package library is the part catalog: named part definitions that can be
// placed on a sheet. Definitions come from built-ins and from YAML files in
// the configured library directories, one definition per file.
package library

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/schematic/internal/item"
)

// Definition describes a placeable part.
type Definition struct {
	Name        string       `yaml:"name"`
	Prefix      string       `yaml:"prefix,omitempty"`
	Value       string       `yaml:"value,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Pins        []item.Coord `yaml:"pins"`
}

// Validate checks that the definition can produce a part.
func (d Definition) Validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if len(d.Pins) == 0 {
		return fmt.Errorf("part %q needs at least one pin", d.Name)
	}
	return nil
}

// Spec converts the definition for item.NewPart.
func (d Definition) Spec() item.PartSpec {
	return item.PartSpec{
		Name:   d.Name,
		Prefix: d.Prefix,
		Value:  d.Value,
		Pins:   d.Pins,
	}
}

// ReadDefinition parses a definition file. A missing name defaults to
// fallbackName.
func ReadDefinition(path, fallbackName string) (Definition, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- library paths come from config
	if err != nil {
		return Definition{}, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = fallbackName
	}
	def.Name = normalize(def.Name)
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Builtins are always available. Pin offsets are on a 20-unit grid.
func Builtins() []Definition {
	twoPin := []item.Coord{{X: 0, Y: 0}, {X: 40, Y: 0}}
	return []Definition{
		{Name: "capacitor", Prefix: "C", Value: "100n", Description: "Capacitor", Pins: twoPin},
		{Name: "diode", Prefix: "D", Value: "1N4148", Description: "Diode", Pins: twoPin},
		{Name: "ground", Description: "Ground reference", Pins: []item.Coord{{X: 0, Y: 0}}},
		{Name: "inductor", Prefix: "L", Value: "10u", Description: "Inductor", Pins: twoPin},
		{Name: "npn", Prefix: "Q", Value: "2N3904", Description: "NPN transistor",
			Pins: []item.Coord{{X: 0, Y: 20}, {X: 20, Y: 0}, {X: 20, Y: 40}}},
		{Name: "resistor", Prefix: "R", Value: "1k", Description: "Resistor", Pins: twoPin},
		{Name: "vsource", Prefix: "V", Value: "5", Description: "Voltage source",
			Pins: []item.Coord{{X: 0, Y: 0}, {X: 0, Y: 40}}},
	}
}
