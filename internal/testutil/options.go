package testutil

import "github.com/zjrosen/schematic/internal/item"

// partData holds a part to be attached by the builder.
type partData struct {
	id   string
	spec item.PartSpec
	at   item.Coord
}

// defaultPart returns a two-pin part named after its prefix.
func defaultPart(prefix string) partData {
	return partData{
		spec: item.PartSpec{
			Name:   prefix,
			Prefix: prefix,
			Pins:   []item.Coord{{X: 0, Y: 0}, {X: 40, Y: 0}},
		},
	}
}

// PartOption configures a part during builder setup.
type PartOption func(*partData)

// At places the part.
func At(x, y float64) PartOption {
	return func(p *partData) { p.at = item.Coord{X: x, Y: y} }
}

// Value sets the part value.
func Value(v string) PartOption {
	return func(p *partData) { p.spec.Value = v }
}

// Name sets the library name.
func Name(name string) PartOption {
	return func(p *partData) { p.spec.Name = name }
}

// Pins replaces the pin offsets.
func Pins(pins ...item.Coord) PartOption {
	return func(p *partData) { p.spec.Pins = pins }
}

// ID fixes the item id.
func ID(id string) PartOption {
	return func(p *partData) { p.id = id }
}
