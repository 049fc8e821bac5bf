package testutil

import "github.com/zjrosen/schematic/internal/item"

// WithVoltageDivider adds a source, two resistors, a ground and the wires
// joining them.
//
// Layout:
//
//	V1 (0,0)-(0,40)
//	R1 (40,0)-(80,0)
//	R2 (80,40)-(120,40)
//	GND (0,80)
func (b *Builder) WithVoltageDivider() *Builder {
	return b.
		WithPart("V", Name("vsource"), Value("5"), Pins(item.Coord{}, item.Coord{Y: 40}), At(0, 0)).
		WithPart("R", Name("resistor"), Value("10k"), At(40, 0)).
		WithPart("R", Name("resistor"), Value("10k"), At(80, 40)).
		WithPart("", Name("ground"), Pins(item.Coord{}), At(0, 80)).
		WithWire(0, 0, 40, 0).
		WithWire(80, 0, 80, 40).
		WithWire(0, 40, 0, 80).
		WithWire(120, 40, 120, 80).
		WithWire(120, 80, 0, 80)
}
