package item

import "slices"

// PartSpec describes a part independent of placement.
type PartSpec struct {
	Name   string  // library name, e.g. "resistor"
	Prefix string  // designator prefix, "" for parts without one (ground)
	Value  string  // e.g. "10k"
	Pins   []Coord // pin offsets relative to the part position
}

// Part is a placed component.
type Part struct {
	Base
	spec   PartSpec
	refdes string
}

var _ Item = (*Part)(nil)

// NewPart places a part described by spec at pos.
func NewPart(spec PartSpec, pos Coord) *Part {
	return NewPartWithID("", spec, pos)
}

// NewPartWithID is NewPart with a caller-chosen id. An empty id generates one.
func NewPartWithID(id string, spec PartSpec, pos Coord) *Part {
	spec.Pins = slices.Clone(spec.Pins)
	p := &Part{spec: spec}
	p.init(p, id, pos)
	return p
}

func (p *Part) Kind() Kind { return KindPart }

// Name returns the library name of the part.
func (p *Part) Name() string { return p.spec.Name }

// Spec returns a copy of the part's description.
func (p *Part) Spec() PartSpec {
	s := p.spec
	s.Pins = slices.Clone(s.Pins)
	return s
}

func (p *Part) Value() string { return p.spec.Value }

func (p *Part) SetValue(v string) { p.spec.Value = v }

// Pins returns the pin offsets relative to the part position.
func (p *Part) Pins() []Coord { return slices.Clone(p.spec.Pins) }

func (p *Part) RefDesPrefix() string { return p.spec.Prefix }

func (p *Part) RefDes() string { return p.refdes }

func (p *Part) SetRefDes(refdes string) { p.refdes = refdes }

func (p *Part) Connections() []Coord {
	out := make([]Coord, len(p.spec.Pins))
	for i, pin := range p.spec.Pins {
		out[i] = p.pos.Add(pin)
	}
	return out
}

// Move places the part at pos and notifies move observers.
func (p *Part) Move(pos Coord) {
	p.moveTo(pos)
}
