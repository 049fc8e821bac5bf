package item

import "math"

// Wire is a straight connection between two points. Wires take no designator.
type Wire struct {
	Base
	end Coord
}

var _ Item = (*Wire)(nil)

// NewWire creates a wire from start to end.
func NewWire(start, end Coord) *Wire {
	return NewWireWithID("", start, end)
}

// NewWireWithID is NewWire with a caller-chosen id. An empty id generates one.
func NewWireWithID(id string, start, end Coord) *Wire {
	w := &Wire{end: end}
	w.init(w, id, start)
	return w
}

func (w *Wire) Kind() Kind { return KindWire }

func (w *Wire) Start() Coord { return w.pos }

func (w *Wire) End() Coord { return w.end }

func (w *Wire) Length() float64 {
	d := w.end.Sub(w.pos)
	return math.Hypot(d.X, d.Y)
}

func (w *Wire) Connections() []Coord {
	return []Coord{w.pos, w.end}
}

func (w *Wire) RefDesPrefix() string { return "" }

func (w *Wire) RefDes() string { return "" }

// SetRefDes is a no-op: wires carry no designator.
func (w *Wire) SetRefDes(string) {}

// Move translates the wire so that it starts at pos.
func (w *Wire) Move(pos Coord) {
	if w.destroyed {
		return
	}
	w.end = w.end.Add(pos.Sub(w.pos))
	w.moveTo(pos)
}
