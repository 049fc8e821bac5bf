// Package testutil builds populated documents for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/schematic"
)

type wireData struct {
	from, to item.Coord
}

// Builder accumulates items and attaches them in order: parts, then wires.
type Builder struct {
	t     *testing.T
	title string
	parts []partData
	wires []wireData
	opts  []schematic.Option
}

// NewBuilder creates a builder. opts are passed to schematic.New.
func NewBuilder(t *testing.T, opts ...schematic.Option) *Builder {
	t.Helper()
	return &Builder{t: t, opts: opts}
}

// WithTitle sets the document title.
func (b *Builder) WithTitle(title string) *Builder {
	b.title = title
	return b
}

// WithPart adds a part taking the given designator prefix. An empty prefix
// gives a part without a designator.
func (b *Builder) WithPart(prefix string, opts ...PartOption) *Builder {
	p := defaultPart(prefix)
	for _, opt := range opts {
		opt(&p)
	}
	b.parts = append(b.parts, p)
	return b
}

// WithWire adds a wire between two points.
func (b *Builder) WithWire(x1, y1, x2, y2 float64) *Builder {
	b.wires = append(b.wires, wireData{item.Coord{X: x1, Y: y1}, item.Coord{X: x2, Y: y2}})
	return b
}

// Build attaches everything to a new document registered with reg (which
// may be nil) and clears the dirty flag. The document is closed when the
// test ends.
func (b *Builder) Build(reg *schematic.Registry) *schematic.Document {
	b.t.Helper()
	doc := schematic.New(reg, b.opts...)
	b.t.Cleanup(doc.Close)

	if b.title != "" {
		doc.SetTitle(b.title)
	}
	for _, p := range b.parts {
		require.NoError(b.t, doc.Attach(item.NewPartWithID(p.id, p.spec, p.at)))
	}
	for _, w := range b.wires {
		require.NoError(b.t, doc.Attach(item.NewWire(w.from, w.to)))
	}
	doc.SetDirty(false)
	return doc
}
