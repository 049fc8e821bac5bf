package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/item"
)

func TestSummary(t *testing.T) {
	d := New(nil)
	d.SetTitle("amp")
	d.SetFilename("amp.yaml")

	parts := make([]*item.Part, 0, 11)
	for i := 0; i < 11; i++ {
		p := newResistor(item.Coord{X: float64(i * 100)})
		require.NoError(t, d.Attach(p))
		parts = append(parts, p)
	}
	require.NoError(t, d.Attach(newGround(item.Coord{X: 40})))
	require.NoError(t, d.Attach(item.NewWire(item.Coord{X: 40}, item.Coord{X: 40, Y: 40})))

	s := d.Summary()
	assert.Equal(t, "amp", s.Title)
	assert.Equal(t, "amp.yaml", s.Filename)
	assert.True(t, s.Dirty)
	assert.Equal(t, 13, s.Items)
	assert.Equal(t, 1, s.Wires)
	require.Len(t, s.Parts, 12)
	assert.Equal(t, "", s.Parts[0].RefDes, "parts without a designator sort first")
	assert.Equal(t, "R1", s.Parts[1].RefDes)
	assert.Equal(t, "R2", s.Parts[2].RefDes)
	assert.Equal(t, "R11", s.Parts[11].RefDes)
	assert.Equal(t, map[string]int{"R": 12}, s.Designators)

	// (40,0) joins R1 pin 2, the ground and the wire.
	assert.Equal(t, []item.Coord{{X: 40, Y: 0}}, s.Dots)

	// Summaries are copies.
	s.Designators["R"] = 99
	assert.Equal(t, map[string]int{"R": 12}, d.Designators())

	parts[0].Destroy()
	assert.Equal(t, 12, d.Summary().Items)
}

func TestSummary_Lines(t *testing.T) {
	d := New(nil)
	d.SetTitle("x")
	require.NoError(t, d.Attach(newResistor(item.Coord{})))

	lines := d.Summary().Lines()
	assert.Equal(t, "title: x", lines[0])
	assert.Contains(t, lines, "part R1 resistor 1k at (0,0)")
	assert.Contains(t, lines, "next R2")
	assert.Contains(t, lines, "items: 1")
}
