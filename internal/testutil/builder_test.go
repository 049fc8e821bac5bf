package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/schematic"
)

func TestBuilder_Empty(t *testing.T) {
	doc := NewBuilder(t).Build(nil)

	require.Zero(t, doc.ItemCount())
	require.False(t, doc.Dirty())
	require.Empty(t, doc.Designators())
}

func TestBuilder_PartsAndWires(t *testing.T) {
	reg := schematic.NewRegistry()
	doc := NewBuilder(t, schematic.WithAuthor("ada")).
		WithTitle("amp").
		WithPart("R", Value("1k"), ID("r-a")).
		WithPart("R", Value("2k"), At(100, 0)).
		WithPart("C").
		WithWire(40, 0, 100, 0).
		Build(reg)

	require.Equal(t, 1, reg.Count())
	require.Equal(t, "amp", doc.Title())
	require.Equal(t, "ada", doc.Author())
	require.Equal(t, 4, doc.ItemCount())
	require.False(t, doc.Dirty())
	require.Equal(t, map[string]int{"R": 3, "C": 2}, doc.Designators())

	r1, ok := doc.FindByRefDes("R1")
	require.True(t, ok)
	require.Equal(t, "r-a", r1.ID())
	require.Equal(t, "1k", r1.(*item.Part).Value())

	r2, ok := doc.FindByRefDes("R2")
	require.True(t, ok)
	require.Equal(t, item.Coord{X: 100, Y: 0}, r2.Position())
}

func TestBuilder_ClosesOnCleanup(t *testing.T) {
	reg := schematic.NewRegistry()
	t.Run("build", func(t *testing.T) {
		NewBuilder(t).WithPart("R").Build(reg)
		require.Equal(t, 1, reg.Count())
	})
	require.Zero(t, reg.Count())
}

func TestWithVoltageDivider(t *testing.T) {
	doc := NewBuilder(t).WithVoltageDivider().Build(nil)
	s := doc.Summary()

	require.Equal(t, 9, s.Items)
	require.Equal(t, 5, s.Wires)
	require.Equal(t, []string{"", "R1", "R2", "V1"}, refdesOf(s.Parts))
	require.Equal(t, []item.Coord{{X: 0, Y: 80}}, s.Dots)
}

func refdesOf(parts []schematic.PartSummary) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.RefDes
	}
	return out
}
