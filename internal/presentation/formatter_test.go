package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/library"
	"github.com/zjrosen/schematic/internal/schematic"
)

func TestFormatParts(t *testing.T) {
	var buf bytes.Buffer
	parts := FromDefinitions([]library.Definition{
		{Name: "resistor", Prefix: "R", Value: "1k", Pins: []item.Coord{{}, {X: 40}}},
		{Name: "probe"},
	})

	require.NoError(t, NewFormatter(&buf).FormatParts(parts))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "resistor", got[0]["name"])
	require.Equal(t, "R", got[0]["prefix"])
	require.Len(t, got[0]["pins"], 2)
	require.Equal(t, []any{}, got[1]["pins"])
	require.NotContains(t, got[1], "value")
}

func TestFormatPlaced(t *testing.T) {
	var buf bytes.Buffer
	p := item.NewPartWithID("p-1", item.PartSpec{Name: "resistor", Prefix: "R", Pins: []item.Coord{{}}}, item.Coord{X: 10, Y: 20})
	p.SetRefDes("R4")

	require.NoError(t, NewFormatter(&buf).FormatPlaced(FromItem(p, "amp.yaml")))

	var got PlacedDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, PlacedDTO{ID: "p-1", Kind: "part", RefDes: "R4", At: item.Coord{X: 10, Y: 20}, File: "amp.yaml"}, got)
}

func TestFormatDocuments_FlattensSummary(t *testing.T) {
	var buf bytes.Buffer
	doc := schematic.New(nil)
	t.Cleanup(doc.Close)
	doc.SetTitle("amp")

	require.NoError(t, NewFormatter(&buf).FormatDocuments([]DocumentDTO{{Path: "amp.yaml", Summary: doc.Summary()}}))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "amp.yaml", got[0]["path"])
	require.Equal(t, "amp", got[0]["title"])
	require.Equal(t, float64(1), got[0]["zoom"])
}
