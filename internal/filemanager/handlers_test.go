package filemanager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/schematic"
)

var formats = []struct {
	name string
	ext  string
}{
	{"yaml", ".yaml"},
	{"sqlite", SQLiteExtension},
}

func twoPin(name, prefix, value string) item.PartSpec {
	return item.PartSpec{
		Name:   name,
		Prefix: prefix,
		Value:  value,
		Pins:   []item.Coord{{X: 0, Y: 0}, {X: 40, Y: 0}},
	}
}

// buildSheet returns a document holding R1, R3 (R2 deleted), C1, a ground
// and two wires.
func buildSheet(t *testing.T, m *Manager) *schematic.Document {
	t.Helper()
	doc := schematic.New(nil, schematic.WithResolver(m))
	doc.SetTitle("amp")
	doc.SetAuthor("ada")
	doc.SetComments("line one\nline two")
	doc.SetNetlistFilename("amp.net")
	doc.SetZoom(1.5)
	sim := schematic.DefaultSimSettings()
	sim.TransientStop = 0.02
	require.NoError(t, doc.SetSimSettings(sim))

	r1 := item.NewPart(twoPin("resistor", "R", "1k"), item.Coord{X: 0, Y: 0})
	r2 := item.NewPart(twoPin("resistor", "R", "2k"), item.Coord{X: 0, Y: 100})
	r3 := item.NewPart(twoPin("resistor", "R", "3k"), item.Coord{X: 0, Y: 200})
	c1 := item.NewPart(twoPin("capacitor", "C", "100n"), item.Coord{X: 100, Y: 0})
	gnd := item.NewPart(item.PartSpec{Name: "ground", Pins: []item.Coord{{}}}, item.Coord{X: 140, Y: 0})
	for _, p := range []*item.Part{r1, r2, r3, c1, gnd} {
		require.NoError(t, doc.Attach(p))
	}
	r2.Destroy()

	require.NoError(t, doc.Attach(item.NewWire(item.Coord{X: 40, Y: 0}, item.Coord{X: 100, Y: 0})))
	require.NoError(t, doc.Attach(item.NewWire(item.Coord{X: 40, Y: 200}, item.Coord{X: 140, Y: 0})))
	return doc
}

func designators(doc *schematic.Document) map[string]string {
	out := map[string]string{}
	for it := range doc.Parts() {
		p := it.(*item.Part)
		out[p.Value()] = p.RefDes()
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			m := Default()
			path := filepath.Join(t.TempDir(), "amp"+f.ext)

			orig := buildSheet(t, m)
			require.NoError(t, orig.SaveAs(path))
			require.False(t, orig.Dirty())

			reg := schematic.NewRegistry()
			got, err := schematic.Load(reg, m, path)
			require.NoError(t, err)
			t.Cleanup(got.Close)

			assert.Equal(t, 1, reg.Count())
			assert.False(t, got.Dirty())
			assert.Equal(t, path, got.Filename())
			assert.Equal(t, "amp", got.Title())
			assert.Equal(t, "ada", got.Author())
			assert.Equal(t, "line one\nline two", got.Comments())
			assert.Equal(t, "amp.net", got.NetlistFilename())
			assert.Equal(t, 1.5, got.Zoom())
			assert.Equal(t, orig.SimSettings(), got.SimSettings())
			assert.Equal(t, 6, got.ItemCount())

			assert.Equal(t, map[string]string{"1k": "R1", "3k": "R3", "100n": "C1", "": ""}, designators(got))
			assert.Equal(t, map[string]int{"R": 4, "C": 2}, got.Designators())

			var ids []string
			for it := range orig.Items() {
				ids = append(ids, it.ID())
			}
			for _, id := range ids {
				found := false
				for it := range got.Items() {
					found = found || it.ID() == id
				}
				assert.True(t, found, "item %s survived", id)
			}

			var wires [][2]item.Coord
			for it := range got.Wires() {
				w := it.(*item.Wire)
				wires = append(wires, [2]item.Coord{w.Start(), w.End()})
			}
			assert.ElementsMatch(t, [][2]item.Coord{
				{{X: 40, Y: 0}, {X: 100, Y: 0}},
				{{X: 40, Y: 200}, {X: 140, Y: 0}},
			}, wires)

			// Dots come back with the geometry.
			assert.ElementsMatch(t, orig.Graph().(interface{ Dots() []item.Coord }).Dots(),
				got.Graph().(interface{ Dots() []item.Coord }).Dots())
		})
	}
}

func TestRoundTrip_StableDesignators(t *testing.T) {
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			m := Default()
			path := filepath.Join(t.TempDir(), "a"+f.ext)

			doc := schematic.New(nil, schematic.WithResolver(m))
			for i := 0; i < 12; i++ {
				require.NoError(t, doc.Attach(item.NewPart(twoPin("resistor", "R", ""), item.Coord{X: float64(i * 100)})))
			}
			require.NoError(t, doc.SaveAs(path))

			got, err := schematic.Load(nil, m, path)
			require.NoError(t, err)
			for it := range got.Parts() {
				want, ok := doc.FindByRefDes(it.RefDes())
				require.True(t, ok)
				assert.Equal(t, want.Position(), it.Position(), "R10 must not sort before R2")
			}
			assert.Equal(t, map[string]int{"R": 13}, got.Designators())
		})
	}
}

func TestReload_KeepsDesignatorsAfterMiddleDeletion(t *testing.T) {
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			m := Default()
			path := filepath.Join(t.TempDir(), "a"+f.ext)

			doc := schematic.New(nil, schematic.WithResolver(m))
			var parts []*item.Part
			for i := range 3 {
				p := item.NewPart(twoPin("resistor", "R", ""), item.Coord{X: float64(i * 100)})
				require.NoError(t, doc.Attach(p))
				parts = append(parts, p)
			}
			parts[0].Destroy()
			require.NoError(t, doc.SaveAs(path))

			got, err := schematic.Load(nil, m, path)
			require.NoError(t, err)
			t.Cleanup(got.Close)

			_, ok := got.FindByRefDes("R1")
			assert.False(t, ok, "R1 stays retired")
			for _, want := range parts[1:] {
				it, ok := got.FindByRefDes(want.RefDes())
				require.True(t, ok, "%s survived", want.RefDes())
				assert.Equal(t, want.ID(), it.ID())
			}
			assert.Equal(t, map[string]int{"R": 4}, got.Designators())

			next := item.NewPart(twoPin("resistor", "R", ""), item.Coord{X: 0, Y: 500})
			require.NoError(t, got.Attach(next))
			assert.Equal(t, "R4", next.RefDes())
		})
	}
}

func TestReload_RetiresNumbersOfRemovedLastPart(t *testing.T) {
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			m := Default()
			path := filepath.Join(t.TempDir(), "a"+f.ext)

			doc := schematic.New(nil, schematic.WithResolver(m))
			p := item.NewPart(twoPin("resistor", "R", ""), item.Coord{})
			require.NoError(t, doc.Attach(p))
			p.Destroy()
			require.NoError(t, doc.SaveAs(path))

			got, err := schematic.Load(nil, m, path)
			require.NoError(t, err)
			t.Cleanup(got.Close)

			assert.Zero(t, got.ItemCount())
			assert.Equal(t, map[string]int{"R": 2}, got.Designators())
		})
	}
}

func TestYAML_ConflictingStoredDesignators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clash.yaml")
	body := `version: 1
title: clash
parts:
  - {id: a, name: resistor, prefix: R, refdes: R2, at: {x: 0, y: 0}, pins: [{x: 0, y: 0}, {x: 40, y: 0}]}
  - {id: b, name: resistor, prefix: R, refdes: R2, at: {x: 0, y: 100}, pins: [{x: 0, y: 0}, {x: 40, y: 0}]}
  - {id: c, name: resistor, prefix: R, refdes: C7, at: {x: 0, y: 200}, pins: [{x: 0, y: 0}, {x: 40, y: 0}]}
wires: []
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	doc, err := schematic.Load(nil, Default(), path)
	require.NoError(t, err)
	t.Cleanup(doc.Close)

	got := map[string]string{}
	for it := range doc.Parts() {
		got[it.ID()] = it.RefDes()
	}
	assert.Equal(t, map[string]string{"a": "R2", "b": "R3", "c": "R4"}, got)
	assert.Equal(t, map[string]int{"R": 5}, doc.Designators())
}

func TestSQLite_PathWithQueryCharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "what?#dir")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "amp?v=2#draft"+SQLiteExtension)

	m := Default()
	doc := buildSheet(t, m)
	require.NoError(t, doc.SaveAs(path))
	_, err := os.Stat(path)
	require.NoError(t, err, "database must be created at the literal path")

	got, err := schematic.Load(nil, m, path)
	require.NoError(t, err)
	t.Cleanup(got.Close)
	assert.Equal(t, "amp", got.Title())
	assert.Equal(t, 6, got.ItemCount())
}

func TestSheetDSN_EscapesPath(t *testing.T) {
	dsn, err := sheetDSN("/tmp/a?b#c.schdb", "ro")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/a%3Fb%23c.schdb?_pragma=foreign_keys%281%29&_pragma=busy_timeout%285000%29&mode=ro", dsn)
}

func TestSave_Overwrites(t *testing.T) {
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			m := Default()
			path := filepath.Join(t.TempDir(), "a"+f.ext)

			doc := buildSheet(t, m)
			require.NoError(t, doc.SaveAs(path))

			r1, ok := doc.FindByRefDes("R1")
			require.True(t, ok)
			r1.(*item.Part).Destroy()
			doc.SetTitle("smaller")
			require.NoError(t, doc.Save())

			got, err := schematic.Load(nil, m, path)
			require.NoError(t, err)
			assert.Equal(t, "smaller", got.Title())
			assert.Equal(t, 5, got.ItemCount())
		})
	}
}

func TestYAML_RejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 99\ntitle: x\n"), 0o644))

	reg := schematic.NewRegistry()
	_, err := schematic.Load(reg, Default(), path)
	require.ErrorIs(t, err, schematic.ErrLoadFailed)
	assert.Contains(t, err.Error(), "newer than supported")
	assert.Zero(t, reg.Count())
}

func TestYAML_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\ntitel: typo\n"), 0o644))

	_, err := schematic.Load(nil, Default(), path)
	require.ErrorIs(t, err, schematic.ErrLoadFailed)
}

func TestYAML_MinimalFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\ntitle: bare\n"), 0o644))

	doc, err := schematic.Load(nil, Default(), path)
	require.NoError(t, err)
	assert.Equal(t, "bare", doc.Title())
	assert.Equal(t, schematic.DefaultZoom, doc.Zoom())
	assert.Equal(t, schematic.DefaultSimSettings(), doc.SimSettings())
}

func TestYAML_DuplicateIDRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	body := `version: 1
title: dup
wires:
  - {id: w1, from: {x: 0, y: 0}, to: {x: 10, y: 0}}
  - {id: w1, from: {x: 0, y: 0}, to: {x: 0, y: 10}}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := schematic.Load(nil, Default(), path)
	require.ErrorIs(t, err, schematic.ErrRegistrationRejected)
}

func TestSQLite_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk"+SQLiteExtension)
	require.NoError(t, os.WriteFile(path, []byte("definitely not sqlite"), 0o644))

	reg := schematic.NewRegistry()
	_, err := schematic.Load(reg, Default(), path)
	require.ErrorIs(t, err, schematic.ErrLoadFailed)
	assert.Zero(t, reg.Count())
}

func TestSave_UnwritableDirectoryKeepsDirty(t *testing.T) {
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			doc := buildSheet(t, Default())
			doc.SetFilename(filepath.Join(t.TempDir(), "missing", "dir", "a"+f.ext))

			require.Error(t, doc.Save())
			assert.True(t, doc.Dirty())
		})
	}
}
