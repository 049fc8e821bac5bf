package schematic

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/item"
)

type fakeHandler struct {
	loadErr error
	saveErr error
	onLoad  func(doc *Document)
	saved   []string
}

func (h *fakeHandler) Load(doc *Document, path string) error {
	if h.onLoad != nil {
		h.onLoad(doc)
	}
	return h.loadErr
}

func (h *fakeHandler) Save(doc *Document, path string) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.saved = append(h.saved, path)
	return nil
}

type fakeResolver map[string]FileHandler

func (r fakeResolver) Resolve(path string) (FileHandler, bool) {
	h, ok := r[filepath.Ext(path)]
	return h, ok
}

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	reg := NewRegistry()
	_, err := Load(reg, fakeResolver{".sch": &fakeHandler{}}, filepath.Join(t.TempDir(), "nope.sch"))

	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "file does not exist")
	assert.Zero(t, reg.Count())
}

func TestLoad_UnknownFormat(t *testing.T) {
	reg := NewRegistry()
	path := touch(t, "a.txt")

	_, err := Load(reg, fakeResolver{".sch": &fakeHandler{}}, path)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "unknown file format")

	_, err = Load(reg, nil, path)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, reg.Count())
}

func TestLoad_HandlerFailureLeavesNothingRegistered(t *testing.T) {
	reg := NewRegistry()
	fired := countLastClosed(reg)
	path := touch(t, "a.sch")

	var built *Document
	parse := errors.New("bad header")
	h := &fakeHandler{
		loadErr: parse,
		onLoad: func(doc *Document) {
			built = doc
			require.NoError(t, doc.Attach(newResistor(item.Coord{})))
		},
	}

	_, err := Load(reg, fakeResolver{".sch": h}, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.True(t, errors.Is(err, parse), "cause is wrapped")
	assert.Zero(t, reg.Count())
	assert.Zero(t, *fired, "an unregistered document does not trigger last-closed")
	require.NotNil(t, built)
	assert.True(t, built.Closed())
}

func TestLoad_HandlerDocumentErrorPassesThrough(t *testing.T) {
	path := touch(t, "a.sch")
	want := &Error{Kind: KindNotFound, Path: path, Reason: "missing library part"}

	_, err := Load(nil, fakeResolver{".sch": &fakeHandler{loadErr: want}}, path)
	assert.Same(t, want, err)
}

func TestLoad_Success(t *testing.T) {
	reg := NewRegistry()
	path := touch(t, "amp.sch")
	h := &fakeHandler{onLoad: func(doc *Document) {
		doc.SetTitle("amp")
		require.NoError(t, doc.Attach(newResistor(item.Coord{})))
	}}

	doc, err := Load(reg, fakeResolver{".sch": h}, "file://"+path)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Filename())
	assert.Equal(t, "amp", doc.Title())
	assert.Equal(t, 1, doc.ItemCount())
	assert.False(t, doc.Dirty())
	assert.Equal(t, []*Document{doc}, reg.Documents())
}

func TestSave(t *testing.T) {
	h := &fakeHandler{}
	d := New(nil, WithResolver(fakeResolver{".sch": h}))

	require.ErrorIs(t, d.Save(), ErrNotFound, "no filename yet")

	d.SetTitle("x")
	require.NoError(t, d.SaveAs("out.sch"))
	assert.False(t, d.Dirty())
	assert.Equal(t, []string{"out.sch"}, h.saved)

	d.SetFilename("out.txt")
	require.ErrorIs(t, d.Save(), ErrNotFound)
}

func TestSave_FailureKeepsDirty(t *testing.T) {
	boom := errors.New("disk full")
	d := New(nil, WithResolver(fakeResolver{".sch": &fakeHandler{saveErr: boom}}))
	d.SetFilename("out.sch")
	d.SetTitle("x")

	err := d.Save()
	assert.Same(t, boom, err, "handler error is returned unchanged")
	assert.True(t, d.Dirty())

	d.SetDirty(false)
	require.Error(t, d.Save())
	assert.False(t, d.Dirty(), "failed save leaves a clean flag clean")
}

func TestSave_NoResolver(t *testing.T) {
	d := New(nil)
	d.SetFilename("out.sch")
	require.ErrorIs(t, d.Save(), ErrNotFound)

	d.SetResolver(fakeResolver{".sch": &fakeHandler{}})
	require.NoError(t, d.Save())
}
