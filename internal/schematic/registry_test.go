package schematic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/pubsub"
)

func countLastClosed(reg *Registry) *int {
	n := 0
	reg.LastDocumentClosed().Subscribe(func(pubsub.Event[struct{}]) { n++ })
	return &n
}

func TestRegistry_CountTracksLiveDocuments(t *testing.T) {
	reg := NewRegistry()
	require.Equal(t, 0, reg.Count())

	a := New(reg)
	b := New(reg)
	require.Equal(t, 2, reg.Count())
	require.Equal(t, []*Document{a, b}, reg.Documents())

	a.Close()
	require.Equal(t, 1, reg.Count())
	require.Equal(t, []*Document{b}, reg.Documents())
}

func TestRegistry_LastDocumentClosedFiresOncePerTransition(t *testing.T) {
	reg := NewRegistry()
	fired := countLastClosed(reg)

	docs := []*Document{New(reg), New(reg), New(reg)}
	docs[0].Close()
	docs[1].Close()
	require.Equal(t, 0, *fired)

	docs[2].Close()
	require.Equal(t, 1, *fired)

	// Closing again, or unregistering on an empty registry, does not re-fire.
	docs[2].Close()
	reg.Unregister(docs[0])
	require.Equal(t, 1, *fired)

	// A new open/close cycle fires again.
	New(reg).Close()
	require.Equal(t, 2, *fired)
}

func TestRegistry_RegisterTwiceIsNoop(t *testing.T) {
	reg := NewRegistry()
	d := New(reg)
	reg.Register(d)
	require.Equal(t, 1, reg.Count())
}

func TestRegistry_HandlerMayCallBack(t *testing.T) {
	reg := NewRegistry()
	var seen int
	reg.LastDocumentClosed().Subscribe(func(pubsub.Event[struct{}]) { seen = reg.Count() + 1 })

	New(reg).Close()
	require.Equal(t, 1, seen, "handler ran after the lock was released")
}

func TestRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	reg := NewRegistry()
	docs := make([]*Document, 50)
	for i := range docs {
		docs[i] = newDocument()
	}

	var wg sync.WaitGroup
	for _, d := range docs {
		wg.Add(1)
		go func(d *Document) {
			defer wg.Done()
			reg.Register(d)
		}(d)
	}
	wg.Wait()
	require.Equal(t, len(docs), reg.Count())

	for _, d := range docs {
		wg.Add(1)
		go func(d *Document) {
			defer wg.Done()
			reg.Unregister(d)
		}(d)
	}
	wg.Wait()
	require.Equal(t, 0, reg.Count())
}
