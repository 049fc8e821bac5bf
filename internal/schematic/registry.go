package schematic

import (
	"slices"
	"sync"

	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/pubsub"
)

// EventLastDocumentClosed is published when the open-document count drops to zero.
const EventLastDocumentClosed pubsub.EventType = "last_schematic_destroyed"

// Registry is the process-wide set of live documents. Create one at
// startup and pass it to New and Load.
//
// Register and Unregister are serialized by a mutex. The last-closed event
// fires after the lock is released, so handlers may call back into the
// registry. Handlers subscribing from multiple goroutines must be serialized
// by the caller.
type Registry struct {
	mu         sync.Mutex
	docs       []*Document
	lastClosed *pubsub.Topic[struct{}]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		lastClosed: pubsub.NewTopic[struct{}](EventLastDocumentClosed),
	}
}

// Register adds doc. Registering a document twice is a no-op.
func (r *Registry) Register(doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.docs, doc) {
		return
	}
	r.docs = append(r.docs, doc)
	log.Debug(log.CatRegistry, "Registered document", "count", len(r.docs))
}

// Unregister removes doc. When this empties the registry, the last-closed
// event fires once. Unknown documents are ignored.
func (r *Registry) Unregister(doc *Document) {
	r.mu.Lock()
	i := slices.Index(r.docs, doc)
	if i < 0 {
		r.mu.Unlock()
		return
	}
	r.docs = slices.Delete(r.docs, i, i+1)
	remaining := len(r.docs)
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "Unregistered document", "count", remaining)
	if remaining == 0 {
		log.Info(log.CatRegistry, "Last document closed")
		r.lastClosed.Publish(struct{}{})
	}
}

// Count returns the number of live documents.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// Documents returns a snapshot of the live documents in registration order.
func (r *Registry) Documents() []*Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.docs)
}

// LastDocumentClosed is the subscription point for last_schematic_destroyed.
func (r *Registry) LastDocumentClosed() pubsub.Subscriber[struct{}] {
	return r.lastClosed
}
