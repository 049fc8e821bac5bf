// Package schematic is the in-memory document model for a schematic sheet.
//
// A Document owns the metadata of a sheet, the bookkeeping of attached items,
// designator allocation, the document log and a connectivity graph. Items
// themselves are owned elsewhere; the document only observes them and
// detaches an item automatically when it is destroyed.
//
// Documents and their topics are single-threaded: every call runs to
// completion and every event is delivered inline before the call returns.
// Callers that touch a document from several goroutines must confine those
// calls to one goroutine. The Registry is the exception and is mutex-guarded.
package schematic

import (
	"math"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/nodestore"
	"github.com/zjrosen/schematic/internal/pubsub"
	"github.com/zjrosen/schematic/internal/refdes"
)

// Document event types.
const (
	EventTitleChanged pubsub.EventType = "title_changed"
	EventItemAdded    pubsub.EventType = "item_data_added"
	EventDotAdded     pubsub.EventType = "dot_added"
	EventDotRemoved   pubsub.EventType = "dot_removed"
)

// DefaultZoom is the zoom of a new document.
const DefaultZoom = 1.0

// Graph is the connectivity graph a document registers items with.
// nodestore.Store is the default implementation.
type Graph interface {
	AddItem(it item.Item) error
	Parts() []item.Item
	Wires() []item.Item
	DotAdded() pubsub.Subscriber[item.Coord]
	DotRemoved() pubsub.Subscriber[item.Coord]
	Close()
}

var _ Graph = (*nodestore.Store)(nil)

// Option configures a Document at construction.
type Option func(*Document)

// WithGraph replaces the default nodestore graph.
func WithGraph(g Graph) Option {
	return func(d *Document) { d.graph = g }
}

// WithResolver sets the file-handler resolver used by Save.
func WithResolver(r Resolver) Option {
	return func(d *Document) { d.resolver = r }
}

// WithAuthor sets the initial author.
func WithAuthor(author string) Option {
	return func(d *Document) { d.author = author }
}

// WithZoom sets the initial zoom. Non-positive values are ignored.
func WithZoom(zoom float64) Option {
	return func(d *Document) {
		if validZoom(zoom) {
			d.zoom = zoom
		}
	}
}

// Document is a schematic sheet.
type Document struct {
	registry *Registry
	resolver Resolver

	title           string
	filename        string
	author          string
	comments        string
	netlistFilename string
	zoom            float64
	sim             SimSettings

	dirty  bool
	closed bool

	items    []item.Item
	attached map[string]*attachment
	alloc    *refdes.Allocator
	log      *Log

	graph     Graph
	graphSubs []pubsub.Subscription

	titleChanged *pubsub.Topic[string]
	itemAdded    *pubsub.Topic[item.Item]
	dotAdded     *pubsub.Topic[item.Coord]
	dotRemoved   *pubsub.Topic[item.Coord]
}

// New creates an empty document and registers it with reg. A nil reg
// creates a standalone document.
func New(reg *Registry, opts ...Option) *Document {
	d := newDocument(opts...)
	d.registry = reg
	if reg != nil {
		reg.Register(d)
	}
	return d
}

func newDocument(opts ...Option) *Document {
	d := &Document{
		zoom:         DefaultZoom,
		sim:          DefaultSimSettings(),
		attached:     make(map[string]*attachment),
		alloc:        refdes.NewAllocator(),
		log:          newLog(),
		titleChanged: pubsub.NewTopic[string](EventTitleChanged),
		itemAdded:    pubsub.NewTopic[item.Item](EventItemAdded),
		dotAdded:     pubsub.NewTopic[item.Coord](EventDotAdded),
		dotRemoved:   pubsub.NewTopic[item.Coord](EventDotRemoved),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.graph == nil {
		d.graph = nodestore.New()
	}

	// Re-publish graph dots verbatim.
	d.graphSubs = append(d.graphSubs,
		d.graph.DotAdded().Subscribe(func(e pubsub.Event[item.Coord]) { d.dotAdded.Publish(e.Payload) }),
		d.graph.DotRemoved().Subscribe(func(e pubsub.Event[item.Coord]) { d.dotRemoved.Publish(e.Payload) }),
	)
	return d
}

// Close destroys the document: every attached item loses its back-reference,
// the graph is released, subscribers are dropped and the document leaves its
// registry. Items are never destroyed. Close is idempotent.
func (d *Document) Close() {
	if d.closed {
		return
	}
	d.closed = true

	for _, it := range d.items {
		d.attached[it.ID()].release()
	}
	d.items = nil
	d.attached = make(map[string]*attachment)

	for _, sub := range d.graphSubs {
		sub.Unsubscribe()
	}
	d.graphSubs = nil
	d.graph.Close()

	d.titleChanged.Close()
	d.itemAdded.Close()
	d.dotAdded.Close()
	d.dotRemoved.Close()
	d.log.close()

	log.Debug(log.CatDoc, "Closed document", "filename", d.filename)
	if d.registry != nil {
		d.registry.Unregister(d)
	}
}

// Closed reports whether Close has run.
func (d *Document) Closed() bool { return d.closed }

func (d *Document) Title() string { return d.title }

// SetTitle changes the title and publishes title_changed.
func (d *Document) SetTitle(title string) {
	d.title = title
	d.dirty = true
	d.titleChanged.Publish(title)
}

func (d *Document) Author() string { return d.author }

func (d *Document) SetAuthor(author string) {
	d.author = author
	d.dirty = true
}

func (d *Document) Comments() string { return d.comments }

func (d *Document) SetComments(comments string) {
	d.comments = comments
	d.dirty = true
}

// Filename is where Save writes. It is view state and does not mark the document dirty.
func (d *Document) Filename() string { return d.filename }

func (d *Document) SetFilename(filename string) { d.filename = filename }

func (d *Document) NetlistFilename() string { return d.netlistFilename }

func (d *Document) SetNetlistFilename(filename string) {
	d.netlistFilename = filename
	d.dirty = true
}

func (d *Document) Zoom() float64 { return d.zoom }

// SetZoom ignores non-positive and non-finite values. Zoom is view state
// and does not mark the document dirty.
func (d *Document) SetZoom(zoom float64) {
	if !validZoom(zoom) {
		log.Warn(log.CatDoc, "Ignoring invalid zoom", "zoom", zoom)
		return
	}
	d.zoom = zoom
}

func validZoom(z float64) bool {
	return z > 0 && !math.IsInf(z, 0) && !math.IsNaN(z)
}

// SimSettings returns the document's simulation parameters.
func (d *Document) SimSettings() SimSettings { return d.sim }

// SetSimSettings replaces the simulation parameters after validating them.
func (d *Document) SetSimSettings(s SimSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	d.sim = s
	d.dirty = true
	return nil
}

// Dirty reports unsaved changes since creation or the last load/save.
func (d *Document) Dirty() bool { return d.dirty }

// SetDirty sets or explicitly resets the dirty flag.
func (d *Document) SetDirty(dirty bool) { d.dirty = dirty }

// Log returns the document log.
func (d *Document) Log() *Log { return d.log }

// Graph returns the connectivity graph.
func (d *Document) Graph() Graph { return d.graph }

// Designators returns a copy of the designator table (prefix -> next number).
func (d *Document) Designators() map[string]int { return d.alloc.Snapshot() }

// TitleChanged is the subscription point for title_changed.
func (d *Document) TitleChanged() pubsub.Subscriber[string] { return d.titleChanged }

// ItemAdded is the subscription point for item_data_added.
func (d *Document) ItemAdded() pubsub.Subscriber[item.Item] { return d.itemAdded }

// LogUpdated is the subscription point for log_updated.
func (d *Document) LogUpdated() pubsub.Subscriber[[]string] { return d.log.Updated() }

// DotAdded re-publishes the graph's dot_added.
func (d *Document) DotAdded() pubsub.Subscriber[item.Coord] { return d.dotAdded }

// DotRemoved re-publishes the graph's dot_removed.
func (d *Document) DotRemoved() pubsub.Subscriber[item.Coord] { return d.dotRemoved }
