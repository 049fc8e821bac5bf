package schematic

import (
	"iter"
	"slices"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/pubsub"
	"github.com/zjrosen/schematic/internal/refdes"
)

// attachment holds the observer subscriptions a document keeps on an item.
// It is the document's weak back-reference: releasing it leaves the item untouched.
type attachment struct {
	onDestroy pubsub.Subscription
	onMove    pubsub.Subscription
}

func (a *attachment) release() {
	a.onDestroy.Unsubscribe()
	a.onMove.Unsubscribe()
}

// Attach registers it with the graph, assigns a designator if the item
// takes one, and starts observing it. If the graph rejects the item the
// document is left exactly as it was and a KindRegistrationRejected error
// is returned; the item stays with its caller.
func (d *Document) Attach(it item.Item) error { return d.attach(it, "") }

// Restore attaches it like Attach but keeps designator, one issued by an
// earlier session, when it carries the item's prefix and no attached item
// holds it. Otherwise a fresh designator is allocated.
func (d *Document) Restore(it item.Item, designator string) error { return d.attach(it, designator) }

// CommitDesignators raises the designator table to at least table
// (prefix -> next number). Entries never move backwards.
func (d *Document) CommitDesignators(table map[string]int) {
	for prefix, next := range table {
		d.alloc.Commit(prefix, next-1)
	}
}

func (d *Document) attach(it item.Item, stored string) error {
	// The document observes ahead of the graph: on destruction the item
	// leaves Items before dot_removed is re-published.
	a := &attachment{
		onDestroy: it.OnDestroy(func(e pubsub.Event[item.Item]) { d.detachOnDestruction(e.Payload) }),
		onMove:    it.OnMove(func(pubsub.Event[item.Coord]) { d.dirty = true }),
	}
	if err := d.graph.AddItem(it); err != nil {
		a.release()
		log.Debug(log.CatDoc, "Attach rejected", "id", it.ID(), "error", err)
		return &Error{
			Kind:   KindRegistrationRejected,
			Reason: "connectivity graph rejected item",
			Err:    err,
		}
	}

	if prefix := it.RefDesPrefix(); prefix != "" {
		n, ok := d.storedNumber(prefix, stored)
		if !ok {
			n = d.alloc.Next(prefix)
		}
		it.SetRefDes(refdes.Format(prefix, n))
		d.alloc.Commit(prefix, n)
	}

	d.items = append(d.items, it)
	d.attached[it.ID()] = a
	d.dirty = true

	log.Debug(log.CatDoc, "Attached item", "id", it.ID(), "kind", it.Kind(), "refdes", it.RefDes())
	d.itemAdded.Publish(it)
	return nil
}

func (d *Document) storedNumber(prefix, stored string) (int, bool) {
	p, n, ok := refdes.Parse(stored)
	if !ok || p != prefix {
		return 0, false
	}
	if _, taken := d.FindByRefDes(refdes.Format(prefix, n)); taken {
		return 0, false
	}
	return n, true
}

// detachOnDestruction runs from the item's destroy notification.
func (d *Document) detachOnDestruction(it item.Item) {
	d.dirty = true
	a, ok := d.attached[it.ID()]
	if !ok {
		return
	}
	a.release()
	delete(d.attached, it.ID())
	d.items = slices.DeleteFunc(d.items, func(other item.Item) bool { return other.ID() == it.ID() })
	log.Debug(log.CatDoc, "Detached destroyed item", "id", it.ID(), "refdes", it.RefDes())
}

// Items iterates over every attached item. Each iteration works on a
// snapshot taken when it starts.
func (d *Document) Items() iter.Seq[item.Item] {
	return func(yield func(item.Item) bool) {
		for _, it := range slices.Clone(d.items) {
			if !yield(it) {
				return
			}
		}
	}
}

// Parts iterates over the parts known to the graph.
func (d *Document) Parts() iter.Seq[item.Item] {
	return func(yield func(item.Item) bool) {
		for _, it := range d.graph.Parts() {
			if !yield(it) {
				return
			}
		}
	}
}

// Wires iterates over the wires known to the graph.
func (d *Document) Wires() iter.Seq[item.Item] {
	return func(yield func(item.Item) bool) {
		for _, it := range d.graph.Wires() {
			if !yield(it) {
				return
			}
		}
	}
}

// ForEachItem calls fn for every attached item. A nil fn does nothing.
func (d *Document) ForEachItem(fn func(item.Item)) { forEach(d.Items(), fn) }

// ForEachPart calls fn for every part. A nil fn does nothing.
func (d *Document) ForEachPart(fn func(item.Item)) { forEach(d.Parts(), fn) }

// ForEachWire calls fn for every wire. A nil fn does nothing.
func (d *Document) ForEachWire(fn func(item.Item)) { forEach(d.Wires(), fn) }

func forEach(seq iter.Seq[item.Item], fn func(item.Item)) {
	if fn == nil {
		return
	}
	for it := range seq {
		fn(it)
	}
}

// ItemCount returns the number of attached items.
func (d *Document) ItemCount() int { return len(d.items) }

// FindByRefDes returns the attached item carrying refdes.
func (d *Document) FindByRefDes(designator string) (item.Item, bool) {
	for _, it := range d.items {
		if designator != "" && it.RefDes() == designator {
			return it, true
		}
	}
	return nil, false
}
