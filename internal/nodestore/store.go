// Package nodestore is the connectivity graph a document delegates to.
//
// A Store accepts parts and wires, partitions them by kind, and tracks
// junction dots: every coordinate where three or more connection points
// meet. Dot changes are published on DotAdded and DotRemoved in coordinate
// order. Net computation is out of scope.
package nodestore

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/pubsub"
)

// Event types published by the store.
const (
	EventDotAdded   pubsub.EventType = "dot_added"
	EventDotRemoved pubsub.EventType = "dot_removed"
)

// dotThreshold is the number of coinciding connection points that make a junction.
const dotThreshold = 3

// Store rejection errors.
var (
	ErrAlreadyBound   = errors.New("item belongs to another store")
	ErrDuplicateItem  = errors.New("item already in store")
	ErrDestroyed      = errors.New("item is destroyed")
	ErrNoPins         = errors.New("part has no pins")
	ErrDegenerateWire = errors.New("wire has zero length")
	ErrClosed         = errors.New("store is closed")
)

type entry struct {
	it        item.Item
	onDestroy pubsub.Subscription
	onMove    pubsub.Subscription
}

// Store is not safe for concurrent use.
type Store struct {
	id      string
	entries map[string]*entry
	order   []string
	dots    map[item.Coord]struct{}
	closed  bool

	dotAdded   *pubsub.Topic[item.Coord]
	dotRemoved *pubsub.Topic[item.Coord]
}

// New creates an empty store.
func New() *Store {
	return &Store{
		id:         uuid.NewString(),
		entries:    make(map[string]*entry),
		dots:       make(map[item.Coord]struct{}),
		dotAdded:   pubsub.NewTopic[item.Coord](EventDotAdded),
		dotRemoved: pubsub.NewTopic[item.Coord](EventDotRemoved),
	}
}

// ID identifies the store as an item owner.
func (s *Store) ID() string { return s.id }

// AddItem registers it with the store. On error the item is left as it was.
func (s *Store) AddItem(it item.Item) error {
	if err := s.check(it); err != nil {
		log.Debug(log.CatStore, "Rejected item", "id", it.ID(), "kind", it.Kind(), "reason", err)
		return err
	}
	if err := it.Bind(s.id); err != nil {
		return fmt.Errorf("%w: %w", ErrAlreadyBound, err)
	}

	e := &entry{it: it}
	e.onDestroy = it.OnDestroy(func(pubsub.Event[item.Item]) { s.remove(it.ID()) })
	e.onMove = it.OnMove(func(pubsub.Event[item.Coord]) { s.recompute() })
	s.entries[it.ID()] = e
	s.order = append(s.order, it.ID())

	log.Debug(log.CatStore, "Added item", "id", it.ID(), "kind", it.Kind())
	s.recompute()
	return nil
}

func (s *Store) check(it item.Item) error {
	switch {
	case s.closed:
		return ErrClosed
	case it.Destroyed():
		return ErrDestroyed
	}
	if _, ok := s.entries[it.ID()]; ok {
		return ErrDuplicateItem
	}
	if owner := it.Owner(); owner != "" && owner != s.id {
		return ErrAlreadyBound
	}
	switch it.Kind() {
	case item.KindPart:
		if len(it.Connections()) == 0 {
			return ErrNoPins
		}
	case item.KindWire:
		conns := it.Connections()
		if len(conns) != 2 || conns[0] == conns[1] {
			return ErrDegenerateWire
		}
	}
	return nil
}

func (s *Store) remove(id string) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.onDestroy.Unsubscribe()
	e.onMove.Unsubscribe()
	e.it.Unbind(s.id)
	delete(s.entries, id)
	s.order = slices.DeleteFunc(s.order, func(other string) bool { return other == id })

	log.Debug(log.CatStore, "Removed item", "id", id)
	s.recompute()
}

// Parts returns registered parts in insertion order.
func (s *Store) Parts() []item.Item {
	return s.byKind(item.KindPart)
}

// Wires returns registered wires in insertion order.
func (s *Store) Wires() []item.Item {
	return s.byKind(item.KindWire)
}

func (s *Store) byKind(kind item.Kind) []item.Item {
	out := make([]item.Item, 0, len(s.order))
	for _, id := range s.order {
		if it := s.entries[id].it; it.Kind() == kind {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of registered items.
func (s *Store) Len() int { return len(s.entries) }

// Dots returns the current junction dots in coordinate order.
func (s *Store) Dots() []item.Coord {
	return sortedCoords(s.dots)
}

// DotAdded publishes coordinates that became junctions.
func (s *Store) DotAdded() pubsub.Subscriber[item.Coord] { return s.dotAdded }

// DotRemoved publishes coordinates that stopped being junctions.
func (s *Store) DotRemoved() pubsub.Subscriber[item.Coord] { return s.dotRemoved }

// Close releases every item and drops dot subscribers. Items are not destroyed.
func (s *Store) Close() {
	if s.closed {
		return
	}
	for _, id := range s.order {
		e := s.entries[id]
		e.onDestroy.Unsubscribe()
		e.onMove.Unsubscribe()
		e.it.Unbind(s.id)
	}
	s.entries = make(map[string]*entry)
	s.order = nil
	s.dots = make(map[item.Coord]struct{})
	s.closed = true
	s.dotAdded.Close()
	s.dotRemoved.Close()
}

func (s *Store) recompute() {
	counts := make(map[item.Coord]int)
	for _, id := range s.order {
		for _, c := range s.entries[id].it.Connections() {
			counts[c]++
		}
	}

	next := make(map[item.Coord]struct{})
	for c, n := range counts {
		if n >= dotThreshold {
			next[c] = struct{}{}
		}
	}

	var added, removed []item.Coord
	for c := range next {
		if _, ok := s.dots[c]; !ok {
			added = append(added, c)
		}
	}
	for c := range s.dots {
		if _, ok := next[c]; !ok {
			removed = append(removed, c)
		}
	}
	s.dots = next

	sortCoords(removed)
	sortCoords(added)
	for _, c := range removed {
		s.dotRemoved.Publish(c)
	}
	for _, c := range added {
		s.dotAdded.Publish(c)
	}
}

func sortedCoords(set map[item.Coord]struct{}) []item.Coord {
	out := make([]item.Coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

func sortCoords(cs []item.Coord) {
	slices.SortFunc(cs, func(a, b item.Coord) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
}
