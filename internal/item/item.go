// Package item defines the structural units placed on a sheet: parts and
// wires.
//
// Items are owned by whoever created them, never by a document or a store.
// A document or store only observes them. Destroy is the external
// destruction signal; observers registered with OnDestroy run exactly once
// when it is called.
package item

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zjrosen/schematic/internal/pubsub"
)

// Event types published by items.
const (
	EventDestroyed pubsub.EventType = "destroy"
	EventMoved     pubsub.EventType = "moved"
)

// ErrAlreadyBound is returned by Bind when the item belongs to another owner.
var ErrAlreadyBound = errors.New("item already bound to another owner")

// Kind distinguishes parts from wires.
type Kind int

const (
	KindPart Kind = iota
	KindWire
)

func (k Kind) String() string {
	switch k {
	case KindPart:
		return "part"
	case KindWire:
		return "wire"
	default:
		return "unknown"
	}
}

// Coord is a sheet coordinate.
type Coord struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Add returns c translated by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns c - d.
func (c Coord) Sub(d Coord) Coord {
	return Coord{X: c.X - d.X, Y: c.Y - d.Y}
}

// Less orders coordinates by X, then Y.
func (c Coord) Less(d Coord) bool {
	if c.X != d.X {
		return c.X < d.X
	}
	return c.Y < d.Y
}

func (c Coord) String() string {
	return fmt.Sprintf("(%g,%g)", c.X, c.Y)
}

// Item is the contract documents and stores rely on.
type Item interface {
	ID() string
	Kind() Kind
	Position() Coord
	// Connections returns the absolute coordinates where the item can connect.
	Connections() []Coord
	// RefDesPrefix is empty for items that take no designator.
	RefDesPrefix() string
	RefDes() string
	SetRefDes(refdes string)

	Destroyed() bool

	// Bind claims the item for owner. Binding to the current owner again is a no-op.
	Bind(owner string) error
	// Unbind releases the claim if owner holds it.
	Unbind(owner string)
	Owner() string

	OnDestroy(h pubsub.Handler[Item]) pubsub.Subscription
	OnMove(h pubsub.Handler[Coord]) pubsub.Subscription
}

// Base carries identity, ownership and the destroy/move observers shared
// by every item type. Embedders must call init with themselves.
type Base struct {
	id        string
	owner     string
	pos       Coord
	destroyed bool
	self      Item

	destroyTopic *pubsub.Topic[Item]
	moveTopic    *pubsub.Topic[Coord]
}

func (b *Base) init(self Item, id string, pos Coord) {
	if id == "" {
		id = uuid.NewString()
	}
	b.id = id
	b.pos = pos
	b.self = self
	b.destroyTopic = pubsub.NewTopic[Item](EventDestroyed)
	b.moveTopic = pubsub.NewTopic[Coord](EventMoved)
}

// ID returns the item's stable identifier.
func (b *Base) ID() string { return b.id }

// Position returns the item's anchor point.
func (b *Base) Position() Coord { return b.pos }

// Destroyed reports whether Destroy has been called.
func (b *Base) Destroyed() bool { return b.destroyed }

// Owner returns the id of the current owner, or "".
func (b *Base) Owner() string { return b.owner }

func (b *Base) Bind(owner string) error {
	if b.owner != "" && b.owner != owner {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, b.owner)
	}
	b.owner = owner
	return nil
}

func (b *Base) Unbind(owner string) {
	if b.owner == owner {
		b.owner = ""
	}
}

// OnDestroy registers h to run once when the item is destroyed.
func (b *Base) OnDestroy(h pubsub.Handler[Item]) pubsub.Subscription {
	return b.destroyTopic.Subscribe(h)
}

// OnMove registers h to run whenever the item moves. The payload is the new position.
func (b *Base) OnMove(h pubsub.Handler[Coord]) pubsub.Subscription {
	return b.moveTopic.Subscribe(h)
}

// Destroy is the external destruction signal. Observers run exactly once;
// later calls do nothing.
func (b *Base) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.destroyTopic.Publish(b.self)
	b.destroyTopic.Close()
	b.moveTopic.Close()
}

func (b *Base) moveTo(pos Coord) {
	if b.destroyed || pos == b.pos {
		return
	}
	b.pos = pos
	b.moveTopic.Publish(pos)
}
