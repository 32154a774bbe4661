package circuit

import (
	"errors"
	"fmt"
)

// ErrSelfConnection is returned when wiring a connector to itself
var ErrSelfConnection = errors.New("circuit: connector cannot connect to itself")

// Connector is a pin of a component. Wires are symmetric peer links between
// connectors.
type Connector struct {
	pos    Point        // Absolute canvas position
	offset Point        // Offset from the owner origin, unrotated
	relRot Rotation     // Orientation relative to the owner
	owner  *Component   // Lookup only; set by Component.Attach
	peers  []*Connector // Wired connectors, in connection order
}

// NewConnector creates an unowned, unwired connector.
func NewConnector(pos, offset Point, relRot Rotation) *Connector {
	return &Connector{
		pos:    pos,
		offset: offset,
		relRot: relRot,
	}
}

func (c *Connector) element() {}

// Position implements Element
func (c *Connector) Position() Point { return c.pos }

// Offset returns the position relative to the owner origin, before rotation
func (c *Connector) Offset() Point { return c.offset }

// RelativeRotation returns the orientation relative to the owner
func (c *Connector) RelativeRotation() Rotation { return c.relRot }

// Rotation implements Element. It is the owner rotation plus the relative
// rotation, or only the relative rotation for an unowned connector.
func (c *Connector) Rotation() Rotation {
	if c.owner == nil {
		return c.relRot
	}
	return c.owner.rot.Add(c.relRot)
}

// Bounds implements Element
func (c *Connector) Bounds() Rect {
	return Rect{
		Min: Point{X: c.pos.X - pickRadius, Y: c.pos.Y - pickRadius},
		Max: Point{X: c.pos.X + pickRadius, Y: c.pos.Y + pickRadius},
	}
}

// Owner returns the owning component or nil
func (c *Connector) Owner() *Component { return c.owner }

// Peers returns the connectors wired to c
func (c *Connector) Peers() []*Connector {
	out := make([]*Connector, len(c.peers))
	copy(out, c.peers)
	return out
}

// Connected reports whether c has at least one peer
func (c *Connector) Connected() bool { return len(c.peers) > 0 }

// IsConnectedTo reports whether c and other are wired together
func (c *Connector) IsConnectedTo(other *Connector) bool {
	for _, p := range c.peers {
		if p == other {
			return true
		}
	}
	return false
}

// Connect wires c and other together in both directions. Connecting an
// already connected pair is a no-op.
func (c *Connector) Connect(other *Connector) error {
	if other == nil {
		return fmt.Errorf("circuit: connect: nil connector")
	}
	if other == c {
		return ErrSelfConnection
	}
	if !c.IsConnectedTo(other) {
		c.peers = append(c.peers, other)
	}
	if !other.IsConnectedTo(c) {
		other.peers = append(other.peers, c)
	}
	return nil
}

// Disconnect removes the wire between c and other. It reports whether a wire
// existed.
func (c *Connector) Disconnect(other *Connector) bool {
	removed := removePeer(c, other)
	removePeer(other, c)
	return removed
}

// DisconnectAll removes every wire attached to c
func (c *Connector) DisconnectAll() {
	for _, p := range c.Peers() {
		c.Disconnect(p)
	}
}

func removePeer(c, other *Connector) bool {
	for i, p := range c.peers {
		if p == other {
			c.peers = append(c.peers[:i], c.peers[i+1:]...)
			return true
		}
	}
	return false
}
