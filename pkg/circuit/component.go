package circuit

import (
	"errors"
	"fmt"
)

// ErrAlreadyOwned is returned when attaching a connector that another
// component already owns.
var ErrAlreadyOwned = errors.New("circuit: connector already owned by another component")

// Component is a part instance placed on the schematic. It exclusively owns
// its connectors.
type Component struct {
	typeName   string       // Blueprint type name (e.g. "Resistor")
	shape      string       // Shape asset path, informational
	size       Size         // Unrotated shape size
	pos        Point        // Origin on the canvas
	rot        Rotation     // Orientation
	connectors []*Connector // Owned pins, in pin order
}

// NewComponent creates a component with no connectors. Connectors are
// attached separately with Attach.
func NewComponent(typeName, shape string, size Size, pos Point, rot Rotation) *Component {
	return &Component{
		typeName: typeName,
		shape:    shape,
		size:     size,
		pos:      pos,
		rot:      rot,
	}
}

func (c *Component) element() {}

// Type returns the blueprint type name
func (c *Component) Type() string { return c.typeName }

// Shape returns the shape asset path the component was made from
func (c *Component) Shape() string { return c.shape }

// Size returns the unrotated shape size
func (c *Component) Size() Size { return c.size }

// Position implements Element
func (c *Component) Position() Point { return c.pos }

// Rotation implements Element
func (c *Component) Rotation() Rotation { return c.rot }

// Bounds implements Element. The shape is centred on the component origin and
// width and height swap for quarter and three-quarter turns.
func (c *Component) Bounds() Rect {
	w, h := c.size.Width, c.size.Height
	if c.rot.Swapped() {
		w, h = h, w
	}
	return Rect{
		Min: Point{X: c.pos.X - w/2, Y: c.pos.Y - h/2},
		Max: Point{X: c.pos.X + (w - w/2), Y: c.pos.Y + (h - h/2)},
	}
}

// Connectors returns the owned connectors in pin order
func (c *Component) Connectors() []*Connector {
	out := make([]*Connector, len(c.connectors))
	copy(out, c.connectors)
	return out
}

// Owns reports whether conn is one of c's connectors
func (c *Component) Owns(conn *Connector) bool {
	return conn != nil && conn.owner == c
}

// Attach makes c the owner of each connector, in order. Connectors already
// owned by c are left where they are. If a connector belongs to another
// component, Attach stops and returns ErrAlreadyOwned; connectors before it
// stay attached.
func (c *Component) Attach(conns ...*Connector) error {
	for i, conn := range conns {
		if conn == nil {
			return fmt.Errorf("circuit: attach: connector %d is nil", i)
		}
		switch conn.owner {
		case c:
			continue
		case nil:
			conn.owner = c
			c.connectors = append(c.connectors, conn)
		default:
			return ErrAlreadyOwned
		}
	}
	return nil
}

// Detach releases conn from c. It reports whether conn was owned by c.
func (c *Component) Detach(conn *Connector) bool {
	if !c.Owns(conn) {
		return false
	}
	for i, owned := range c.connectors {
		if owned == conn {
			c.connectors = append(c.connectors[:i], c.connectors[i+1:]...)
			break
		}
	}
	conn.owner = nil
	return true
}

// Move places the component at pos. Owned connectors keep their offset.
func (c *Component) Move(pos Point) {
	c.pos = pos
	c.layout()
}

// Rotate sets the component orientation and re-derives connector positions.
func (c *Component) Rotate(rot Rotation) {
	c.rot = rot
	c.layout()
}

func (c *Component) layout() {
	for _, conn := range c.connectors {
		conn.pos = c.pos.Add(c.rot.Apply(conn.offset))
	}
}

func (c *Component) String() string {
	return fmt.Sprintf("%s@(%d,%d)", c.typeName, c.pos.X, c.pos.Y)
}
