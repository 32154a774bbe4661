// Package blueprint provides part templates and the registry that manufactures
// circuit components from them.
package blueprint

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

// Pin is the geometry of one connector relative to the part origin
type Pin struct {
	Offset   circuit.Point    // Unrotated offset from the origin
	Rotation circuit.Rotation // Orientation relative to the part
}

// Blueprint is a part template. The number of pins is exactly the number of
// connectors each manufactured component owns.
type Blueprint struct {
	typeName   string
	shape      string
	pins       []Pin
	size       circuit.Size
	properties []Property
}

// New creates a blueprint. The pin and property slices are copied.
func New(typeName, shape string, pins []Pin, size circuit.Size, props []Property) *Blueprint {
	bp := &Blueprint{
		typeName:   typeName,
		shape:      shape,
		size:       size,
		pins:       make([]Pin, len(pins)),
		properties: make([]Property, len(props)),
	}
	copy(bp.pins, pins)
	copy(bp.properties, props)
	return bp
}

// Type returns the unique type name
func (b *Blueprint) Type() string { return b.typeName }

// Shape returns the resolved shape asset path
func (b *Blueprint) Shape() string { return b.shape }

// Size returns the bounding size taken from the shape
func (b *Blueprint) Size() circuit.Size { return b.size }

// Pins returns the pin geometry in order
func (b *Blueprint) Pins() []Pin {
	out := make([]Pin, len(b.pins))
	copy(out, b.pins)
	return out
}

// Properties returns the property list in order
func (b *Blueprint) Properties() []Property {
	out := make([]Property, len(b.properties))
	copy(out, b.properties)
	return out
}

// Property looks up a property by name
func (b *Blueprint) Property(name string) (Property, bool) {
	for _, p := range b.properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// CreateInstance builds a component at pos with rotation rot and one connector
// per pin. Each connector sits at pos plus its pin offset rotated by rot.
//
// The connectors are returned separately: they are neither wired nor attached
// to the component. Callers attach them with Component.Attach, which lets the
// loader mirror the ownership records of a file instead of trusting the
// template.
func (b *Blueprint) CreateInstance(pos circuit.Point, rot circuit.Rotation) (*circuit.Component, []*circuit.Connector) {
	comp := circuit.NewComponent(b.typeName, b.shape, b.size, pos, rot)
	conns := make([]*circuit.Connector, len(b.pins))
	for i, pin := range b.pins {
		conns[i] = circuit.NewConnector(pos.Add(rot.Apply(pin.Offset)), pin.Offset, pin.Rotation)
	}
	return comp, conns
}

// Manufacture builds a component with its connectors attached, ready to be
// added with Circuit.AddComponent.
func (b *Blueprint) Manufacture(pos circuit.Point, rot circuit.Rotation) *circuit.Component {
	comp, conns := b.CreateInstance(pos, rot)
	// Fresh connectors have no owner, so Attach cannot fail.
	_ = comp.Attach(conns...)
	return comp
}
