package circuit

// Circuit is the ordered collection of elements being edited. Insertion order
// is the order elements are written to disk and the source of their SlotIDs.
//
// A Circuit is not safe for concurrent use; it belongs to the editing
// surface's event loop.
type Circuit struct {
	elements []Element
}

// New creates an empty circuit
func New() *Circuit {
	return &Circuit{}
}

// Elements returns a snapshot of the elements in order
func (c *Circuit) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Len returns the number of elements
func (c *Circuit) Len() int {
	return len(c.elements)
}

// Add appends an element
func (c *Circuit) Add(e Element) {
	if e == nil {
		return
	}
	c.elements = append(c.elements, e)
}

// AddAll appends elements in order, skipping nils
func (c *Circuit) AddAll(elems ...Element) {
	for _, e := range elems {
		c.Add(e)
	}
}

// AddComponent appends comp followed by its owned connectors
func (c *Circuit) AddComponent(comp *Component) {
	c.Add(comp)
	for _, conn := range comp.connectors {
		c.Add(conn)
	}
}

// Remove deletes e from the circuit. Removing a component also removes its
// owned connectors and releases them, so afterwards the component owns nothing
// and each connector has no owner. Every removed connector loses its wires.
// Remove reports whether e was present.
func (c *Circuit) Remove(e Element) bool {
	if c.IndexOf(e) == NoSlot {
		return false
	}
	drop := map[Element]bool{e: true}
	switch v := e.(type) {
	case *Component:
		for _, conn := range v.connectors {
			conn.DisconnectAll()
			conn.owner = nil
			drop[conn] = true
		}
		v.connectors = nil
	case *Connector:
		v.DisconnectAll()
		if v.owner != nil {
			v.owner.Detach(v)
		}
	}

	kept := c.elements[:0]
	for _, el := range c.elements {
		if !drop[el] {
			kept = append(kept, el)
		}
	}
	for i := len(kept); i < len(c.elements); i++ {
		c.elements[i] = nil
	}
	c.elements = kept
	return true
}

// Clear removes all elements without touching their relations
func (c *Circuit) Clear() {
	c.elements = nil
}

// Replace swaps the whole element collection for elems. It is the only way a
// load result reaches the circuit.
func (c *Circuit) Replace(elems []Element) {
	c.Clear()
	c.AddAll(elems...)
}

// IndexOf returns the SlotID of e, or NoSlot if e is not in the circuit
func (c *Circuit) IndexOf(e Element) SlotID {
	for i, el := range c.elements {
		if el == e {
			return SlotID(i)
		}
	}
	return NoSlot
}

// At returns the element at id, or nil when id is out of range
func (c *Circuit) At(id SlotID) Element {
	if id < 0 || int(id) >= len(c.elements) {
		return nil
	}
	return c.elements[id]
}

// ElementsAt returns the elements whose bounds contain p, in insertion order.
// It returns nil if nothing is hit.
func (c *Circuit) ElementsAt(p Point) []Element {
	var hits []Element
	for _, e := range c.elements {
		if e.Bounds().Contains(p) {
			hits = append(hits, e)
		}
	}
	return hits
}

// Components returns the components in insertion order
func (c *Circuit) Components() []*Component {
	var out []*Component
	for _, e := range c.elements {
		if comp, ok := e.(*Component); ok {
			out = append(out, comp)
		}
	}
	return out
}

// Connectors returns the connectors in insertion order
func (c *Circuit) Connectors() []*Connector {
	var out []*Connector
	for _, e := range c.elements {
		if conn, ok := e.(*Connector); ok {
			out = append(out, conn)
		}
	}
	return out
}
