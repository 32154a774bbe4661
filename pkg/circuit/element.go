package circuit

// SlotID is the position of an element in a circuit's ordered element list.
// It doubles as the element's identifier in a saved file and is reassigned on
// every save and load, so it must not be kept across mutations.
type SlotID int

// NoSlot marks an element that is not part of the list being indexed
const NoSlot SlotID = -1

// pickRadius is how far from a connector's position a point still hits it
const pickRadius = 4

// Element is a node of the circuit graph: either a *Component or a *Connector.
type Element interface {
	// Position returns the absolute canvas position
	Position() Point
	// Rotation returns the effective orientation
	Rotation() Rotation
	// Bounds returns the area used for hit testing
	Bounds() Rect

	element()
}

var (
	_ Element = (*Component)(nil)
	_ Element = (*Connector)(nil)
)
