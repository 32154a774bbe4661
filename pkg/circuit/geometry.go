// Package circuit provides the in-memory graph model of a schematic: parts
// (components), their pins (connectors) and the wires between pins.
package circuit

import "fmt"

// Point is an integer position on the schematic canvas
type Point struct {
	X int
	Y int
}

// Add returns the component-wise sum of p and q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference of p and q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is the width and height of a part's shape
type Size struct {
	Width  int
	Height int
}

// Rect is an axis-aligned rectangle, Min inclusive and Max inclusive
type Rect struct {
	Min Point
	Max Point
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Rotation is one of four quarter-turn orientations
type Rotation uint8

const (
	Rot0   Rotation = iota // 0°
	Rot90                  // 90°
	Rot180                 // 180°
	Rot270                 // 270°
)

// NewRotation normalizes an integer number of quarter turns into a Rotation.
// Negative values turn the other way (-1 == Rot270).
func NewRotation(quarterTurns int) Rotation {
	return Rotation(((quarterTurns % 4) + 4) % 4)
}

// Degrees returns the rotation in degrees (0, 90, 180, 270)
func (r Rotation) Degrees() int {
	return int(r%4) * 90
}

// Add combines two rotations
func (r Rotation) Add(o Rotation) Rotation {
	return NewRotation(int(r) + int(o))
}

// Apply rotates p around the origin by r quarter turns.
// Each quarter turn maps (x, y) to (-y, x), which is clockwise on a
// y-down canvas.
func (r Rotation) Apply(p Point) Point {
	switch r % 4 {
	case Rot90:
		return Point{X: -p.Y, Y: p.X}
	case Rot180:
		return Point{X: -p.X, Y: -p.Y}
	case Rot270:
		return Point{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// Swapped reports whether the rotation exchanges width and height
func (r Rotation) Swapped() bool {
	return r%2 == 1
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}
