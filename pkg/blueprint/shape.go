package blueprint

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

// ErrShapeNotFound is returned when a template's shape asset cannot be found
// next to the template or at the given path.
var ErrShapeNotFound = errors.New("blueprint: shape not found")

// ShapeResolver reports the bounding size of a shape asset
type ShapeResolver interface {
	Size(path string) (circuit.Size, error)
}

// ShapeFunc adapts a function to ShapeResolver
type ShapeFunc func(path string) (circuit.Size, error)

// Size implements ShapeResolver
func (f ShapeFunc) Size(path string) (circuit.Size, error) { return f(path) }

// SVGShapes reads width and height from the root <svg> element of an SVG
// file, falling back to the viewBox when they are missing.
type SVGShapes struct{}

// svgRoot holds the root element attributes we care about
type svgRoot struct {
	XMLName xml.Name `xml:"svg"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	ViewBox string   `xml:"viewBox,attr"`
}

// Size implements ShapeResolver
func (SVGShapes) Size(path string) (circuit.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return circuit.Size{}, fmt.Errorf("blueprint: open shape: %w", err)
	}
	defer f.Close()
	return ParseSVGSize(f)
}

// ParseSVGSize decodes the root element of an SVG document and returns its
// size in whole user units.
func ParseSVGSize(r io.Reader) (circuit.Size, error) {
	var root svgRoot
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return circuit.Size{}, fmt.Errorf("blueprint: decode svg: %w", err)
	}

	w, wOK := parseLength(root.Width)
	h, hOK := parseLength(root.Height)
	if wOK && hOK {
		return circuit.Size{Width: int(w), Height: int(h)}, nil
	}

	fields := strings.FieldsFunc(root.ViewBox, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 4 {
		vw, errW := strconv.ParseFloat(fields[2], 64)
		vh, errH := strconv.ParseFloat(fields[3], 64)
		if errW == nil && errH == nil {
			return circuit.Size{Width: int(vw), Height: int(vh)}, nil
		}
	}
	return circuit.Size{}, fmt.Errorf("blueprint: svg has no usable width/height or viewBox")
}

// parseLength accepts "40", "40.5" and "40px"; other units are rejected.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
