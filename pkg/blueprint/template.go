package blueprint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/tagfile"
)

// ReadBlueprint reads one template file. The shape path in the template is
// tried as given first and then relative to the template's directory; if
// neither exists the template is rejected with ErrShapeNotFound.
func ReadBlueprint(filename string, shapes ShapeResolver) (*Blueprint, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("blueprint: failed to open %s: %w", filename, err)
	}
	defer file.Close()

	bp, err := ParseBlueprint(file, filepath.Dir(filename), shapes)
	if err != nil {
		return nil, fmt.Errorf("blueprint: %s: %w", filename, err)
	}
	return bp, nil
}

// ParseBlueprint parses a template from r. dir is the directory relative shape
// paths are resolved against.
//
// Template layout:
//
//	<component type="Resistor">
//		<svg path="resistor.svg"/>
//		<connector x="-20" y="0" rot="2"/>
//		<property name="R" value="1k" unit="ohm" type="resistance"/>
//	</component>
func ParseBlueprint(r io.Reader, dir string, shapes ShapeResolver) (*Blueprint, error) {
	doc, err := tagfile.Parse(r)
	if err != nil {
		return nil, err
	}

	var (
		component *tagfile.Tag
		svg       *tagfile.Tag
		pins      []Pin
		props     []Property
	)

	for _, tag := range doc.Tags() {
		switch tag.Name {
		case "component":
			component = tag
		case "svg":
			svg = tag
		case "connector":
			pin, err := parsePin(tag)
			if err != nil {
				return nil, err
			}
			pins = append(pins, pin)
		case "property":
			prop, err := parseProperty(tag)
			if err != nil {
				return nil, err
			}
			props = append(props, prop)
		}
	}

	if component == nil {
		return nil, fmt.Errorf("missing <component> tag")
	}
	if svg == nil {
		return nil, fmt.Errorf("missing <svg> tag")
	}

	typeName, ok := component.Attr("type")
	if !ok || typeName == "" {
		return nil, fmt.Errorf("<component> has no type")
	}

	shapePath, ok := svg.Attr("path")
	if !ok || shapePath == "" {
		return nil, fmt.Errorf("<svg> has no path")
	}
	resolved, err := resolveShape(shapePath, dir)
	if err != nil {
		return nil, err
	}

	var size circuit.Size
	if shapes != nil {
		size, err = shapes.Size(resolved)
		if err != nil {
			return nil, fmt.Errorf("shape %s: %w", resolved, err)
		}
	}

	return New(typeName, resolved, pins, size, props), nil
}

func resolveShape(path, dir string) (string, error) {
	if fileExists(path) {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		rel := filepath.Join(dir, path)
		if fileExists(rel) {
			return rel, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrShapeNotFound, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func parsePin(tag *tagfile.Tag) (Pin, error) {
	x, err := tag.Int("x")
	if err != nil {
		return Pin{}, err
	}
	y, err := tag.Int("y")
	if err != nil {
		return Pin{}, err
	}
	rot := 0
	if _, ok := tag.Attr("rot"); ok {
		if rot, err = tag.Int("rot"); err != nil {
			return Pin{}, err
		}
	}
	return Pin{
		Offset:   circuit.Point{X: x, Y: y},
		Rotation: circuit.NewRotation(rot),
	}, nil
}

func parseProperty(tag *tagfile.Tag) (Property, error) {
	name, _ := tag.Attr("name")
	if name == "" {
		return Property{}, fmt.Errorf("line %d: <property> has no name", tag.Pos.Line)
	}
	value, _ := tag.Attr("value")

	unitName, _ := tag.Attr("unit")
	unit, err := ParseUnit(unitName)
	if err != nil {
		return Property{}, err
	}
	kindName, _ := tag.Attr("type")
	kind, err := ParseKind(kindName)
	if err != nil {
		return Property{}, err
	}

	return Property{Name: name, Value: value, Unit: unit, Kind: kind}, nil
}
