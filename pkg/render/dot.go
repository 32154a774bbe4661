// Package render draws the connection graph of a circuit with Graphviz.
//
// Components become boxes and wires become edges. This is a topology view,
// not a schematic: positions and rotations are shown in labels but Graphviz
// chooses the layout.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

// Options configures DOT generation.
type Options struct {
	// Pins draws every connector as its own node. When false, wires are drawn
	// directly between the components that own their ends.
	Pins bool

	// Detailed adds position and rotation to component labels.
	Detailed bool
}

// ToDOT converts a circuit to an undirected Graphviz graph. Node names are
// element indices ("e0", "e3", ...), so they match the ids a saved file
// would use. Unowned connectors are left out unless Pins is set.
func ToDOT(c *circuit.Circuit, opts Options) string {
	elements := c.Elements()
	ids := make(map[circuit.Element]int, len(elements))
	for i, e := range elements {
		ids[e] = i
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [penwidth=1.5];\n")
	buf.WriteString("\n")

	for i, e := range elements {
		switch v := e.(type) {
		case *circuit.Component:
			fmt.Fprintf(&buf, "  %s [label=%q];\n", nodeName(i), componentLabel(i, v, opts.Detailed))
		case *circuit.Connector:
			if opts.Pins {
				fmt.Fprintf(&buf, "  %s [shape=point, width=0.08, xlabel=%q];\n", nodeName(i), fmt.Sprint(i))
			}
		}
	}

	buf.WriteString("\n")
	for _, edge := range edges(elements, ids, opts.Pins) {
		fmt.Fprintf(&buf, "  %s -- %s;\n", nodeName(edge[0]), nodeName(edge[1]))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(i int) string {
	return fmt.Sprintf("e%d", i)
}

func componentLabel(i int, comp *circuit.Component, detailed bool) string {
	label := fmt.Sprintf("%s #%d", comp.Type(), i)
	if !detailed {
		return label
	}
	pos := comp.Position()
	return strings.Join([]string{
		label,
		fmt.Sprintf("(%d, %d)", pos.X, pos.Y),
		comp.Rotation().String(),
	}, "\n")
}

// edges lists each wire once, as a sorted pair of node indices. In pin mode a
// component is also joined to each of its connectors.
func edges(elements []circuit.Element, ids map[circuit.Element]int, pins bool) [][2]int {
	seen := make(map[[2]int]bool)
	add := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		seen[[2]int{a, b}] = true
	}

	for i, e := range elements {
		conn, ok := e.(*circuit.Connector)
		if !ok {
			continue
		}
		end := func(c *circuit.Connector) (int, bool) {
			if pins {
				id, ok := ids[c]
				return id, ok
			}
			if c.Owner() == nil {
				return 0, false
			}
			id, ok := ids[c.Owner()]
			return id, ok
		}

		from, ok := end(conn)
		if !ok {
			continue
		}
		if pins && conn.Owner() != nil {
			if owner, ok := ids[conn.Owner()]; ok {
				add(owner, i)
			}
		}
		for _, peer := range conn.Peers() {
			to, ok := end(peer)
			if !ok || to == from {
				continue
			}
			add(from, to)
		}
	}

	out := make([][2]int, 0, len(seen))
	for edge := range seen {
		out = append(out, edge)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("render: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
