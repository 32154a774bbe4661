// Package netlist groups wired connectors into electrical nets and exports
// them as JSON or as a KiCad netlist.
package netlist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

// PinRef names one connector by its owning component and its position in
// that component's connector list.
type PinRef struct {
	Component int    `json:"component"` // Element index of the owning component
	Type      string `json:"type"`      // Component type name
	Pin       int    `json:"pin"`       // Connector index within the component
}

// Ref is the component reference used in exports, e.g. "Resistor_0"
func (p PinRef) Ref() string {
	return fmt.Sprintf("%s_%d", p.Type, p.Component)
}

func (p PinRef) key() string {
	return fmt.Sprintf("%d:%d", p.Component, p.Pin)
}

// Net is a set of pins that are wired together
type Net struct {
	ID   int      `json:"id"`
	Pins []PinRef `json:"pins"`
}

// Netlist tracks connectivity between pins with a union-find structure.
type Netlist struct {
	parent map[string]string
	rank   map[string]int

	// Nets is filled by Finalize
	Nets []*Net

	allPins []PinRef
	pinKeys map[string]PinRef
	refs    []string
}

// New creates a netlist over pins, each initially in a net of its own.
func New(pins []PinRef) *Netlist {
	nl := &Netlist{
		parent:  make(map[string]string, len(pins)),
		rank:    make(map[string]int, len(pins)),
		allPins: make([]PinRef, len(pins)),
		pinKeys: make(map[string]PinRef, len(pins)),
	}
	copy(nl.allPins, pins)

	seen := make(map[string]bool)
	for _, pin := range pins {
		key := pin.key()
		nl.parent[key] = key
		nl.pinKeys[key] = pin
		if ref := pin.Ref(); !seen[ref] {
			seen[ref] = true
			nl.refs = append(nl.refs, ref)
		}
	}
	return nl
}

// FromCircuit builds and finalizes the netlist of c. Every connector owned by
// a component of c is a pin; peer links become connections. Connectors
// without an owner, and peers outside c, do not take part.
func FromCircuit(c *circuit.Circuit) *Netlist {
	pins := make(map[*circuit.Connector]PinRef)
	var order []PinRef
	for i, e := range c.Elements() {
		comp, ok := e.(*circuit.Component)
		if !ok {
			continue
		}
		for j, conn := range comp.Connectors() {
			ref := PinRef{Component: i, Type: comp.Type(), Pin: j}
			pins[conn] = ref
			order = append(order, ref)
		}
	}

	nl := New(order)
	for conn, ref := range pins {
		for _, peer := range conn.Peers() {
			if other, ok := pins[peer]; ok {
				nl.Connect(ref, other)
			}
		}
	}
	nl.Finalize()
	return nl
}

// Connect merges the nets of a and b
func (nl *Netlist) Connect(a, b PinRef) {
	keyA := nl.find(a.key())
	keyB := nl.find(b.key())
	if keyA == keyB {
		return
	}

	// Union by rank
	switch {
	case nl.rank[keyA] < nl.rank[keyB]:
		nl.parent[keyA] = keyB
	case nl.rank[keyA] > nl.rank[keyB]:
		nl.parent[keyB] = keyA
	default:
		nl.parent[keyB] = keyA
		nl.rank[keyA]++
	}
}

// Find returns the representative pin of the net containing pin
func (nl *Netlist) Find(pin PinRef) PinRef {
	return nl.pinKeys[nl.find(pin.key())]
}

func (nl *Netlist) find(key string) string {
	root := key
	for nl.parent[root] != root {
		root = nl.parent[root]
	}
	// Path compression
	for key != root {
		next := nl.parent[key]
		nl.parent[key] = root
		key = next
	}
	return root
}

// Finalize builds Nets from the connections made so far. Single-pin nets are
// left out. Nets are numbered in order of their first pin.
func (nl *Netlist) Finalize() {
	groups := make(map[string][]PinRef)
	for _, pin := range nl.allPins {
		root := nl.find(pin.key())
		groups[root] = append(groups[root], pin)
	}

	nl.Nets = make([]*Net, 0, len(groups))
	for _, pins := range groups {
		if len(pins) < 2 {
			continue
		}
		sort.Slice(pins, func(i, j int) bool { return lessPin(pins[i], pins[j]) })
		nl.Nets = append(nl.Nets, &Net{Pins: pins})
	}
	sort.Slice(nl.Nets, func(i, j int) bool {
		return lessPin(nl.Nets[i].Pins[0], nl.Nets[j].Pins[0])
	})
	for i, net := range nl.Nets {
		net.ID = i + 1
	}
}

func lessPin(a, b PinRef) bool {
	if a.Component != b.Component {
		return a.Component < b.Component
	}
	return a.Pin < b.Pin
}

// NetCount returns the number of nets. Only valid after Finalize.
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// NetOf returns the finalized net containing pin, or nil if the pin is not
// wired to anything.
func (nl *Netlist) NetOf(pin PinRef) *Net {
	for _, net := range nl.Nets {
		for _, p := range net.Pins {
			if p == pin {
				return net
			}
		}
	}
	return nil
}

// ExportJSON exports the netlist to JSON format.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	if nl.Nets == nil {
		return nil, fmt.Errorf("netlist: not finalized")
	}

	output := struct {
		Version    string   `json:"version"`
		Components []string `json:"components"`
		NetCount   int      `json:"net_count"`
		Nets       []*Net   `json:"nets"`
	}{
		Version:    "1.0",
		Components: nl.refs,
		NetCount:   nl.NetCount(),
		Nets:       nl.Nets,
	}
	return json.MarshalIndent(output, "", "  ")
}

// ExportKiCad exports the netlist as a KiCad (version D) netlist. Pins are
// numbered from 1 as KiCad expects.
func (nl *Netlist) ExportKiCad() (string, error) {
	if nl.Nets == nil {
		return "", fmt.Errorf("netlist: not finalized")
	}

	var sb strings.Builder
	sb.WriteString("(export (version D)\n")
	sb.WriteString("  (design\n")
	sb.WriteString("    (source otc))\n")
	sb.WriteString("  (components\n")
	for _, ref := range nl.refs {
		fmt.Fprintf(&sb, "    (comp (ref %s))\n", ref)
	}
	sb.WriteString("  )\n")

	sb.WriteString("  (nets\n")
	for _, net := range nl.Nets {
		fmt.Fprintf(&sb, "    (net (code %d) (name Net-%d)\n", net.ID, net.ID)
		for _, pin := range net.Pins {
			fmt.Fprintf(&sb, "      (node (ref %s) (pin %d))\n", pin.Ref(), pin.Pin+1)
		}
		sb.WriteString("    )\n")
	}
	sb.WriteString("  )\n")
	sb.WriteString(")\n")
	return sb.String(), nil
}
