package circuitfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

// Encode renders c in the circuit record format. With useHashes every record
// gets a hash field and a circuithash record over the body is prepended.
//
// Ids are the indices of a snapshot of c's elements taken at the start of the
// call. Only connectors reachable through a component are written; unowned
// connectors are dropped. An owned connector or peer that is not itself part
// of c cannot be given an id and makes Encode fail, as does a component type
// name containing a double quote.
func Encode(c *circuit.Circuit, useHashes bool) ([]byte, error) {
	elements := c.Elements()
	ids := make(map[circuit.Element]int, len(elements))
	for i, e := range elements {
		ids[e] = i
	}
	idOf := func(e circuit.Element) (string, error) {
		id, ok := ids[e]
		if !ok {
			return "", fmt.Errorf("circuitfile: %T at (%d,%d) is not part of the circuit",
				e, e.Position().X, e.Position().Y)
		}
		return strconv.Itoa(id), nil
	}

	var body strings.Builder
	for i, e := range elements {
		comp, ok := e.(*circuit.Component)
		if !ok {
			continue
		}
		compID := strconv.Itoa(i)
		pos := comp.Position()

		if err := newRecord(kwComponent,
			"id", compID,
			"x", strconv.Itoa(pos.X),
			"y", strconv.Itoa(pos.Y),
			"rot", strconv.Itoa(int(comp.Rotation())),
			"type", comp.Type(),
		).render(&body, 1, false, useHashes); err != nil {
			return nil, err
		}

		conns := comp.Connectors()
		var connIDs strings.Builder
		for _, conn := range conns {
			id, err := idOf(conn)
			if err != nil {
				return nil, err
			}
			connIDs.WriteString(id + idSeparator)
		}
		if err := newRecord(kwChild,
			"comp", compID,
			"conn", connIDs.String(),
		).render(&body, 2, true, useHashes); err != nil {
			return nil, err
		}

		for _, conn := range conns {
			connID, _ := idOf(conn)
			cpos := conn.Position()
			off := conn.Offset()

			if err := newRecord(kwConnector,
				"id", connID,
				"x", strconv.Itoa(cpos.X),
				"y", strconv.Itoa(cpos.Y),
				"rot", strconv.Itoa(int(conn.RelativeRotation())),
				"relX", strconv.Itoa(off.X),
				"relY", strconv.Itoa(off.Y),
			).render(&body, 2, false, useHashes); err != nil {
				return nil, err
			}

			for _, peer := range conn.Peers() {
				peerID, err := idOf(peer)
				if err != nil {
					return nil, err
				}
				if err := newRecord(kwConnection,
					"conn1", connID,
					"conn2", peerID,
				).render(&body, 3, true, useHashes); err != nil {
					return nil, err
				}
			}
			closeTag(&body, 2, kwConnector)
		}
		closeTag(&body, 1, kwComponent)
	}

	var out strings.Builder
	out.WriteString(header + "\n")
	out.WriteString("<" + rootTag + ">\n")
	if useHashes {
		streamHash := Hash(canonicalBody(body.String()))
		out.WriteString("\t<" + kwStreamHash + " " + hashField + `="` + formatHash(streamHash) + `"/>` + "\n")
	}
	out.WriteString(body.String())
	out.WriteString("</" + rootTag + ">")
	return []byte(out.String()), nil
}

// Save encodes c and writes it to dest. The file is encoded completely in
// memory and written with a single call, so an encoding failure never leaves
// a partial file behind.
func Save(c *circuit.Circuit, dest string, useHashes bool) error {
	data, err := Encode(c, useHashes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("circuitfile: write %s: %w", dest, err)
	}
	return nil
}
