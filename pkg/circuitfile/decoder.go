package circuitfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/blueprint"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/tagfile"
)

// Decision is the caller's answer to a suspended session
type Decision int

const (
	// Abort stops the load; nothing is committed
	Abort Decision = iota
	// Continue loads anyway and stops verifying record hashes
	Continue
)

// Decoder turns circuit files into element lists. A Decoder holds no
// per-load state and may be reused.
type Decoder struct {
	blueprints blueprint.Lookup
	verify     bool
	logger     *log.Logger
}

// Option configures a Decoder
type Option func(*Decoder)

// WithVerifyHashes enables or disables hash verification. When disabled,
// record and stream hashes are ignored entirely. Verification is on by
// default.
func WithVerifyHashes(verify bool) Option {
	return func(d *Decoder) { d.verify = verify }
}

// WithLogger sets the logger used for record-local diagnostics
func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDecoder creates a decoder resolving component types through blueprints.
func NewDecoder(blueprints blueprint.Lookup, opts ...Option) *Decoder {
	d := &Decoder{
		blueprints: blueprints,
		verify:     true,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode runs a whole load without user interaction. A stream hash mismatch
// is returned as a *TamperError.
func (d *Decoder) Decode(data []byte) (*Result, error) {
	s, err := d.Begin(data)
	if err != nil {
		return nil, err
	}
	if t := s.Tamper(); t != nil {
		return nil, t
	}
	return s.Resume(Continue)
}

// Result is a fully resolved load, not yet visible to any circuit
type Result struct {
	Elements []circuit.Element
	Report   Report
}

// Commit replaces the contents of c with the loaded elements
func (r *Result) Commit(c *circuit.Circuit) {
	c.Replace(r.Elements)
}

// Session is one load in progress. Begin tokenizes the file and checks the
// stream hash; if that check fails the session is suspended and Tamper
// reports the mismatch. Resume runs the remaining passes.
type Session struct {
	dec *Decoder

	components  []*tagfile.Tag
	connectors  []*tagfile.Tag
	connections []*tagfile.Tag
	children    []*tagfile.Tag
	streamHash  *tagfile.Tag

	slots        arena
	tamper       *TamperError
	ignoreHashes bool
	resumed      bool
	report       Report
}

// Begin tokenizes data into record buckets, sizes the slot arena and checks
// the stream hash. Only an unparseable file is an error here.
func (d *Decoder) Begin(data []byte) (*Session, error) {
	doc, err := tagfile.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("circuitfile: %w", err)
	}

	s := &Session{dec: d, ignoreHashes: !d.verify}
	for _, tag := range doc.Tags() {
		switch tag.Name {
		case kwComponent:
			s.components = append(s.components, tag)
		case kwConnector:
			s.connectors = append(s.connectors, tag)
		case kwConnection:
			s.connections = append(s.connections, tag)
		case kwChild:
			s.children = append(s.children, tag)
		case kwStreamHash:
			if s.streamHash != nil {
				s.issue(IssueDuplicate, tag, -1, "second circuithash record ignored")
				continue
			}
			s.streamHash = tag
		case rootTag:
		default:
			s.issue(IssueUnknown, tag, -1, "unrecognised record")
		}
	}

	// Component and connector ids index one shared array, so every slot has to
	// exist before the first record is placed.
	s.slots = newArena(len(s.components) + len(s.connectors))

	if s.streamHash != nil {
		s.report.StreamHashed = true
		if d.verify {
			s.checkStreamHash(string(data))
		}
	}
	return s, nil
}

func (s *Session) checkStreamHash(raw string) {
	stored, _ := s.streamHash.Attr(hashField)
	computed := Hash(canonicalStream(raw, s.streamHash.Pos.Offset, s.streamHash.EndPos.Offset))
	want, err := parseHash(stored)
	if err == nil && want == computed {
		return
	}
	s.tamper = &TamperError{Stored: stored, Computed: computed}
}

// Tamper returns the stream hash mismatch the session is suspended on, or nil
func (s *Session) Tamper() *TamperError {
	return s.tamper
}

// Resume finishes the load. On a suspended session Abort returns
// ErrTamperDeclined and Continue proceeds with record hash checks disabled.
// On a session that is not suspended the decision is ignored.
//
// A component whose type is unknown aborts with *MissingBlueprintError. All
// other record problems are collected in the Report and the record skipped.
func (s *Session) Resume(decision Decision) (*Result, error) {
	if s.resumed {
		return nil, errors.New("circuitfile: session already resumed")
	}
	s.resumed = true

	if s.tamper != nil {
		if decision != Continue {
			return nil, ErrTamperDeclined
		}
		s.dec.logger.Warn("loading modified file", "stored", s.tamper.Stored, "computed", s.tamper.Computed)
		s.ignoreHashes = true
		s.report.TamperAccepted = true
	}

	if err := s.placeComponents(); err != nil {
		return nil, err
	}
	s.placeConnectors()
	s.attachChildren()
	s.wireConnections()
	elements := s.sweep()

	s.dec.logger.Debug("circuit decoded",
		"components", s.report.Components,
		"connectors", s.report.Connectors,
		"connections", s.report.Connections,
		"issues", len(s.report.Issues))

	return &Result{Elements: elements, Report: s.report}, nil
}

func (s *Session) placeComponents() error {
	for _, tag := range s.components {
		id := recordID(tag, "id")
		if !s.verified(tag, id) {
			continue
		}
		x, errX := tag.Int("x")
		y, errY := tag.Int("y")
		rot, errR := tag.Int("rot")
		typeName, hasType := tag.Attr("type")
		if err := errors.Join(fieldErr(tag, "id", id), errX, errY, errR); err != nil || !hasType {
			if err == nil {
				err = fmt.Errorf("<%s> missing %q", tag.Name, "type")
			}
			s.issue(IssueMalformed, tag, id, err.Error())
			continue
		}

		bp, ok := s.lookup(typeName)
		if !ok {
			return &MissingBlueprintError{Type: typeName, ID: id, Line: tag.Pos.Line}
		}

		comp, _ := bp.CreateInstance(circuit.Point{X: x, Y: y}, circuit.NewRotation(rot))
		s.place(tag, id, comp)
	}
	return nil
}

func (s *Session) placeConnectors() {
	for _, tag := range s.connectors {
		id := recordID(tag, "id")
		if !s.verified(tag, id) {
			continue
		}
		x, errX := tag.Int("x")
		y, errY := tag.Int("y")
		rot, errR := tag.Int("rot")
		relX, errRX := tag.Int("relX")
		relY, errRY := tag.Int("relY")
		if err := errors.Join(fieldErr(tag, "id", id), errX, errY, errR, errRX, errRY); err != nil {
			s.issue(IssueMalformed, tag, id, err.Error())
			continue
		}

		conn := circuit.NewConnector(
			circuit.Point{X: x, Y: y},
			circuit.Point{X: relX, Y: relY},
			circuit.NewRotation(rot),
		)
		s.place(tag, id, conn)
	}
}

func (s *Session) attachChildren() {
	for _, tag := range s.children {
		compID := recordID(tag, "comp")
		if !s.verified(tag, compID) {
			continue
		}
		list, hasList := tag.Attr("conn")
		if err := fieldErr(tag, "comp", compID); err != nil || !hasList {
			reason := fmt.Sprintf("<%s> missing %q", tag.Name, "conn")
			if err != nil {
				reason = err.Error()
			}
			s.issue(IssueMalformed, tag, compID, reason)
			continue
		}

		comp := s.slots.component(circuit.SlotID(compID))
		if comp == nil {
			s.issue(IssueReference, tag, compID, "no component in slot")
			continue
		}

		for _, part := range strings.Split(list, idSeparator) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			connID, err := strconv.Atoi(part)
			if err != nil {
				s.issue(IssueMalformed, tag, compID, fmt.Sprintf("connector id %q", part))
				continue
			}
			conn := s.slots.connector(circuit.SlotID(connID))
			if conn == nil {
				s.issue(IssueReference, tag, connID, "no connector in slot")
				continue
			}
			if err := comp.Attach(conn); err != nil {
				s.issue(IssueReference, tag, connID, err.Error())
			}
		}
	}
}

func (s *Session) wireConnections() {
	for _, tag := range s.connections {
		id1 := recordID(tag, "conn1")
		if !s.verified(tag, id1) {
			continue
		}
		id2 := recordID(tag, "conn2")
		if err := errors.Join(fieldErr(tag, "conn1", id1), fieldErr(tag, "conn2", id2)); err != nil {
			s.issue(IssueMalformed, tag, id1, err.Error())
			continue
		}

		a := s.slots.connector(circuit.SlotID(id1))
		if a == nil {
			s.issue(IssueReference, tag, id1, "no connector in slot")
			continue
		}
		b := s.slots.connector(circuit.SlotID(id2))
		if b == nil {
			s.issue(IssueReference, tag, id2, "no connector in slot")
			continue
		}
		if err := a.Connect(b); err != nil {
			s.issue(IssueReference, tag, id1, err.Error())
			continue
		}
		s.report.Connections++
	}
}

// sweep drops empty slots and connectors nobody claimed, keeping slot order.
func (s *Session) sweep() []circuit.Element {
	elements := make([]circuit.Element, 0, len(s.slots))
	for id, e := range s.slots {
		switch v := e.(type) {
		case nil:
			continue
		case *circuit.Connector:
			if v.Owner() == nil {
				v.DisconnectAll()
				s.issue(IssueOrphan, nil, id, "connector has no owner")
				continue
			}
			s.report.Connectors++
		case *circuit.Component:
			s.report.Components++
		}
		elements = append(elements, e)
	}
	return elements
}

func (s *Session) lookup(typeName string) (*blueprint.Blueprint, bool) {
	if s.dec.blueprints == nil {
		return nil, false
	}
	return s.dec.blueprints.Get(typeName)
}

// verified checks the record's own hash. Records without a hash field pass.
func (s *Session) verified(tag *tagfile.Tag, id int) bool {
	if s.ignoreHashes {
		return true
	}
	stored, ok := tag.Attr(hashField)
	if !ok {
		return true
	}
	want, err := parseHash(stored)
	if err != nil {
		s.issue(IssueHash, tag, id, fmt.Sprintf("malformed hash %q", stored))
		return false
	}
	if got := Hash(tag.Canonical(hashField)); got != want {
		s.issue(IssueHash, tag, id, fmt.Sprintf("hash mismatch (stored %d, computed %d)", want, got))
		return false
	}
	return true
}

func (s *Session) place(tag *tagfile.Tag, id int, e circuit.Element) {
	slot := circuit.SlotID(id)
	switch {
	case !s.slots.inRange(slot):
		s.issue(IssueReference, tag, id, fmt.Sprintf("id outside 0..%d", len(s.slots)-1))
	case s.slots.at(slot) != nil:
		s.issue(IssueDuplicate, tag, id, "slot already filled")
	default:
		s.slots[slot] = e
	}
}

func (s *Session) issue(kind IssueKind, tag *tagfile.Tag, id int, reason string) {
	i := Issue{Kind: kind, ID: id, Reason: reason}
	if tag != nil {
		i.Keyword = tag.Name
		i.Line = tag.Pos.Line
	} else {
		i.Keyword = kwConnector
	}
	s.report.Issues = append(s.report.Issues, i)
	s.dec.logger.Warn("skipped record", "kind", kind, "record", i.Keyword, "id", id, "line", i.Line, "reason", reason)
}

// recordID reads an id field, returning -1 when it is missing or malformed
func recordID(tag *tagfile.Tag, name string) int {
	id, err := tag.Int(name)
	if err != nil {
		return -1
	}
	return id
}

// fieldErr re-reads an id field that recordID reported as -1, so the
// malformed-record issue carries the real reason.
func fieldErr(tag *tagfile.Tag, name string, id int) error {
	if id >= 0 {
		return nil
	}
	if _, err := tag.Int(name); err != nil {
		return err
	}
	return fmt.Errorf("<%s> %s is negative", tag.Name, name)
}

// arena is the pre-sized slot array a load resolves ids against
// arena holds the decoded elements by slot. Component and connector ids share
// one index space, the same one circuit.Circuit uses for its element list.
type arena []circuit.Element

func newArena(n int) arena {
	return make(arena, n)
}

func (a arena) inRange(id circuit.SlotID) bool {
	return id >= 0 && int(id) < len(a)
}

func (a arena) at(id circuit.SlotID) circuit.Element {
	if !a.inRange(id) {
		return nil
	}
	return a[id]
}

func (a arena) component(id circuit.SlotID) *circuit.Component {
	comp, _ := a.at(id).(*circuit.Component)
	return comp
}

func (a arena) connector(id circuit.SlotID) *circuit.Connector {
	conn, _ := a.at(id).(*circuit.Connector)
	return conn
}
