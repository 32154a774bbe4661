package circuitfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/blueprint"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

const plainResistor = `<?xml version="1.0" encoding="UTF-8"?>
<Circuit>
	<component id="0" x="100" y="50" rot="0" type="Resistor">
		<child comp="0" conn="1;2;"/>
		<connector id="1" x="80" y="50" rot="2" relX="-20" relY="0">
			<connection conn1="1" conn2="2"/>
		</connector>
		<connector id="2" x="120" y="50" rot="0" relX="20" relY="0">
			<connection conn1="2" conn2="1"/>
		</connector>
	</component>
</Circuit>`

const hashedResistor = `<?xml version="1.0" encoding="UTF-8"?>
<Circuit>
	<circuithash hash="-2021600368"/>
	<component id="0" x="100" y="50" rot="0" type="Resistor" hash="-662391556">
		<child comp="0" conn="1;2;" hash="-1573554486"/>
		<connector id="1" x="80" y="50" rot="2" relX="-20" relY="0" hash="-1951959370">
			<connection conn1="1" conn2="2" hash="1332860690"/>
		</connector>
		<connector id="2" x="120" y="50" rot="0" relX="20" relY="0" hash="-1552341573">
			<connection conn1="2" conn2="1" hash="-474593774"/>
		</connector>
	</component>
</Circuit>`

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func resistorLookup(t *testing.T) *blueprint.Container {
	t.Helper()
	c := blueprint.NewContainer()
	require.NoError(t, c.Add(blueprint.New("Resistor", "resistor.svg", []blueprint.Pin{
		{Offset: circuit.Point{X: -20}, Rotation: circuit.Rot180},
		{Offset: circuit.Point{X: 20}, Rotation: circuit.Rot0},
	}, circuit.Size{Width: 40, Height: 10}, nil)))
	return c
}

// wiredResistor is one resistor whose two connectors are wired to each other
func wiredResistor(t *testing.T) *circuit.Circuit {
	t.Helper()
	bp, _ := resistorLookup(t).Get("Resistor")
	comp := bp.Manufacture(circuit.Point{X: 100, Y: 50}, circuit.Rot0)
	conns := comp.Connectors()
	require.NoError(t, conns[0].Connect(conns[1]))

	c := circuit.New()
	c.AddComponent(comp)
	return c
}

func newTestDecoder(t *testing.T, opts ...Option) *Decoder {
	return NewDecoder(resistorLookup(t), append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestHashReferenceValues(t *testing.T) {
	tests := []struct {
		in   string
		want int32
	}{
		{"", 0},
		{"abc", 96354},
		{"hello", 99162322},
		{"hello world", 1794106052},
		{"component id=0 x=100 y=50 rot=0 type=Resistor", -662391556},
		{"component id=0 x=100 y=50 rot=0 type=Resistos", -662391555},
		{"component id=0 x=101 y=50 rot=0 type=Resistor", -631371749},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Hash(tt.in), "Hash(%q)", tt.in)
	}

	// Different text, same hash: the checksum is not collision free.
	assert.Equal(t, Hash("Aa"), Hash("BB"))
}

func TestHashNonASCII(t *testing.T) {
	// "Ω" is a single UTF-16 unit, U+03A9.
	assert.Equal(t, int32(0x3A9), Hash("Ω"))
	assert.Equal(t, 31*Hash("R")+0x3A9, Hash("RΩ"))
}

func TestEncodePlain(t *testing.T) {
	data, err := Encode(wiredResistor(t), false)
	require.NoError(t, err)
	assert.Equal(t, plainResistor, string(data))
}

func TestEncodeHashed(t *testing.T) {
	data, err := Encode(wiredResistor(t), true)
	require.NoError(t, err)
	assert.Equal(t, hashedResistor, string(data))
}

func TestEncodeEmptyCircuit(t *testing.T) {
	data, err := Encode(circuit.New(), false)
	require.NoError(t, err)
	assert.Equal(t, header+"\n<Circuit>\n</Circuit>", string(data))
}

func TestEncodeDropsUnownedConnectors(t *testing.T) {
	c := circuit.New()
	c.Add(circuit.NewConnector(circuit.Point{}, circuit.Point{}, circuit.Rot0))

	data, err := Encode(c, false)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<connector")
}

func TestEncodePeerOutsideCircuit(t *testing.T) {
	c := wiredResistor(t)
	stray := circuit.NewConnector(circuit.Point{}, circuit.Point{}, circuit.Rot0)
	require.NoError(t, c.Connectors()[0].Connect(stray))

	_, err := Encode(c, false)
	assert.Error(t, err)
}

func TestEncodeRejectsQuoteInType(t *testing.T) {
	c := circuit.New()
	c.AddComponent(circuit.NewComponent(`Res"istor`, "", circuit.Size{}, circuit.Point{}, circuit.Rot0))

	for _, hashed := range []bool{false, true} {
		_, err := Encode(c, hashed)
		assert.ErrorContains(t, err, "double quote")
	}
	assert.Error(t, Save(c, filepath.Join(t.TempDir(), "bad.circuit"), false))
}

func TestRoundTrip(t *testing.T) {
	for _, hashed := range []bool{false, true} {
		data, err := Encode(wiredResistor(t), hashed)
		require.NoError(t, err)

		res, err := newTestDecoder(t).Decode(data)
		require.NoError(t, err)
		assert.True(t, res.Report.Clean(), "issues: %v", res.Report.Issues)
		assert.Equal(t, hashed, res.Report.StreamHashed)

		c := circuit.New()
		res.Commit(c)
		require.Equal(t, 3, c.Len())

		comps := c.Components()
		require.Len(t, comps, 1)
		comp := comps[0]
		assert.Equal(t, "Resistor", comp.Type())
		assert.Equal(t, circuit.Point{X: 100, Y: 50}, comp.Position())
		assert.Equal(t, circuit.Size{Width: 40, Height: 10}, comp.Size())

		conns := comp.Connectors()
		require.Len(t, conns, 2)
		assert.Equal(t, circuit.Point{X: 80, Y: 50}, conns[0].Position())
		assert.Equal(t, circuit.Rot180, conns[0].RelativeRotation())
		assert.True(t, conns[0].IsConnectedTo(conns[1]))
		assert.True(t, conns[1].IsConnectedTo(conns[0]))

		// Re-encoding the loaded circuit gives the same bytes.
		again, err := Encode(c, hashed)
		require.NoError(t, err)
		assert.Equal(t, string(data), string(again))
	}
}

func TestDecodeRecordHashMismatchSkips(t *testing.T) {
	// No stream hash, so only the record hash catches the edit.
	data := strings.Replace(hashedResistor, "\t<circuithash hash=\"-2021600368\"/>\n", "", 1)
	data = strings.Replace(data, `id="2" x="120"`, `id="2" x="121"`, 1)

	res, err := newTestDecoder(t).Decode([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Report.Count(IssueHash))
	assert.Equal(t, 1, res.Report.Components)
	assert.Equal(t, 1, res.Report.Connectors)
	assert.Equal(t, 0, res.Report.Connections)

	c := circuit.New()
	res.Commit(c)
	require.Len(t, c.Components(), 1)
	conns := c.Components()[0].Connectors()
	require.Len(t, conns, 1, "connector 1 is still attached")
	assert.False(t, conns[0].Connected())
}

func TestDecodeChildHashMismatchOrphansConnectors(t *testing.T) {
	data := strings.Replace(hashedResistor, "\t<circuithash hash=\"-2021600368\"/>\n", "", 1)
	data = strings.Replace(data, `conn="1;2;"`, `conn="2;1;"`, 1)

	res, err := newTestDecoder(t).Decode([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Report.Count(IssueHash))
	assert.Equal(t, 2, res.Report.Count(IssueOrphan))
	require.Len(t, res.Elements, 1)
	comp, ok := res.Elements[0].(*circuit.Component)
	require.True(t, ok)
	assert.Empty(t, comp.Connectors())
	assert.Equal(t, 1, res.Report.Components)
	assert.Equal(t, 0, res.Report.Connectors)
}

func TestDecodeComponentHashMismatchOrphansConnectors(t *testing.T) {
	data := strings.Replace(hashedResistor, "\t<circuithash hash=\"-2021600368\"/>\n", "", 1)
	data = strings.Replace(data, `x="100"`, `x="101"`, 1)

	res, err := newTestDecoder(t).Decode([]byte(data))
	require.NoError(t, err)

	assert.Empty(t, res.Elements)
	assert.Equal(t, 1, res.Report.Count(IssueHash))
	assert.Equal(t, 1, res.Report.Count(IssueReference), "child record has no component")
	assert.Equal(t, 2, res.Report.Count(IssueOrphan))
}

func TestDecodeVerificationDisabled(t *testing.T) {
	data := strings.Replace(hashedResistor, `x="100"`, `x="101"`, 1)

	res, err := newTestDecoder(t, WithVerifyHashes(false)).Decode([]byte(data))
	require.NoError(t, err)
	assert.True(t, res.Report.Clean())
	assert.False(t, res.Report.TamperAccepted)

	c := circuit.New()
	res.Commit(c)
	require.Len(t, c.Components(), 1)
	assert.Equal(t, 101, c.Components()[0].Position().X)
}

func TestDecodeMalformedRecordHash(t *testing.T) {
	data := strings.Replace(plainResistor, `conn1="1" conn2="2"`, `conn1="1" conn2="2" hash="abc"`, 1)

	res, err := newTestDecoder(t).Decode([]byte(data))
	require.NoError(t, err)

	require.Equal(t, 1, res.Report.Count(IssueHash))
	// The reverse connection record still wires the pair.
	assert.Equal(t, 1, res.Report.Connections)
}

func TestStreamTamperSuspendsSession(t *testing.T) {
	data := []byte(strings.Replace(hashedResistor, `x="100"`, `x="101"`, 1))
	d := newTestDecoder(t)

	t.Run("abort", func(t *testing.T) {
		s, err := d.Begin(data)
		require.NoError(t, err)
		tamper := s.Tamper()
		require.NotNil(t, tamper)
		assert.Equal(t, "-2021600368", tamper.Stored)

		_, err = s.Resume(Abort)
		assert.ErrorIs(t, err, ErrTamperDeclined)
	})

	t.Run("continue", func(t *testing.T) {
		s, err := d.Begin(data)
		require.NoError(t, err)
		require.NotNil(t, s.Tamper())

		res, err := s.Resume(Continue)
		require.NoError(t, err)
		assert.True(t, res.Report.TamperAccepted)
		assert.True(t, res.Report.Clean(), "record hashes are not checked after continuing")
		assert.Len(t, res.Elements, 3)
	})

	t.Run("decode", func(t *testing.T) {
		_, err := d.Decode(data)
		var tamper *TamperError
		assert.ErrorAs(t, err, &tamper)
	})
}

func TestStreamHashIgnoresFormatting(t *testing.T) {
	data := strings.ReplaceAll(hashedResistor, "\t", "")
	data = strings.ReplaceAll(data, "\n", "\r\n")

	s, err := newTestDecoder(t).Begin([]byte(data))
	require.NoError(t, err)
	assert.Nil(t, s.Tamper())
}

func TestStreamHashRecordSpacing(t *testing.T) {
	for _, record := range []string{
		`<circuithash hash = "-2021600368"/>`,
		`<circuithash  hash="-2021600368" />`,
		"<circuithash\n\t\thash=\"-2021600368\"/>",
	} {
		data := strings.Replace(hashedResistor, `<circuithash hash="-2021600368"/>`, record, 1)

		s, err := newTestDecoder(t).Begin([]byte(data))
		require.NoError(t, err)
		assert.Nil(t, s.Tamper(), "record %q", record)
	}

	// Spacing is only forgiven inside the stream-hash record.
	data := strings.Replace(hashedResistor, `id="0" x="100"`, `id="0"  x="100"`, 1)
	s, err := newTestDecoder(t).Begin([]byte(data))
	require.NoError(t, err)
	assert.NotNil(t, s.Tamper())
}

func TestResumeTwice(t *testing.T) {
	s, err := newTestDecoder(t).Begin([]byte(plainResistor))
	require.NoError(t, err)
	_, err = s.Resume(Continue)
	require.NoError(t, err)
	_, err = s.Resume(Continue)
	assert.Error(t, err)
}

func TestDecodeMissingBlueprint(t *testing.T) {
	data := strings.Replace(plainResistor, `type="Resistor"`, `type="Capacitor"`, 1)

	_, err := newTestDecoder(t).Decode([]byte(data))
	var missing *MissingBlueprintError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Capacitor", missing.Type)
	assert.Equal(t, 0, missing.ID)
	assert.Equal(t, 3, missing.Line)
}

func TestDecodeForwardReferences(t *testing.T) {
	// Wiring and ownership before the records they refer to.
	data := `<Circuit>
<connection conn1="2" conn2="1"/>
<child comp="0" conn="2;1"/>
<connector id="2" x="120" y="50" rot="0" relX="20" relY="0"></connector>
<connector id="1" x="80" y="50" rot="2" relX="-20" relY="0"></connector>
<component id="0" x="100" y="50" rot="0" type="Resistor"></component>
</Circuit>`

	res, err := newTestDecoder(t).Decode([]byte(data))
	require.NoError(t, err)
	assert.True(t, res.Report.Clean(), "issues: %v", res.Report.Issues)

	c := circuit.New()
	res.Commit(c)
	comp := c.Components()[0]
	conns := comp.Connectors()
	require.Len(t, conns, 2)
	assert.Equal(t, 120, conns[0].Position().X, "child order decides connector order")
	assert.True(t, conns[0].IsConnectedTo(conns[1]))
}

func TestDecodeRecordProblems(t *testing.T) {
	tests := []struct {
		name   string
		extra  string
		kind   IssueKind
		remain int
	}{
		{"duplicate id", `<component id="0" x="0" y="0" rot="0" type="Resistor"></component>`, IssueDuplicate, 3},
		{"id out of range", `<connector id="9" x="0" y="0" rot="0" relX="0" relY="0"></connector>`, IssueReference, 3},
		{"missing field", `<connector id="3" x="0" rot="0" relX="0" relY="0"></connector>`, IssueMalformed, 3},
		{"not a number", `<connection conn1="one" conn2="2"/>`, IssueMalformed, 3},
		{"NaN coordinate", `<connector id="3" x="NaN" y="0" rot="0" relX="0" relY="0"></connector>`, IssueMalformed, 3},
		{"infinite coordinate", `<connector id="3" x="0" y="-Inf" rot="0" relX="0" relY="0"></connector>`, IssueMalformed, 3},
		{"coordinate out of range", `<connector id="3" x="0" y="0" rot="0" relX="1e30" relY="0"></connector>`, IssueMalformed, 3},
		{"wire to component", `<connection conn1="1" conn2="0"/>`, IssueReference, 3},
		{"unknown record", `<wire from="1" to="2"/>`, IssueUnknown, 3},
		{"unowned connector", `<connector id="3" x="0" y="0" rot="0" relX="0" relY="0"></connector>`, IssueOrphan, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(plainResistor, "</Circuit>", tt.extra+"\n</Circuit>", 1)

			res, err := newTestDecoder(t).Decode([]byte(data))
			require.NoError(t, err)
			assert.Equal(t, 1, res.Report.Count(tt.kind), "issues: %v", res.Report.Issues)
			assert.Len(t, res.Elements, tt.remain)
		})
	}
}

func TestDecodeComponentOutOfRangeCoordinate(t *testing.T) {
	data := strings.Replace(plainResistor, `x="100"`, `x="1e30"`, 1)

	res, err := newTestDecoder(t).Decode([]byte(data))
	require.NoError(t, err)

	assert.Empty(t, res.Elements)
	assert.Equal(t, 1, res.Report.Count(IssueMalformed))
	assert.Equal(t, 1, res.Report.Count(IssueReference), "child record has no component")
	assert.Equal(t, 2, res.Report.Count(IssueOrphan))
}

func TestDecodeParseError(t *testing.T) {
	_, err := newTestDecoder(t).Begin([]byte(`<Circuit><component id="0"`))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resistor.circuit")
	require.NoError(t, Save(wiredResistor(t), path, true))

	c := circuit.New()
	report, err := Load(c, path, newTestDecoder(t), nil)
	require.NoError(t, err)
	assert.True(t, report.StreamHashed)
	assert.Equal(t, 1, report.Components)
	assert.Equal(t, 2, report.Connectors)
	assert.Equal(t, 3, c.Len())
}

func TestLoadTamperedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resistor.circuit")
	tampered := strings.Replace(hashedResistor, `x="100"`, `x="101"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	existing := wiredResistor(t)
	before := existing.Elements()

	t.Run("nil confirm declines", func(t *testing.T) {
		_, err := Load(existing, path, newTestDecoder(t), nil)
		assert.ErrorIs(t, err, ErrTamperDeclined)
		assert.Equal(t, before, existing.Elements())
	})

	t.Run("confirm error", func(t *testing.T) {
		boom := errors.New("no terminal")
		_, err := Load(existing, path, newTestDecoder(t), func(*TamperError) (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, before, existing.Elements())
	})

	t.Run("accepted", func(t *testing.T) {
		var asked *TamperError
		c := circuit.New()
		report, err := Load(c, path, newTestDecoder(t), func(te *TamperError) (bool, error) {
			asked = te
			return true, nil
		})
		require.NoError(t, err)
		require.NotNil(t, asked)
		assert.True(t, report.TamperAccepted)
		assert.Equal(t, 101, c.Components()[0].Position().X)
	})
}

func TestLoadMissingBlueprintLeavesCircuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resistor.circuit")
	require.NoError(t, Save(wiredResistor(t), path, false))

	existing := wiredResistor(t)
	before := existing.Elements()

	_, err := Load(existing, path, NewDecoder(blueprint.NewContainer(), WithLogger(quietLogger())), nil)
	var missing *MissingBlueprintError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, before, existing.Elements())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(circuit.New(), filepath.Join(t.TempDir(), "nope.circuit"), newTestDecoder(t), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveToDirectoryFails(t *testing.T) {
	err := Save(wiredResistor(t), t.TempDir(), false)
	assert.Error(t, err)
}

func TestArenaSlots(t *testing.T) {
	comp := circuit.NewComponent("Resistor", "", circuit.Size{}, circuit.Point{}, circuit.Rot0)
	conn := circuit.NewConnector(circuit.Point{}, circuit.Point{}, circuit.Rot0)
	a := newArena(3)
	a[0] = comp
	a[1] = conn

	assert.Same(t, comp, a.component(0))
	assert.Nil(t, a.connector(0), "slot 0 holds a component")
	assert.Same(t, conn, a.connector(1))
	assert.Nil(t, a.component(2), "empty slot")
	assert.Nil(t, a.component(circuit.NoSlot))
	assert.Nil(t, a.connector(3))
	assert.False(t, a.inRange(circuit.SlotID(len(a))))
}
