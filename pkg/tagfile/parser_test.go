package tagfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCircuitRecords(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<Circuit>
	<component id="0" x="100" y="50" rot="0" type="Resistor" hash="-42">
		<child comp="0" conn="1;2;"/>
		<connector id="1" x="80" y="50" rot="2" relX="-20" relY="0">
			<connection conn1="1" conn2="2"/>
		</connector>
	</component>
</Circuit>`

	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>`, doc.Decl)

	tags := doc.Tags()
	require.Len(t, tags, 5)

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"Circuit", "component", "child", "connector", "connection"}, names)

	comp := tags[1]
	assert.False(t, comp.Empty)
	typ, ok := comp.Attr("type")
	require.True(t, ok)
	assert.Equal(t, "Resistor", typ)

	x, err := comp.Int("x")
	require.NoError(t, err)
	assert.Equal(t, 100, x)

	assert.True(t, tags[2].Empty, "child record is self-closing")
	assert.Equal(t, 3, tags[1].Pos.Line)
}

func TestCanonical(t *testing.T) {
	doc, err := ParseBytes([]byte(`<component id="0" x="1" y="2" rot="3" type="Cap" hash="99">`))
	require.NoError(t, err)

	tag := doc.Tags()[0]
	assert.Equal(t, "component id=0 x=1 y=2 rot=3 type=Cap", tag.Canonical("hash"))
	assert.Equal(t, "component id=0 x=1 y=2 rot=3 type=Cap hash=99", tag.Canonical())
	assert.Equal(t, `<component id="0" x="1" y="2" rot="3" type="Cap" hash="99">`, tag.String())
}

func TestIntValues(t *testing.T) {
	doc, err := ParseBytes([]byte(`<connector x="12.0" y="-7" rot="abc" relY="NaN" w="Inf" h="1e30"/>`))
	require.NoError(t, err)
	tag := doc.Tags()[0]

	x, err := tag.Int("x")
	require.NoError(t, err)
	assert.Equal(t, 12, x)

	y, err := tag.Int("y")
	require.NoError(t, err)
	assert.Equal(t, -7, y)

	_, err = tag.Int("rot")
	assert.Error(t, err)

	_, err = tag.Int("relX")
	assert.ErrorContains(t, err, "missing")

	for _, name := range []string{"relY", "w", "h"} {
		_, err = tag.Int(name)
		assert.Error(t, err, name)
	}
}

func TestIntRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"NaN", "not a number"},
		{"Inf", "not a number"},
		{"-Infinity", "not a number"},
		{"1e30", "out of range"},
		{"-1e30", "out of range"},
		{"2147483648", "out of range"},
		{"99999999999999999999", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			doc, err := ParseBytes([]byte(`<connector x="` + tt.value + `"/>`))
			require.NoError(t, err)
			_, err = doc.Tags()[0].Int("x")
			assert.ErrorContains(t, err, tt.want)
		})
	}

	doc, err := ParseBytes([]byte(`<connector lo="-2147483648" hi="2147483647.9"/>`))
	require.NoError(t, err)
	lo, err := doc.Tags()[0].Int("lo")
	require.NoError(t, err)
	assert.Equal(t, -2147483648, lo)
	hi, err := doc.Tags()[0].Int("hi")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, hi)
}

func TestTagSpan(t *testing.T) {
	input := "<Circuit>\n\t<circuithash hash = \"7\" />\n</Circuit>"
	doc, err := ParseBytes([]byte(input))
	require.NoError(t, err)

	tags := doc.Tags()
	require.Len(t, tags, 2)
	span := input[tags[1].Pos.Offset:tags[1].EndPos.Offset]
	assert.Equal(t, `<circuithash hash = "7" />`, span)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated tag", `<component id="0"`},
		{"unquoted value", `<component id=0>`},
		{"stray text", `hello <component/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}
