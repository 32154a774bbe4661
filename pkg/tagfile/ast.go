package tagfile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Document is a whole tag file: an optional declaration followed by a flat
// sequence of tags and end tags. Nesting is not tracked; the record stream is
// classified by tag name only.
type Document struct {
	Decl  string  `parser:"@Decl?"`
	Nodes []*Node `parser:"@@*"`
}

// Node is either an opening/self-closing tag or an end tag
type Node struct {
	Pos lexer.Position

	End string `parser:"  @EndTag"`
	Tag *Tag   `parser:"| @@"`
}

// Tag is one record: <name attr="value" ...> or <name attr="value" .../>.
// Pos is the opening '<' and EndPos the first byte after the closing '>'.
type Tag struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name  string  `parser:"Open @Ident"`
	Attrs []*Attr `parser:"@@*"`
	Empty bool    `parser:"( @SelfClose | Close )"`
}

// Attr is a single name="value" pair. Value keeps its surrounding quotes.
type Attr struct {
	Name  string `parser:"@Ident Eq"`
	Value string `parser:"@String"`
}

// Text returns the attribute value without quotes
func (a *Attr) Text() string {
	return strings.Trim(a.Value, `"`)
}

// Tags returns the opening tags in document order
func (d *Document) Tags() []*Tag {
	var tags []*Tag
	for _, n := range d.Nodes {
		if n.Tag != nil {
			tags = append(tags, n.Tag)
		}
	}
	return tags
}

// Attr returns the unquoted value of the first attribute called name
func (t *Tag) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Text(), true
		}
	}
	return "", false
}

// Int returns the named attribute as an int. Values written with a fractional
// part (e.g. "12.0") are truncated toward zero. Values outside the 32-bit
// range are an error.
func (t *Tag) Int(name string) (int, error) {
	v, ok := t.Attr(name)
	if !ok {
		return 0, fmt.Errorf("<%s> missing %q", t.Name, name)
	}
	n, err := parseInt(v)
	if err != nil {
		return 0, fmt.Errorf("<%s> %s=%q: %w", t.Name, name, v, err)
	}
	return n, nil
}

// Canonical returns the record text used for hashing: the tag name followed by
// name=value pairs in file order, separated by single spaces, with quotes
// removed. Attributes named in exclude are left out.
func (t *Tag) Canonical(exclude ...string) string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	for _, a := range t.Attrs {
		if contains(exclude, a.Name) {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteByte('=')
		sb.WriteString(a.Text())
	}
	return sb.String()
}

// String renders the tag back in file syntax
func (t *Tag) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(t.Name)
	for _, a := range t.Attrs {
		fmt.Fprintf(&sb, " %s=%s", a.Name, a.Value)
	}
	if t.Empty {
		sb.WriteString("/>")
	} else {
		sb.WriteByte('>')
	}
	return sb.String()
}

// parseInt accepts integers and decimals that fit in 32 bits. NaN and the
// infinities are rejected.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, errOutOfRange
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotANumber
	}
	f = math.Trunc(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, errOutOfRange
	}
	return int(f), nil
}

var (
	errNotANumber = errors.New("not a number")
	errOutOfRange = errors.New("out of range")
)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
