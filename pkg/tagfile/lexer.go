package tagfile

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TagLexer defines the lexical structure of circuit and blueprint files.
// The format borrows XML's angle-bracket look but nothing else: there are no
// entities, no escaping and no CDATA, and attribute values never contain a
// double quote.
var TagLexer = lexer.MustSimple([]lexer.SimpleRule{
	// <?xml version="1.0" encoding="UTF-8"?>
	{Name: "Decl", Pattern: `<\?[^?]*\?>`},

	// </component>, </Circuit>
	{Name: "EndTag", Pattern: `</\s*[A-Za-z_][A-Za-z0-9_]*\s*>`},

	// Tag delimiters
	{Name: "SelfClose", Pattern: `/>`},
	{Name: "Open", Pattern: `<`},
	{Name: "Close", Pattern: `>`},
	{Name: "Eq", Pattern: `=`},

	// Attribute values, quotes included
	{Name: "String", Pattern: `"[^"]*"`},

	// Tag and attribute names
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},

	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
