// Package tagfile parses the angle-bracket record files used for circuits and
// blueprint templates.
package tagfile

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

var parser = participle.MustBuild[Document](
	participle.Lexer(TagLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a tag file from a reader
func Parse(r io.Reader) (*Document, error) {
	doc, err := parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return doc, nil
}

// ParseBytes parses a tag file held in memory
func ParseBytes(data []byte) (*Document, error) {
	doc, err := parser.ParseBytes("", data)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return doc, nil
}

// ParseFile parses a tag file from a file path
func ParseFile(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := parser.Parse(filename, file)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return doc, nil
}
