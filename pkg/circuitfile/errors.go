package circuitfile

import (
	"errors"
	"fmt"
)

// ErrTamperDeclined is returned when the caller refuses to load a file whose
// stream hash does not match.
var ErrTamperDeclined = errors.New("circuitfile: loading of modified file declined")

// TamperError describes a stream hash mismatch. A Session that detected one
// is suspended until the caller decides whether to continue.
type TamperError struct {
	Stored   string // Hash text found in the file
	Computed int32  // Hash of the file body as read
}

func (e *TamperError) Error() string {
	return fmt.Sprintf("circuitfile: file has been modified (stored hash %s, computed %d)", e.Stored, e.Computed)
}

// MissingBlueprintError is returned when a component record names a type the
// blueprint lookup does not know. It aborts the whole load.
type MissingBlueprintError struct {
	Type string
	ID   int
	Line int
}

func (e *MissingBlueprintError) Error() string {
	return fmt.Sprintf("circuitfile: missing blueprint %q for component %d (line %d)", e.Type, e.ID, e.Line)
}
