package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuitfile"
)

var (
	assumeYes bool
	assumeNo  bool
)

// confirmTamper asks the user whether a modified file should be loaded.
// --yes and --no answer without a prompt.
func confirmTamper(t *circuitfile.TamperError) (bool, error) {
	switch {
	case assumeYes:
		return true, nil
	case assumeNo:
		return false, nil
	}

	ok := false
	err := huh.NewConfirm().
		Title("This circuit file has been modified outside otc").
		Description(fmt.Sprintf("Stored hash %s, computed %d. Load it anyway?", t.Stored, t.Computed)).
		Affirmative("Load").
		Negative("Abort").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
