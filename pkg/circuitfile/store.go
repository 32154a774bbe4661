package circuitfile

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

// ConfirmFunc asks whether a file whose stream hash does not match should be
// loaded anyway. Returning false aborts the load.
type ConfirmFunc func(t *TamperError) (bool, error)

// Load reads src and replaces the contents of c with it. c is left untouched
// unless the whole load succeeds. A nil confirm declines every modified file.
func Load(c *circuit.Circuit, src string, d *Decoder, confirm ConfirmFunc) (*Report, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("circuitfile: read %s: %w", src, err)
	}

	s, err := d.Begin(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, src)
	}

	decision := Continue
	if t := s.Tamper(); t != nil {
		decision = Abort
		if confirm != nil {
			ok, err := confirm(t)
			if err != nil {
				return nil, fmt.Errorf("circuitfile: confirm: %w", err)
			}
			if ok {
				decision = Continue
			}
		}
	}

	res, err := s.Resume(decision)
	if err != nil {
		return nil, err
	}
	res.Commit(c)
	return &res.Report, nil
}
