package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/blueprint"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuitfile"
)

// loadBlueprints reads every template under the configured blueprint
// directory. A missing directory yields an empty, sealed container.
func loadBlueprints(ctx context.Context) (*blueprint.Container, error) {
	cfg := configFromContext(ctx)
	logger := loggerFromContext(ctx)

	bps := blueprint.NewContainer()
	err := bps.LoadDir(cfg.BlueprintDir, blueprint.SVGShapes{})
	if errors.Is(err, fs.ErrNotExist) && bps.Len() == 0 {
		logger.Warn("blueprint directory not found", "dir", cfg.BlueprintDir)
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading blueprints: %w", err)
	}
	bps.Seal()

	logger.Debug("blueprints loaded", "dir", cfg.BlueprintDir, "count", bps.Len())
	return bps, nil
}

// openCircuit loads the circuit at path, prompting if its stream hash does
// not match.
func openCircuit(ctx context.Context, path string, bps blueprint.Lookup) (*circuit.Circuit, *circuitfile.Report, error) {
	cfg := configFromContext(ctx)
	dec := circuitfile.NewDecoder(bps,
		circuitfile.WithVerifyHashes(cfg.UseHashes),
		circuitfile.WithLogger(loggerFromContext(ctx)))

	c := circuit.New()
	report, err := circuitfile.Load(c, path, dec, confirmTamper)
	if err != nil {
		return nil, nil, err
	}
	return c, report, nil
}

// saveCircuit writes c back to path using the configured hash setting
func saveCircuit(ctx context.Context, c *circuit.Circuit, path string) error {
	cfg := configFromContext(ctx)
	if err := circuitfile.Save(c, path, cfg.UseHashes); err != nil {
		return err
	}
	loggerFromContext(ctx).Info("saved", "file", path, "elements", c.Len(), "hashes", cfg.UseHashes)
	return nil
}

// connectorAt returns the connector with element id in c
func connectorAt(c *circuit.Circuit, id int) (*circuit.Connector, error) {
	conn, ok := c.At(circuit.SlotID(id)).(*circuit.Connector)
	if !ok {
		return nil, fmt.Errorf("element %d is not a connector", id)
	}
	return conn, nil
}
