package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
)

var (
	placeRotation int
	placeCreate   bool
	wireRemove    bool
)

var placeCmd = &cobra.Command{
	Use:   "place <circuit_file> <type> <x> <y>",
	Short: "Add a component from a blueprint",
	Long: `Create a component of the given blueprint type at (x, y) and save the
circuit. Its connectors are placed from the blueprint's pin offsets.

Examples:
  otc place board.circuit Resistor 100 50
  otc place board.circuit Capacitor 200 50 --rot 1
  otc place new.circuit Resistor 0 0 --create`,
	Args: cobra.ExactArgs(4),
	RunE: runPlace,
}

var wireCmd = &cobra.Command{
	Use:   "wire <circuit_file> <connector> <connector>",
	Short: "Connect or disconnect two connectors",
	Long: `Wire two connectors together by element id (see otc info) and save the
circuit. With --remove the wire between them is deleted instead.`,
	Args: cobra.ExactArgs(3),
	RunE: runWire,
}

func init() {
	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(wireCmd)

	placeCmd.Flags().IntVarP(&placeRotation, "rot", "r", 0, "rotation in quarter turns")
	placeCmd.Flags().BoolVar(&placeCreate, "create", false, "start a new circuit if the file does not exist")
	wireCmd.Flags().BoolVar(&wireRemove, "remove", false, "remove the wire instead of adding it")
}

func runPlace(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path, typeName := args[0], args[1]
	x, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[2], err)
	}
	y, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[3], err)
	}

	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	bp, ok := bps.Get(typeName)
	if !ok {
		return fmt.Errorf("unknown blueprint %q (have %v)", typeName, bps.Types())
	}

	c := circuit.New()
	if _, statErr := os.Stat(path); placeCreate && errors.Is(statErr, os.ErrNotExist) {
		loggerFromContext(ctx).Info("creating circuit", "file", path)
	} else {
		if c, _, err = openCircuit(ctx, path, bps); err != nil {
			return err
		}
	}

	comp := bp.Manufacture(circuit.Point{X: x, Y: y}, circuit.NewRotation(placeRotation))
	c.AddComponent(comp)

	fmt.Fprintf(cmd.OutOrStdout(), "placed %s as #%d", typeName, c.IndexOf(comp))
	for _, conn := range comp.Connectors() {
		fmt.Fprintf(cmd.OutOrStdout(), " connector #%d", c.IndexOf(conn))
	}
	fmt.Fprintln(cmd.OutOrStdout())

	return saveCircuit(ctx, c, path)
}

func runWire(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	ids := make([]int, 2)
	for i, arg := range args[1:] {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid connector id %q: %w", arg, err)
		}
		ids[i] = id
	}

	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	c, _, err := openCircuit(ctx, path, bps)
	if err != nil {
		return err
	}

	a, err := connectorAt(c, ids[0])
	if err != nil {
		return err
	}
	b, err := connectorAt(c, ids[1])
	if err != nil {
		return err
	}

	if wireRemove {
		if !a.Disconnect(b) {
			return fmt.Errorf("connectors #%d and #%d are not wired", ids[0], ids[1])
		}
	} else if err := a.Connect(b); err != nil {
		return err
	}
	return saveCircuit(ctx, c, path)
}
