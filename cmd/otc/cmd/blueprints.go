package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var blueprintsCmd = &cobra.Command{
	Use:   "blueprints [type]",
	Short: "List available component blueprints",
	Long: `List the component templates found in the blueprint directory.

Without type argument: shows one line per blueprint
With type argument: shows pins and properties of that blueprint`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBlueprints,
}

func init() {
	rootCmd.AddCommand(blueprintsCmd)
}

func runBlueprints(cmd *cobra.Command, args []string) error {
	bps, err := loadBlueprints(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		bp, ok := bps.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown blueprint %q", args[0])
		}
		fmt.Fprintf(out, "Type: %s\n", bp.Type())
		fmt.Fprintf(out, "Shape: %s (%dx%d)\n", bp.Shape(), bp.Size().Width, bp.Size().Height)
		fmt.Fprintln(out, "Pins:")
		for i, pin := range bp.Pins() {
			fmt.Fprintf(out, "  %d: offset (%d, %d) %s\n", i+1, pin.Offset.X, pin.Offset.Y, pin.Rotation)
		}
		if props := bp.Properties(); len(props) > 0 {
			fmt.Fprintln(out, "Properties:")
			for _, p := range props {
				fmt.Fprintf(out, "  %s (%s)\n", p, p.Kind)
			}
		}
		return nil
	}

	types := bps.Types()
	if len(types) == 0 {
		fmt.Fprintf(out, "No blueprints in %s\n", configFromContext(cmd.Context()).BlueprintDir)
		return nil
	}
	for _, name := range types {
		bp, _ := bps.Get(name)
		props := make([]string, 0, len(bp.Properties()))
		for _, p := range bp.Properties() {
			props = append(props, p.String())
		}
		fmt.Fprintf(out, "%-20s %d pins  %s\n", name, len(bp.Pins()), strings.Join(props, " "))
	}
	return nil
}
