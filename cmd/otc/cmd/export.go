package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/render"
)

var (
	netlistFormat string
	netlistOutput string

	renderFormat   string
	renderOutput   string
	renderPins     bool
	renderDetailed bool
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <circuit_file>",
	Short: "Export the nets of a circuit",
	Long: `Group wired connectors into nets and export them.

Formats:
  json   net list with component references (default)
  kicad  KiCad netlist (version D) S-expression`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

var renderCmd = &cobra.Command{
	Use:   "render <circuit_file>",
	Short: "Draw the connection graph of a circuit",
	Long: `Render the components and wires of a circuit as a Graphviz graph.

Formats:
  dot  Graphviz source (default)
  svg  rendered image`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(netlistCmd)
	rootCmd.AddCommand(renderCmd)

	netlistCmd.Flags().StringVarP(&netlistFormat, "format", "f", "json", "output format (json, kicad)")
	netlistCmd.Flags().StringVarP(&netlistOutput, "output", "o", "", "output file (default: stdout)")

	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "dot", "output format (dot, svg)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default: stdout)")
	renderCmd.Flags().BoolVar(&renderPins, "pins", false, "draw connectors as separate nodes")
	renderCmd.Flags().BoolVar(&renderDetailed, "detailed", false, "show position and rotation")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	c, _, err := openCircuit(ctx, args[0], bps)
	if err != nil {
		return err
	}

	nl := netlist.FromCircuit(c)
	loggerFromContext(ctx).Debug("netlist built", "nets", nl.NetCount())

	var data []byte
	switch netlistFormat {
	case "json":
		data, err = nl.ExportJSON()
	case "kicad":
		var s string
		s, err = nl.ExportKiCad()
		data = []byte(s)
	default:
		return fmt.Errorf("unknown netlist format %q", netlistFormat)
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, netlistOutput, data)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	c, _, err := openCircuit(ctx, args[0], bps)
	if err != nil {
		return err
	}

	dot := render.ToDOT(c, render.Options{Pins: renderPins, Detailed: renderDetailed})
	switch renderFormat {
	case "dot":
		return writeOutput(cmd, renderOutput, []byte(dot))
	case "svg":
		svg, err := render.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		return writeOutput(cmd, renderOutput, svg)
	default:
		return fmt.Errorf("unknown render format %q", renderFormat)
	}
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	loggerFromContext(cmd.Context()).Info("written", "file", path, "bytes", len(data))
	return nil
}
