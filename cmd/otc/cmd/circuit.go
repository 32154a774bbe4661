package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuitfile"
)

var infoCmd = &cobra.Command{
	Use:   "info <circuit_file>",
	Short: "Show circuit information",
	Long: `Load a circuit file and list its components, connectors and wires.

Element ids are the positions used in the file; wire and place refer to
connectors by these ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <circuit_file>",
	Short: "Check the hashes of a circuit file",
	Long: `Check the stream hash and every record hash of a circuit file without
loading it into an editor. Exits non-zero if anything does not match.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var rehashOutput string

var rehashCmd = &cobra.Command{
	Use:   "rehash <circuit_file>",
	Short: "Rewrite a circuit file with fresh hashes",
	Long: `Load a circuit file and save it again. With --hashes=false the hashes are
stripped instead. Records that fail to load are dropped from the output.

Examples:
  otc rehash board.circuit --yes             # Accept external edits
  otc rehash board.circuit -o clean.circuit  # Write to another file`,
	Args: cobra.ExactArgs(1),
	RunE: runRehash,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(rehashCmd)

	rehashCmd.Flags().StringVarP(&rehashOutput, "output", "o", "", "output file (default: overwrite input)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	c, report, err := openCircuit(ctx, args[0], bps)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Circuit: %s\n", args[0])
	fmt.Fprintf(out, "Stream hash: %s\n", streamStatus(report))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Components: %d\n", report.Components)
	fmt.Fprintf(out, "  Connectors: %d\n", report.Connectors)
	fmt.Fprintf(out, "  Connection records: %d\n", report.Connections)
	fmt.Fprintln(out)

	if comps := c.Components(); len(comps) > 0 {
		fmt.Fprintln(out, "Components:")
		for _, comp := range comps {
			pos := comp.Position()
			fmt.Fprintf(out, "  #%-4d %-16s (%d, %d) %s\n", c.IndexOf(comp), comp.Type(), pos.X, pos.Y, comp.Rotation())
			for _, conn := range comp.Connectors() {
				fmt.Fprintf(out, "        connector #%d%s\n", c.IndexOf(conn), peerList(c, conn))
			}
		}
		fmt.Fprintln(out)
	}

	printIssues(cmd, report)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading circuit: %w", err)
	}

	dec := circuitfile.NewDecoder(bps, circuitfile.WithLogger(loggerFromContext(ctx)))
	res, err := dec.Decode(data)

	out := cmd.OutOrStdout()
	var tamper *circuitfile.TamperError
	if errors.As(err, &tamper) {
		fmt.Fprintf(out, "%s: stream hash MISMATCH (stored %s, computed %d)\n", args[0], tamper.Stored, tamper.Computed)
		return fmt.Errorf("%s has been modified", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: stream hash %s\n", args[0], streamStatus(&res.Report))
	printIssues(cmd, &res.Report)
	if n := res.Report.Count(circuitfile.IssueHash); n > 0 {
		return fmt.Errorf("%d record(s) failed hash verification", n)
	}
	fmt.Fprintln(out, "OK")
	return nil
}

func runRehash(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bps, err := loadBlueprints(ctx)
	if err != nil {
		return err
	}
	c, report, err := openCircuit(ctx, args[0], bps)
	if err != nil {
		return err
	}
	printIssues(cmd, report)

	dest := rehashOutput
	if dest == "" {
		dest = args[0]
	}
	return saveCircuit(ctx, c, dest)
}

func streamStatus(r *circuitfile.Report) string {
	switch {
	case !r.StreamHashed:
		return "none"
	case r.TamperAccepted:
		return "mismatch (accepted)"
	default:
		return "ok"
	}
}

func peerList(c *circuit.Circuit, conn *circuit.Connector) string {
	peers := conn.Peers()
	if len(peers) == 0 {
		return ""
	}
	s := " ->"
	for _, p := range peers {
		s += fmt.Sprintf(" #%d", c.IndexOf(p))
	}
	return s
}

func printIssues(cmd *cobra.Command, r *circuitfile.Report) {
	if r.Clean() {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Skipped records (%d):\n", len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(out, "  %s\n", issue)
	}
}
